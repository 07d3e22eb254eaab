package sim

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnit_Run_OnlyOnce(t *testing.T) {
	u := newTestUnit()
	require.NoError(t, u.Run())
	assert.ErrorIs(t, u.Run(), ErrAlreadyRun)
}

func TestUnit_Check_RecordsFailure(t *testing.T) {
	u := newTestUnit()
	_, err := u.Spawn("r", func(r *Runner) {
		Check(r, true, "OK")
		Check(r, false, "BAD")
	})
	require.NoError(t, err)

	err = u.Run()
	require.Error(t, err)
	assert.False(t, u.Passed())
	assert.Equal(t, 1, u.ExitCode())
}

func TestUnit_MockVerification_FoldsIntoPostamble(t *testing.T) {
	u := newTestUnit()
	mocker := NewMock[int, string](u, "dep")
	mocker.EXPECT(MatchEq(1)).Times(Exactly(1)).WillOnce(func(int) string { return "x" })

	_, err := u.Spawn("r", func(r *Runner) {})
	require.NoError(t, err)

	err = u.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsatisfied expectation")
}

func TestUnit_Passed_FalseBeforeRun(t *testing.T) {
	u := newTestUnit()
	assert.False(t, u.Passed())
}

func TestLogger_EmitsRecordsToWriter(t *testing.T) {
	var buf bytes.Buffer
	u := NewUnit(&buf, levelDebug)

	_, err := u.Spawn("r", func(r *Runner) {
		Info(r, "HELLO", "x", 1)
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())

	assert.Contains(t, buf.String(), "HELLO")
}

func TestLogger_NoiseLimiter_ThrottlesRepeatedWarnings(t *testing.T) {
	var buf bytes.Buffer
	u := NewUnit(&buf, levelDebug)

	_, err := u.Spawn("r", func(r *Runner) {
		for i := 0; i < 1000; i++ {
			Warn(r, "NOISY")
		}
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())

	// the noise limiter caps how many NOISY lines actually reach the
	// writer well below the 1000 calls made.
	assert.Less(t, bytes.Count(buf.Bytes(), []byte("NOISY")), 1000)
}

func TestLogger_NoiseLimiter_CustomRatesOverrideDefault(t *testing.T) {
	var buf bytes.Buffer
	u := NewUnitWithOptions(&buf, levelDebug, &UnitOptions{
		NoiseLimiterRates: map[time.Duration]int{time.Second: 1},
	})

	_, err := u.Spawn("r", func(r *Runner) {
		Warn(r, "NOISY")
		Warn(r, "NOISY")
		Warn(r, "NOISY")
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())

	// the override permits only 1 per second, well below the default of 20.
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("NOISY")))
}

func TestMetadata_IsEmpty(t *testing.T) {
	assert.True(t, EmptyMetadata.IsEmpty())
	assert.False(t, Metadata{File: "x.go"}.IsEmpty())
}

func TestCheckWithMetadata(t *testing.T) {
	var buf bytes.Buffer
	u := NewUnit(&buf, levelDebug)

	_, err := u.Spawn("r", func(r *Runner) {
		CheckWithMetadata(r, true, "OK", Metadata{File: "x.go", Line: 10})
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())
	assert.Contains(t, buf.String(), "x.go")
}
