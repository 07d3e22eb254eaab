package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_FiresOnFireAtDueTime(t *testing.T) {
	u := newTestUnit()
	var firedAt TimePoint

	_, err := u.Spawn("r", func(r *Runner) {
		timer := r.NewTimer(func() { firedAt = r.Now() })
		timer.Start(3 * Second)
		r.WaitFor(timer.ExpiredExpr())
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())
	assert.Equal(t, TimePoint(3*Second), firedAt)
}

func TestTimer_Restart_ReplacesPendingFiring(t *testing.T) {
	u := newTestUnit()
	var fireCount int
	var firedAt TimePoint

	_, err := u.Spawn("r", func(r *Runner) {
		timer := r.NewTimer(func() {
			fireCount++
			firedAt = r.Now()
		})
		timer.Start(5 * Second)
		r.Wait(1 * Second)
		timer.Start(2 * Second) // re-arms for t=1+2=3s, cancels the t=5s firing
		r.WaitFor(timer.ExpiredExpr())
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())
	assert.Equal(t, 1, fireCount)
	assert.Equal(t, TimePoint(3*Second), firedAt)
}

func TestTimer_Stop_PreventsFiring(t *testing.T) {
	u := newTestUnit()
	var fired bool

	_, err := u.Spawn("r", func(r *Runner) {
		timer := r.NewTimer(func() { fired = true })
		timer.Start(5 * Second)
		r.Wait(1 * Second)
		timer.Stop()
		r.Wait(10 * Second)
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())
	assert.False(t, fired)
}

func TestTimer_Armed(t *testing.T) {
	u := newTestUnit()
	var armedBefore, armedAfter bool

	_, err := u.Spawn("r", func(r *Runner) {
		timer := r.NewTimer(nil)
		timer.Start(1 * Second)
		armedBefore = timer.Armed()
		r.WaitFor(timer.ExpiredExpr())
		armedAfter = timer.Armed()
	})
	require.NoError(t, err)
	require.NoError(t, u.Run())
	assert.True(t, armedBefore)
	assert.False(t, armedAfter)
}
