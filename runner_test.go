package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunner_ValidatesName(t *testing.T) {
	u := newTestUnit()

	_, err := NewRunner(u, "")
	assert.ErrorIs(t, err, ErrEmptyRunner)

	_, err = NewRunner(u, "toolong")
	assert.ErrorIs(t, err, ErrRunnerTooLong)

	r, err := NewRunner(u, "abcd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", r.Name())
}

func TestUnit_Spawn_RejectsNilProcess(t *testing.T) {
	u := newTestUnit()
	_, err := u.Spawn("r1", nil)
	assert.ErrorIs(t, err, ErrNilScenario)
}

func TestRunner_WaitFor_WakesOnConditionBecomingTrue(t *testing.T) {
	u := newTestUnit()
	var reachedAt TimePoint

	v := NewValue(false)
	_, err := u.Spawn("wait", func(r *Runner) {
		r.WaitFor(v.Expr())
		reachedAt = r.Now()
	})
	require.NoError(t, err)

	_, err = u.Spawn("push", func(r *Runner) {
		r.Wait(4 * Second)
		v.Set(true)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Equal(t, TimePoint(4*Second), reachedAt)
}

func TestRunner_WaitForTimeout_ReportsTimeout(t *testing.T) {
	u := newTestUnit()
	var timedOut bool

	v := NewValue(false)
	_, err := u.Spawn("wait", func(r *Runner) {
		timedOut = r.WaitForTimeout(v.Expr(), 2*Second)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.True(t, timedOut)
}

func TestRunner_WaitForTimeout_FalseWhenConditionWinsRace(t *testing.T) {
	u := newTestUnit()
	var timedOut bool

	v := NewValue(false)
	_, err := u.Spawn("wait", func(r *Runner) {
		timedOut = r.WaitForTimeout(v.Expr(), 10*Second)
	})
	require.NoError(t, err)

	_, err = u.Spawn("push", func(r *Runner) {
		r.Wait(1 * Second)
		v.Set(true)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.False(t, timedOut)
}

func TestRunner_ArmJob_FiresDuringLongerWait(t *testing.T) {
	u := newTestUnit()
	var fired TimePoint

	_, err := u.Spawn("r", func(r *Runner) {
		j := NewJob(JobListenerFunc(func(j *Job) {
			fired = r.Now()
		}))
		// The runner is about to wait far longer than the job's due time;
		// Wait must size its sleep to the armed job's due time so the job
		// fires at 2s rather than after the long wait elapses.
		r.ArmJob(j, r.Now().Add(2*Second))
		r.Wait(100 * Second)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Equal(t, TimePoint(2*Second), fired)
}

func TestRunner_CancelJob_FiresIfAlreadyDue(t *testing.T) {
	u := newTestUnit()
	var firedCount int

	_, err := u.Spawn("r", func(r *Runner) {
		j := NewJob(JobListenerFunc(func(j *Job) { firedCount++ }))
		r.ArmJob(j, r.Now())
		r.CancelJob(j) // due <= now: fires once before detaching
		r.CancelJob(j) // already detached: no-op
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Equal(t, 1, firedCount)
}

func TestRunner_Section_TracksNestedPath(t *testing.T) {
	u := newTestUnit()
	var path string

	_, err := u.Spawn("r", func(r *Runner) {
		closeOuter := r.Section("outer")
		closeInner := r.Section("inner")
		path = r.sectionPath()
		closeInner()
		closeOuter()
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Equal(t, "outer/inner", path)
}

func TestRunner_UserData_PersistsAcrossAccesses(t *testing.T) {
	u := newTestUnit()
	var a, b *UserDataSlot

	_, err := u.Spawn("r", func(r *Runner) {
		a = r.UserData("k")
		a.Value = 7
		b = r.UserData("k")
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Same(t, a, b)
	assert.Equal(t, 7, b.Value)
}
