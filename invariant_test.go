package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvariant_HoldsUntilViolated(t *testing.T) {
	u := newTestUnit()
	v := NewValue(true)

	_, err := u.Spawn("r", func(r *Runner) {
		inv := u.NewInvariant(r, v.Expr(), "v stays true")
		inv.Start()
		r.Wait(2 * Second)
		assert.True(t, inv.Holds())
		v.Set(false)
		assert.False(t, inv.Holds())
		inv.Stop()
	})
	require.NoError(t, err)

	err = u.Run()
	require.Error(t, err)
	assert.Len(t, u.invariantViolations, 1)
}

func TestInvariant_LatchesPermanently(t *testing.T) {
	u := newTestUnit()
	v := NewValue(true)

	_, err := u.Spawn("r", func(r *Runner) {
		inv := u.NewInvariant(r, v.Expr(), "latched")
		inv.Start()
		v.Set(false)
		v.Set(true) // recovers, but the invariant already latched false
		assert.False(t, inv.Holds())
		inv.Stop()
	})
	require.NoError(t, err)
	require.Error(t, u.Run())
}

func TestInvariant_ViolatedImmediatelyOnStart(t *testing.T) {
	u := newTestUnit()
	v := NewValue(false)

	_, err := u.Spawn("r", func(r *Runner) {
		inv := u.NewInvariant(r, v.Expr(), "already false")
		inv.Start()
		assert.False(t, inv.Holds())
		inv.Stop()
	})
	require.NoError(t, err)
	require.Error(t, u.Run())
}

func TestInvariant_PassingScenarioReturnsNilError(t *testing.T) {
	u := newTestUnit()
	v := NewValue(true)

	_, err := u.Spawn("r", func(r *Runner) {
		inv := u.NewInvariant(r, v.Expr(), "always true")
		inv.Start()
		r.Wait(Second)
		inv.Stop()
	})
	require.NoError(t, err)
	assert.NoError(t, u.Run())
	assert.True(t, u.Passed())
}
