package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondition_EnableDisable_IdempotentDisable(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	v := NewValue(false)
	c := newCondition(r, v.Expr(), func() {})
	c.Enable()
	assert.NotPanics(t, func() { c.Disable() })
	assert.NotPanics(t, func() { c.Disable() }) // idempotent
}

func TestCondition_DoubleEnable_Panics(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	v := NewValue(false)
	c := newCondition(r, v.Expr(), func() {})
	c.Enable()
	defer c.Disable()
	assert.Panics(t, func() { c.Enable() })
}

func TestCondition_OnChange_OnlyFiresWhileEnabled(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	var fires int
	v := NewValue(false)
	c := newCondition(r, v.Expr(), func() { fires++ })

	v.Set(true) // not enabled yet: no subscription exists
	assert.Equal(t, 0, fires)

	v.Set(false)
	c.Enable()
	v.Set(true)
	assert.Equal(t, 1, fires)

	c.Disable()
	v.Set(false)
	v.Set(true)
	assert.Equal(t, 1, fires)
}

func TestExprCondition_WakesRunnerOnFulfillment(t *testing.T) {
	u := newTestUnit()
	var done bool

	v := NewValue(false)
	_, err := u.Spawn("r", func(r *Runner) {
		r.WaitFor(v.Expr())
		done = true
	})
	require.NoError(t, err)

	_, err = u.Spawn("s", func(r *Runner) {
		r.Wait(Second)
		v.Set(true)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.True(t, done)
}
