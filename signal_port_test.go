package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplePort_HoldsLatestValue(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	sig := NewSignal[int]("s")
	p := NewSamplePort[int](r, "p")
	sig.Connect(p)

	_, ok := p.Get()
	assert.False(t, ok)

	sig.Push(1)
	sig.Push(2)
	v, ok := p.Get()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSamplePort_NotifiesOnEveryPushRegardlessOfChange(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	p := NewSamplePort[int](r, "p")
	var notifications int
	c := newCondition(r, p.Expr(), func() { notifications++ })
	c.Enable()
	defer c.Disable()

	p.deliver(5)
	p.deliver(5) // same value: still a distinct push event
	assert.Equal(t, 2, notifications)
}

func TestQueuePort_FIFOOrder(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	p := NewQueuePort[int](r, "q")
	p.deliver(1)
	p.deliver(2)
	p.deliver(3)

	assert.Equal(t, 3, p.Size())
	v, ok := p.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	v, _ = p.Pop()
	assert.Equal(t, 2, v)
}

func TestQueuePort_OverflowEvictsOldestAndCountsLost(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	p := NewQueuePortCapacity[int](r, "q", 2)
	p.deliver(1)
	p.deliver(2)
	p.deliver(3) // evicts 1

	assert.Equal(t, 1, p.LostCount())
	v, ok := p.Pop()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestQueuePort_Pop_EmptyReportsFalse(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	p := NewQueuePort[int](r, "q")
	_, ok := p.Pop()
	assert.False(t, ok)
	assert.False(t, p.IsAvailable())
}

func TestQueuePort_IsAvailableExpr_TracksState(t *testing.T) {
	u := newTestUnit()
	r, err := NewRunner(u, "r")
	require.NoError(t, err)

	p := NewQueuePort[int](r, "q")
	expr := p.IsAvailableExpr()
	assert.False(t, expr.Value())

	p.deliver(1)
	assert.True(t, expr.Value())
}

func TestRunner_WaitFor_WakesOnQueuePushViaSignal(t *testing.T) {
	u := newTestUnit()
	var gotValue int

	sig := NewSignal[int]("events")
	_, err := u.Spawn("cons", func(r *Runner) {
		port := NewQueuePort[int](r, "inbox")
		sig.Connect(port)
		r.WaitFor(port.IsAvailableExpr())
		v, _ := port.Pop()
		gotValue = v
	})
	require.NoError(t, err)

	_, err = u.Spawn("prod", func(r *Runner) {
		r.Wait(3 * Second)
		sig.Push(99)
	})
	require.NoError(t, err)

	require.NoError(t, u.Run())
	assert.Equal(t, 99, gotValue)
}
