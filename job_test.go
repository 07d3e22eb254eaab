package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobHeap_PopOrdersByDueThenInsertion(t *testing.T) {
	h := newJobHeap()

	var order []string
	mk := func(name string) *Job {
		return NewJob(JobListenerFunc(func(j *Job) { order = append(order, name) }))
	}

	// same due time: insertion order must break the tie.
	a, b, c := mk("a"), mk("b"), mk("c")
	h.push(a, TimePoint(5*Second))
	h.push(b, TimePoint(5*Second))
	h.push(c, TimePoint(2*Second))

	require.Equal(t, c, h.peek())
	assert.Equal(t, c, h.pop())
	assert.Equal(t, a, h.pop()) // a before b: inserted first at the same due time
	assert.Equal(t, b, h.pop())
	assert.True(t, h.isEmpty())
}

func TestJobHeap_Push_PanicsOnDoubleArm(t *testing.T) {
	h := newJobHeap()
	j := NewJob(nil)
	h.push(j, TimePoint(Second))
	assert.Panics(t, func() { h.push(j, TimePoint(2*Second)) })
}

func TestJobHeap_Push_PanicsAtCapacity(t *testing.T) {
	h := newJobHeap()
	for i := 0; i < jobQueueCapacity; i++ {
		h.push(NewJob(nil), TimePoint(int64(i)*int64(Second)))
	}
	assert.False(t, h.isAvailable())
	assert.Panics(t, func() { h.push(NewJob(nil), TimePoint(Second)) })
}

func TestJobHeap_Pop_PanicsWhenEmpty(t *testing.T) {
	h := newJobHeap()
	assert.Panics(t, func() { h.pop() })
}

func TestJobHeap_Remove_FiresListenerIfAlreadyDue(t *testing.T) {
	h := newJobHeap()
	var fired bool
	j := NewJob(JobListenerFunc(func(*Job) { fired = true }))
	h.push(j, TimePoint(3*Second))

	h.remove(j, TimePoint(3*Second)) // due <= now: fires on the removing goroutine
	assert.True(t, fired)
	assert.False(t, j.Armed())
	assert.True(t, h.isEmpty())
}

func TestJobHeap_Remove_SilentWhenNotYetDue(t *testing.T) {
	h := newJobHeap()
	var fired bool
	j := NewJob(JobListenerFunc(func(*Job) { fired = true }))
	h.push(j, TimePoint(10*Second))

	h.remove(j, TimePoint(3*Second)) // due > now: plain cancellation, no firing
	assert.False(t, fired)
	assert.False(t, j.Armed())
}

func TestJobHeap_Remove_NoopIfNotArmed(t *testing.T) {
	h := newJobHeap()
	j := NewJob(nil)
	h.remove(j, TimePoint(Second)) // never pushed: must not panic
	assert.False(t, j.Armed())
}
