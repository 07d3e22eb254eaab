package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_PureTimeWait_AdvancesClockExactly(t *testing.T) {
	s := NewScheduler()
	var observed []TimePoint

	co := newCoroutine("a")
	s.spawn(co, func() {
		observed = append(observed, s.Now())
		co.Wait(3 * Second)
		observed = append(observed, s.Now())
		co.Wait(2 * Second)
		observed = append(observed, s.Now())
	})

	s.Run()

	require.Len(t, observed, 3)
	assert.Equal(t, TimePoint(0), observed[0])
	assert.Equal(t, TimePoint(3*Second), observed[1])
	assert.Equal(t, TimePoint(5*Second), observed[2])
}

func TestScheduler_TwoCoroutines_InterleaveByDueTime(t *testing.T) {
	s := NewScheduler()
	var order []string

	fast := newCoroutine("fast")
	s.spawn(fast, func() {
		fast.Wait(1 * Second)
		order = append(order, "fast")
	})
	slow := newCoroutine("slow")
	s.spawn(slow, func() {
		slow.Wait(5 * Second)
		order = append(order, "slow")
	})

	s.Run()

	assert.Equal(t, []string{"fast", "slow"}, order)
}

func TestScheduler_Wakeup_ReturnsEarlyFromWait(t *testing.T) {
	s := NewScheduler()
	var timedOut bool

	var waiter *Coroutine
	waiter = newCoroutine("w")
	s.spawn(waiter, func() {
		timedOut = waiter.Wait(Infinity)
	})

	waker := newCoroutine("k")
	s.spawn(waker, func() {
		waker.Wait(1 * Second)
		s.Wakeup(waiter)
	})

	s.Run()

	assert.False(t, timedOut)
}

func TestScheduler_Wakeup_OnRunningCoroutineIsNoop(t *testing.T) {
	s := NewScheduler()
	co := newCoroutine("self")
	s.spawn(co, func() {
		s.Wakeup(co) // no-op: co is s.current right now
	})
	assert.NotPanics(t, func() { s.Run() })
}

func TestScheduler_WakeupSilent_CutsSleepShortWithoutWakeEvent(t *testing.T) {
	s := NewScheduler()
	var timedOut bool

	co := newCoroutine("c")
	s.spawn(co, func() {
		timedOut = co.Wait(5 * Second)
	})

	other := newCoroutine("other")
	s.spawn(other, func() {
		other.Wait(1 * Second)
		s.WakeupSilent(co)
	})

	s.Run()

	// WakeupSilent requeues co immediately (clock never reaches the
	// original 5s deadline) but never sets wakeEvent, so co.Wait reports
	// as if it timed out — waitInternal relies on reading wakeEvent
	// itself rather than trusting this return value.
	assert.True(t, timedOut)
	assert.False(t, co.wakeEvent)
	assert.Equal(t, TimePoint(1*Second), s.Now())
}
