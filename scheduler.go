package sim

import "container/heap"

// sleepEntry is one Coroutine parked in the Scheduler's global sleep-queue,
// keyed by wake-up TimePoint (spec.md §4.D).
type sleepEntry struct {
	co        *Coroutine
	wakeAt    TimePoint
	seq       uint64
	heapIndex int
}

// sleepHeap is a min-heap by wakeAt with insertion-order tie-break,
// grounded the same way as jobHeap on teacherref/eventloop/loop.go's
// timerHeap (container/heap over a due-time-ordered slice).
type sleepHeap struct {
	items []*sleepEntry
	next  uint64
}

func (h *sleepHeap) Len() int { return len(h.items) }
func (h *sleepHeap) Less(i, k int) bool {
	if h.items[i].wakeAt != h.items[k].wakeAt {
		return h.items[i].wakeAt < h.items[k].wakeAt
	}
	return h.items[i].seq < h.items[k].seq
}
func (h *sleepHeap) Swap(i, k int) {
	h.items[i], h.items[k] = h.items[k], h.items[i]
	h.items[i].heapIndex = i
	h.items[k].heapIndex = k
}
func (h *sleepHeap) Push(x any) {
	e := x.(*sleepEntry)
	e.heapIndex = len(h.items)
	h.items = append(h.items, e)
}
func (h *sleepHeap) Pop() any {
	n := len(h.items)
	e := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	e.heapIndex = -1
	return e
}

func (h *sleepHeap) insert(co *Coroutine, wakeAt TimePoint) *sleepEntry {
	e := &sleepEntry{co: co, wakeAt: wakeAt, seq: h.next}
	h.next++
	heap.Push(h, e)
	co.sleepHeapHandle = e
	return e
}

func (h *sleepHeap) peek() *sleepEntry {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

func (h *sleepHeap) popMin() *sleepEntry {
	e := heap.Pop(h).(*sleepEntry)
	e.co.sleepHeapHandle = nil
	return e
}

// removeCoroutine detaches co from the heap if present, reporting success.
func (h *sleepHeap) removeCoroutine(co *Coroutine) bool {
	e := co.sleepHeapHandle
	if e == nil || e.heapIndex < 0 {
		return false
	}
	heap.Remove(h, e.heapIndex)
	co.sleepHeapHandle = nil
	return true
}

// Scheduler owns the logical clock, the global run-queue, and the global
// sleep-queue, and drives the clock forward (spec.md §4.D). It is the
// single point in the whole harness that advances simulated time, and it
// only ever does so in selectNext, never mid-step — the property
// spec.md §9's "logical clock advancement correctness" note calls out.
type Scheduler struct {
	clock Clock

	runQueue   []*Coroutine
	sleepQueue sleepHeap
	infCount   int

	current *Coroutine
}

// NewScheduler constructs an idle Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() TimePoint { return s.clock.Now() }

// spawn registers a new Coroutine as immediately runnable.
func (s *Scheduler) spawn(co *Coroutine, fn func()) {
	co.start(fn)
	s.runQueue = append(s.runQueue, co)
}

// Run drives the scheduler loop to completion (spec.md §4.D): while a
// coroutine can be selected, resume it, wait for it to suspend, and
// requeue/park it per its suspension reason. Returns once every coroutine
// has exited, or once only infinitely-sleeping coroutines remain (which,
// absent an external wakeup, can never happen again — spec.md's
// non-goals exclude real concurrency, so nothing outside the scheduler
// can wake them once Run returns).
func (s *Scheduler) Run() {
	for {
		next := s.selectNext()
		if next == nil {
			return
		}
		s.current = next
		next.resume <- struct{}{}
		msg := <-next.suspend
		s.current = nil

		switch msg.status {
		case statusYield:
			s.runQueue = append(s.runQueue, next)
		case statusSleep:
			s.park(next, msg.sleepFor)
		case statusExit:
			// dropped: nothing references it any more but whatever
			// runner/job state referenced it is cleaned up by the caller.
		}
	}
}

func (s *Scheduler) park(co *Coroutine, d Duration) {
	if d == Infinity {
		co.sleepingInf = true
		s.infCount++
		return
	}
	s.sleepQueue.insert(co, s.clock.Now().Add(d))
}

// selectNext implements spec.md §4.D's three-step selection: run-queue
// first, then the sleep-queue (advancing the clock to the popped entry's
// wake time, or jumping to EndOfEpoch if that's what it holds), then
// falling back to EndOfEpoch if only infinite sleepers remain.
func (s *Scheduler) selectNext() *Coroutine {
	if len(s.runQueue) > 0 {
		co := s.runQueue[0]
		s.runQueue = s.runQueue[1:]
		return co
	}
	if e := s.sleepQueue.peek(); e != nil {
		if e.wakeAt == EndOfEpoch {
			s.clock.jumpToEndOfEpoch()
			return nil
		}
		s.clock.advanceTo(e.wakeAt)
		return s.sleepQueue.popMin().co
	}
	if s.infCount > 0 {
		s.clock.jumpToEndOfEpoch()
		return nil
	}
	return nil
}

// Wakeup makes co runnable again. Calling it on the currently-running
// coroutine is a no-op (spec.md §4.C's invariant: "wakeup is valid only
// when the task is waiting"). Removes co from whichever queue parked it.
func (s *Scheduler) Wakeup(co *Coroutine) {
	if co == s.current || co.exited {
		return
	}
	if co.sleepingInf {
		co.sleepingInf = false
		s.infCount--
		co.wakeEvent = true
		s.runQueue = append(s.runQueue, co)
		return
	}
	if s.sleepQueue.removeCoroutine(co) {
		co.wakeEvent = true
		s.runQueue = append(s.runQueue, co)
	}
	// else: not currently parked (e.g. already runnable) — no-op.
}

// WakeupSilent is like Wakeup, but does not set co.wakeEvent. It exists
// for spec.md §4.F's job-heap-change case: a runner's own wait loop needs
// to be interrupted to recompute its next deadline when a job is armed or
// cancelled on its heap, without that interruption being mistaken for an
// explicit/semantic wakeup (which would make Runner.waitInternal return
// early, as if genuinely woken, rather than merely rescheduling its sleep).
func (s *Scheduler) WakeupSilent(co *Coroutine) {
	if co == s.current || co.exited {
		return
	}
	if co.sleepingInf {
		co.sleepingInf = false
		s.infCount--
		s.runQueue = append(s.runQueue, co)
		return
	}
	if s.sleepQueue.removeCoroutine(co) {
		s.runQueue = append(s.runQueue, co)
	}
}
