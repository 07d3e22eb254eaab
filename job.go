package sim

import "container/heap"

// jobQueueCapacity is the hard upper bound named by spec.md §4.E. The
// teacher treats its own timer heap capacity as a design constant rather
// than a configurable knob (teacherref/eventloop/loop.go's timerHeap has
// no runtime-resizable ceiling either), so this is a const, not an Option.
const jobQueueCapacity = 100

// JobListener is invoked when a Job becomes due. It is called with the
// Job already detached from its owning heap.
type JobListener interface {
	OnJobDue(j *Job)
}

// JobListenerFunc adapts a function to JobListener.
type JobListenerFunc func(j *Job)

func (f JobListenerFunc) OnJobDue(j *Job) { f(j) }

// Job is a due-time entry owned by exactly one Runner's priority queue
// (spec.md §3).
type Job struct {
	armed    bool
	due      TimePoint
	listener JobListener

	heapIndex int
	owner     *jobHeap
}

// NewJob constructs a disarmed Job that will invoke listener when it
// becomes due.
func NewJob(listener JobListener) *Job {
	return &Job{listener: listener, heapIndex: -1}
}

// Armed reports whether the job is currently queued in a heap.
func (j *Job) Armed() bool { return j.armed }

// Due returns the job's due time. Only meaningful while Armed.
func (j *Job) Due() TimePoint { return j.due }

// jobHeap is a per-runner min-heap of Jobs ordered by due time, with
// insertion-order tie-breaking (spec.md §3's "ties broken by insertion
// order"). Grounded on teacherref/eventloop/loop.go's timerHeap, which
// uses container/heap the same way, over the same kind of due-time slice.
type jobHeap struct {
	items []*Job
	seq   []uint64 // seq[i] is the insertion sequence of items[i]
	next  uint64
}

func newJobHeap() *jobHeap {
	h := &jobHeap{}
	heap.Init(h)
	return h
}

func (h *jobHeap) Len() int { return len(h.items) }

func (h *jobHeap) Less(i, k int) bool {
	if h.items[i].due != h.items[k].due {
		return h.items[i].due < h.items[k].due
	}
	return h.seq[i] < h.seq[k]
}

func (h *jobHeap) Swap(i, k int) {
	h.items[i], h.items[k] = h.items[k], h.items[i]
	h.seq[i], h.seq[k] = h.seq[k], h.seq[i]
	h.items[i].heapIndex = i
	h.items[k].heapIndex = k
}

func (h *jobHeap) Push(x any) {
	j := x.(*Job)
	j.heapIndex = len(h.items)
	h.items = append(h.items, j)
	h.seq = append(h.seq, h.next)
	h.next++
}

func (h *jobHeap) Pop() any {
	n := len(h.items)
	j := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	h.seq = h.seq[:n-1]
	j.heapIndex = -1
	return j
}

// push arms j at due and inserts it into the heap.
func (h *jobHeap) push(j *Job, due TimePoint) {
	if j.armed {
		panic(&InternalInvariantError{Op: "jobHeap.push", Msg: "job already armed"})
	}
	if len(h.items) >= jobQueueCapacity {
		panic(&InternalInvariantError{Op: "jobHeap.push", Msg: "job queue capacity exceeded"})
	}
	j.due = due
	j.armed = true
	j.owner = h
	heap.Push(h, j)
}

// peek returns the earliest-due job without removing it, or nil if empty.
func (h *jobHeap) peek() *Job {
	if len(h.items) == 0 {
		return nil
	}
	return h.items[0]
}

// pop removes and returns the earliest-due job.
func (h *jobHeap) pop() *Job {
	if len(h.items) == 0 {
		panic(&InternalInvariantError{Op: "jobHeap.pop", Msg: "pop from empty job queue"})
	}
	j := heap.Pop(h).(*Job)
	j.armed = false
	j.owner = nil
	return j
}

// remove detaches j from the heap given its current now. Per spec.md
// §4.E: if the job is already due (due <= now), it is executed once,
// on the removing goroutine, before being detached — this guarantees a
// timer expiring at the instant it's cancelled still fires (spec.md §9).
func (h *jobHeap) remove(j *Job, now TimePoint) {
	if !j.armed || j.owner != h {
		return
	}
	due := j.due
	heap.Remove(h, j.heapIndex)
	j.armed = false
	j.owner = nil
	if due <= now && j.listener != nil {
		j.listener.OnJobDue(j)
	}
}

func (h *jobHeap) isEmpty() bool { return len(h.items) == 0 }

func (h *jobHeap) isAvailable() bool { return len(h.items) < jobQueueCapacity }
