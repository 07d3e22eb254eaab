package sim

// coroutineStatus is the reason a Coroutine handed control back to the
// Scheduler (spec.md §4.C/§4.D).
type coroutineStatus int

const (
	statusYield coroutineStatus = iota
	statusSleep
	statusExit
)

// switchMsg is what a Coroutine sends the Scheduler when it suspends.
type switchMsg struct {
	status   coroutineStatus
	sleepFor Duration
}

// Coroutine is one stackful cooperative task (spec.md §4.C). Go has no
// native stackful-coroutine primitive; per spec.md §9 this uses one
// goroutine per Coroutine, rendezvousing with the Scheduler over a pair of
// unbuffered channels, so every suspension point stays an explicit,
// observable blocking operation — the same single-active-task invariant
// the teacher's single-threaded eventloop.Loop relies on, realized with
// goroutines standing in for ucontext-style fibers.
type Coroutine struct {
	name string

	resume  chan struct{}
	suspend chan switchMsg

	wakeEvent       bool
	sleepingInf     bool
	sleepHeapHandle *sleepEntry // set while parked in the scheduler's sleep heap

	exited bool
}

func newCoroutine(name string) *Coroutine {
	return &Coroutine{
		name:    name,
		resume:  make(chan struct{}),
		suspend: make(chan switchMsg),
	}
}

// start launches fn on a new goroutine. fn must call back into the
// Coroutine's Wait/Yield methods at its suspension points; it must not
// retain control between them. The exit is reported to the Scheduler
// when fn returns. start does not itself resume fn; the Scheduler drives
// that via its run loop.
func (c *Coroutine) start(fn func()) {
	go func() {
		<-c.resume
		fn()
		c.doExit()
	}()
}

// Wait suspends the coroutine until duration d elapses or it is woken
// explicitly. It returns true iff the wake cause was the timeout elapsing
// (spec.md §4.C). Infinity means "never timeout"; it may still be woken.
func (c *Coroutine) Wait(d Duration) bool {
	c.wakeEvent = false
	c.suspend <- switchMsg{status: statusSleep, sleepFor: d}
	<-c.resume
	return !c.wakeEvent
}

// Yield pushes the coroutine to the tail of the scheduler's run-queue and
// suspends until it is resumed.
func (c *Coroutine) Yield() {
	c.suspend <- switchMsg{status: statusYield}
	<-c.resume
}

// doExit reports the coroutine's exit to the scheduler. The scheduler
// never resumes the coroutine again, and the goroutine backing it
// terminates as soon as doExit returns.
func (c *Coroutine) doExit() {
	c.exited = true
	c.suspend <- switchMsg{status: statusExit}
}

// Exited reports whether the coroutine has finished running.
func (c *Coroutine) Exited() bool { return c.exited }
