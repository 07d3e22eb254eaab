package sim

import "fmt"

// Runner composes a Coroutine with its own job priority queue, logger
// context, and section/userdata slots (spec.md §3/§4.F). It owns exactly
// one thread of control for the lifetime of a scenario.
type Runner struct {
	name string
	unit *Unit

	coroutine *Coroutine
	jobs      *jobHeap

	currentCondition *ExprCondition

	sectionStack []string
	userdata     map[string]any
}

// NewRunner validates name (non-empty, at most 4 characters per spec.md
// §3) and constructs a Runner bound to u. The returned Runner is not yet
// scheduled; call Unit.Spawn to give it a process body and start it.
func NewRunner(u *Unit, name string) (*Runner, error) {
	if name == "" {
		return nil, ErrEmptyRunner
	}
	if len(name) > 4 {
		return nil, ErrRunnerTooLong
	}
	return &Runner{
		name:      name,
		unit:      u,
		coroutine: newCoroutine(name),
		jobs:      newJobHeap(),
		userdata:  make(map[string]any),
	}, nil
}

// Name returns the runner's (<=4 char) display name.
func (r *Runner) Name() string { return r.name }

// Unit returns the owning scenario manager.
func (r *Runner) Unit() *Unit { return r.unit }

// Now returns the current simulated time, as seen by this runner.
func (r *Runner) Now() TimePoint { return r.unit.scheduler.Now() }

func (r *Runner) scheduler() *Scheduler { return r.unit.scheduler }

// run wraps process so that, once the scenario body returns, the runner
// parks itself waiting forever rather than exiting immediately: this lets
// its own job heap keep draining (stopwatch/timer callbacks it owns) for
// as long as the rest of the scenario is still running, per spec.md §4.F.
func (r *Runner) run(process func(r *Runner)) {
	r.coroutine.start(func() {
		process(r)
		r.Wait(Infinity)
	})
}

// Wait suspends the runner for duration d, or until woken explicitly,
// draining any of the runner's own due jobs along the way. It returns
// true iff it returned because d elapsed (spec.md §4.C/§4.F).
func (r *Runner) Wait(d Duration) bool {
	return r.waitInternal(d, nil)
}

// WaitFor blocks until expr evaluates true, with no timeout.
func (r *Runner) WaitFor(expr Expr[bool]) {
	r.WaitForTimeout(expr, Infinity)
}

// WaitForTimeout blocks until expr evaluates true or timeout elapses,
// returning true iff it returned because the timeout elapsed while expr
// was still false (spec.md §8's `wait(expr, timeout)` property).
func (r *Runner) WaitForTimeout(expr Expr[bool], timeout Duration) bool {
	cond := newExprCondition(r, expr)
	cond.Enable()
	defer cond.Disable()
	r.currentCondition = cond
	defer func() { r.currentCondition = nil }()
	return r.waitInternal(timeout, cond)
}

// waitInternal is spec.md §4.F's wait_internal, verbatim.
func (r *Runner) waitInternal(timeout Duration, cond *ExprCondition) bool {
	r.coroutine.wakeEvent = false
	for timeout > 0 && (cond == nil || !cond.IsFulfilled()) && !r.coroutine.wakeEvent {
		sleepFor := timeout
		if j := r.jobs.peek(); j != nil {
			now := r.scheduler().Now()
			var until Duration
			if j.due <= now {
				until = 0
			} else {
				until = j.due.Sub(now)
			}
			if until < sleepFor {
				sleepFor = until
			}
		}

		before := r.scheduler().Now()
		r.coroutine.Wait(sleepFor)
		if timeout != Infinity {
			elapsed := r.scheduler().Now().Sub(before)
			if elapsed >= timeout {
				timeout = 0
			} else {
				timeout -= elapsed
			}
		}

		for {
			j := r.jobs.peek()
			if j == nil || j.due > r.scheduler().Now() {
				break
			}
			due := r.jobs.pop()
			if due.listener != nil {
				due.listener.OnJobDue(due)
			}
		}
	}
	return (cond == nil || !cond.IsFulfilled()) && !r.coroutine.wakeEvent
}

// Yield pushes the runner to the tail of the run-queue.
func (r *Runner) Yield() { r.coroutine.Yield() }

// Wakeup explicitly wakes this runner if it is currently waiting; a no-op
// if it is running or not suspended (spec.md §4.C).
func (r *Runner) Wakeup() { r.scheduler().Wakeup(r.coroutine) }

// ArmJob arms j on this runner's heap at due, waking the runner (without
// marking it as explicitly woken) so it recomputes its sleep deadline if
// currently waiting — spec.md §4.F: "Adding a job while waiting must wake
// the coroutine so it can recompute the next deadline."
func (r *Runner) ArmJob(j *Job, due TimePoint) {
	r.jobs.push(j, due)
	r.scheduler().WakeupSilent(r.coroutine)
}

// CancelJob detaches j from this runner's heap (executing it first if
// already due, per spec.md §4.E), waking the runner silently to
// recompute its deadline, mirroring ArmJob.
func (r *Runner) CancelJob(j *Job) {
	r.jobs.remove(j, r.scheduler().Now())
	r.scheduler().WakeupSilent(r.coroutine)
}

// Section pushes name onto the runner's section stack for the duration of
// the returned closer, used to group related log lines the way the
// original harness indents a named block of a scenario. Call the
// returned function to pop it; it is safe to defer.
func (r *Runner) Section(name string) func() {
	r.sectionStack = append(r.sectionStack, name)
	depth := len(r.sectionStack)
	r.unit.logSection(r, name, depth)
	return func() {
		if len(r.sectionStack) == depth {
			r.sectionStack = r.sectionStack[:depth-1]
		}
	}
}

// sectionPath renders the current section stack for log prefixes.
func (r *Runner) sectionPath() string {
	if len(r.sectionStack) == 0 {
		return ""
	}
	s := r.sectionStack[0]
	for _, seg := range r.sectionStack[1:] {
		s = fmt.Sprintf("%s/%s", s, seg)
	}
	return s
}

// UserData returns the per-runner slot for key, creating it with zero
// value on first access. Used for, e.g., the implicit InSequence slot
// (spec.md §4.Q).
func (r *Runner) UserData(key string) *UserDataSlot {
	if v, ok := r.userdata[key]; ok {
		return v.(*UserDataSlot)
	}
	slot := &UserDataSlot{}
	r.userdata[key] = slot
	return slot
}

// UserDataSlot is an untyped per-runner storage cell.
type UserDataSlot struct {
	Value any
}
