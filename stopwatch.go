package sim

// cmpKind identifies which of the six comparison operators a Stopwatch
// expression leaf evaluates (spec.md §4.J).
type cmpKind int

const (
	cmpLt cmpKind = iota
	cmpLe
	cmpGt
	cmpGe
	cmpEq
	cmpNe
)

func (op cmpKind) value(lap, target Duration) bool {
	switch op {
	case cmpLt:
		return lap < target
	case cmpLe:
		return lap <= target
	case cmpGt:
		return lap > target
	case cmpGe:
		return lap >= target
	case cmpEq:
		return lap == target
	default: // cmpNe
		return lap != target
	}
}

// nextDue computes, given the stopwatch is running with lap at now, the
// next TimePoint at which op's value against target can possibly change.
// ok is false when lap (which only increases while running) has already
// passed the point where op could ever flip again.
func (op cmpKind) nextDue(now TimePoint, lap, target Duration) (due TimePoint, ok bool) {
	switch op {
	case cmpLt, cmpGe:
		// Both flip at the single instant lap reaches target.
		if lap >= target {
			return 0, false
		}
		return now.Add(target - lap), true
	case cmpLe, cmpGt:
		// Both flip at the first instant strictly after lap reaches target.
		if lap > target {
			return 0, false
		}
		return now.Add(target - lap + SmallestNonZero), true
	case cmpEq, cmpNe:
		if lap > target {
			return 0, false
		}
		return now.Add(target - lap), true
	}
	return 0, false
}

// cmpExpr is one Stopwatch comparison operator, exposed as an Expr[bool]
// leaf. It owns a Job on its stopwatch's runner heap purely to force a
// re-check of Value() at the instant the comparison can flip; Value()
// itself is always computed live from the stopwatch's current lap, never
// cached, so the Job firing late or not at all (e.g. Stop() cancels it)
// never produces a stale read, only a missed proactive wakeup.
type cmpExpr struct {
	sw     *Stopwatch
	op     cmpKind
	target Duration

	job       *Job
	firedOnce bool

	subs leafRegistry
}

func (c *cmpExpr) Value() bool { return c.op.value(c.sw.Lap(), c.target) }

func (c *cmpExpr) enable(_ *Runner, cond *Condition) {
	c.subs.subscribe(cond)
	c.armIfNeeded()
}

func (c *cmpExpr) disable(cond *Condition) {
	c.subs.unsubscribe(cond)
	if c.subs.empty() {
		c.cancel()
	}
}

func (c *cmpExpr) armIfNeeded() {
	if c.subs.empty() || !c.sw.running || c.job.Armed() {
		return
	}
	now := c.sw.runner.Now()
	due, ok := c.op.nextDue(now, c.sw.Lap(), c.target)
	if !ok {
		return
	}
	if due <= now {
		due = now.Add(SmallestNonZero)
	}
	c.firedOnce = false
	c.sw.runner.ArmJob(c.job, due)
}

func (c *cmpExpr) cancel() {
	if c.job.Armed() {
		c.sw.runner.CancelJob(c.job)
	}
}

// onDue fires when the job comes due: it notifies subscribers so any
// waiting Condition re-evaluates Value(), then, for Eq/Ne — which are
// true (or false) for only a single instant as lap sweeps past target —
// arms one more immediate follow-up so the condition system also notices
// the very next instant's flip back.
func (c *cmpExpr) onDue(j *Job) {
	c.subs.notify()
	if (c.op == cmpEq || c.op == cmpNe) && !c.firedOnce {
		c.firedOnce = true
		c.sw.runner.ArmJob(c.job, c.sw.runner.Now().Add(SmallestNonZero))
	}
}

// Stopwatch measures elapsed simulated time from Start to Stop, resumable
// across multiple Start/Stop cycles via accumulated lap time (spec.md
// §4.J), and exposes reactive comparisons of that lap against constant
// targets.
type Stopwatch struct {
	runner *Runner

	running     bool
	startedAt   TimePoint
	accumulated Duration

	ops []*cmpExpr
}

// NewStopwatch constructs a stopped Stopwatch owned by r. r determines
// which runner's job heap backs its comparison operators' wakeups, which
// need not be the runner currently executing when Start/Stop is called.
func (r *Runner) NewStopwatch() *Stopwatch {
	return &Stopwatch{runner: r}
}

// Lap returns the accumulated elapsed duration as of now.
func (sw *Stopwatch) Lap() Duration {
	if sw.running {
		return sw.accumulated + sw.runner.Now().Sub(sw.startedAt)
	}
	return sw.accumulated
}

// Running reports whether the stopwatch is currently running.
func (sw *Stopwatch) Running() bool { return sw.running }

// Start begins (or resumes) timing. A no-op if already running.
func (sw *Stopwatch) Start() {
	if sw.running {
		return
	}
	sw.running = true
	sw.startedAt = sw.runner.Now()
	for _, op := range sw.ops {
		op.armIfNeeded()
	}
}

// Stop pauses timing, freezing Lap at its current value. A no-op if
// already stopped.
func (sw *Stopwatch) Stop() {
	if !sw.running {
		return
	}
	sw.accumulated = sw.Lap()
	sw.running = false
	for _, op := range sw.ops {
		op.cancel()
	}
}

// Reset zeroes accumulated lap time, notifies every live comparison that
// its value may have changed, and optionally restarts.
func (sw *Stopwatch) Reset(restart bool) {
	for _, op := range sw.ops {
		op.cancel()
	}
	sw.accumulated = 0
	sw.running = false
	for _, op := range sw.ops {
		op.subs.notify()
	}
	if restart {
		sw.Start()
	}
}

func (sw *Stopwatch) compare(op cmpKind, target Duration) Expr[bool] {
	c := &cmpExpr{sw: sw, op: op, target: target}
	c.job = NewJob(JobListenerFunc(c.onDue))
	sw.ops = append(sw.ops, c)
	return c
}

func (sw *Stopwatch) Lt(target Duration) Expr[bool] { return sw.compare(cmpLt, target) }
func (sw *Stopwatch) Le(target Duration) Expr[bool] { return sw.compare(cmpLe, target) }
func (sw *Stopwatch) Gt(target Duration) Expr[bool] { return sw.compare(cmpGt, target) }
func (sw *Stopwatch) Ge(target Duration) Expr[bool] { return sw.compare(cmpGe, target) }
func (sw *Stopwatch) Eq(target Duration) Expr[bool] { return sw.compare(cmpEq, target) }
func (sw *Stopwatch) Ne(target Duration) Expr[bool] { return sw.compare(cmpNe, target) }
