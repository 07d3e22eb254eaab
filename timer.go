package sim

// Timer is a one-shot, restartable alarm backed by a single Job (spec.md
// §4.K). Starting an already-armed Timer re-arms it at the new due time
// rather than stacking a second firing.
type Timer struct {
	runner *Runner
	job    *Job
	onFire func()

	fired bool
	subs  leafRegistry
}

// NewTimer constructs a disarmed Timer owned by r. onFire, if non-nil, is
// invoked synchronously (on r's coroutine, via the usual job-draining
// path) the instant the timer comes due; it may be nil for callers that
// only want to observe Expired() reactively.
func (r *Runner) NewTimer(onFire func()) *Timer {
	t := &Timer{runner: r, onFire: onFire}
	t.job = NewJob(JobListenerFunc(t.onDue))
	return t
}

// Start arms the timer to fire after d, cancelling and replacing any
// currently pending firing.
func (t *Timer) Start(d Duration) {
	if t.job.Armed() {
		t.runner.CancelJob(t.job)
	}
	t.fired = false
	t.runner.ArmJob(t.job, t.runner.Now().Add(d))
}

// Stop disarms the timer without firing it (unless it is already exactly
// due, per jobHeap.remove's contract — spec.md §4.E).
func (t *Timer) Stop() {
	if t.job.Armed() {
		t.runner.CancelJob(t.job)
	}
}

// Armed reports whether the timer currently has a pending firing.
func (t *Timer) Armed() bool { return t.job.Armed() }

// Expired reports whether the timer has fired since it was last started.
func (t *Timer) Expired() bool { return t.fired }

// ExpiredExpr exposes Expired as a reactive Expr leaf.
func (t *Timer) ExpiredExpr() Expr[bool] { return (*timerExpiredExpr)(t) }

func (t *Timer) onDue(*Job) {
	t.fired = true
	if t.onFire != nil {
		t.onFire()
	}
	t.subs.notify()
}

type timerExpiredExpr Timer

func (t *timerExpiredExpr) Value() bool                      { return t.fired }
func (t *timerExpiredExpr) enable(_ *Runner, c *Condition) { t.subs.subscribe(c) }
func (t *timerExpiredExpr) disable(c *Condition)           { t.subs.unsubscribe(c) }
