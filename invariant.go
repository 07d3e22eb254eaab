package sim

// Invariant continuously watches an Expr[bool] for the lifetime between
// Start and Stop, and latches permanently violated the first instant the
// expression is observed false (spec.md §4.L). Unlike ExprCondition, it
// never wakes anything — it exists purely to record and log a violation
// for the postamble to report.
type Invariant struct {
	unit    *Unit
	runner  *Runner
	cond    *Condition
	context string

	holds bool
}

// NewInvariant constructs an Invariant over expr, scoped to r, described
// by context (used in the violation log line, e.g. "queue never overflows").
// It does not start watching until Start is called.
func (u *Unit) NewInvariant(r *Runner, expr Expr[bool], context string) *Invariant {
	inv := &Invariant{unit: u, runner: r, context: context, holds: true}
	inv.cond = newCondition(r, expr, inv.check)
	return inv
}

// Start enables watching and immediately probes the current value: an
// invariant that is already false the moment it's started is reported as
// violated right away, rather than only on the next change.
func (inv *Invariant) Start() {
	inv.cond.Enable()
	inv.check()
}

// Stop disables watching. A final probe runs first, so a violation that
// occurs on the exact same step as Stop is still caught.
func (inv *Invariant) Stop() {
	inv.check()
	inv.cond.Disable()
}

// Holds reports whether the invariant has held for its entire watched
// lifetime so far. Once false, it never becomes true again.
func (inv *Invariant) Holds() bool { return inv.holds }

func (inv *Invariant) check() {
	if !inv.holds {
		return
	}
	if !inv.cond.IsFulfilled() {
		inv.holds = false
		inv.unit.reportInvariantViolation(inv)
	}
}
