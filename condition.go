package sim

// Condition is the reactive node spec.md §4.G describes: it wraps an
// Expr[bool], registers with every leaf the expression touches while
// enabled, and invokes onChange whenever any of those leaves reports a
// change. It is fail-closed: Enable/Disable are the only way leaves get
// (de)registered, and querying IsFulfilled never has side effects.
//
// ExprCondition (Runner.WaitForTimeout's use) and Invariant (invariant.go)
// are both just Conditions wired to a different onChange callback — a
// waiter wakes its runner, an invariant rechecks and records a violation.
type Condition struct {
	runner  *Runner
	expr    Expr[bool]
	enabled bool
	onChange func()
}

func newCondition(r *Runner, expr Expr[bool], onChange func()) *Condition {
	return &Condition{runner: r, expr: expr, onChange: onChange}
}

// Enable registers this Condition with every leaf of its expression. It
// panics on double-enable (spec.md §4.G: enabling twice is a caller bug,
// not a recoverable condition).
func (c *Condition) Enable() {
	if c.enabled {
		panic(&InternalInvariantError{Op: "Condition.Enable", Msg: "condition already enabled"})
	}
	c.enabled = true
	c.expr.enable(c.runner, c)
}

// Disable unregisters this Condition from every leaf. It is idempotent
// (spec.md §4.G), so deferred Disable calls are always safe even after an
// earlier explicit Disable.
func (c *Condition) Disable() {
	if !c.enabled {
		return
	}
	c.enabled = false
	c.expr.disable(c)
}

// IsFulfilled evaluates the underlying expression. Safe to call whether or
// not the Condition is enabled.
func (c *Condition) IsFulfilled() bool { return c.expr.Value() }

// onLeafChanged is called by a subscribed leaf's registry when its value
// changes. It only reacts while enabled, since a leaf may fire this after
// Disable has already run (e.g. a queued notification from a prior
// change) if the caller holds a stale reference.
func (c *Condition) onLeafChanged() {
	if c.enabled && c.onChange != nil {
		c.onChange()
	}
}

// ExprCondition is a Condition that wakes its owning Runner the moment its
// expression becomes fulfilled (spec.md §4.F's wait(expr, timeout)).
type ExprCondition struct {
	*Condition
}

func newExprCondition(r *Runner, expr Expr[bool]) *ExprCondition {
	ec := &ExprCondition{}
	ec.Condition = newCondition(r, expr, func() {
		if ec.IsFulfilled() {
			r.scheduler().Wakeup(r.coroutine)
		}
	})
	return ec
}
