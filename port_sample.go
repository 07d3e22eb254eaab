package sim

// SamplePort holds the most recently pushed value of a Signal it is
// connected to (spec.md §4.I: "sample = latest value"). Reading it never
// blocks and never consumes; every push simply overwrites the prior
// value and notifies anything watching it reactively, whether or not the
// value actually differs from before — a push is itself the event of
// interest, not just a change in value.
type SamplePort[T any] struct {
	owner *Runner
	name  string

	has  bool
	v    T
	subs leafRegistry
}

// NewSamplePort constructs an unset SamplePort. owner is used only for log
// attribution (spec.md §6's PUSH records are tagged with the owning
// runner's section path).
func NewSamplePort[T any](owner *Runner, name string) *SamplePort[T] {
	return &SamplePort[T]{owner: owner, name: name}
}

func (p *SamplePort[T]) deliver(v T) {
	p.has = true
	p.v = v
	if p.owner != nil && p.owner.unit != nil {
		p.owner.unit.logEvent(levelInfo, p.owner, "PUSH", "port", p.name, "value", v)
	}
	p.subs.notify()
}

// Get returns the latest delivered value and whether any value has ever
// been delivered.
func (p *SamplePort[T]) Get() (T, bool) { return p.v, p.has }

// Expr exposes the port's current value as a reactive Expr leaf. Reading
// it before any value has been delivered yields the zero value of T.
func (p *SamplePort[T]) Expr() Expr[T] { return (*samplePortExpr[T])(p) }

type samplePortExpr[T any] SamplePort[T]

func (p *samplePortExpr[T]) Value() T { return p.v }
func (p *samplePortExpr[T]) enable(_ *Runner, c *Condition) {
	p.subs.subscribe(c)
}
func (p *samplePortExpr[T]) disable(c *Condition) {
	p.subs.unsubscribe(c)
}
