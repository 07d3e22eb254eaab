package sim

import "golang.org/x/exp/constraints"

// Expr is a lazily evaluated, typed expression node (spec.md §4.H). Leaves
// are values, ports, stopwatches, etc; internal nodes are the Binary/Unary
// combinators below. Go has no operator overloading, so where spec.md
// describes "operator overloads synthesize Binary<Op,L,R> nodes" this
// package instead exposes small combinator functions — the Go-idiomatic
// realization of the builder/DSL spec.md §9 recommends in place of deep
// inheritance.
//
// enable/disable are unexported: only the Condition machinery in
// condition.go drives dependency (de)registration; end users only ever
// call Value (indirectly, via a Runner's wait/assert helpers).
type Expr[T any] interface {
	// Value evaluates the expression against current state. It performs
	// no caching: every call walks the tree.
	Value() T

	enable(r *Runner, c *Condition)
	disable(c *Condition)
}

// leafRegistry is the subscription list a leaf node keeps, so that
// multiple concurrently enabled Conditions can share one leaf (spec.md
// §3: "leaves call notify_listener() on change"). Conditions are
// unsubscribed individually, not all-at-once, because a leaf may be
// referenced by more than one live Condition at a time.
type leafRegistry struct {
	subs []*Condition
}

func (lr *leafRegistry) subscribe(c *Condition) {
	lr.subs = append(lr.subs, c)
}

func (lr *leafRegistry) unsubscribe(c *Condition) {
	for i, s := range lr.subs {
		if s == c {
			lr.subs = append(lr.subs[:i], lr.subs[i+1:]...)
			return
		}
	}
}

func (lr *leafRegistry) notify() {
	// snapshot: a listener reacting to this change may itself
	// enable/disable conditions, which would otherwise mutate subs while
	// we're ranging over it.
	subs := append([]*Condition(nil), lr.subs...)
	for _, c := range subs {
		c.onLeafChanged()
	}
}

func (lr *leafRegistry) empty() bool { return len(lr.subs) == 0 }

// constExpr is a Copy-like leaf (spec.md §4.H): a const snapshot with no
// dynamic subscription needed.
type constExpr[T any] struct{ v T }

// Const returns an Expr holding a fixed value.
func Const[T any](v T) Expr[T] { return constExpr[T]{v} }

func (c constExpr[T]) Value() T                     { return c.v }
func (c constExpr[T]) enable(*Runner, *Condition)   {}
func (c constExpr[T]) disable(*Condition)           {}

// Value is an assignable cell leaf (spec.md §3's "Value<T>::Expr"):
// dereferencing it as an Expr implicitly registers for change
// notification (spec.md §4.H's "convertible-to-expr handles").
type Value[T comparable] struct {
	v    T
	subs leafRegistry
}

// NewValue constructs a Value cell initialized to v.
func NewValue[T comparable](v T) *Value[T] { return &Value[T]{v: v} }

// Get returns the cell's current value.
func (c *Value[T]) Get() T { return c.v }

// Set assigns v, notifying any enabled Conditions that reference this
// cell iff the value actually changed.
func (c *Value[T]) Set(v T) {
	if v == c.v {
		return
	}
	c.v = v
	c.subs.notify()
}

// Expr exposes the cell as an Expr leaf.
func (c *Value[T]) Expr() Expr[T] { return (*valueExpr[T])(c) }

type valueExpr[T comparable] Value[T]

func (c *valueExpr[T]) Value() T { return c.v }
func (c *valueExpr[T]) enable(_ *Runner, cond *Condition) {
	c.subs.subscribe(cond)
}
func (c *valueExpr[T]) disable(cond *Condition) {
	c.subs.unsubscribe(cond)
}

// binaryExpr and unaryExpr are the internal nodes of spec.md §4.H's
// "Binary<Op,L,R>"/"Unary<Op,O>" family, generalized as plain combinator
// functions instead of an operator-tagged type per operand pair — Go has
// no operator overloading to synthesize against.
type binaryExpr[A, B, T any] struct {
	l Expr[A]
	r Expr[B]
	f func(A, B) T
}

func (b *binaryExpr[A, B, T]) Value() T {
	// Both operands are always evaluated: spec.md §4.H explicitly rules
	// out short-circuiting && / || because both sides must stay
	// subscribed for either-side changes to re-trigger the condition.
	lv := b.l.Value()
	rv := b.r.Value()
	return b.f(lv, rv)
}

func (b *binaryExpr[A, B, T]) enable(r *Runner, c *Condition) {
	b.l.enable(r, c)
	b.r.enable(r, c)
}

func (b *binaryExpr[A, B, T]) disable(c *Condition) {
	b.l.disable(c)
	b.r.disable(c)
}

// BinaryOp builds a Binary expression node combining l and r via f.
func BinaryOp[A, B, T any](l Expr[A], r Expr[B], f func(A, B) T) Expr[T] {
	return &binaryExpr[A, B, T]{l: l, r: r, f: f}
}

type unaryExpr[A, T any] struct {
	o Expr[A]
	f func(A) T
}

func (u *unaryExpr[A, T]) Value() T                   { return u.f(u.o.Value()) }
func (u *unaryExpr[A, T]) enable(r *Runner, c *Condition) { u.o.enable(r, c) }
func (u *unaryExpr[A, T]) disable(c *Condition)       { u.o.disable(c) }

// UnaryOp builds a Unary expression node transforming o via f.
func UnaryOp[A, T any](o Expr[A], f func(A) T) Expr[T] {
	return &unaryExpr[A, T]{o: o, f: f}
}

// Number constrains the arithmetic combinators, using
// golang.org/x/exp/constraints the same way teacherref/logiface and
// teacherref/catrate do for their own generic numeric code.
type Number interface {
	constraints.Integer | constraints.Float
}

func Add[T Number](l, r Expr[T]) Expr[T] { return BinaryOp(l, r, func(a, b T) T { return a + b }) }
func Sub[T Number](l, r Expr[T]) Expr[T] { return BinaryOp(l, r, func(a, b T) T { return a - b }) }
func Mul[T Number](l, r Expr[T]) Expr[T] { return BinaryOp(l, r, func(a, b T) T { return a * b }) }
func Div[T Number](l, r Expr[T]) Expr[T] { return BinaryOp(l, r, func(a, b T) T { return a / b }) }
func Neg[T Number](o Expr[T]) Expr[T]    { return UnaryOp(o, func(a T) T { return -a }) }

func Eq[T comparable](l, r Expr[T]) Expr[bool] { return BinaryOp(l, r, func(a, b T) bool { return a == b }) }
func Ne[T comparable](l, r Expr[T]) Expr[bool] { return BinaryOp(l, r, func(a, b T) bool { return a != b }) }

func Lt[T constraints.Ordered](l, r Expr[T]) Expr[bool] {
	return BinaryOp(l, r, func(a, b T) bool { return a < b })
}
func Le[T constraints.Ordered](l, r Expr[T]) Expr[bool] {
	return BinaryOp(l, r, func(a, b T) bool { return a <= b })
}
func Gt[T constraints.Ordered](l, r Expr[T]) Expr[bool] {
	return BinaryOp(l, r, func(a, b T) bool { return a > b })
}
func Ge[T constraints.Ordered](l, r Expr[T]) Expr[bool] {
	return BinaryOp(l, r, func(a, b T) bool { return a >= b })
}

// And and Or are not short-circuiting (spec.md §4.H): both operands are
// always evaluated and always stay subscribed.
func And(l, r Expr[bool]) Expr[bool] { return BinaryOp(l, r, func(a, b bool) bool { return a && b }) }
func Or(l, r Expr[bool]) Expr[bool]  { return BinaryOp(l, r, func(a, b bool) bool { return a || b }) }
func Not(o Expr[bool]) Expr[bool]    { return UnaryOp(o, func(a bool) bool { return !a }) }
