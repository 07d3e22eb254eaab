package sim

import "fmt"

// Matcher decides whether an argument value satisfies an Expectation, and
// describes itself for failure diagnostics — spec.md §4.M's matcher
// vocabulary, generalized over the argument type instead of tied to a
// single mocked signature.
type Matcher[T any] interface {
	Matches(v T) bool
	String() string
}

type matcherFunc[T any] struct {
	desc  string
	match func(T) bool
}

func (m matcherFunc[T]) Matches(v T) bool { return m.match(v) }
func (m matcherFunc[T]) String() string   { return m.desc }

// Pred builds a Matcher from an arbitrary predicate, described by desc.
func Pred[T any](desc string, f func(T) bool) Matcher[T] {
	return matcherFunc[T]{desc: desc, match: f}
}

// MatchEq matches an argument equal to want. Named distinctly from expr.go's
// Eq (an Expr[bool]-returning combinator over a different value space) to
// avoid a package-level name collision.
func MatchEq[T comparable](want T) Matcher[T] {
	return matcherFunc[T]{
		desc:  fmt.Sprintf("Eq(%v)", want),
		match: func(v T) bool { return v == want },
	}
}

// AnyArg matches any argument unconditionally. Named to avoid colliding
// with the expr.go package-level Any-style helpers that don't exist here,
// but mirroring gMock's "_" wildcard.
func AnyArg[T any]() Matcher[T] {
	return matcherFunc[T]{desc: "_", match: func(T) bool { return true }}
}

// NotM negates m.
func NotM[T any](m Matcher[T]) Matcher[T] {
	return matcherFunc[T]{
		desc:  fmt.Sprintf("Not(%s)", m.String()),
		match: func(v T) bool { return !m.Matches(v) },
	}
}

// AllOf matches only if every one of ms matches.
func AllOf[T any](ms ...Matcher[T]) Matcher[T] {
	return matcherFunc[T]{
		desc: fmt.Sprintf("AllOf(%s)", matcherDescs(ms)),
		match: func(v T) bool {
			for _, m := range ms {
				if !m.Matches(v) {
					return false
				}
			}
			return true
		},
	}
}

// AnyOf matches if at least one of ms matches.
func AnyOf[T any](ms ...Matcher[T]) Matcher[T] {
	return matcherFunc[T]{
		desc: fmt.Sprintf("AnyOf(%s)", matcherDescs(ms)),
		match: func(v T) bool {
			for _, m := range ms {
				if m.Matches(v) {
					return true
				}
			}
			return false
		},
	}
}

func matcherDescs[T any](ms []Matcher[T]) string {
	s := ""
	for i, m := range ms {
		if i > 0 {
			s += ", "
		}
		s += m.String()
	}
	return s
}
