package sim

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
)

// Action is a canned response to a matched call: given the call's
// argument value, it returns the value to hand back to the caller.
type Action[In, Out any] func(in In) Out

// Expectation is one registered expected call on a FunctionMocker
// (spec.md §4.O): a Matcher over the argument, a Cardinality bounding how
// many times it may be satisfied, an ordered queue of willOnce actions
// followed by an optional willRepeatedly fallback, and an optional set of
// prerequisite expectations (via After/InSequence). A call serviced while a
// prerequisite is still unsatisfied is reported as an unmet-prerequisite
// diagnostic (see FunctionMocker.Call).
type Expectation[In, Out any] struct {
	mocker      *FunctionMocker[In, Out]
	matcher     Matcher[In]
	cardinality Cardinality
	// cardinalitySet records whether Times was called explicitly: until it
	// is, WillOnce/WillRepeatedly keep re-deriving cardinality per spec.md
	// §4.O, rather than leaving the newExpectation default in place.
	cardinalitySet bool

	callCount int

	onceActions    []Action[In, Out]
	repeatedAction Action[In, Out]
	hasRepeated    bool

	prerequisites *set.Set[expectationNode]

	retireOnSaturationFlag bool
	retired                bool
}

func newExpectation[In, Out any](m *FunctionMocker[In, Out], matcher Matcher[In]) *Expectation[In, Out] {
	return &Expectation[In, Out]{
		mocker:        m,
		matcher:       matcher,
		cardinality:   Exactly(1),
		prerequisites: set.New[expectationNode](0),
	}
}

// Times sets the expectation's Cardinality explicitly, overriding whatever
// WillOnce/WillRepeatedly would otherwise have derived (spec.md §4.O) and
// preventing further derivation from kicking in.
func (e *Expectation[In, Out]) Times(c Cardinality) *Expectation[In, Out] {
	e.cardinality = c
	e.cardinalitySet = true
	return e
}

// WillOnce appends a, to be returned the next time this expectation is
// invoked, in the order WillOnce was called (spec.md §4.O). If Times has
// not been called, each WillOnce re-derives the cardinality as
// exactly(k), where k is the number of WillOnce actions registered so
// far (spec.md §4.O's "if times was not called, willOnce calls imply
// exactly(k)").
func (e *Expectation[In, Out]) WillOnce(a Action[In, Out]) *Expectation[In, Out] {
	e.onceActions = append(e.onceActions, a)
	if !e.cardinalitySet {
		e.cardinality = Exactly(len(e.onceActions))
	}
	return e
}

// WillRepeatedly sets the action returned for every invocation after the
// WillOnce queue is exhausted. If Times has not been called, this raises
// the derived cardinality to at_least(k), where k is the number of
// WillOnce actions registered so far (spec.md §4.O).
func (e *Expectation[In, Out]) WillRepeatedly(a Action[In, Out]) *Expectation[In, Out] {
	e.repeatedAction = a
	e.hasRepeated = true
	if !e.cardinalitySet {
		e.cardinality = AtLeast(len(e.onceActions))
	}
	return e
}

// After records prereqs as prerequisites. Until every one of them is
// satisfied, an expectation that has them is only chosen when no matching
// expectation with met prerequisites is available, and a call it services
// then is reported as an unmet-prerequisite diagnostic.
func (e *Expectation[In, Out]) After(prereqs ...expectationNode) *Expectation[In, Out] {
	for _, p := range prereqs {
		e.prerequisites.Insert(p)
	}
	return e
}

// InSequence links this expectation to the tail of each given Sequence,
// adding the prior tail (if any) as a prerequisite of this one, and
// advancing each Sequence's tail to this expectation.
func (e *Expectation[In, Out]) InSequence(seqs ...*Sequence) *Expectation[In, Out] {
	for _, s := range seqs {
		if prev := s.link(e); prev != nil {
			e.prerequisites.Insert(prev)
		}
	}
	return e
}

// RetireOnSaturation marks this expectation to stop matching future calls
// (even ones it could otherwise service) the instant its Cardinality's
// maximum is reached, rather than remaining a candidate indefinitely
// (spec.md §4.O).
func (e *Expectation[In, Out]) RetireOnSaturation() *Expectation[In, Out] {
	e.retireOnSaturationFlag = true
	return e
}

func (e *Expectation[In, Out]) isSaturated() bool {
	return e.cardinality.IsSaturatedByCallCount(e.callCount)
}

func (e *Expectation[In, Out]) isSatisfied() bool {
	return e.cardinality.IsSatisfiedByCallCount(e.callCount)
}

func (e *Expectation[In, Out]) description() string {
	return fmt.Sprintf("%s: %s, called %d, %s", e.mocker.name, e.matcher.String(), e.callCount, e.cardinality.String())
}

func (e *Expectation[In, Out]) prerequisitesSatisfied() bool {
	for _, p := range e.prerequisites.Slice() {
		if !p.isSatisfied() {
			return false
		}
	}
	return true
}

// invoke records the call and produces the response, assuming the caller
// (FunctionMocker.Call) has already confirmed this expectation matches and
// isn't saturated or retired. Prerequisites are not checked here: Call
// also invokes an expectation whose prerequisites are unmet, after
// reporting that as a diagnostic.
func (e *Expectation[In, Out]) invoke(in In) Out {
	e.callCount++
	if e.retireOnSaturationFlag && e.isSaturated() {
		e.retired = true
	}
	if e.callCount <= len(e.onceActions) {
		return e.onceActions[e.callCount-1](in)
	}
	if e.hasRepeated {
		return e.repeatedAction(in)
	}
	var zero Out
	return zero
}
