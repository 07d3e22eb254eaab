package sim

// expectationNode is the type-erased view of an Expectation[In, Out] that
// Sequence and the prerequisite graph operate over, since a Sequence may
// chain expectations from FunctionMockers of different signatures
// (spec.md §4.Q).
type expectationNode interface {
	isSatisfied() bool
	description() string
}

// Sequence imposes a total order on a chain of expectations: each
// expectation added via InSequence becomes a prerequisite of the next one
// added to the same Sequence, so a call serviced by a later link before
// every earlier link is satisfied is reported as an unmet-prerequisite
// diagnostic (spec.md §4.Q — grounded on GoogleMock's Sequence/InSequence).
type Sequence struct {
	last expectationNode
}

// NewSequence constructs an empty Sequence.
func NewSequence() *Sequence { return &Sequence{} }

// link appends e to the sequence, returning the prior tail (nil if e is
// the first link) so the caller can record it as e's prerequisite.
func (s *Sequence) link(e expectationNode) expectationNode {
	prev := s.last
	s.last = e
	return prev
}
