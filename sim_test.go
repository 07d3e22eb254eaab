package sim

import "io"

// newTestUnit builds a Unit with logging discarded, for tests that only
// care about scheduling/condition semantics, not log output.
func newTestUnit() *Unit {
	return NewUnit(io.Discard, levelDebug)
}
