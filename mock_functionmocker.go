package sim

import "fmt"

// FunctionMocker is the dispatcher for one mocked function signature
// (spec.md §4.P), parameterized over its argument and return types rather
// than using reflection: callers define In/Out as whatever single type
// (often a small struct, for multi-argument/multi-return functions) suits
// the signature being mocked.
type FunctionMocker[In, Out any] struct {
	name         string
	unit         *Unit
	expectations []*Expectation[In, Out]
	callCount    int

	// Diagnostic counters for the three non-fatal FAIL-severity call
	// outcomes spec.md §4.P/§7 names (unexpected, oversaturated, unmet
	// prerequisite). Tracked locally so a FunctionMocker built without a
	// Unit (as most of this package's own tests do) is still inspectable;
	// mirrored onto the owning Unit's postamble counters when one exists.
	unexpectedCallCount        int
	oversaturatedCallCount     int
	unmetPrerequisiteCallCount int
}

// NewFunctionMocker constructs a FunctionMocker identified by name (used
// in diagnostics).
func NewFunctionMocker[In, Out any](name string) *FunctionMocker[In, Out] {
	return &FunctionMocker[In, Out]{name: name}
}

// NewMock constructs a named FunctionMocker and registers it with u, so
// its expectations are verified automatically when u.Run finishes
// (spec.md §7's supplemented named-Mock-construction feature), and its
// unexpected/oversaturated/unmet-prerequisite calls feed u's postamble
// counters.
func NewMock[In, Out any](u *Unit, name string) *FunctionMocker[In, Out] {
	m := NewFunctionMocker[In, Out](name)
	m.unit = u
	u.TrackMocker(m)
	return m
}

// EXPECT registers a new Expectation matching calls whose argument
// satisfies matcher, returning it for further configuration via
// Times/WillOnce/WillRepeatedly/After/InSequence/RetireOnSaturation.
func (m *FunctionMocker[In, Out]) EXPECT(matcher Matcher[In]) *Expectation[In, Out] {
	e := newExpectation(m, matcher)
	m.expectations = append(m.expectations, e)
	return e
}

// findMatchingExpectation implements spec.md §4.P steps 1-2: walk
// expectations in reverse insertion order (GoogleMock's "last expectation
// that applies wins" rule), grounded on
// _examples/original_source/modules/mock/src/protest/mock/function_mocker.h's
// findMatchingExpectation. The first expectation that both matches and is
// "usable" (not saturated, or saturated but not retiring) wins and stops
// the search — even if it's saturated, since that's still "the" match,
// just one that can't actually be invoked (the caller handles that). A
// matching, unsaturated expectation with unmet prerequisites is
// remembered as lastBest and the search continues for a strictly better
// (satisfiable now) match further back; if none turns up (no match, or
// only a saturated one), the caller falls back to lastBest.
func (m *FunctionMocker[In, Out]) findMatchingExpectation(in In) (match, lastBest *Expectation[In, Out]) {
	for i := len(m.expectations) - 1; i >= 0; i-- {
		e := m.expectations[i]
		if e.retired {
			continue
		}
		if !e.matcher.Matches(in) {
			continue
		}
		if !e.isSaturated() {
			if e.prerequisitesSatisfied() {
				return e, lastBest
			}
			if lastBest == nil {
				lastBest = e
			}
			continue
		}
		// Saturated but not retired: still "usable" per §4.P's definition,
		// so it wins the search outright. The caller reports it as an
		// oversaturated call rather than invoking it.
		return e, lastBest
	}
	return nil, lastBest
}

// Call dispatches one invocation with argument in, per spec.md §4.P's
// evaluated_call: a matching, unsaturated expectation (even one with
// unmet prerequisites) always has its action invoked — prerequisite
// violations are merely a diagnostic, not a reason to refuse the call.
// A saturated match, or no match at all, never invokes an action; both
// cases log a non-fatal FAIL-severity diagnostic (spec.md §7) and return
// Out's zero value. Call never panics: an unexpected or malformed call is
// a fact about the scenario under test, not a bug in the harness, so the
// run continues and the failure surfaces in the postamble.
func (m *FunctionMocker[In, Out]) Call(in In) Out {
	m.callCount++
	match, lastBest := m.findMatchingExpectation(in)
	switch {
	case match != nil && !match.isSaturated():
		return match.invoke(in)
	case lastBest != nil:
		m.reportUnmetPrerequisiteCall(in)
		return lastBest.invoke(in)
	case match != nil:
		m.reportOversaturatedCall(in)
	default:
		m.reportUnexpectedCall(in)
	}
	var zero Out
	return zero
}

func (m *FunctionMocker[In, Out]) reportUnexpectedCall(in In) {
	m.unexpectedCallCount++
	if m.unit != nil {
		m.unit.recordMockDiagnostic(mockDiagnosticUnexpectedCall, m.name, fmt.Sprintf("%v", in))
	}
}

func (m *FunctionMocker[In, Out]) reportOversaturatedCall(in In) {
	m.oversaturatedCallCount++
	if m.unit != nil {
		m.unit.recordMockDiagnostic(mockDiagnosticOversaturatedCall, m.name, fmt.Sprintf("%v", in))
	}
}

func (m *FunctionMocker[In, Out]) reportUnmetPrerequisiteCall(in In) {
	m.unmetPrerequisiteCallCount++
	if m.unit != nil {
		m.unit.recordMockDiagnostic(mockDiagnosticUnmetPrerequisite, m.name, fmt.Sprintf("%v", in))
	}
}

// UnexpectedCallCount reports how many calls found no usable, matching
// expectation at all (spec.md §4.P step 5).
func (m *FunctionMocker[In, Out]) UnexpectedCallCount() int { return m.unexpectedCallCount }

// OversaturatedCallCount reports how many calls matched an expectation
// that had already reached its cardinality's maximum (spec.md §4.P step 4).
func (m *FunctionMocker[In, Out]) OversaturatedCallCount() int { return m.oversaturatedCallCount }

// UnmetPrerequisiteCallCount reports how many calls were serviced by an
// expectation whose prerequisites were not yet satisfied (spec.md §4.P
// step 2's last-best fallback).
func (m *FunctionMocker[In, Out]) UnmetPrerequisiteCallCount() int {
	return m.unmetPrerequisiteCallCount
}

// CallCount returns the total number of times Call has been invoked,
// regardless of which expectation (if any) serviced it.
func (m *FunctionMocker[In, Out]) CallCount() int { return m.callCount }

// VerifyAndClear checks every registered expectation's Cardinality
// against its actual call count, returning a description of each
// unsatisfied one (spec.md §4.P: verification happens once, at the end of
// a scenario, not per-call — "on mock destruction... every expectation
// still alive reports a missing-call diagnostic if its cardinality is not
// satisfied"), then clears the expectation list so the mocker can be
// reused for a new phase of the same scenario.
func (m *FunctionMocker[In, Out]) VerifyAndClear() []string {
	var failures []string
	for _, e := range m.expectations {
		if !e.isSatisfied() {
			failures = append(failures, e.description())
		}
	}
	m.expectations = nil
	return failures
}
