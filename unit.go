package sim

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Unit is the scenario manager (spec.md §6/§7's "central test manager"):
// it owns the Scheduler, the shared Logger, every spawned Runner, and
// accumulates Check failures and Invariant violations into a single
// postamble error, the way the original harness's test manager renders
// one combined result at the end of a run rather than failing fast.
type Unit struct {
	scheduler *Scheduler
	logger    *Logger

	// summaryLogger renders the postamble's 7 counters a second time, as a
	// single machine-parseable JSON record via stumpy, alongside the human
	// tagged-record stream logger already writes (SPEC_FULL.md §5.1: both
	// teacher logging libraries stay wired in, each serving a distinct
	// consumer — a human reading the run, and a machine diffing counters
	// across runs).
	summaryLogger *logiface.Logger[*stumpy.Event]

	runners []*Runner

	ran bool

	checkFailures       []string
	invariantViolations []*Invariant
	mockers             []verifiable

	// warnCount, unexpectedCalls, oversaturatedCalls, unmetPrerequisites,
	// and missingCalls are the 5 of spec.md §6's 7 named postamble counters
	// not already expressed as len(checkFailures)/len(invariantViolations).
	// warnCount does not feed ExitCode (spec.md line 227: a WARN is a soft,
	// non-failing diagnostic); the other four do.
	warnCount          int
	unexpectedCalls    int
	oversaturatedCalls int
	unmetPrerequisites int
	missingCalls       int

	// noiseLimiter throttles repeated WARN/ERROR log lines by tag, in wall
	// clock time rather than simulated time: a scenario that compresses
	// thousands of simulated seconds into a tight real-time loop (e.g. a
	// busy QUEUE_OVERFLOW) would otherwise flood stdout at whatever rate
	// the host CPU can execute, unrelated to anything the scenario author
	// is trying to observe.
	noiseLimiter *catrate.Limiter
}

// mockDiagnostic identifies which of spec.md §4.P's three non-fatal
// call-dispatch outcomes a FunctionMocker is reporting through
// Unit.recordMockDiagnostic.
type mockDiagnostic int

const (
	mockDiagnosticUnexpectedCall mockDiagnostic = iota
	mockDiagnosticOversaturatedCall
	mockDiagnosticUnmetPrerequisite
)

func (k mockDiagnostic) tag() string {
	switch k {
	case mockDiagnosticOversaturatedCall:
		return "MOCK_OVERSATURATED"
	case mockDiagnosticUnmetPrerequisite:
		return "MOCK_UNMET_PREREQ"
	default:
		return "MOCK_UNEXPECTED"
	}
}

// recordMockDiagnostic logs and tallies one non-fatal mock-dispatch
// diagnostic (spec.md §4.P/§7): FunctionMocker.Call never panics, so every
// unexpected, oversaturated, or unmet-prerequisite call instead funnels
// here, feeding the matching postamble counter and exit-code category.
func (u *Unit) recordMockDiagnostic(kind mockDiagnostic, mocker, arg string) {
	switch kind {
	case mockDiagnosticOversaturatedCall:
		u.oversaturatedCalls++
	case mockDiagnosticUnmetPrerequisite:
		u.unmetPrerequisites++
	default:
		u.unexpectedCalls++
	}
	u.logEvent(levelError, nil, kind.tag(), "mock", mocker, "arg", arg)
}

// verifiable is implemented by *FunctionMocker[In, Out] for any In/Out.
type verifiable interface {
	VerifyAndClear() []string
}

// UnitOptions models optional configuration for NewUnitWithOptions, in the
// same documented-defaults idiom as teacherref/microbatch's BatcherConfig
// and teacherref/longpoll's ChannelConfig: every field is optional, and a
// nil *UnitOptions (as NewUnit passes) is equivalent to every field left
// at its zero value.
type UnitOptions struct {
	// NoiseLimiterRates configures the wall-clock windows used to throttle
	// repeated WARN/ERROR log lines (see Unit.noiseLimiter).
	// **Defaults to {1s: 20, 1m: 200}, if nil or empty.**
	NoiseLimiterRates map[time.Duration]int
}

func (o *UnitOptions) noiseLimiterRates() map[time.Duration]int {
	if o == nil || len(o.NoiseLimiterRates) == 0 {
		return map[time.Duration]int{
			time.Second: 20,
			time.Minute: 200,
		}
	}
	return o.NoiseLimiterRates
}

// NewUnit constructs a Unit whose logger writes spec.md §6 tagged records
// to w at the given level (plus the stumpy JSON postamble summary), using
// default options.
func NewUnit(w io.Writer, level Level) *Unit {
	return NewUnitWithOptions(w, level, nil)
}

// NewUnitWithOptions is like NewUnit, but accepts explicit UnitOptions
// rather than relying solely on the defaults.
func NewUnitWithOptions(w io.Writer, level Level, opts *UnitOptions) *Unit {
	return &Unit{
		scheduler: NewScheduler(),
		logger:    NewLogger(w, level),
		summaryLogger: stumpy.L.New(
			stumpy.WithStumpy(stumpy.WithWriter(w)),
			stumpy.L.WithLevel(level),
		),
		noiseLimiter: catrate.NewLimiter(opts.noiseLimiterRates()),
	}
}

// Logger returns the Unit's shared Logger, for components (or scenario
// code) that want to log outside the context of any one Runner.
func (u *Unit) Logger() *Logger { return u.logger }

// Spawn creates a new Runner named name and schedules process to run on
// it once the Unit's Run is invoked (spec.md §4.F). Runner names must be
// non-empty and at most 4 characters, matching the original harness's
// fixed-width runner name column in log output.
func (u *Unit) Spawn(name string, process func(r *Runner)) (*Runner, error) {
	if process == nil {
		return nil, ErrNilScenario
	}
	r, err := NewRunner(u, name)
	if err != nil {
		return nil, WrapConfigError("Unit.Spawn", err)
	}
	u.runners = append(u.runners, r)
	u.scheduler.spawn(r.coroutine, func() { r.run(process) })
	return r, nil
}

// TrackMocker registers m so its expectations are verified automatically
// at the end of Run, instead of requiring every scenario to call
// VerifyAndClear itself (spec.md §7's supplemented named-Mock-construction
// feature: mocks are born attached to the Unit that will verify them).
func (u *Unit) TrackMocker(m verifiable) {
	u.mockers = append(u.mockers, m)
}

// Run drives every spawned Runner to completion (or deadlock) and returns
// the combined postamble error: nil if every Check passed, every tracked
// mock expectation was satisfied, and every Invariant held throughout,
// otherwise a *multierror.Error aggregating each of those failures, the
// way the original harness's postamble enumerates every distinct failure
// rather than stopping at the first one. Unexpected, oversaturated and
// unmet-prerequisite mock calls are counted in the postamble and in
// ExitCode, but are not part of the returned error. Run may only be
// called once per Unit.
func (u *Unit) Run() error {
	if u.ran {
		return ErrAlreadyRun
	}
	u.ran = true

	u.scheduler.Run()

	for _, m := range u.mockers {
		for _, failure := range m.VerifyAndClear() {
			u.missingCalls++
			msg := fmt.Sprintf("unsatisfied expectation: %s", failure)
			u.checkFailures = append(u.checkFailures, msg)
			u.logEvent(levelError, nil, "MOCK_MISSING", "detail", failure)
		}
	}

	u.writePostamble()

	var result *multierror.Error
	for _, msg := range u.checkFailures {
		result = multierror.Append(result, fmt.Errorf("sim: check failed: %s", msg))
	}
	for _, inv := range u.invariantViolations {
		result = multierror.Append(result, fmt.Errorf("sim: invariant violated: %s", inv.context))
	}
	return result.ErrorOrNil()
}

// writePostamble renders spec.md §6's postamble: a pair of 79-character
// rules bracketing the 7 named failure counters, plus a single
// machine-parseable JSON companion record via stumpy (SPEC_FULL.md §5.1).
func (u *Unit) writePostamble() {
	failedAssertions := len(u.checkFailures) - u.missingCalls
	if failedAssertions < 0 {
		failedAssertions = 0
	}
	failedInvariants := len(u.invariantViolations)

	u.logEvent(levelInfo, nil, "POST", "rule", Rule79('='))
	u.logEvent(levelInfo, nil, "POST",
		"failed_assertions", failedAssertions,
		"warnings", u.warnCount,
		"invariant_violations", failedInvariants,
		"oversaturated_calls", u.oversaturatedCalls,
		"missing_calls", u.missingCalls,
		"unexpected_calls", u.unexpectedCalls,
		"unmet_prerequisites", u.unmetPrerequisites,
	)
	u.logEvent(levelInfo, nil, "POST", "rule", Rule79('='))

	if u.summaryLogger != nil {
		u.summaryLogger.Info().
			Int("failed_assertions", failedAssertions).
			Int("warnings", u.warnCount).
			Int("invariant_violations", failedInvariants).
			Int("oversaturated_calls", u.oversaturatedCalls).
			Int("missing_calls", u.missingCalls).
			Int("unexpected_calls", u.unexpectedCalls).
			Int("unmet_prerequisites", u.unmetPrerequisites).
			Int("exit_code", u.exitCode(failedAssertions, failedInvariants)).
			Log("postamble")
	}
}

// Passed reports whether Run has completed with ExitCode 0, i.e. with no
// failure in any exit-code category. Only meaningful after Run returns.
func (u *Unit) Passed() bool {
	return u.ran && u.ExitCode() == 0
}

// ExitCode mirrors the original harness's process exit code convention
// (spec.md §6/line 227): 1 if any of {failed assertions, failed invariants,
// unexpected calls, missing calls, unmet prerequisites, oversaturated
// calls} is non-zero, else 0. Warnings do not feed this category. Only
// meaningful after Run returns.
func (u *Unit) ExitCode() int {
	failedAssertions := len(u.checkFailures) - u.missingCalls
	if failedAssertions < 0 {
		failedAssertions = 0
	}
	return u.exitCode(failedAssertions, len(u.invariantViolations))
}

func (u *Unit) exitCode(failedAssertions, failedInvariants int) int {
	if failedAssertions != 0 ||
		failedInvariants != 0 ||
		u.unexpectedCalls != 0 ||
		u.missingCalls != 0 ||
		u.unmetPrerequisites != 0 ||
		u.oversaturatedCalls != 0 {
		return 1
	}
	return 0
}

func (u *Unit) recordCheckFailure(r *Runner, tag string) {
	msg := tag
	if r != nil {
		msg = fmt.Sprintf("%s (runner %s)", tag, r.Name())
	}
	u.checkFailures = append(u.checkFailures, msg)
}

func (u *Unit) reportInvariantViolation(inv *Invariant) {
	u.invariantViolations = append(u.invariantViolations, inv)
	u.logEvent(levelError, inv.runner, "INVARIANT_VIOLATED", "context", inv.context)
}
