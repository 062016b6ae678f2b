// Package fpserr defines the error taxonomy shared by the word, runner,
// knuthbendix, toddcoxeter and race packages. Every error is a concrete
// exported value type, never a sentinel hidden behind errors.New, so callers
// can switch on fields (errors.As) instead of string-matching.
package fpserr

import "fmt"

// InvalidAlphabet reports an alphabet size <= 0 or duplicated printable
// character mappings supplied to a Presentation.
type InvalidAlphabet struct {
	Reason string
}

func (e *InvalidAlphabet) Error() string {
	return fmt.Sprintf("fpserr: invalid alphabet: %s", e.Reason)
}

// InvalidWord reports a letter outside the declared alphabet, or an empty
// word where the caller requires non-empty input.
type InvalidWord struct {
	Reason string
	Letter int
}

func (e *InvalidWord) Error() string {
	return fmt.Sprintf("fpserr: invalid word: %s (letter=%d)", e.Reason, e.Letter)
}

// InvalidRule reports an empty lhs, or a rule added after the engine has
// started running.
type InvalidRule struct {
	Reason string
}

func (e *InvalidRule) Error() string {
	return fmt.Sprintf("fpserr: invalid rule: %s", e.Reason)
}

// CannotOrient reports two words presented to add_rule that are equal or
// incomparable under the configured reduction order. The engine never
// guesses an orientation.
type CannotOrient struct {
	U, V string
}

func (e *CannotOrient) Error() string {
	return fmt.Sprintf("fpserr: cannot orient %q = %q under the configured order", e.U, e.V)
}

// LimitWhich names which configured cap was exceeded.
type LimitWhich int

const (
	LimitMaxRules LimitWhich = iota
	LimitMaxOverlap
	LimitMaxCosets
	LimitDeductionCap
)

func (w LimitWhich) String() string {
	switch w {
	case LimitMaxRules:
		return "MaxRules"
	case LimitMaxOverlap:
		return "MaxOverlap"
	case LimitMaxCosets:
		return "MaxCosets"
	case LimitDeductionCap:
		return "DeductionCap"
	default:
		return "Unknown"
	}
}

// LimitReached reports a configured cap was exceeded. The engine remains
// inspectable; callers may raise the cap and call run again.
type LimitReached struct {
	Which LimitWhich
}

func (e *LimitReached) Error() string {
	return fmt.Sprintf("fpserr: limit reached: %s", e.Which)
}

// NotReady reports a query that requires a finished engine, issued before
// run() has completed.
type NotReady struct {
	Operation string
}

func (e *NotReady) Error() string {
	return fmt.Sprintf("fpserr: not ready: %s requires a finished engine", e.Operation)
}

// CancelReason names why a runner stopped before finishing.
type CancelReason int

const (
	CancelTimeout CancelReason = iota
	CancelPredicate
	CancelKilled
)

func (r CancelReason) String() string {
	switch r {
	case CancelTimeout:
		return "Timeout"
	case CancelPredicate:
		return "Predicate"
	case CancelKilled:
		return "Killed"
	default:
		return "Unknown"
	}
}

// Cancelled reports that an engine stopped before finishing.
type Cancelled struct {
	Reason CancelReason
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("fpserr: cancelled: %s", e.Reason)
}

// RaceEmpty reports run or winner called on a Race with no runners.
type RaceEmpty struct{}

func (e *RaceEmpty) Error() string {
	return "fpserr: race has no runners"
}

// InternalInvariantViolated reports a bug: an invariant the design relies on
// did not hold. It carries enough context to reproduce.
type InternalInvariantViolated struct {
	Invariant string
	Context   string
	Cause     error
}

func (e *InternalInvariantViolated) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fpserr: internal invariant violated: %s (%s): %v", e.Invariant, e.Context, e.Cause)
	}
	return fmt.Sprintf("fpserr: internal invariant violated: %s (%s)", e.Invariant, e.Context)
}

func (e *InternalInvariantViolated) Unwrap() error {
	return e.Cause
}
