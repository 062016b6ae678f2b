package toddcoxeter

import "github.com/gokando-labs/fpsg/pkg/word"

// Side names whether the enumerated congruence is one-sided or two-sided.
//
// The engine stores the side it is given but enumerates every side the same
// way: the presentation's relations are scanned at every live coset, and
// extra pairs are traced from the identity coset only, so they add a right
// congruence on top of the presentation's whatever the side. In particular
// Left is enumerated exactly as Right, tracing relations as
// right-multiplication traversals of the table; there is no transposed
// table layout for it.
type Side int

const (
	Right Side = iota
	Left
	TwoSided
)

// Strategy names a coset-definition discipline. The engine accepts every
// value but runs the same single HLT-style sweep for all of them: Felsch and
// CR below describe disciplines the engine does not carry out separately.
type Strategy int

const (
	// HLT defines cosets as soon as a scan needs them (definitions-first).
	HLT Strategy = iota
	// Felsch processes all consequences of existing deductions before
	// making any new definition (deductions-first).
	Felsch
	// CR is a HLT/Felsch hybrid: like HLT, but runs a deduction-draining
	// pass after every definition instead of only at lookahead time.
	CR
)

// LookaheadMode selects when the engine performs a compaction pass that
// discovers coincidences without making new definitions.
type LookaheadMode int

const (
	LookaheadNone LookaheadMode = iota
	LookaheadFull
	LookaheadPartial
)

// DefinitionPolicy names how newly discovered (coset, letter) definitions
// would be scheduled relative to a deduction stack. The engine keeps no
// deduction stack and does not read this setting: definitions are made
// during relation scans whatever the policy.
type DefinitionPolicy int

const (
	StackDefinitions DefinitionPolicy = iota
	NoStackDefinitions
)

// Config enumerates the Todd-Coxeter engine's configuration. Every field's
// zero value falls back to a documented default in normalize, the same
// zero-value-defaulting shape used by knuthbendix.Config.
type Config struct {
	Side Side

	Strategy Strategy

	Lookahead               LookaheadMode
	LookaheadGrowthThreshold float64 // default 2.0
	LookaheadMin             uint64  // default 10000

	StandardiseOrder word.Order // nil -> ShortLex; set StandardiseNone to skip standardisation
	StandardiseNone  bool
	Save             bool

	DefinitionPolicy DefinitionPolicy
	MaxDeductions    Limit

	MaxCosets Limit
}

// Limit expresses a configurable cap that may be unbounded, mirroring
// knuthbendix.Limit.
type Limit struct {
	Bound     uint64
	Unbounded bool
}

func Bounded(n uint64) Limit      { return Limit{Bound: n} }
func UnboundedLimit() Limit       { return Limit{Unbounded: true} }
func (l Limit) exceeded(n uint64) bool {
	return !l.Unbounded && n > l.Bound
}
func (l Limit) isZero() bool { return !l.Unbounded && l.Bound == 0 }

func (c Config) normalize() Config {
	out := c
	if out.LookaheadGrowthThreshold == 0 {
		out.LookaheadGrowthThreshold = 2.0
	}
	if out.LookaheadMin == 0 {
		out.LookaheadMin = 10000
	}
	if out.MaxDeductions.isZero() {
		out.MaxDeductions = UnboundedLimit()
	}
	if out.MaxCosets.isZero() {
		out.MaxCosets = UnboundedLimit()
	}
	if out.StandardiseOrder == nil {
		out.StandardiseOrder = word.ShortLex{}
	}
	return out
}

// DefaultConfig returns the documented default configuration explicitly.
func DefaultConfig() Config {
	return Config{}.normalize()
}
