package knuthbendix

// Limit expresses a configurable cap that may be Unbounded. The zero value
// (Bound: 0, Unbounded: false) is never itself a meaningful cap; New
// normalizes a zero Limit to Unbounded.
type Limit struct {
	Bound     uint64
	Unbounded bool
}

// Bounded constructs a finite Limit.
func Bounded(n uint64) Limit { return Limit{Bound: n} }

// UnboundedLimit constructs a Limit with no cap.
func UnboundedLimit() Limit { return Limit{Unbounded: true} }

func (l Limit) exceeded(n uint64) bool {
	return !l.Unbounded && n > l.Bound
}

func (l Limit) isZero() bool {
	return !l.Unbounded && l.Bound == 0
}

// OverlapPolicy selects how the length of an overlap of lhs(r1)=AB with
// lhs(r2)=BC is measured.
type OverlapPolicy int

const (
	// OverlapABC measures |A|+|B|+|C|.
	OverlapABC OverlapPolicy = iota
	// OverlapABBC measures |AB|+|BC|.
	OverlapABBC
	// OverlapMaxABBC measures max(|AB|,|BC|).
	OverlapMaxABBC
)

// Config enumerates the Knuth-Bendix engine's configuration. Every field's
// zero value falls back to a documented default in normalize; callers need
// set only the fields they care about (Config{} is a valid, fully-defaulted
// configuration).
type Config struct {
	// CheckConfluenceInterval tests confluence directly every N new rules.
	// Zero defaults to 4096; use CheckConfluenceNever to disable.
	CheckConfluenceInterval uint64
	CheckConfluenceNever    bool

	MaxRules   Limit
	MaxOverlap Limit

	OverlapPolicy OverlapPolicy
	Rewriter      RewriterKind
	QueueOrder    QueueOrder
}

func (c Config) normalize() Config {
	out := c
	if out.CheckConfluenceInterval == 0 && !out.CheckConfluenceNever {
		out.CheckConfluenceInterval = 4096
	}
	if out.MaxRules.isZero() {
		out.MaxRules = UnboundedLimit()
	}
	if out.MaxOverlap.isZero() {
		out.MaxOverlap = UnboundedLimit()
	}
	return out
}

// DefaultConfig returns the documented default configuration explicitly.
func DefaultConfig() Config {
	return Config{}.normalize()
}
