package word

// Order is a total order on words that is a well-order, translation
// invariant, and compatible with the subword relation, called as a
// deterministic two-argument predicate. The required variants are ShortLex
// and RecursivePath.
type Order interface {
	// Greater reports whether u > v under this order.
	Greater(u, v Word) bool
	// Name identifies the order for logging and diagnostics.
	Name() string
}

// Orient returns (max, min) of u, v under ord, and reports whether the two
// words were distinct and comparable (i.e. an orientation could be chosen).
// Equal words are never "comparable" for add_rule's purposes: they reduce to
// a no-op rule rather than an orientation.
func Orient(ord Order, u, v Word) (max, min Word, orientable bool) {
	if u.Equal(v) {
		return nil, nil, false
	}
	if ord.Greater(u, v) {
		return u, v, true
	}
	if ord.Greater(v, u) {
		return v, u, true
	}
	return nil, nil, false
}

// ShortLex orders words first by length, then lexicographically by letter
// value within a length. It is the default order used by the concrete
// end-to-end scenarios.
type ShortLex struct{}

func (ShortLex) Name() string { return "ShortLex" }

func (ShortLex) Greater(u, v Word) bool {
	if len(u) != len(v) {
		return len(u) > len(v)
	}
	for i := range u {
		if u[i] != v[i] {
			return u[i] > v[i]
		}
	}
	return false
}

// Precedence supplies a total order on letters for RecursivePath. Higher
// values are "more significant" in the order.
type Precedence func(l Letter) int

// IdentityPrecedence ranks letters by their own numeric value, the default
// precedence when none is supplied.
func IdentityPrecedence(l Letter) int { return int(l) }

// RecursivePath implements the recursive path order on words, treating each
// word as a right-nested unary term (a.rest == a(rest)) and comparing under
// a letter precedence, following the classical recursive-path-order
// recursion for unary signatures (Sims, Computation with Finitely Presented
// Groups, ch. 12): equal leading letters recurse on the tails;  a
// higher-precedence leading letter in u only needs u to beat the tail of v;
// a higher-precedence leading letter in v requires the tail of u to equal or
// beat all of v.
type RecursivePath struct {
	Prec Precedence
}

func (r RecursivePath) prec() Precedence {
	if r.Prec != nil {
		return r.Prec
	}
	return IdentityPrecedence
}

func (RecursivePath) Name() string { return "RecursivePath" }

func (r RecursivePath) Greater(u, v Word) bool {
	return r.greater(u, v)
}

func (r RecursivePath) greater(u, v Word) bool {
	if len(v) == 0 {
		return len(u) > 0
	}
	if len(u) == 0 {
		return false
	}
	a, b := u[0], v[0]
	prec := r.prec()
	switch {
	case a == b:
		return r.greater(u[1:], v[1:])
	case prec(a) > prec(b):
		return r.greater(u, v[1:])
	default: // prec(b) > prec(a)
		return u[1:].Equal(v) || r.greater(u[1:], v)
	}
}
