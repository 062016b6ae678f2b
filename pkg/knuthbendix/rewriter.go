package knuthbendix

import "github.com/gokando-labs/fpsg/pkg/word"

// RewriterKind selects between the two interchangeable rewriting algorithms
// the design names: identical semantics, different performance profiles.
type RewriterKind int

const (
	// TrieRewriter is the default: a multi-pattern trie keyed by active
	// lhss, dominant on problems with many rules of mixed lengths.
	TrieRewriter RewriterKind = iota
	// LeftScanRewriter walks left to right checking every active rule for a
	// prefix match at each position; simpler, occasionally faster with few
	// short rules.
	LeftScanRewriter
)

func (k RewriterKind) String() string {
	if k == LeftScanRewriter {
		return "LeftScan"
	}
	return "Trie"
}

// rewriteOnceTrie finds the leftmost position with a trie match and
// performs exactly one splice, returning the new word and the restart
// position (the earliest affected position, i - maxLHS, clamped to 0), or
// ok=false if w is already a fixed point.
func rewriteOnceTrie(t *trie, maxLHS int, w word.Word) (out word.Word, restart int, ok bool) {
	for i := 0; i < len(w); i++ {
		r := t.longestMatchAt(w, i)
		if r == nil {
			continue
		}
		spliced := spliceAt(w, i, len(r.LHS), r.RHS)
		start := i - maxLHS
		if start < 0 {
			start = 0
		}
		return spliced, start, true
	}
	return w, 0, false
}

// rewriteOnceLeftScan finds the leftmost position and first active rule (in
// insertion order) whose lhs matches a prefix there, and performs one
// splice, resuming from the left end of the replacement.
func rewriteOnceLeftScan(active []*Rule, w word.Word) (out word.Word, restart int, ok bool) {
	for i := 0; i < len(w); i++ {
		for _, r := range active {
			if hasPrefixAt(w, i, r.LHS) {
				return spliceAt(w, i, len(r.LHS), r.RHS), i, true
			}
		}
	}
	return w, 0, false
}

func hasPrefixAt(w word.Word, i int, lhs word.Word) bool {
	if i+len(lhs) > len(w) {
		return false
	}
	for k, l := range lhs {
		if w[i+k] != l {
			return false
		}
	}
	return true
}

func spliceAt(w word.Word, i, n int, rhs word.Word) word.Word {
	out := make(word.Word, 0, len(w)-n+len(rhs))
	out = append(out, w[:i]...)
	out = append(out, rhs...)
	out = append(out, w[i+n:]...)
	return out
}

// rewriteToFixedPoint repeatedly applies single-step rewrites until none
// apply, using whichever engine-configured rewriter kind.
func (kb *KnuthBendix) rewriteToFixedPoint(w word.Word) word.Word {
	cur := w.Clone()
	for {
		var out word.Word
		var ok bool
		switch kb.cfg.Rewriter {
		case LeftScanRewriter:
			out, _, ok = rewriteOnceLeftScan(kb.pool.active, cur)
		default:
			out, _, ok = rewriteOnceTrie(kb.trie, kb.pool.maxLHS, cur)
		}
		if !ok {
			return cur
		}
		cur = out
	}
}
