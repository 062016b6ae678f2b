package toddcoxeter

import "github.com/gokando-labs/fpsg/pkg/word"

// processCoincidence merges c and d via union-find, pushing every resulting
// table conflict back onto the stack until it is empty: the table is not
// considered stable until every consequence has been processed, per the
// design's Table operations.
func (t *table) processCoincidence(c, d Coset) {
	type pair struct{ a, b Coset }
	stack := []pair{{c, d}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		a, b := t.find(p.a), t.find(p.b)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}

		t.parent[b] = int(a)
		t.alive[b] = false
		t.freeList = append(t.freeList, b)

		for x := 0; x < t.alphabetSize; x++ {
			bx := t.rows[b][x]
			if bx == none {
				continue
			}
			ax := t.rows[a][x]
			if ax == none {
				t.rows[a][x] = bx
			} else if t.find(ax) != t.find(bx) {
				stack = append(stack, pair{ax, bx})
			}
		}

		// Redirect every other row's entries that pointed at the absorbed
		// coset b, since the table has no formal per-letter inverses to
		// walk backwards from.
		for cc := 1; cc < len(t.rows); cc++ {
			if !t.alive[cc] && cc != int(a) {
				continue
			}
			row := t.rows[cc]
			for x := range row {
				if row[x] == b {
					row[x] = a
				}
			}
		}
	}
}

// scanAndDefine traces w from c, defining cosets as needed (HLT-style: definitions
// are made eagerly during the scan), and returns the destination coset. If
// the scan discovers the destination was already a different, previously
// defined coset than a partial forward/backward meeting point would
// require, the caller is responsible for recording the coincidence; this
// scan variant always succeeds by definition-on-demand.
func (t *table) scanAndDefine(c Coset, w word.Word) Coset {
	cur := t.find(c)
	for _, x := range w {
		cur = t.find(t.define(cur, x))
	}
	return cur
}
