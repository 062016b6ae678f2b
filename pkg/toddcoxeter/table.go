// Package toddcoxeter implements the Todd-Coxeter coset enumeration engine:
// a coset table with free-list management, deduction/coincidence
// processing, lookahead compaction and standardisation.
//
// Each engine instance exclusively owns its table; coincidences are merged
// through a union-find structure over coset ids rather than a formal
// per-letter inverse walk.
package toddcoxeter

import (
	"golang.org/x/exp/slices"

	"github.com/gokando-labs/fpsg/pkg/word"
)

// Coset is a 1-based coset identifier. Coset 1 is always the class of the
// empty word. 0 means "unknown" (no image defined yet).
type Coset int

const none Coset = 0
const identity Coset = 1

// table is the two-dimensional dense coset table T[coset][letter], plus the
// union-find coset manager that absorbs coincident cosets into their
// survivor.
type table struct {
	alphabetSize int

	rows  [][]Coset // rows[c] has len alphabetSize; rows[0] is unused padding
	alive []bool

	parent []int // union-find parent; parent[c] == c at a root
	rank   []int

	freeList []Coset

	deductions []deduction
}

type deduction struct {
	c Coset
	x word.Letter
}

func newTable(alphabetSize int) *table {
	t := &table{alphabetSize: alphabetSize}
	// Seed coset 1 (the identity class) at construction.
	t.growTo(1)
	t.alive[identity] = true
	return t
}

func (t *table) growTo(c Coset) {
	for Coset(len(t.rows)) <= c {
		id := len(t.rows)
		t.rows = append(t.rows, make([]Coset, t.alphabetSize))
		t.alive = append(t.alive, false)
		t.parent = append(t.parent, id)
		t.rank = append(t.rank, 0)
	}
}

// find returns the representative of c's equivalence class, path-compressing
// as it goes.
func (t *table) find(c Coset) Coset {
	for t.parent[c] != int(c) {
		t.parent[c] = t.parent[t.parent[c]]
		c = Coset(t.parent[c])
	}
	return c
}

// newCoset allocates a fresh coset id, reusing the smallest available entry
// on the free-list to keep the id space dense, else growing the table.
func (t *table) newCoset() Coset {
	if len(t.freeList) > 0 {
		// Smallest-first, regardless of insertion order: reuse the lowest
		// dead id to keep the id space dense.
		c := slices.Min(t.freeList)
		t.freeList = slices.Delete(t.freeList, slices.Index(t.freeList, c), slices.Index(t.freeList, c)+1)
		t.alive[c] = true
		t.parent[c] = int(c)
		t.rank[c] = 0
		for x := range t.rows[c] {
			t.rows[c][x] = none
		}
		return c
	}
	id := Coset(len(t.rows))
	t.growTo(id)
	t.alive[id] = true
	return id
}

// get returns the table entry for (root of c, x), resolving c through the
// union-find first.
func (t *table) get(c Coset, x word.Letter) Coset {
	return t.rows[t.find(c)][x]
}

// define allocates a fresh coset d and sets T[c][x] = d if unknown. Monoid
// presentations need not have formal letter inverses, so the reverse entry
// required for group-style two-sided tables is not maintained structurally
// here; processCoincidence's full-row rescan keeps the table consistent
// when cosets merge regardless of which direction defined them.
func (t *table) define(c Coset, x word.Letter) Coset {
	c = t.find(c)
	if d := t.rows[c][x]; d != none {
		return d
	}
	d := t.newCoset()
	t.rows[c][x] = d
	t.deductions = append(t.deductions, deduction{c: c, x: x})
	return d
}

// liveCosets returns every currently alive coset id, in increasing order.
func (t *table) liveCosets() []Coset {
	var out []Coset
	for c := 1; c < len(t.alive); c++ {
		if t.alive[c] && t.find(Coset(c)) == Coset(c) {
			out = append(out, Coset(c))
		}
	}
	return out
}

// complete reports whether every (live coset, letter) pair has a defined
// image.
func (t *table) complete() bool {
	for _, c := range t.liveCosets() {
		for x := 0; x < t.alphabetSize; x++ {
			if t.rows[c][x] == none {
				return false
			}
		}
	}
	return true
}
