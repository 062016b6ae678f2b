package toddcoxeter

import (
	"sort"
	"sync"
	"time"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
	"github.com/gokando-labs/fpsg/pkg/runner"
	"github.com/gokando-labs/fpsg/pkg/word"
)

// ToddCoxeter is a single coset-enumeration engine instance: it exclusively
// owns its coset table, deduction bookkeeping and sweep state, and
// implements the Runner contract so a Race can drive it alongside other
// strategies (including a competing KnuthBendix instance).
type ToddCoxeter struct {
	runner.Base

	mu    sync.Mutex
	pres  *word.Presentation
	side  Side
	extra []word.Relation
	cfg   Config

	t *table

	seeded bool

	sweepCosets    []Coset
	sweepIdx       int
	relIdx         int
	changedThisLap bool

	lastLookaheadCosets uint64
	allocatedCosets     uint64

	standardised bool
}

// New constructs a Todd-Coxeter engine for the congruence the presentation's
// relations define, with optional extra generating pairs: for each pair
// (u, v), u and v are traced from the identity coset and the two endpoints
// are identified.
func New(pres *word.Presentation, side Side, extra []word.Relation, cfg Config) (*ToddCoxeter, error) {
	if pres == nil {
		return nil, &fpserr.InvalidAlphabet{Reason: "presentation must not be nil"}
	}
	tc := &ToddCoxeter{
		pres:  pres,
		side:  side,
		extra: extra,
		cfg:   cfg.normalize(),
		t:     newTable(pres.Alphabet.Size()),
	}
	tc.Base.ID = "toddcoxeter"
	return tc, nil
}

func (tc *ToddCoxeter) ID() string { return tc.Base.ID }

// ProgressCount reports the current live coset count, letting a Race report
// progress without requiring the engine to be Finished.
func (tc *ToddCoxeter) ProgressCount() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.t.liveCosets())
}

// step performs one unit of coset enumeration: seed extra pairs once, then
// repeatedly sweep every live coset against every defining relation,
// defining cosets and recording coincidences as scans require, until a full
// sweep makes no further change and the table is complete.
func (tc *ToddCoxeter) step() (bool, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if !tc.seeded {
		for _, rel := range tc.extra {
			u := tc.t.scanAndDefine(identity, rel.U)
			v := tc.t.scanAndDefine(identity, rel.V)
			if u != v {
				tc.t.processCoincidence(u, v)
			}
		}
		tc.seeded = true
		return false, nil
	}

	if tc.sweepCosets == nil || tc.sweepIdx >= len(tc.sweepCosets) {
		if tc.sweepCosets != nil && !tc.changedThisLap {
			if tc.t.complete() {
				if !tc.cfg.StandardiseNone {
					tc.standardiseLocked()
				}
				return true, nil
			}
			filled, err := tc.fillOneUndefinedEdgeLocked()
			if err != nil {
				return false, err
			}
			if !filled {
				return true, nil
			}
		}
		tc.sweepCosets = tc.t.liveCosets()
		tc.sweepIdx = 0
		tc.relIdx = 0
		tc.changedThisLap = false
		tc.maybeLookaheadLocked()
		return false, nil
	}

	c := tc.sweepCosets[tc.sweepIdx]
	if tc.t.find(c) != c || !tc.t.alive[c] {
		tc.sweepIdx++
		tc.relIdx = 0
		return false, nil
	}
	if tc.relIdx >= len(tc.pres.Relations) {
		tc.sweepIdx++
		tc.relIdx = 0
		return false, nil
	}

	rel := tc.pres.Relations[tc.relIdx]
	tc.relIdx++

	before := len(tc.t.rows)
	du := tc.t.scanAndDefine(c, rel.U)
	dv := tc.t.scanAndDefine(c, rel.V)
	if len(tc.t.rows) != before {
		tc.changedThisLap = true
		tc.allocatedCosets += uint64(len(tc.t.rows) - before)
		if tc.cfg.MaxCosets.exceeded(uint64(len(tc.t.liveCosets()))) {
			return false, &fpserr.LimitReached{Which: fpserr.LimitMaxCosets}
		}
		if tc.cfg.MaxDeductions.exceeded(uint64(len(tc.t.deductions))) {
			return false, &fpserr.LimitReached{Which: fpserr.LimitDeductionCap}
		}
	}
	if du != dv {
		tc.t.processCoincidence(du, dv)
		tc.changedThisLap = true
	}

	tc.Base.MaybeReport(func(e runner.Logger) {
		e.Info().Str(`runner`, tc.Base.ID).Str(`event`, `deduction`).
			Int(`coset`, int(c)).Log(`relation scanned`)
	})

	return false, nil
}

// fillOneUndefinedEdgeLocked defines the first missing (coset, letter) image
// it finds, enforcing the same MaxCosets/MaxDeductions caps as the
// relation-scan path, since this path can also run unboundedly (e.g. a
// generator left unconstrained by every relation).
func (tc *ToddCoxeter) fillOneUndefinedEdgeLocked() (bool, error) {
	for _, c := range tc.t.liveCosets() {
		for x := 0; x < tc.t.alphabetSize; x++ {
			if tc.t.rows[c][x] == none {
				before := len(tc.t.rows)
				tc.t.define(c, word.Letter(x))
				if len(tc.t.rows) != before {
					tc.allocatedCosets += uint64(len(tc.t.rows) - before)
					if tc.cfg.MaxCosets.exceeded(uint64(len(tc.t.liveCosets()))) {
						return false, &fpserr.LimitReached{Which: fpserr.LimitMaxCosets}
					}
				}
				if tc.cfg.MaxDeductions.exceeded(uint64(len(tc.t.deductions))) {
					return false, &fpserr.LimitReached{Which: fpserr.LimitDeductionCap}
				}
				return true, nil
			}
		}
	}
	return false, nil
}

// maybeLookaheadLocked triggers a full-table rescan once the live-coset
// count has grown past max(lookahead_min, last_lookahead_cosets * growth),
// discovering coincidences without making new definitions.
func (tc *ToddCoxeter) maybeLookaheadLocked() {
	if tc.cfg.Lookahead == LookaheadNone {
		return
	}
	live := uint64(len(tc.t.liveCosets()))
	threshold := tc.cfg.LookaheadMin
	grown := uint64(float64(tc.lastLookaheadCosets) * tc.cfg.LookaheadGrowthThreshold)
	if grown > threshold {
		threshold = grown
	}
	if live <= threshold {
		return
	}
	for _, c := range tc.t.liveCosets() {
		for _, rel := range tc.pres.Relations {
			du := tc.traceOnlyLocked(c, rel.U)
			dv := tc.traceOnlyLocked(c, rel.V)
			if du != none && dv != none && du != dv {
				tc.t.processCoincidence(du, dv)
			}
		}
	}
	tc.lastLookaheadCosets = uint64(len(tc.t.liveCosets()))
}

// traceOnlyLocked walks w from c without defining missing entries, returning
// none if the trace runs off the edge of the known table.
func (tc *ToddCoxeter) traceOnlyLocked(c Coset, w word.Word) Coset {
	cur := tc.t.find(c)
	for _, x := range w {
		d := tc.t.get(cur, x)
		if d == none {
			return none
		}
		cur = tc.t.find(d)
	}
	return cur
}

// standardiseLocked relabels live cosets via a depth-first visit, taking
// letters in increasing StandardiseOrder, starting from the identity coset, and compacts
// the table to the new dense numbering.
func (tc *ToddCoxeter) standardiseLocked() {
	old := tc.t
	relabel := make(map[Coset]Coset)
	relabel[identity] = identity
	order := []Coset{identity}

	// Visit each coset's out-edges smallest-first under the configured
	// order, so the resulting numbering depends on StandardiseOrder rather
	// than raw letter index.
	letters := make([]word.Letter, old.alphabetSize)
	for x := range letters {
		letters[x] = word.Letter(x)
	}
	ord := tc.cfg.StandardiseOrder
	sort.Slice(letters, func(i, j int) bool {
		return ord.Greater(word.Word{letters[j]}, word.Word{letters[i]})
	})

	var visit func(c Coset)
	visit = func(c Coset) {
		root := old.find(c)
		for _, x := range letters {
			d := old.rows[root][x]
			if d == none {
				continue
			}
			d = old.find(d)
			if _, seen := relabel[d]; seen {
				continue
			}
			relabel[d] = Coset(len(order) + 1)
			order = append(order, d)
			visit(d)
		}
	}
	visit(identity)

	nt := newTable(old.alphabetSize)
	nt.growTo(Coset(len(order)))
	for i := range nt.alive {
		nt.alive[i] = false
	}
	for _, oldC := range order {
		newC := relabel[oldC]
		nt.alive[newC] = true
		for _, x := range letters {
			img := old.rows[old.find(oldC)][x]
			if img == none {
				continue
			}
			if mapped, ok := relabel[old.find(img)]; ok {
				nt.rows[newC][x] = mapped
			}
		}
	}
	tc.t = nt
	tc.standardised = true
}

// Run runs to Finished (complete, standardised if configured) or until any
// stop-condition fires. Idempotent after Finished.
func (tc *ToddCoxeter) Run() error { return tc.Base.Run(tc.step) }

// RunFor sets a deadline = now + d and calls Run.
func (tc *ToddCoxeter) RunFor(d time.Duration) error { return tc.Base.RunFor(d, tc.step) }

// RunUntil invokes pred at each checkpoint and stops once it returns true.
func (tc *ToddCoxeter) RunUntil(pred func() bool) error { return tc.Base.RunUntil(pred, tc.step) }

// Size returns the number of live cosets (the index of the enumerated
// congruence). Requires the engine to be Finished.
func (tc *ToddCoxeter) Size() (int, error) {
	if !tc.Base.Finished() {
		return 0, &fpserr.NotReady{Operation: "size"}
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.t.liveCosets()), nil
}

// NumberOfClasses is an alias of Size.
func (tc *ToddCoxeter) NumberOfClasses() (int, error) { return tc.Size() }

// EqualTo reports whether u and v trace to the same coset from the identity.
// Requires the engine to be Finished.
func (tc *ToddCoxeter) EqualTo(u, v word.Word) (bool, error) {
	if !tc.Base.Finished() {
		return false, &fpserr.NotReady{Operation: "equal_to"}
	}
	if err := tc.pres.Alphabet.Validate(u); err != nil {
		return false, err
	}
	if err := tc.pres.Alphabet.Validate(v); err != nil {
		return false, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	du := tc.traceOnlyLocked(identity, u)
	dv := tc.traceOnlyLocked(identity, v)
	return du != none && du == dv, nil
}

// CosetTable returns a copy of the dense coset × letter -> coset table.
// Row i belongs to the i-th live coset in increasing id order; each entry
// is the image's coset id, with 0 meaning undefined. Rows of dead cosets
// are omitted entirely. After standardisation the live ids are 1..n, so
// row i holds coset i+1. Requires the engine to be Finished.
func (tc *ToddCoxeter) CosetTable() ([][]int, error) {
	if !tc.Base.Finished() {
		return nil, &fpserr.NotReady{Operation: "coset_table"}
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	live := tc.t.liveCosets()
	out := make([][]int, len(live))
	for i, c := range live {
		row := make([]int, tc.t.alphabetSize)
		for x := 0; x < tc.t.alphabetSize; x++ {
			if d := tc.t.rows[c][x]; d != none {
				row[x] = int(tc.t.find(d))
			}
		}
		out[i] = row
	}
	return out, nil
}

// WordGraphEdge is one labelled edge (node, letter, node) of the coset
// table viewed as a Cayley graph.
type WordGraphEdge struct {
	From, To int
	Letter   word.Letter
}

// WordGraph returns the coset table as a labelled digraph: nodes are live
// cosets, edges are defined table entries. Requires the engine to be
// Finished.
func (tc *ToddCoxeter) WordGraph() ([]WordGraphEdge, error) {
	if !tc.Base.Finished() {
		return nil, &fpserr.NotReady{Operation: "word_graph"}
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	var edges []WordGraphEdge
	for _, c := range tc.t.liveCosets() {
		for x := 0; x < tc.t.alphabetSize; x++ {
			if d := tc.t.rows[c][x]; d != none {
				edges = append(edges, WordGraphEdge{From: int(c), To: int(tc.t.find(d)), Letter: word.Letter(x)})
			}
		}
	}
	return edges, nil
}
