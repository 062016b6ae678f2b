// Package knuthbendix implements the Knuth-Bendix string-rewriting
// completion engine: rule management, overlap detection, normal-form
// rewriting and confluence checking.
//
// A KnuthBendix instance exclusively owns its mutable state (rule pool,
// trie, queue) built from an immutable Presentation; nothing it holds is
// shared with another engine instance, so two engines can run concurrently
// over the same Presentation without synchronization between them.
package knuthbendix

import (
	"sync"
	"time"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
	"github.com/gokando-labs/fpsg/pkg/runner"
	"github.com/gokando-labs/fpsg/pkg/word"
)

// KnuthBendix is a single completion engine instance: it exclusively owns
// its rule pool, trie, and critical-pair queue, and implements the Runner
// contract so a Race can drive it in competition with other strategies.
type KnuthBendix struct {
	runner.Base

	mu    sync.Mutex
	pres  *word.Presentation
	order word.Order
	cfg   Config

	pool  *pool
	trie  *trie
	queue *pairQueue

	sinceLastCheck uint64
	confluentFlag  bool
}

// New constructs a Knuth-Bendix engine from a Presentation and
// configuration, seeding the active-list from the presentation's (reduced,
// oriented) defining relations.
func New(pres *word.Presentation, cfg Config) (*KnuthBendix, error) {
	if pres == nil {
		return nil, &fpserr.InvalidAlphabet{Reason: "presentation must not be nil"}
	}
	normalized := cfg.normalize()
	kb := &KnuthBendix{
		pres:  pres,
		order: pres.Order,
		cfg:   normalized,
		pool:  newPool(),
		trie:  newTrie(),
		queue: newPairQueue(normalized.QueueOrder),
	}
	kb.Base.ID = "knuthbendix"
	for _, rel := range pres.Relations {
		if err := kb.AddRule(rel.U, rel.V); err != nil {
			return nil, err
		}
	}
	return kb, nil
}

// AddRule orients u = v into (max, min) under the configured order, reduces
// both sides using the current rules, drops it if trivial, else activates
// it. Configuration-time only: calling it once the engine has started
// running is InvalidRule.
func (kb *KnuthBendix) AddRule(u, v word.Word) error {
	if kb.Base.Started() {
		return &fpserr.InvalidRule{Reason: "add_rule called after the engine started running"}
	}
	if len(u) == 0 && len(v) == 0 {
		return nil
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.addRuleLocked(u, v)
}

// addRuleLocked performs the full activation sequence used both by AddRule
// and by critical-pair processing during completion: reduce, orient, dedup,
// activate, inter-reduce, enqueue new critical pairs.
func (kb *KnuthBendix) addRuleLocked(u, v word.Word) error {
	ru := kb.rewriteLocked(u)
	rv := kb.rewriteLocked(v)
	if ru.Equal(rv) {
		return nil // trivial once reduced
	}
	lhs, rhs, ok := word.Orient(kb.order, ru, rv)
	if !ok {
		return &fpserr.CannotOrient{U: ru.String(kb.pres.Alphabet), V: rv.String(kb.pres.Alphabet)}
	}
	if len(lhs) == 0 {
		return &fpserr.InvalidRule{Reason: "rule with empty lhs"}
	}
	if _, dup := kb.pool.dedup(lhs, rhs); dup {
		return nil
	}
	if kb.cfg.MaxRules.exceeded(uint64(kb.pool.count() + 1)) {
		return &fpserr.LimitReached{Which: fpserr.LimitMaxRules}
	}

	newRule := kb.pool.activate(lhs, rhs)
	kb.trie.insert(newRule)

	kb.Base.MaybeReport(func(e runner.Logger) {
		e.Info().Str(`runner`, kb.Base.ID).Str(`event`, `rule_activated`).
			Uint64(`rule_id`, newRule.ID).Log(`rule activated`)
	})

	// Inter-reduction: any other active rule whose lhs is now reducible by
	// the new rule is deactivated and requeued through this same path.
	var toReduce []*Rule
	for _, r := range kb.pool.active {
		if r.ID == newRule.ID {
			continue
		}
		if containsSubword(r.LHS, newRule.LHS) {
			toReduce = append(toReduce, r)
		}
	}
	for _, r := range toReduce {
		kb.pool.deactivate(r)
		kb.trie.remove(r)
	}

	// Enqueue new critical pairs between the new rule and every rule still
	// active (including itself, for self-overlaps), before re-adding the
	// now-inactive rules, so overlaps are measured against the table the
	// new rule actually leaves behind.
	for _, r := range kb.pool.active {
		kb.enqueueOverlaps(newRule, r)
		if r.ID != newRule.ID {
			kb.enqueueOverlaps(r, newRule)
		}
	}

	for _, r := range toReduce {
		if err := kb.addRuleLocked(r.LHS, r.RHS); err != nil {
			var limit *fpserr.LimitReached
			if asLimitReached(err, &limit) {
				return err
			}
			// CannotOrient / InvalidRule from a requeued, now-trivial rule
			// is not an error: the rule was simply subsumed.
		}
	}

	kb.sinceLastCheck++
	return nil
}

func asLimitReached(err error, target **fpserr.LimitReached) bool {
	if e, ok := err.(*fpserr.LimitReached); ok {
		*target = e
		return true
	}
	return false
}

func containsSubword(w, sub word.Word) bool {
	if len(sub) == 0 || len(sub) > len(w) {
		return false
	}
	for i := 0; i+len(sub) <= len(w); i++ {
		if hasPrefixAt(w, i, sub) {
			return true
		}
	}
	return false
}

// enqueueOverlaps pushes every nontrivial boundary overlap of lhs(r1) with
// lhs(r2) onto the critical-pair queue.
func (kb *KnuthBendix) enqueueOverlaps(r1, r2 *Rule) {
	limit := len(r1.LHS)
	if len(r2.LHS) < limit {
		limit = len(r2.LHS)
	}
	for k := 1; k < limit; k++ {
		if !suffixEqualsPrefix(r1.LHS, r2.LHS, k) {
			continue
		}
		ol := overlapLength(r1.LHS, r2.LHS, k, kb.cfg.OverlapPolicy)
		if kb.cfg.MaxOverlap.exceeded(uint64(ol)) {
			continue
		}
		kb.queue.push(r1, r2, ol)
	}
}

func suffixEqualsPrefix(lhs1, lhs2 word.Word, k int) bool {
	for j := 0; j < k; j++ {
		if lhs1[len(lhs1)-k+j] != lhs2[j] {
			return false
		}
	}
	return true
}

func overlapLength(lhs1, lhs2 word.Word, k int, policy OverlapPolicy) int {
	aLen := len(lhs1) - k
	bLen := k
	cLen := len(lhs2) - k
	switch policy {
	case OverlapABBC:
		return (aLen + bLen) + (bLen + cLen)
	case OverlapMaxABBC:
		ab := aLen + bLen
		bc := bLen + cLen
		if ab > bc {
			return ab
		}
		return bc
	default: // OverlapABC
		return aLen + bLen + cLen
	}
}

// rewriteLocked rewrites w to a fixed point under the caller's held lock.
func (kb *KnuthBendix) rewriteLocked(w word.Word) word.Word {
	return kb.rewriteToFixedPoint(w)
}

// NormalForm rewrites w to its fixed point; unique once Confluent() is true.
func (kb *KnuthBendix) NormalForm(w word.Word) (word.Word, error) {
	if err := kb.pres.Alphabet.Validate(w); err != nil {
		return nil, err
	}
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.rewriteLocked(w), nil
}

// EqualTo reports whether u and v have the same normal form. If the engine
// is not yet confluent, a false result is only semi-decidable: "not yet
// known" rather than definitively unequal.
func (kb *KnuthBendix) EqualTo(u, v word.Word) (bool, error) {
	nu, err := kb.NormalForm(u)
	if err != nil {
		return false, err
	}
	nv, err := kb.NormalForm(v)
	if err != nil {
		return false, err
	}
	return nu.Equal(nv), nil
}

// Confluent reports whether every critical pair between active rules
// rewrites to a common normal form, as of the last confluence check.
func (kb *KnuthBendix) Confluent() bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return kb.confluentFlag
}

// Rules returns a snapshot of the currently active rules, in insertion
// order, for deterministic iteration by callers (e.g. the round-trip
// Presentation constructor).
func (kb *KnuthBendix) Rules() []Rule {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	out := make([]Rule, len(kb.pool.active))
	for i, r := range kb.pool.active {
		out[i] = Rule{ID: r.ID, LHS: r.LHS.Clone(), RHS: r.RHS.Clone(), Active: r.Active}
	}
	return out
}

// ID identifies this runner for Race bookkeeping and logging.
func (kb *KnuthBendix) ID() string { return kb.Base.ID }

// ProgressCount reports the current active rule count, letting a Race
// report progress without requiring the engine to be Finished.
func (kb *KnuthBendix) ProgressCount() int {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	return len(kb.pool.active)
}

// ToPresentation rebuilds a Presentation from this engine's active rules,
// each rule's lhs/rhs becoming a defining relation: Presentation -> KB ->
// rules() -> Presentation' is a round trip over the same congruence (the
// rebuilt presentation's relations may differ syntactically from the
// original, but define the same set of equal words).
func (kb *KnuthBendix) ToPresentation() (*word.Presentation, error) {
	rules := kb.Rules()
	relations := make([]word.Relation, len(rules))
	for i, r := range rules {
		relations[i] = word.Relation{U: r.LHS, V: r.RHS}
	}
	return word.New(kb.pres.Alphabet, kb.order, relations)
}

// checkConfluenceLocked directly tests every pair of active rules for
// unresolved overlaps, updating confluentFlag. Any unresolved overlap found
// this way is enqueued (it should already be queued in the common case;
// this is the "test confluence directly" fallback the design calls for
// every check-confluence-interval new rules).
func (kb *KnuthBendix) checkConfluenceLocked() {
	unresolved := false
	for _, r1 := range kb.pool.active {
		for _, r2 := range kb.pool.active {
			limit := len(r1.LHS)
			if len(r2.LHS) < limit {
				limit = len(r2.LHS)
			}
			for k := 1; k < limit; k++ {
				if !suffixEqualsPrefix(r1.LHS, r2.LHS, k) {
					continue
				}
				if !kb.overlapResolvesLocked(r1, r2, k) {
					unresolved = true
					kb.queue.push(r1, r2, overlapLength(r1.LHS, r2.LHS, k, kb.cfg.OverlapPolicy))
				}
			}
		}
	}
	kb.confluentFlag = !unresolved
	kb.sinceLastCheck = 0
}

func (kb *KnuthBendix) overlapResolvesLocked(r1, r2 *Rule, k int) bool {
	red1 := word.Concat(r1.RHS, r2.LHS[k:])
	red2 := word.Concat(r1.LHS[:len(r1.LHS)-k], r2.RHS)
	return kb.rewriteLocked(red1).Equal(kb.rewriteLocked(red2))
}

// step performs one unit of the completion algorithm: process the next
// critical pair, or (queue empty) run a direct confluence check and
// terminate if it holds.
func (kb *KnuthBendix) step() (bool, error) {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.queue.empty() {
		kb.checkConfluenceLocked()
		return kb.confluentFlag, nil
	}

	task, _, _ := kb.queue.pop()
	if !task.r1.Active || !task.r2.Active {
		return false, nil // stale: one side was deactivated since enqueued
	}

	limit := len(task.r1.LHS)
	if len(task.r2.LHS) < limit {
		limit = len(task.r2.LHS)
	}
	for k := 1; k < limit; k++ {
		if !suffixEqualsPrefix(task.r1.LHS, task.r2.LHS, k) {
			continue
		}
		red1 := word.Concat(task.r1.RHS, task.r2.LHS[k:])
		red2 := word.Concat(task.r1.LHS[:len(task.r1.LHS)-k], task.r2.RHS)
		n1 := kb.rewriteLocked(red1)
		n2 := kb.rewriteLocked(red2)
		if n1.Equal(n2) {
			continue
		}
		if err := kb.addRuleLocked(n1, n2); err != nil {
			if _, ok := err.(*fpserr.LimitReached); ok {
				return false, err
			}
			if _, ok := err.(*fpserr.CannotOrient); ok {
				return false, err
			}
		}
	}

	if !kb.cfg.CheckConfluenceNever && kb.sinceLastCheck >= kb.cfg.CheckConfluenceInterval {
		kb.checkConfluenceLocked()
		if kb.confluentFlag && kb.queue.empty() {
			return true, nil
		}
	}
	return false, nil
}

// Run runs to Finished (confluent, queue empty) or until any stop-condition
// fires. Idempotent after Finished.
func (kb *KnuthBendix) Run() error { return kb.Base.Run(kb.step) }

// RunFor sets a deadline = now + d and calls Run.
func (kb *KnuthBendix) RunFor(d time.Duration) error { return kb.Base.RunFor(d, kb.step) }

// RunUntil invokes pred at each checkpoint and stops once it returns true.
func (kb *KnuthBendix) RunUntil(pred func() bool) error { return kb.Base.RunUntil(pred, kb.step) }
