package knuthbendix

import (
	"strconv"
	"strings"

	"github.com/gokando-labs/fpsg/pkg/word"
)

// Rule is an oriented rewrite rule lhs -> rhs with lhs > rhs under the
// presentation's reduction order. Rules carry a monotonically increasing
// identity assigned on activation and an active flag; deactivated rules are
// retained in the inactive pool rather than deleted.
//
// Rules are held in plain slices addressed by ID rather than as pointer-
// linked intrusive list nodes, so a deactivated rule is cheap to keep
// around and cheap to reactivate.
type Rule struct {
	ID     uint64
	LHS    word.Word
	RHS    word.Word
	Active bool
}

func contentKey(lhs, rhs word.Word) string {
	var sb strings.Builder
	for _, l := range lhs {
		sb.WriteString(strconv.Itoa(int(l)))
		sb.WriteByte(',')
	}
	sb.WriteByte('|')
	for _, l := range rhs {
		sb.WriteString(strconv.Itoa(int(l)))
		sb.WriteByte(',')
	}
	return sb.String()
}

// pool is the arena owning every Rule this engine has ever created: the
// active list (insertion order preserved for deterministic iteration), the
// inactive pool, and a content-address index used to detect and drop
// duplicate rules after reduction.
type pool struct {
	byID     map[uint64]*Rule
	active   []*Rule // insertion order
	inactive []*Rule
	seen     map[string]uint64 // contentKey -> rule ID, for dedup
	nextID   uint64
	maxLHS   int
}

func newPool() *pool {
	return &pool{
		byID: make(map[uint64]*Rule),
		seen: make(map[string]uint64),
	}
}

// dedup reports whether a rule with this exact (lhs, rhs) already exists.
func (p *pool) dedup(lhs, rhs word.Word) (uint64, bool) {
	id, ok := p.seen[contentKey(lhs, rhs)]
	return id, ok
}

// activate creates and activates a new rule, returning it. Caller must have
// already checked dedup.
func (p *pool) activate(lhs, rhs word.Word) *Rule {
	p.nextID++
	r := &Rule{ID: p.nextID, LHS: lhs, RHS: rhs, Active: true}
	p.byID[r.ID] = r
	p.active = append(p.active, r)
	p.seen[contentKey(lhs, rhs)] = r.ID
	if len(lhs) > p.maxLHS {
		p.maxLHS = len(lhs)
	}
	return r
}

// deactivate moves r from the active list to the inactive pool. It is
// retained, never deleted, per the design's Lifecycles.
func (p *pool) deactivate(r *Rule) {
	r.Active = false
	for i, a := range p.active {
		if a.ID == r.ID {
			p.active = append(p.active[:i], p.active[i+1:]...)
			break
		}
	}
	p.inactive = append(p.inactive, r)
	if len(r.LHS) == p.maxLHS {
		p.recomputeMaxLHS()
	}
}

func (p *pool) recomputeMaxLHS() {
	m := 0
	for _, r := range p.active {
		if len(r.LHS) > m {
			m = len(r.LHS)
		}
	}
	p.maxLHS = m
}

// count returns the number of currently active rules.
func (p *pool) count() int { return len(p.active) }
