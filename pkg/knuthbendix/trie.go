package knuthbendix

import "github.com/gokando-labs/fpsg/pkg/word"

// trie is a multi-pattern trie keyed by the left-hand sides of all active
// rules; each terminal node stores the rule it terminates. Traversing the
// trie while scanning a candidate word performs one-pass multi-pattern
// matching: at each position either no rule applies, or the longest
// matching lhs rewrites to its rhs.
type trieNode struct {
	children map[word.Letter]*trieNode
	rule     *Rule // non-nil iff this node terminates an active rule's lhs
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[word.Letter]*trieNode)}
}

type trie struct {
	root *trieNode
}

func newTrie() *trie {
	return &trie{root: newTrieNode()}
}

func (t *trie) insert(r *Rule) {
	n := t.root
	for _, l := range r.LHS {
		c, ok := n.children[l]
		if !ok {
			c = newTrieNode()
			n.children[l] = c
		}
		n = c
	}
	n.rule = r
}

func (t *trie) remove(r *Rule) {
	n := t.root
	path := make([]*trieNode, 0, len(r.LHS)+1)
	path = append(path, n)
	for _, l := range r.LHS {
		c, ok := n.children[l]
		if !ok {
			return
		}
		path = append(path, c)
		n = c
	}
	n.rule = nil
	// Prune now-empty leaf chain.
	for i := len(path) - 1; i > 0; i-- {
		node := path[i]
		if node.rule == nil && len(node.children) == 0 {
			parent := path[i-1]
			delete(parent.children, r.LHS[i-1])
		} else {
			break
		}
	}
}

// longestMatchAt walks the trie starting at position i in w, returning the
// deepest (longest-lhs) rule whose lhs matches w starting at i, or nil if
// none does.
func (t *trie) longestMatchAt(w word.Word, i int) *Rule {
	n := t.root
	var best *Rule
	for j := i; j < len(w); j++ {
		c, ok := n.children[w[j]]
		if !ok {
			break
		}
		n = c
		if n.rule != nil {
			best = n.rule
		}
	}
	return best
}
