// Package word implements the immutable Word & Presentation model: letters,
// words, reduction orders and the finite presentation that both engines
// consume. A Presentation is validated and built once via its constructor
// and never mutated afterward, so engines can share one safely across
// goroutines.
package word

import (
	"strconv"
	"strings"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
)

// Letter is a small non-negative integer identifying an alphabet symbol.
type Letter int

// Word is a finite ordered sequence of letters. The empty word (nil or
// zero-length slice) is the identity and is always well-formed.
type Word []Letter

// Clone returns a copy of w, safe to mutate independently.
func (w Word) Clone() Word {
	if w == nil {
		return nil
	}
	out := make(Word, len(w))
	copy(out, w)
	return out
}

// Equal reports whether w and v contain the same letters in the same order.
func (w Word) Equal(v Word) bool {
	if len(w) != len(v) {
		return false
	}
	for i := range w {
		if w[i] != v[i] {
			return false
		}
	}
	return true
}

// Concat returns the concatenation of w and v as a new Word.
func Concat(w, v Word) Word {
	out := make(Word, 0, len(w)+len(v))
	out = append(out, w...)
	out = append(out, v...)
	return out
}

// String renders w using the alphabet's printable-character mapping, if any
// was configured, else as bracketed letter indices.
func (w Word) String(a *Alphabet) string {
	var sb strings.Builder
	for _, l := range w {
		sb.WriteString(a.Char(l))
	}
	return sb.String()
}

// Alphabet fixes the bijection between Letter and printable character, and
// validates that letters used elsewhere lie within its bounds.
type Alphabet struct {
	size  int
	chars []rune // chars[l] is the printable char for letter l; nil if unset
	index map[rune]Letter
}

// NewAlphabet builds an alphabet of the given size with no printable-char
// mapping (letters render as their numeric index).
func NewAlphabet(size int) (*Alphabet, error) {
	if size <= 0 {
		return nil, &fpserr.InvalidAlphabet{Reason: "alphabet size must be positive"}
	}
	return &Alphabet{size: size}, nil
}

// NewAlphabetFromString builds an alphabet from a string of distinct
// printable characters; chars[i] is the printable form of letter i.
func NewAlphabetFromString(chars string) (*Alphabet, error) {
	runes := []rune(chars)
	if len(runes) == 0 {
		return nil, &fpserr.InvalidAlphabet{Reason: "alphabet string must be non-empty"}
	}
	idx := make(map[rune]Letter, len(runes))
	for i, r := range runes {
		if _, dup := idx[r]; dup {
			return nil, &fpserr.InvalidAlphabet{Reason: "duplicated printable character: " + string(r)}
		}
		idx[r] = Letter(i)
	}
	return &Alphabet{size: len(runes), chars: runes, index: idx}, nil
}

// Size returns the number of letters in the alphabet.
func (a *Alphabet) Size() int { return a.size }

// Contains reports whether l is a valid letter of this alphabet.
func (a *Alphabet) Contains(l Letter) bool {
	return l >= 0 && int(l) < a.size
}

// Char renders l using the configured printable-character mapping, falling
// back to a bracketed numeric index when none was configured.
func (a *Alphabet) Char(l Letter) string {
	if a.chars != nil && int(l) < len(a.chars) {
		return string(a.chars[l])
	}
	return "<" + strconv.Itoa(int(l)) + ">"
}

// ParseWord converts a printable-character string into a Word, validating
// every character is within the alphabet.
func (a *Alphabet) ParseWord(s string) (Word, error) {
	if a.index == nil {
		return nil, &fpserr.InvalidAlphabet{Reason: "alphabet has no printable-character mapping"}
	}
	out := make(Word, 0, len(s))
	for _, r := range s {
		l, ok := a.index[r]
		if !ok {
			return nil, &fpserr.InvalidWord{Reason: "character not in alphabet: " + string(r)}
		}
		out = append(out, l)
	}
	return out, nil
}

// Validate checks every letter of w lies within the alphabet.
func (a *Alphabet) Validate(w Word) error {
	for _, l := range w {
		if !a.Contains(l) {
			return &fpserr.InvalidWord{Reason: "letter outside alphabet", Letter: int(l)}
		}
	}
	return nil
}
