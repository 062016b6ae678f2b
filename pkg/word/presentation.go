package word

import "github.com/gokando-labs/fpsg/pkg/fpserr"

// Relation is a defining pair of words declared equal by a Presentation.
type Relation struct {
	U, V Word
}

// Presentation is the alphabet size, optional printable-character mapping, a
// chosen reduction order, and the initial list of defining relations.
// Immutable once constructed; handed to engines by reference or Clone. A
// validated, frozen value object that engines consume but never mutate.
type Presentation struct {
	Alphabet  *Alphabet
	Order     Order
	Relations []Relation
}

// New constructs a Presentation, validating every letter of every relation
// lies within the alphabet. A relation whose two sides are already equal is
// the "deliberately allowed identity form" and is dropped silently rather
// than rejected.
func New(alphabet *Alphabet, order Order, relations []Relation) (*Presentation, error) {
	if alphabet == nil {
		return nil, &fpserr.InvalidAlphabet{Reason: "alphabet must not be nil"}
	}
	if order == nil {
		order = ShortLex{}
	}
	kept := make([]Relation, 0, len(relations))
	for _, r := range relations {
		if err := alphabet.Validate(r.U); err != nil {
			return nil, err
		}
		if err := alphabet.Validate(r.V); err != nil {
			return nil, err
		}
		if r.U.Equal(r.V) {
			continue
		}
		kept = append(kept, Relation{U: r.U.Clone(), V: r.V.Clone()})
	}
	return &Presentation{Alphabet: alphabet, Order: order, Relations: kept}, nil
}

// Clone returns a deep, independent copy suitable for handing to a second
// engine instance racing against the first; engines never share mutable
// state derived from a Presentation.
func (p *Presentation) Clone() *Presentation {
	out := &Presentation{Alphabet: p.Alphabet, Order: p.Order}
	out.Relations = make([]Relation, len(p.Relations))
	for i, r := range p.Relations {
		out.Relations[i] = Relation{U: r.U.Clone(), V: r.V.Clone()}
	}
	return out
}
