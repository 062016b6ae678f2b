package word

import "testing"

func TestShortLexOrdersByLengthThenLex(t *testing.T) {
	sl := ShortLex{}
	a, b := Letter(0), Letter(1)
	if !sl.Greater(Word{a, a, a}, Word{b, b}) {
		t.Fatal("longer word should be greater under shortlex")
	}
	if !sl.Greater(Word{b}, Word{a}) {
		t.Fatal("lexicographically later letter should be greater at equal length")
	}
	if sl.Greater(Word{a}, Word{a}) {
		t.Fatal("equal words must not be greater")
	}
}

func TestOrientPicksMaxMin(t *testing.T) {
	sl := ShortLex{}
	u := Word{Letter(1), Letter(0)} // "ba"
	v := Word{Letter(0), Letter(1)} // "ab"
	max, min, ok := Orient(sl, u, v)
	if !ok {
		t.Fatal("ba, ab should be orientable under shortlex")
	}
	if !max.Equal(u) || !min.Equal(v) {
		t.Fatalf("expected max=ba min=ab, got max=%v min=%v", max, min)
	}
}

func TestOrientRejectsEqualWords(t *testing.T) {
	sl := ShortLex{}
	u := Word{Letter(0), Letter(1)}
	_, _, ok := Orient(sl, u, u.Clone())
	if ok {
		t.Fatal("equal words must not be orientable")
	}
}

func TestRecursivePathEqualLeadingLettersRecurse(t *testing.T) {
	rpo := RecursivePath{}
	a, b := Letter(0), Letter(1)
	// a.b vs a.a: leading letters equal, recurse on (b) vs (a); b has
	// higher precedence under identity precedence so a.b > a.a.
	if !rpo.Greater(Word{a, b}, Word{a, a}) {
		t.Fatal("expected a.b > a.a under recursive path order")
	}
}

func TestRecursivePathEmptyWordIsSmallest(t *testing.T) {
	rpo := RecursivePath{}
	if rpo.Greater(Word{}, Word{Letter(0)}) {
		t.Fatal("empty word must never be greater than a non-empty one")
	}
	if !rpo.Greater(Word{Letter(0)}, Word{}) {
		t.Fatal("any non-empty word must be greater than the empty word")
	}
}

func TestAlphabetFromStringRejectsDuplicates(t *testing.T) {
	if _, err := NewAlphabetFromString("aba"); err == nil {
		t.Fatal("expected an InvalidAlphabet error for duplicated characters")
	}
}

func TestAlphabetParseWordRoundTrip(t *testing.T) {
	a, err := NewAlphabetFromString("ab")
	if err != nil {
		t.Fatal(err)
	}
	w, err := a.ParseWord("abba")
	if err != nil {
		t.Fatal(err)
	}
	if got := w.String(a); got != "abba" {
		t.Fatalf("got %q, want %q", got, "abba")
	}
}

func TestPresentationDropsIdentityRelationsSilently(t *testing.T) {
	a, err := NewAlphabetFromString("ab")
	if err != nil {
		t.Fatal(err)
	}
	w, _ := a.ParseWord("ab")
	p, err := New(a, ShortLex{}, []Relation{{U: w, V: w.Clone()}})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Relations) != 0 {
		t.Fatalf("identity relation should have been dropped, got %d relations", len(p.Relations))
	}
}

func TestPresentationValidatesAlphabet(t *testing.T) {
	a, _ := NewAlphabet(2)
	_, err := New(a, ShortLex{}, []Relation{{U: Word{Letter(5)}, V: Word{Letter(0)}}})
	if err == nil {
		t.Fatal("expected an InvalidWord error for an out-of-range letter")
	}
}

func TestPresentationCloneIsIndependent(t *testing.T) {
	a, _ := NewAlphabetFromString("ab")
	u, _ := a.ParseWord("ab")
	v, _ := a.ParseWord("ba")
	p, err := New(a, ShortLex{}, []Relation{{U: u, V: v}})
	if err != nil {
		t.Fatal(err)
	}
	clone := p.Clone()
	clone.Relations[0].U[0] = Letter(99)
	if p.Relations[0].U[0] == Letter(99) {
		t.Fatal("mutating a clone's relation must not affect the original")
	}
}
