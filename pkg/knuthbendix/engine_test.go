package knuthbendix

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
	"github.com/gokando-labs/fpsg/pkg/runner"
	"github.com/gokando-labs/fpsg/pkg/word"
)

func commutativePresentation(t *testing.T) *word.Presentation {
	t.Helper()
	a, err := word.NewAlphabetFromString("ab")
	if err != nil {
		t.Fatal(err)
	}
	ba, _ := a.ParseWord("ba")
	ab, _ := a.ParseWord("ab")
	p, err := word.New(a, word.ShortLex{}, []word.Relation{{U: ba, V: ab}})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFreeCommutativePairCompletesWithOneRule(t *testing.T) {
	p := commutativePresentation(t)
	kb, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := kb.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.State() != runner.Finished {
		t.Fatalf("want Finished, got %s", kb.State())
	}
	if !kb.Confluent() {
		t.Fatal("expected the completed engine to be confluent")
	}
	rules := kb.Rules()
	if len(rules) != 1 {
		t.Fatalf("want exactly 1 rule, got %d", len(rules))
	}

	bbaa, _ := p.Alphabet.ParseWord("bbaa")
	nf, err := kb.NormalForm(bbaa)
	if err != nil {
		t.Fatal(err)
	}
	if got := nf.String(p.Alphabet); got != "aabb" {
		t.Fatalf("normal_form(bbaa) = %q, want %q", got, "aabb")
	}

	abab, _ := p.Alphabet.ParseWord("abab")
	aabb, _ := p.Alphabet.ParseWord("aabb")
	eq, err := kb.EqualTo(abab, aabb)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Fatal("expected equal_to(abab, aabb) to be true")
	}
}

func TestNormalFormIsIdempotent(t *testing.T) {
	p := commutativePresentation(t)
	kb, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := kb.Run(); err != nil {
		t.Fatal(err)
	}
	w, _ := p.Alphabet.ParseWord("bbaa")
	nf1, err := kb.NormalForm(w)
	if err != nil {
		t.Fatal(err)
	}
	nf2, err := kb.NormalForm(nf1)
	if err != nil {
		t.Fatal(err)
	}
	if !nf1.Equal(nf2) {
		t.Fatalf("normal_form not idempotent: %v != %v", nf1, nf2)
	}
}

func TestRunForZeroDurationTimesOutImmediately(t *testing.T) {
	p := commutativePresentation(t)
	kb, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = kb.RunFor(0)
	if err == nil {
		t.Fatal("expected a Cancelled(Timeout) error")
	}
	if e, ok := err.(*fpserr.Cancelled); !ok || e.Reason != fpserr.CancelTimeout {
		t.Fatalf("want Cancelled{Timeout}, got %#v", err)
	}
	if kb.State() != runner.TimedOut {
		t.Fatalf("want TimedOut, got %s", kb.State())
	}
}

func TestKillFromAnotherGoroutineStopsTheEngine(t *testing.T) {
	a, _ := word.NewAlphabetFromString("abc")
	x, _ := a.ParseWord("ba")
	y, _ := a.ParseWord("ab")
	z, _ := a.ParseWord("cb")
	w, _ := a.ParseWord("bc")
	p, err := word.New(a, word.ShortLex{}, []word.Relation{{U: x, V: y}, {U: z, V: w}})
	if err != nil {
		t.Fatal(err)
	}
	kb, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- kb.Run()
	}()
	// Give the run loop a moment to start, then kill it. Whether it had
	// already finished (commuting generators complete fast) or not, kill
	// must be observable and safe to call either way.
	time.Sleep(time.Millisecond)
	kb.Kill()
	<-done
	if kb.State() != runner.Dead && kb.State() != runner.Finished {
		t.Fatalf("want Dead or Finished, got %s", kb.State())
	}
}

func TestAddRuleRejectedAfterRunStarts(t *testing.T) {
	p := commutativePresentation(t)
	kb, err := New(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := kb.Run(); err != nil {
		t.Fatal(err)
	}
	w, _ := p.Alphabet.ParseWord("ab")
	err = kb.AddRule(w, word.Word{})
	if _, ok := err.(*fpserr.InvalidRule); !ok {
		t.Fatalf("want InvalidRule, got %v", err)
	}
}

func TestToPresentationRoundTripsTheCongruence(t *testing.T) {
	p := commutativePresentation(t)
	kb, err := New(p, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, kb.Run())

	p2, err := kb.ToPresentation()
	require.NoError(t, err)

	kb2, err := New(p2, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, kb2.Run())
	require.True(t, kb2.Confluent())

	bbaa, _ := p.Alphabet.ParseWord("bbaa")
	nf1, err := kb.NormalForm(bbaa)
	require.NoError(t, err)
	nf2, err := kb2.NormalForm(bbaa)
	require.NoError(t, err)
	require.True(t, nf1.Equal(nf2), "round-tripped presentation must agree on normal forms")
}

func TestLeftScanRewriterAgreesWithTrieRewriter(t *testing.T) {
	p := commutativePresentation(t)
	cfg := DefaultConfig()
	cfg.Rewriter = LeftScanRewriter
	kb, err := New(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := kb.Run(); err != nil {
		t.Fatal(err)
	}
	bbaa, _ := p.Alphabet.ParseWord("bbaa")
	nf, err := kb.NormalForm(bbaa)
	if err != nil {
		t.Fatal(err)
	}
	if got := nf.String(p.Alphabet); got != "aabb" {
		t.Fatalf("left-scan normal_form(bbaa) = %q, want %q", got, "aabb")
	}
}
