package toddcoxeter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
	"github.com/gokando-labs/fpsg/pkg/runner"
	"github.com/gokando-labs/fpsg/pkg/word"
)

func kleinFourPresentation(t *testing.T) *word.Presentation {
	t.Helper()
	a, err := word.NewAlphabetFromString("ab")
	if err != nil {
		t.Fatal(err)
	}
	aa, _ := a.ParseWord("aa")
	bb, _ := a.ParseWord("bb")
	abab, _ := a.ParseWord("abab")
	empty := word.Word{}
	p, err := word.New(a, word.ShortLex{}, []word.Relation{
		{U: aa, V: empty},
		{U: bb, V: empty},
		{U: abab, V: empty},
	})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTrivialGroupOfOrderFour(t *testing.T) {
	p := kleinFourPresentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := tc.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tc.State() != runner.Finished {
		t.Fatalf("want Finished, got %s", tc.State())
	}
	size, err := tc.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 4 {
		t.Fatalf("want size 4, got %d", size)
	}
	edges, err := tc.WordGraph()
	if err != nil {
		t.Fatal(err)
	}
	for c := 1; c <= size; c++ {
		for _, l := range []word.Letter{0, 1} {
			found := false
			for _, e := range edges {
				if e.From == c && e.Letter == l {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("coset %d missing a defined edge for letter %d", c, l)
			}
		}
	}
}

func TestCosetTableMatchesWordGraph(t *testing.T) {
	p := kleinFourPresentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, tc.Run())

	rows, err := tc.CosetTable()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	edges, err := tc.WordGraph()
	require.NoError(t, err)
	for _, e := range edges {
		require.Equal(t, e.To, rows[e.From-1][int(e.Letter)], "coset_table and word_graph must agree on every edge")
	}
}

func symmetricGroupS4Presentation(t *testing.T) *word.Presentation {
	t.Helper()
	// Coxeter presentation on 3 generators (s1,s2,s3) with braid relations:
	// si^2 = 1, (s1 s2)^3 = 1, (s2 s3)^3 = 1, (s1 s3)^2 = 1.
	a, err := word.NewAlphabetFromString("xyz")
	if err != nil {
		t.Fatal(err)
	}
	mustWord := func(s string) word.Word {
		w, err := a.ParseWord(s)
		if err != nil {
			t.Fatal(err)
		}
		return w
	}
	empty := word.Word{}
	rels := []word.Relation{
		{U: mustWord("xx"), V: empty},
		{U: mustWord("yy"), V: empty},
		{U: mustWord("zz"), V: empty},
		{U: mustWord("xyxyxy"), V: empty},
		{U: mustWord("yzyzyz"), V: empty},
		{U: mustWord("xzxz"), V: empty},
	}
	p, err := word.New(a, word.ShortLex{}, rels)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSymmetricGroupS4HasOrder24(t *testing.T) {
	p := symmetricGroupS4Presentation(t)
	cfg := DefaultConfig()
	cfg.MaxCosets = Bounded(1000)
	tc, err := New(p, TwoSided, nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := tc.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	size, err := tc.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 24 {
		t.Fatalf("want size 24, got %d", size)
	}
}

func TestSizeRequiresFinished(t *testing.T) {
	p := kleinFourPresentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tc.Size(); err == nil {
		t.Fatal("expected NotReady before run()")
	} else if _, ok := err.(*fpserr.NotReady); !ok {
		t.Fatalf("want NotReady, got %v", err)
	}
}

func TestRunForZeroDurationTimesOutImmediately(t *testing.T) {
	p := kleinFourPresentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = tc.RunFor(0)
	if err == nil {
		t.Fatal("expected a Cancelled(Timeout) error")
	}
	if tc.State() != runner.TimedOut {
		t.Fatalf("want TimedOut, got %s", tc.State())
	}
}

func TestKillFromAnotherGoroutine(t *testing.T) {
	p := symmetricGroupS4Presentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- tc.Run() }()
	time.Sleep(time.Millisecond)
	tc.Kill()
	<-done
	if tc.State() != runner.Dead && tc.State() != runner.Finished {
		t.Fatalf("want Dead or Finished, got %s", tc.State())
	}
}

func TestEventuallyReachesFinished(t *testing.T) {
	p := kleinFourPresentation(t)
	tc, err := New(p, TwoSided, nil, DefaultConfig())
	require.NoError(t, err)

	go func() { _ = tc.Run() }()

	require.Eventually(t, func() bool {
		return tc.State() == runner.Finished
	}, time.Second, time.Millisecond, "expected the engine to reach Finished")

	size, err := tc.Size()
	require.NoError(t, err)
	require.Equal(t, 4, size)
}
