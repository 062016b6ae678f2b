package runner

import (
	"testing"
	"time"
)

func TestLoopFinishes(t *testing.T) {
	var b Base
	b.ID = "r1"
	n := 0
	err := b.Run(func() (bool, error) {
		n++
		return n >= 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.State() != Finished {
		t.Fatalf("want Finished, got %s", b.State())
	}
	if n != 3 {
		t.Fatalf("want 3 steps, got %d", n)
	}
}

func TestRunIdempotentAfterFinished(t *testing.T) {
	var b Base
	calls := 0
	step := func() (bool, error) { calls++; return true, nil }
	if err := b.Run(step); err != nil {
		t.Fatal(err)
	}
	if err := b.Run(step); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("want step called once, got %d", calls)
	}
}

func TestRunForTimesOut(t *testing.T) {
	var b Base
	err := b.RunFor(5*time.Millisecond, func() (bool, error) {
		time.Sleep(time.Millisecond)
		return false, nil
	})
	if err == nil {
		t.Fatal("expected a Cancelled(Timeout) error")
	}
	if b.State() != TimedOut {
		t.Fatalf("want TimedOut, got %s", b.State())
	}
}

func TestRunUntilPredicate(t *testing.T) {
	var b Base
	count := 0
	err := b.RunUntil(func() bool { return count >= 2 }, func() (bool, error) {
		count++
		return false, nil
	})
	if err == nil {
		t.Fatal("expected a Cancelled(Predicate) error")
	}
	if b.State() != StoppedByPredicate {
		t.Fatalf("want StoppedByPredicate, got %s", b.State())
	}
}

func TestKillFromAnotherGoroutine(t *testing.T) {
	var b Base
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- b.Run(func() (bool, error) {
			select {
			case <-started:
			default:
				close(started)
			}
			time.Sleep(time.Millisecond)
			return false, nil
		})
	}()
	<-started
	b.Kill()
	if err := <-done; err == nil {
		t.Fatal("expected a Cancelled(Killed) error")
	}
	if b.State() != Dead {
		t.Fatalf("want Dead, got %s", b.State())
	}
	if !b.Dead() {
		t.Fatal("Dead() should report true")
	}
}

func TestStateResumable(t *testing.T) {
	cases := []struct {
		s    State
		want bool
	}{
		{NotStarted, true},
		{Running, false},
		{Finished, true},
		{TimedOut, true},
		{StoppedByPredicate, true},
		{Dead, false},
	}
	for _, c := range cases {
		if got := c.s.Resumable(); got != c.want {
			t.Errorf("%s.Resumable() = %v, want %v", c.s, got, c.want)
		}
	}
}
