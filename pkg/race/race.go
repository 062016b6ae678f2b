// Package race runs several independent Runner strategies concurrently over
// the same underlying question (is u equal to v, what is the size of the
// presentation) and reports whichever finishes first, killing the rest.
//
// Concurrency is bounded by a semaphore-guarded errgroup rather than an
// unbounded goroutine-per-runner fan-out, since a race typically has only a
// handful of competitors and benefits more from a simple shared cap than
// from a dynamically scaling worker pool.
package race

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
	"github.com/gokando-labs/fpsg/pkg/runner"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ProgressCounter is implemented by runners that can report a scalar
// measure of work done (rule count for KnuthBendix, live coset count for
// ToddCoxeter). Optional: a runner that does not implement it is reported
// with Count 0.
type ProgressCounter interface {
	ProgressCount() int
}

// Progress is a point-in-time snapshot of one competitor, used for logging
// and for callers that want to observe a race without waiting for it to
// finish.
type Progress struct {
	RunnerID string
	State    runner.State
	Count    int
	Elapsed  time.Duration
	// Killed is the wall-clock instant Kill() was issued to this runner as
	// a race loser, zero if it was never killed (it either won or the race
	// has not finished).
	Killed time.Time
}

// Race drives a fixed set of Runner strategies concurrently and reports the
// first to reach Finished. Once a winner is decided every other competitor
// is Killed.
type Race struct {
	mu         sync.Mutex
	runners    []runner.Runner
	maxThreads int
	started    bool
	startedAt  time.Time

	winnerMu     sync.Mutex
	winner       runner.Runner
	killInstants map[string]time.Time
}

// New returns an empty Race with max_threads defaulting to the host's
// reported hardware concurrency.
func New() *Race {
	return &Race{maxThreads: runtime.NumCPU(), killInstants: make(map[string]time.Time)}
}

// AddRunner registers a competitor. Legal only before the race starts.
func (r *Race) AddRunner(rn runner.Runner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return &fpserr.NotReady{Operation: "add_runner (race already started)"}
	}
	r.runners = append(r.runners, rn)
	return nil
}

// SetMaxThreads clamps the concurrency cap to [1, hardware_concurrency].
func (r *Race) SetMaxThreads(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	if n > max {
		n = max
	}
	r.maxThreads = n
}

// Snapshot returns the current State of every registered competitor.
func (r *Race) Snapshot() []Progress {
	r.mu.Lock()
	runners := append([]runner.Runner(nil), r.runners...)
	startedAt := r.startedAt
	r.mu.Unlock()
	out := make([]Progress, len(runners))
	for i, rn := range runners {
		p := Progress{RunnerID: rn.ID(), State: rn.State()}
		if pc, ok := rn.(ProgressCounter); ok {
			p.Count = pc.ProgressCount()
		}
		if !startedAt.IsZero() {
			p.Elapsed = time.Since(startedAt)
		}
		out[i] = p
	}
	return out
}

// Report is Snapshot enriched with each non-winning competitor's kill
// instant, giving a decided race an inspectable trail of when the losers
// were stopped, not just a bare winner/loser outcome.
func (r *Race) Report() []Progress {
	out := r.Snapshot()
	r.winnerMu.Lock()
	defer r.winnerMu.Unlock()
	for i := range out {
		if t, ok := r.killInstants[out[i].RunnerID]; ok {
			out[i].Killed = t
		}
	}
	return out
}

// Winner returns the competitor that finished first, if the race has decided
// one.
func (r *Race) Winner() (runner.Runner, bool) {
	r.winnerMu.Lock()
	defer r.winnerMu.Unlock()
	return r.winner, r.winner != nil
}

// drive runs every registered runner concurrently, bounded by maxThreads,
// each executing the given per-runner start func (one of run/run_for/
// run_until). The first goroutine to observe its runner reach Finished
// claims the win and kills every other competitor; a runner that merely
// times out, stops on its predicate, or dies is never a winner.
func (r *Race) drive(start func(rn runner.Runner) error) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return &fpserr.NotReady{Operation: "run (race already started)"}
	}
	if len(r.runners) == 0 {
		r.mu.Unlock()
		return &fpserr.RaceEmpty{}
	}
	r.started = true
	r.startedAt = time.Now()
	runners := append([]runner.Runner(nil), r.runners...)
	maxThreads := r.maxThreads
	r.mu.Unlock()

	sem := semaphore.NewWeighted(int64(maxThreads))
	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)

	for _, rn := range runners {
		rn := rn
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			err := start(rn)

			if rn.Finished() {
				r.claimWinLocked(rn, runners)
			}

			return err
		})
	}

	_ = g.Wait()

	if _, ok := r.Winner(); !ok {
		return &fpserr.RaceEmpty{}
	}
	return nil
}

// claimWinLocked records rn as the winner if no winner has been claimed yet,
// and propagates Kill to every other competitor.
func (r *Race) claimWinLocked(rn runner.Runner, all []runner.Runner) {
	r.winnerMu.Lock()
	already := r.winner != nil
	if !already {
		r.winner = rn
	}
	r.winnerMu.Unlock()

	if already {
		return
	}
	now := time.Now()
	for _, other := range all {
		if other != rn {
			other.Kill()
			r.winnerMu.Lock()
			r.killInstants[other.ID()] = now
			r.winnerMu.Unlock()
		}
	}
}

// Run starts every registered competitor and blocks until one of them
// finishes (or all die).
func (r *Race) Run() error {
	return r.drive(func(rn runner.Runner) error { return rn.Run() })
}

// RunFor gives every competitor the same run duration d; each competitor's
// deadline is stamped when that competitor starts running.
func (r *Race) RunFor(d time.Duration) error {
	return r.drive(func(rn runner.Runner) error { return rn.RunFor(d) })
}

// checkIntervalInitial is the starting round length for RunUntil's
// geometric backoff.
const checkIntervalInitial = 100 * time.Millisecond

// checkIntervalMax caps RunUntil's round length so long-running predicates
// still get checked at a reasonable cadence.
const checkIntervalMax = time.Second

// checkIntervalBackoffFactor is the per-round growth factor (doubling).
const checkIntervalBackoffFactor = 2.0

// RunUntil drives every competitor in rounds of run_for(check_interval),
// evaluating pred between rounds; check_interval starts at
// checkIntervalInitial and doubles each round up to checkIntervalMax, so
// short-lived predicates resolve with minimal per-round overhead while
// long-running ones avoid thrashing the engines with tiny deadlines. It
// returns nil once pred holds, whether or not a competitor has finished.
func (r *Race) RunUntil(pred func() bool) error {
	err := r.drive(func(rn runner.Runner) error {
		interval := checkIntervalInitial
		for {
			if pred() {
				return nil
			}
			if rn.Finished() || rn.Dead() {
				return nil
			}
			if err := rn.RunFor(interval); err != nil {
				if _, ok := err.(*fpserr.Cancelled); !ok {
					return err
				}
			}
			if pred() {
				return nil
			}
			if rn.Finished() || rn.Dead() {
				return nil
			}
			interval = time.Duration(float64(interval) * checkIntervalBackoffFactor)
			if interval > checkIntervalMax {
				interval = checkIntervalMax
			}
		}
	})
	if _, empty := err.(*fpserr.RaceEmpty); empty {
		r.mu.Lock()
		n := len(r.runners)
		r.mu.Unlock()
		if n > 0 && pred() {
			return nil
		}
	}
	return err
}
