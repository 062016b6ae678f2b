// Package runner implements the cooperative scheduling protocol that every
// long-running engine (Knuth-Bendix, Todd-Coxeter) satisfies: a small state
// machine plus a checkpoint discipline requiring every engine's run loop to
// poll its stop-conditions at bounded intervals rather than running an
// unbounded scan between checks.
//
// The state machine transitions via plain atomic loads/stores on a single
// int32 word, so State/Kill/Finish are lock-free and safe to call from any
// goroutine while the engine is running.
package runner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"

	"github.com/gokando-labs/fpsg/pkg/fpserr"
)

// Logger is the structured-logging sink every Runner and Race accepts. It is
// a concrete alias over the stumpy JSON backend for logiface, matching the
// only fully worked logiface.Event implementation in the example pack.
type Logger = *logiface.Logger[*stumpy.Event]

// NewNoopLogger returns a Logger that discards everything it is given; it is
// the default used whenever a caller does not configure one explicitly.
func NewNoopLogger() Logger {
	return stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(discardWriter{})))
}

type discardWriter struct{}

func (discardWriter) Write(*stumpy.Event) error { return nil }

// State is one of the six cooperative-runner states from the design's
// Runner contract.
type State int32

const (
	NotStarted State = iota
	Running
	Finished
	TimedOut
	StoppedByPredicate
	Dead
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Running:
		return "Running"
	case Finished:
		return "Finished"
	case TimedOut:
		return "TimedOut"
	case StoppedByPredicate:
		return "StoppedByPredicate"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// Resumable reports whether a Runner left in this state may legally be
// driven by another call to Run/RunFor/RunUntil. Finished, TimedOut and
// StoppedByPredicate are; Dead is terminal.
func (s State) Resumable() bool {
	return s == Finished || s == TimedOut || s == StoppedByPredicate || s == NotStarted
}

// StopReason is returned by a Checkpoint call that determined the run loop
// must stop; it is nil while the loop should keep going.
type StopReason struct {
	Target State
}

// Base is embedded by every engine that implements the Runner contract. It
// owns the atomic state word, deadline, kill flag and predicate, and the
// per-runner identity used to tag progress reports (design note: "a
// Race-local map from runner id to thread id, passed explicitly to the
// reporter" becomes, here, a field carried by the runner itself).
type Base struct {
	// ID identifies this runner for logging and Race bookkeeping. Set once
	// before the runner is registered with a Race; read-only thereafter.
	ID string

	state      atomic.Int32
	deadlineNs atomic.Int64 // UnixNano; 0 means "no deadline"
	killed     atomic.Bool

	mu        sync.Mutex
	predicate func() bool

	reportEveryNs atomic.Int64
	lastReportNs  atomic.Int64

	logger Logger
	loggerOnce sync.Once

	checkpointCount atomic.Uint64
}

func (b *Base) log() Logger {
	b.loggerOnce.Do(func() {
		if b.logger == nil {
			b.logger = NewNoopLogger()
		}
	})
	return b.logger
}

// SetLogger installs a structured logger for progress reports. Safe to call
// before the runner starts; not safe concurrently with Run.
func (b *Base) SetLogger(l Logger) {
	if l != nil {
		b.logger = l
	}
}

// State returns the current runner state.
func (b *Base) State() State { return State(b.state.Load()) }

func (b *Base) Started() bool {
	s := b.State()
	return s != NotStarted
}

func (b *Base) Finished() bool { return b.State() == Finished }

func (b *Base) Dead() bool { return b.State() == Dead }

func (b *Base) Stopped() bool { return b.State() == StoppedByPredicate }

func (b *Base) TimedOut() bool { return b.State() == TimedOut }

// Kill asynchronously signals Dead. Safe to call from another goroutine; the
// victim observes it at its next Checkpoint call, with bounded latency, not
// immediate cessation.
func (b *Base) Kill() {
	b.killed.Store(true)
}

// ReportEvery throttles progress reports emitted via MaybeReport to no more than
// once per duration.
func (b *Base) ReportEvery(d time.Duration) {
	b.reportEveryNs.Store(int64(d))
}

// armDeadline stamps an absolute deadline at the moment RunFor is called, as
// the design requires ("run_for stamps a deadline at the moment it is
// called").
func (b *Base) armDeadline(d time.Duration) {
	b.deadlineNs.Store(time.Now().Add(d).UnixNano())
}

func (b *Base) armPredicate(pred func() bool) {
	b.mu.Lock()
	b.predicate = pred
	b.mu.Unlock()
}

func (b *Base) clearStopConfig() {
	b.deadlineNs.Store(0)
	b.mu.Lock()
	b.predicate = nil
	b.mu.Unlock()
}

func (b *Base) begin() {
	b.state.Store(int32(Running))
}

// Checkpoint is called by an engine's inner loop at bounded intervals (the
// design's checkpoint discipline: "a few thousand primitive steps, not
// longer"). It observes kill, deadline and predicate stop-conditions and
// transitions state accordingly. ok is false once the loop must stop; the
// caller should return promptly without doing further algorithmic work.
func (b *Base) Checkpoint() (ok bool) {
	b.checkpointCount.Add(1)

	if b.killed.Load() {
		b.state.Store(int32(Dead))
		return false
	}

	if dl := b.deadlineNs.Load(); dl != 0 && time.Now().UnixNano() >= dl {
		b.state.Store(int32(TimedOut))
		return false
	}

	b.mu.Lock()
	pred := b.predicate
	b.mu.Unlock()
	if pred != nil && pred() {
		b.state.Store(int32(StoppedByPredicate))
		return false
	}

	return true
}

// Finish transitions Running -> Finished; Loop calls it once the engine's
// step reports that the computation has completed.
func (b *Base) Finish() {
	b.state.Store(int32(Finished))
}

// CheckpointCount reports how many times Checkpoint has been called, for
// tests and diagnostics only.
func (b *Base) CheckpointCount() uint64 {
	return b.checkpointCount.Load()
}

// MaybeReport passes the configured logger to fields, throttled by the
// configured ReportEvery interval. It adds no fields of its own: the
// callback tags its entry (both engines add the runner id, so logs from
// parallel runners in a Race stay de-interleavable).
func (b *Base) MaybeReport(fields func(e Logger)) {
	every := b.reportEveryNs.Load()
	now := time.Now().UnixNano()
	if every > 0 {
		last := b.lastReportNs.Load()
		if now-last < every {
			return
		}
		if !b.lastReportNs.CompareAndSwap(last, now) {
			return
		}
	}
	l := b.log()
	if fields != nil {
		fields(l)
	}
}

// Run drives step to completion or until a stop-condition fires. Idempotent
// once Finished: a second call returns immediately without re-entering the
// loop, per the design's "run() ... Idempotent after Finished."
func (b *Base) Run(step func() (done bool, err error)) error {
	if b.State() == Finished {
		return nil
	}
	return b.Loop(step)
}

// RunFor stamps a deadline = now + d and calls Run.
func (b *Base) RunFor(d time.Duration, step func() (done bool, err error)) error {
	b.armDeadline(d)
	defer b.deadlineNs.Store(0)
	return b.Run(step)
}

// RunUntil invokes pred at each checkpoint and stops once it returns true.
func (b *Base) RunUntil(pred func() bool, step func() (done bool, err error)) error {
	b.armPredicate(pred)
	defer b.armPredicate(nil)
	return b.Run(step)
}

// Runner is the interface every engine (KnuthBendix, ToddCoxeter) satisfies.
// The Race harness drives instances of this interface without knowing their
// concrete type (design note: "a tagged variant... or a trait object,
// whichever is idiomatic" — here, a plain interface).
type Runner interface {
	Run() error
	RunFor(d time.Duration) error
	RunUntil(pred func() bool) error
	ReportEvery(d time.Duration)
	Kill()
	State() State
	Started() bool
	Finished() bool
	Dead() bool
	Stopped() bool
	TimedOut() bool
	ID() string
}

// Loop drives a cooperative run loop: step is called repeatedly; it returns
// done=true once the algorithm itself has completed, and Loop then calls
// b.Finish(). Loop drives the checkpoint discipline for its caller:
// Checkpoint, step, repeat.
func (b *Base) Loop(step func() (done bool, err error)) error {
	b.begin()
	for {
		if !b.Checkpoint() {
			switch b.State() {
			case Dead:
				return &fpserr.Cancelled{Reason: fpserr.CancelKilled}
			case TimedOut:
				return &fpserr.Cancelled{Reason: fpserr.CancelTimeout}
			case StoppedByPredicate:
				return &fpserr.Cancelled{Reason: fpserr.CancelPredicate}
			}
			return nil
		}
		done, err := step()
		if err != nil {
			return err
		}
		if done {
			b.Finish()
			return nil
		}
	}
}
