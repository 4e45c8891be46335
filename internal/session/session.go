package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/danielpatrickdp/jugs/internal/engine"
	"github.com/danielpatrickdp/jugs/internal/eval"
	"github.com/danielpatrickdp/jugs/internal/history"
	"github.com/danielpatrickdp/jugs/internal/metrics"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"github.com/danielpatrickdp/jugs/internal/solver"
	"github.com/google/uuid"
)

// #region session
// Session composes the engine, history log and solver behind the operations a
// presentation layer calls. Engine and log only change together under mu.
type Session struct {
	mu         sync.Mutex
	id         string
	engine     *engine.Engine
	log        *history.Log
	eval       checker
	solverOpts solver.Options
	logger     *slog.Logger
	observers  []func(Event)
	seq        uint64 // last event sequence number, under mu

	// events are delivered in Seq order
	emitMu    sync.Mutex
	emitCond  *sync.Cond
	delivered uint64
}

// checker validates a single committed transition.
type checker interface {
	Run(cfg puzzle.Config, before, after puzzle.State) eval.EvalResult
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithObserver registers fn to receive every event. Observers run one at a
// time in event order and must not call mutating session operations.
func WithObserver(fn func(Event)) Option {
	return func(s *Session) { s.observers = append(s.observers, fn) }
}

// WithSolverOptions sets the options passed to every search.
func WithSolverOptions(opts solver.Options) Option {
	return func(s *Session) { s.solverOpts = opts }
}

// WithStrict validates every pour against the physical invariants before
// committing it.
func WithStrict() Option {
	return func(s *Session) { s.eval = eval.NewEvalHarness() }
}

// New returns an unconfigured session.
func New(opts ...Option) *Session {
	s := &Session{
		log:    history.NewLog(),
		logger: slog.New(slog.DiscardHandler),
	}
	s.emitCond = sync.NewCond(&s.emitMu)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers fn to receive every subsequent event.
func (s *Session) Observe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// #endregion session

// #region setup
// Setup validates the configuration and starts a new session at the initial
// fill. On error the previous session, if any, is left untouched.
func (s *Session) Setup(capacities []int, target int) (puzzle.Config, error) {
	cfg, err := puzzle.NewConfig(capacities, target)
	if err != nil {
		return puzzle.Config{}, fmt.Errorf("setup: %w", err)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return puzzle.Config{}, fmt.Errorf("setup: %w", err)
	}

	s.mu.Lock()
	s.id = uuid.New().String()
	s.engine = eng
	s.log.Clear()
	entry := s.log.Append(eng.Amounts(), InitialDescription)
	ev := s.eventLocked(EventSetup, entry, 0, InitialDescription)
	s.mu.Unlock()

	metrics.RecordReset()
	s.logger.Info("session setup",
		"session_id", ev.SessionID, "capacities", cfg.Capacities, "target", cfg.Target, "amounts", ev.Amounts)
	s.emit(ev)
	return cfg.Clone(), nil
}

// #endregion setup

// #region pour
// Pour moves liquid from jar from to jar to (0-based). A zero-quantity result
// is a no-op and leaves the history unchanged.
func (s *Session) Pour(from, to int) (engine.PourResult, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return engine.PourResult{}, ErrNotConfigured
	}
	res, ev, err := s.pourLocked(from, to, nil)
	s.mu.Unlock()

	if ev != nil {
		s.emit(*ev)
	}
	return res, err
}

// PourIf is Pour with a screening step. screen runs under the session lock
// against the live config and amounts; a non-nil result rejects the pour
// with ErrRejected and leaves the state unchanged.
func (s *Session) PourIf(from, to int, screen func(cfg puzzle.Config, amounts puzzle.State) error) (engine.PourResult, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return engine.PourResult{}, ErrNotConfigured
	}
	res, ev, err := s.pourLocked(from, to, screen)
	s.mu.Unlock()

	if ev != nil {
		s.emit(*ev)
	}
	return res, err
}

func (s *Session) pourLocked(from, to int, screen func(puzzle.Config, puzzle.State) error) (engine.PourResult, *Event, error) {
	before := s.engine.Amounts()
	if screen != nil {
		if err := screen(s.engine.Config(), before.Clone()); err != nil {
			metrics.RecordPour(metrics.OutcomeRejected)
			ev := s.eventLocked(EventReject, history.Entry{}, -1, err.Error())
			return engine.PourResult{}, &ev, fmt.Errorf("pour: %w: %v", ErrRejected, err)
		}
	}
	res, err := s.engine.Pour(from, to)
	if err != nil {
		metrics.RecordPour(metrics.OutcomeRejected)
		ev := s.eventLocked(EventReject, history.Entry{}, -1, err.Error())
		return res, &ev, fmt.Errorf("pour: %w", err)
	}
	if !res.Moved() {
		metrics.RecordPour(metrics.OutcomeNoOp)
		ev := s.eventLocked(EventNoOp, history.Entry{}, -1, "")
		return res, &ev, nil
	}

	after := s.engine.Amounts()
	if s.eval != nil {
		if r := s.eval.Run(s.engine.Config(), before, after); !r.Passed {
			_ = s.engine.Restore(before)
			metrics.RecordPour(metrics.OutcomeRejected)
			ev := s.eventLocked(EventReject, history.Entry{}, -1, r.Reason)
			return engine.PourResult{}, &ev, fmt.Errorf("pour: %w: %s", ErrInvariant, r.Reason)
		}
	}

	entry := s.log.Append(after, res.Description)
	metrics.RecordPour(metrics.OutcomeMoved)
	ev := s.eventLocked(EventPour, entry, s.log.Len()-1, res.Description)
	return res, &ev, nil
}

// #endregion pour

// #region reset
// Reset restores the initial fill and re-seeds the history with one snapshot.
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	s.engine.Reset()
	s.log.Clear()
	entry := s.log.Append(s.engine.Amounts(), InitialDescription)
	ev := s.eventLocked(EventReset, entry, 0, InitialDescription)
	s.mu.Unlock()

	metrics.RecordReset()
	s.emit(ev)
	return nil
}

// #endregion reset

// #region rollback
// Rollback restores the state recorded at history index and discards every
// later entry. Out-of-range indices change nothing.
func (s *Session) Rollback(index int) (history.Entry, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return history.Entry{}, ErrNotConfigured
	}
	target, err := s.log.At(index)
	if err != nil {
		s.mu.Unlock()
		return history.Entry{}, fmt.Errorf("rollback: %w", err)
	}
	if err := s.engine.Restore(target.Amounts); err != nil {
		s.mu.Unlock()
		return history.Entry{}, fmt.Errorf("rollback: %w", err)
	}
	if _, err := s.log.Truncate(index); err != nil {
		s.mu.Unlock()
		return history.Entry{}, fmt.Errorf("rollback: %w", err)
	}
	ev := s.eventLocked(EventRollback, target, index, fmt.Sprintf("Rollback to step %d", index))
	s.mu.Unlock()

	metrics.RecordRollback()
	s.emit(ev)
	return target, nil
}

// #endregion rollback

// #region solve
// Solve searches from the current state without touching it. An unsolvable
// puzzle returns Solved=false and a nil error.
func (s *Session) Solve(ctx context.Context) (solver.Result, error) {
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return solver.Result{}, ErrNotConfigured
	}
	cfg := s.engine.Config()
	start := s.engine.Amounts()
	opts := s.solverOpts
	s.mu.Unlock()

	began := time.Now()
	res, err := solver.Search(ctx, cfg, start, opts)
	elapsed := time.Since(began)

	label := metrics.ResultUnsolvable
	switch {
	case errors.Is(err, solver.ErrStateLimit):
		label = metrics.ResultLimit
	case err != nil:
		label = metrics.ResultCancelled
	case res.Solved:
		label = metrics.ResultSolved
	}
	metrics.RecordSolve(label, elapsed, res.Explored, len(res.Actions))
	s.logger.Info("solve",
		"result", label, "pours", len(res.Actions), "explored", res.Explored, "elapsed", elapsed)

	if err != nil {
		return res, fmt.Errorf("solve: %w", err)
	}

	desc := "No solution"
	if res.Solved {
		desc = fmt.Sprintf("Solution in %d pours", len(res.Actions))
	}
	s.mu.Lock()
	ev := s.solveEventLocked(cfg, start, desc)
	s.mu.Unlock()
	s.emit(ev)
	return res, nil
}

// #endregion solve

// #region apply
// ApplySolution replays actions one pour at a time, waiting pace between
// steps. It returns how many pours were applied; on cancellation or error the
// history holds exactly those pours.
func (s *Session) ApplySolution(ctx context.Context, actions []puzzle.Action, pace time.Duration) (int, error) {
	for i, a := range actions {
		if i > 0 && pace > 0 {
			if err := wait(ctx, pace); err != nil {
				return i, fmt.Errorf("apply solution: %w", err)
			}
		}
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("apply solution: %w", err)
		}

		s.mu.Lock()
		if s.engine == nil {
			s.mu.Unlock()
			return i, ErrNotConfigured
		}
		res, ev, err := s.pourLocked(a.From, a.To, nil)
		s.mu.Unlock()
		if ev != nil {
			s.emit(*ev)
		}
		if err != nil {
			return i, fmt.Errorf("apply step %d: %w", i+1, err)
		}
		if res.Action != a {
			applied := i
			if res.Moved() {
				applied++
			}
			return applied, fmt.Errorf("apply step %d: %w: expected %q, got quantity %d",
				i+1, ErrReplayDiverged, a.Description(), res.Action.Quantity)
		}
	}
	return len(actions), nil
}

// SolveAndApply solves from the current state and replays the solution.
func (s *Session) SolveAndApply(ctx context.Context, pace time.Duration) (solver.Result, int, error) {
	res, err := s.Solve(ctx)
	if err != nil || !res.Solved {
		return res, 0, err
	}
	n, err := s.ApplySolution(ctx, res.Actions, pace)
	return res, n, err
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// #endregion apply

// #region queries
// CurrentState returns a copy of the live amounts.
func (s *Session) CurrentState() (puzzle.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNotConfigured
	}
	return s.engine.Amounts(), nil
}

// History returns a copy of the log in chronological order.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Solved reports whether the target is in some jar of the live state.
func (s *Session) Solved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine != nil && s.engine.IsTargetReached()
}

// Config returns the active configuration.
func (s *Session) Config() (puzzle.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return puzzle.Config{}, ErrNotConfigured
	}
	return s.engine.Config(), nil
}

// ID returns the current session ID, empty before Setup.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Snapshot returns a consistent copy of config and history.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return Snapshot{}, ErrNotConfigured
	}
	return Snapshot{
		SessionID: s.id,
		Config:    s.engine.Config(),
		Entries:   s.log.Entries(),
		Solved:    s.engine.IsTargetReached(),
	}, nil
}

// #endregion queries

// #region events
func (s *Session) eventLocked(kind EventKind, entry history.Entry, index int, desc string) Event {
	at := entry.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	s.seq++
	return Event{
		Seq:         s.seq,
		SessionID:   s.id,
		Kind:        kind,
		EntryID:     entry.ID,
		Index:       index,
		Amounts:     s.engine.Amounts(),
		Description: desc,
		Solved:      s.engine.IsTargetReached(),
		At:          at,
	}
}

// solveEventLocked describes a search from start. Amounts and Solved refer
// to start, not to the live state, which may have moved on since.
func (s *Session) solveEventLocked(cfg puzzle.Config, start puzzle.State, desc string) Event {
	ev := s.eventLocked(EventSolve, history.Entry{}, -1, desc)
	ev.Amounts = start.Clone()
	ev.Solved = start.Contains(cfg.Target)
	return ev
}

// emit delivers ev once every earlier event has been delivered. Every event
// built by eventLocked must be emitted exactly once.
func (s *Session) emit(ev Event) {
	s.mu.Lock()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	s.emitMu.Lock()
	for s.delivered+1 != ev.Seq {
		s.emitCond.Wait()
	}
	s.emitMu.Unlock()
	defer func() {
		s.emitMu.Lock()
		s.delivered = ev.Seq
		s.emitCond.Broadcast()
		s.emitMu.Unlock()
	}()

	s.logger.Debug("session event",
		"seq", ev.Seq, "session_id", ev.SessionID, "kind", string(ev.Kind), "index", ev.Index,
		"amounts", ev.Amounts, "description", ev.Description)
	for _, fn := range observers {
		fn(ev)
	}
}

// #endregion events
