package engine

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

var (
	// ErrInvalidPour is returned for jar indices outside the configuration.
	ErrInvalidPour = errors.New("invalid pour")
	// ErrInvalidState is returned when Restore receives amounts that don't fit the jars.
	ErrInvalidState = errors.New("invalid state")
)

// #region types
// PourResult describes a pour. A zero Quantity means nothing moved.
type PourResult struct {
	Action      puzzle.Action
	Description string
}

// Moved reports whether the pour transferred any liquid.
func (r PourResult) Moved() bool {
	return r.Action.Quantity > 0
}

// Engine owns the live fill amounts for one configuration. It is not safe for
// concurrent use; callers serialize access.
type Engine struct {
	cfg     puzzle.Config
	amounts puzzle.State
}

// #endregion types

// #region constructor
// New validates cfg and returns an engine at the initial fill.
func New(cfg puzzle.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()
	return &Engine{cfg: cfg, amounts: puzzle.InitialFill(cfg.Capacities)}, nil
}

// #endregion constructor

// #region pour
// Pour moves min(source amount, destination space) from jar from to jar to.
// Self-pours, empty sources and full destinations are no-ops, not errors.
func (e *Engine) Pour(from, to int) (PourResult, error) {
	n := e.cfg.Jars()
	if !puzzle.InRange(n, from) || !puzzle.InRange(n, to) {
		return PourResult{}, fmt.Errorf("%w: jars %d->%d outside 1..%d", ErrInvalidPour, from+1, to+1, n)
	}

	q := puzzle.Quantity(e.cfg.Capacities, e.amounts, from, to)
	action := puzzle.Action{From: from, To: to, Quantity: q}
	if q <= 0 {
		return PourResult{Action: action}, nil
	}

	e.amounts[from] -= q
	e.amounts[to] += q
	return PourResult{Action: action, Description: action.Description()}, nil
}

// #endregion pour

// #region reset
// Reset restores the initial fill. The caller owns clearing the history.
func (e *Engine) Reset() {
	e.amounts = puzzle.InitialFill(e.cfg.Capacities)
}

// #endregion reset

// #region restore
// Restore overwrites the live amounts, e.g. from a history snapshot on rollback.
func (e *Engine) Restore(amounts puzzle.State) error {
	if !puzzle.WithinBounds(e.cfg.Capacities, amounts) {
		return fmt.Errorf("%w: %v does not fit capacities %v", ErrInvalidState, amounts, e.cfg.Capacities)
	}
	e.amounts = amounts.Clone()
	return nil
}

// #endregion restore

// #region queries
// IsTargetReached reports whether the target appears in any jar of the live state.
func (e *Engine) IsTargetReached() bool {
	return e.amounts.Contains(e.cfg.Target)
}

// Amounts returns a copy of the live state.
func (e *Engine) Amounts() puzzle.State {
	return e.amounts.Clone()
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() puzzle.Config {
	return e.cfg.Clone()
}

// #endregion queries
