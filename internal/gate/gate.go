package gate

import (
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// #region gate
// Gate screens untrusted pour requests before they reach the engine.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then predicts whether the pour would
// move anything. Indices are 0-based; reasons use 1-based jar numbers.
func (g *Gate) Evaluate(cfg puzzle.Config, amounts puzzle.State, from, to int) GateDecision {
	var vetoes []VetoSignal
	n := cfg.Jars()

	// --- Hard veto pass ---

	// 1. Source and destination must name real jars
	if !puzzle.InRange(n, from) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoOutOfRange,
			Reason: fmt.Sprintf("source jar %d outside 1..%d", from+1, n),
		})
	}
	if !puzzle.InRange(n, to) {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoOutOfRange,
			Reason: fmt.Sprintf("destination jar %d outside 1..%d", to+1, n),
		})
	}

	// 2. Caller's view of the state must match the configuration
	if len(amounts) != n {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoStateMismatch,
			Reason: fmt.Sprintf("state has %d jars, configuration has %d", len(amounts), n),
		})
	}

	// 3. Self-pour, only when configured as an error
	if g.config.RejectSelfPour && from == to {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoSelfPour,
			Reason: fmt.Sprintf("cannot pour jar %d into itself", from+1),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      ActionReject,
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	// --- No-op pass ---
	if reason := noOpReason(cfg, amounts, from, to); reason != "" {
		return GateDecision{Action: ActionNoOp, Reason: reason}
	}

	q := puzzle.Quantity(cfg.Capacities, amounts, from, to)
	return GateDecision{
		Action:   ActionAccept,
		Reason:   fmt.Sprintf("would pour %d", q),
		Quantity: q,
	}
}

// #endregion gate

// #region helpers
func noOpReason(cfg puzzle.Config, amounts puzzle.State, from, to int) string {
	switch {
	case from == to:
		return fmt.Sprintf("jar %d poured into itself", from+1)
	case amounts[from] <= 0:
		return fmt.Sprintf("jar %d is empty", from+1)
	case amounts[to] >= cfg.Capacities[to]:
		return fmt.Sprintf("jar %d is full", to+1)
	}
	return ""
}

// #endregion helpers
