package eval

import (
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// #region eval-harness
// EvalHarness checks the physical invariants of a single transition.
type EvalHarness struct{}

// NewEvalHarness creates an eval harness.
func NewEvalHarness() *EvalHarness {
	return &EvalHarness{}
}

// Run validates that after is a legal successor of before: same jar count,
// every jar within [0, capacity], total volume conserved, and at most two
// jars changed.
func (h *EvalHarness) Run(cfg puzzle.Config, before, after puzzle.State) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	// 1. Shape
	shapePass := len(after) == cfg.Jars() && len(before) == len(after)
	metrics = append(metrics, EvalMetric{Name: "jars", Value: len(after), Pass: shapePass})
	if !shapePass {
		failReasons = append(failReasons, fmt.Sprintf("state has %d jars, configuration has %d", len(after), cfg.Jars()))
		return result(metrics, failReasons)
	}

	// 2. Per-jar bounds
	for i, a := range after {
		pass := a >= 0 && a <= cfg.Capacities[i]
		metrics = append(metrics, EvalMetric{Name: fmt.Sprintf("jar_%d", i+1), Value: a, Pass: pass})
		if !pass {
			failReasons = append(failReasons, fmt.Sprintf("jar %d holds %d outside [0, %d]", i+1, a, cfg.Capacities[i]))
		}
	}

	// 3. Conservation
	delta := after.Total() - before.Total()
	metrics = append(metrics, EvalMetric{Name: "volume_delta", Value: delta, Pass: delta == 0})
	if delta != 0 {
		failReasons = append(failReasons, fmt.Sprintf("total volume changed by %d", delta))
	}

	// 4. A pour touches at most two jars
	changed := 0
	for i := range after {
		if after[i] != before[i] {
			changed++
		}
	}
	metrics = append(metrics, EvalMetric{Name: "jars_changed", Value: changed, Pass: changed <= 2})
	if changed > 2 {
		failReasons = append(failReasons, fmt.Sprintf("%d jars changed in one pour", changed))
	}

	return result(metrics, failReasons)
}

// #endregion eval-harness

// #region helpers
func result(metrics []EvalMetric, failReasons []string) EvalResult {
	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}
	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion helpers
