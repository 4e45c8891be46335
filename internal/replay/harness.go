package replay

import (
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/eval"
	"github.com/danielpatrickdp/jugs/internal/gate"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// Result actions.
const (
	ActionCommit     = "commit"
	ActionNoOp       = "no_op"
	ActionGateReject = "gate_reject"
	ActionEvalReject = "eval_reject"
)

// #region types
// Request is a single recorded pour for replay. Jar indices are 0-based.
type Request struct {
	StepID string
	From   int
	To     int
}

// ReplayConfig bundles the gate configuration for a replay run.
type ReplayConfig struct {
	GateConfig gate.GateConfig
}

// DefaultReplayConfig returns the defaults used by live sessions.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{GateConfig: gate.DefaultGateConfig()}
}

// ReplayResult captures the outcome of replaying one pour through the pipeline.
type ReplayResult struct {
	StepID string
	Action string // "commit" | "no_op" | "gate_reject" | "eval_reject"
	Reason string

	// Gate stage, always populated
	GateDecision gate.GateDecision

	// Eval stage (nil unless the gate accepted)
	EvalResult *eval.EvalResult

	Quantity int

	// State after this step (equals the previous state unless committed)
	FinalState puzzle.State
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps    int
	Commits       int
	NoOps         int
	GateRejects   int
	EvalRejects   int
	FinalState    puzzle.State
	TargetReached bool
}

// #endregion types

// #region replay
// Replay runs each request through gate → transfer → eval → commit, starting
// from start. It never touches a live session.
func Replay(cfg puzzle.Config, start puzzle.State, requests []Request, config ReplayConfig) []ReplayResult {
	current := start.Clone()
	results := make([]ReplayResult, 0, len(requests))

	gateInst := gate.NewGate(config.GateConfig)
	evalInst := eval.NewEvalHarness()

	for _, req := range requests {
		// 1. Gate
		decision := gateInst.Evaluate(cfg, current, req.From, req.To)
		switch decision.Action {
		case gate.ActionReject:
			results = append(results, ReplayResult{
				StepID:       req.StepID,
				Action:       ActionGateReject,
				Reason:       decision.Reason,
				GateDecision: decision,
				FinalState:   current.Clone(),
			})
			continue
		case gate.ActionNoOp:
			results = append(results, ReplayResult{
				StepID:       req.StepID,
				Action:       ActionNoOp,
				Reason:       decision.Reason,
				GateDecision: decision,
				FinalState:   current.Clone(),
			})
			continue
		}

		// 2. Transfer
		action := puzzle.Action{From: req.From, To: req.To, Quantity: decision.Quantity}
		next := current.Apply(action)

		// 3. Eval
		evalResult := evalInst.Run(cfg, current, next)
		if !evalResult.Passed {
			results = append(results, ReplayResult{
				StepID:       req.StepID,
				Action:       ActionEvalReject,
				Reason:       evalResult.Reason,
				GateDecision: decision,
				EvalResult:   &evalResult,
				Quantity:     action.Quantity,
				FinalState:   current.Clone(),
			})
			continue
		}

		// 4. Commit
		current = next
		results = append(results, ReplayResult{
			StepID:       req.StepID,
			Action:       ActionCommit,
			Reason:       action.Description(),
			GateDecision: decision,
			EvalResult:   &evalResult,
			Quantity:     action.Quantity,
			FinalState:   current.Clone(),
		})
	}

	return results
}

// Summarize computes aggregate stats from replay results. start is the state
// the run began from, used when results is empty.
func Summarize(cfg puzzle.Config, start puzzle.State, results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		TotalSteps: len(results),
		FinalState: start.Clone(),
	}
	for _, r := range results {
		switch r.Action {
		case ActionCommit:
			s.Commits++
		case ActionNoOp:
			s.NoOps++
		case ActionGateReject:
			s.GateRejects++
		case ActionEvalReject:
			s.EvalRejects++
		}
	}
	if len(results) > 0 {
		s.FinalState = results[len(results)-1].FinalState.Clone()
	}
	s.TargetReached = s.FinalState.Contains(cfg.Target)
	return s
}

// #endregion replay

// #region requests
// FromActions turns a solver path into replay requests.
func FromActions(actions []puzzle.Action) []Request {
	out := make([]Request, len(actions))
	for i, a := range actions {
		out[i] = Request{StepID: stepID(i + 1), From: a.From, To: a.To}
	}
	return out
}

// FromStates recovers the pours between consecutive history snapshots. Each
// pair must differ in exactly one decreasing and one increasing jar.
func FromStates(states []puzzle.State) ([]Request, error) {
	var out []Request
	for i := 1; i < len(states); i++ {
		prev, next := states[i-1], states[i]
		if len(prev) != len(next) {
			return nil, fmt.Errorf("step %d: snapshot has %d jars, previous has %d", i, len(next), len(prev))
		}
		from, to := -1, -1
		for j := range next {
			switch {
			case next[j] < prev[j] && from == -1:
				from = j
			case next[j] > prev[j] && to == -1:
				to = j
			case next[j] != prev[j]:
				return nil, fmt.Errorf("step %d: more than two jars changed", i)
			}
		}
		if from == -1 || to == -1 {
			return nil, fmt.Errorf("step %d: snapshot is not a single pour", i)
		}
		out = append(out, Request{StepID: stepID(i), From: from, To: to})
	}
	return out, nil
}

func stepID(n int) string {
	return fmt.Sprintf("step-%d", n)
}

// #endregion requests
