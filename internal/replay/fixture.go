package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/jugs/internal/gate"
	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description         string                  `json:"description"`
	Config              FixtureConfig           `json:"config"`
	StartState          []int                   `json:"start_state,omitempty"`
	Requests            []FixtureRequest        `json:"requests"`
	ExpectedResults     []FixtureExpectedResult `json:"expected_results"`
	ExpectTargetReached *bool                   `json:"expect_target_reached,omitempty"`
}

// FixtureConfig holds the puzzle and gate settings for a replay run.
type FixtureConfig struct {
	Capacities     []int `json:"capacities"`
	Target         int   `json:"target"`
	RejectSelfPour bool  `json:"reject_self_pour,omitempty"`
}

// FixtureRequest mirrors replay.Request with JSON tags. Jars are 0-based.
type FixtureRequest struct {
	StepID string `json:"step_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

// FixtureExpectedResult captures the expected action per step, and
// optionally the state after it.
type FixtureExpectedResult struct {
	StepID  string `json:"step_id"`
	Action  string `json:"action"`
	Amounts []int  `json:"amounts,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// WriteFixture writes f as indented JSON.
func WriteFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// PuzzleConfig converts the fixture config to a domain Config.
func (f *Fixture) PuzzleConfig() puzzle.Config {
	return puzzle.Config{Capacities: append([]int(nil), f.Config.Capacities...), Target: f.Config.Target}
}

// Start returns the fixture's start state, or the initial fill when omitted.
func (f *Fixture) Start() puzzle.State {
	if len(f.StartState) == 0 {
		return puzzle.InitialFill(f.Config.Capacities)
	}
	return puzzle.State(f.StartState).Clone()
}

// ToRequests converts the fixture requests to domain Requests.
func (f *Fixture) ToRequests() []Request {
	out := make([]Request, len(f.Requests))
	for i, r := range f.Requests {
		out[i] = Request{StepID: r.StepID, From: r.From, To: r.To}
	}
	return out
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	return ReplayConfig{GateConfig: gate.GateConfig{RejectSelfPour: fc.RejectSelfPour}}
}

// #endregion fixture-loader

// #region fixture-builder

// NewFixture records a replay run as a fixture whose expectations are the
// run's own results.
func NewFixture(description string, cfg puzzle.Config, start puzzle.State, requests []Request, config ReplayConfig) *Fixture {
	results := Replay(cfg, start, requests, config)
	summary := Summarize(cfg, start, results)

	f := &Fixture{
		Description: description,
		Config: FixtureConfig{
			Capacities:     append([]int(nil), cfg.Capacities...),
			Target:         cfg.Target,
			RejectSelfPour: config.GateConfig.RejectSelfPour,
		},
		StartState:          append([]int(nil), start...),
		ExpectTargetReached: &summary.TargetReached,
	}
	for _, r := range requests {
		f.Requests = append(f.Requests, FixtureRequest{StepID: r.StepID, From: r.From, To: r.To})
	}
	for _, r := range results {
		f.ExpectedResults = append(f.ExpectedResults, FixtureExpectedResult{
			StepID:  r.StepID,
			Action:  r.Action,
			Amounts: append([]int(nil), r.FinalState...),
		})
	}
	return f
}

// #endregion fixture-builder

// #region compare

// Mismatch describes one step whose replayed outcome differs from the fixture.
type Mismatch struct {
	Index    int
	StepID   string
	Expected string
	Actual   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d (%s): expected %s, got %s", m.Index, m.StepID, m.Expected, m.Actual)
}

// Compare checks results against the fixture's expectations.
func (f *Fixture) Compare(results []ReplayResult) []Mismatch {
	var out []Mismatch
	if len(results) != len(f.ExpectedResults) {
		out = append(out, Mismatch{
			Index:    -1,
			Expected: fmt.Sprintf("%d results", len(f.ExpectedResults)),
			Actual:   fmt.Sprintf("%d results", len(results)),
		})
	}
	for i, expected := range f.ExpectedResults {
		if i >= len(results) {
			break
		}
		actual := results[i]
		switch {
		case actual.StepID != expected.StepID:
			out = append(out, Mismatch{Index: i, StepID: expected.StepID, Expected: "step_id=" + expected.StepID, Actual: "step_id=" + actual.StepID})
		case actual.Action != expected.Action:
			out = append(out, Mismatch{Index: i, StepID: expected.StepID, Expected: expected.Action, Actual: actual.Action + " (" + actual.Reason + ")"})
		case expected.Amounts != nil && !actual.FinalState.Equal(expected.Amounts):
			out = append(out, Mismatch{Index: i, StepID: expected.StepID,
				Expected: fmt.Sprint(expected.Amounts), Actual: fmt.Sprint([]int(actual.FinalState))})
		}
	}
	if f.ExpectTargetReached != nil {
		summary := Summarize(f.PuzzleConfig(), f.Start(), results)
		if summary.TargetReached != *f.ExpectTargetReached {
			out = append(out, Mismatch{
				Index:    -1,
				Expected: fmt.Sprintf("target_reached=%t", *f.ExpectTargetReached),
				Actual:   fmt.Sprintf("target_reached=%t", summary.TargetReached),
			})
		}
	}
	return out
}

// #endregion compare
