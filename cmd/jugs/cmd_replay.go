package main

import (
	"fmt"
	"io"

	"github.com/danielpatrickdp/jugs/internal/archive"
	"github.com/danielpatrickdp/jugs/internal/replay"
	"github.com/spf13/cobra"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	if (replayFixture == "") == (replaySession == "") {
		return &exitError{code: 2, msg: "usage: jugs replay --fixture path/to/fixture.json\n       jugs replay --db path/to/jugs.db --session ID"}
	}

	var f *replay.Fixture
	if replayFixture != "" {
		loaded, err := replay.LoadFixture(replayFixture)
		if err != nil {
			return &exitError{code: 2, msg: fmt.Sprintf("load fixture: %v", err)}
		}
		f = loaded
	} else {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		rec, err := store.GetSession(replaySession)
		if err != nil {
			return &exitError{code: 2, msg: err.Error()}
		}
		if f, err = fixtureFromRecord(rec, ""); err != nil {
			return &exitError{code: 2, msg: err.Error()}
		}
	}

	results := replay.Replay(f.PuzzleConfig(), f.Start(), f.ToRequests(), f.Config.ToReplayConfig())
	if diverged := printComparison(cmd.OutOrStdout(), f, results); diverged > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// #region db-extract
// fixtureFromRecord turns an archived session into a fixture whose
// expectations are the archived snapshots.
func fixtureFromRecord(rec archive.SessionRecord, description string) (*replay.Fixture, error) {
	states := rec.States()
	if len(states) == 0 {
		return nil, fmt.Errorf("session %s has no history", rec.SessionID)
	}
	requests, err := replay.FromStates(states)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", rec.SessionID, err)
	}
	if description == "" {
		description = fmt.Sprintf("Archived session %s", rec.SessionID)
	}

	solved := rec.Solved
	f := &replay.Fixture{
		Description: description,
		Config: replay.FixtureConfig{
			Capacities: rec.Capacities,
			Target:     rec.Target,
		},
		StartState:          states[0],
		ExpectTargetReached: &solved,
	}
	for i, r := range requests {
		f.Requests = append(f.Requests, replay.FixtureRequest{StepID: r.StepID, From: r.From, To: r.To})
		f.ExpectedResults = append(f.ExpectedResults, replay.FixtureExpectedResult{
			StepID:  r.StepID,
			Action:  replay.ActionCommit,
			Amounts: states[i+1],
		})
	}
	return f, nil
}

// #endregion db-extract

// #region output
// printComparison outputs a comparison table and returns the number of
// diverging checks.
func printComparison(w io.Writer, f *replay.Fixture, results []replay.ReplayResult) int {
	mismatches := f.Compare(results)
	diffAt := make(map[int]bool, len(mismatches))
	for _, m := range mismatches {
		diffAt[m.Index] = true
	}

	fmt.Fprintf(w, "%-12s| %-15s| %-15s| %-16s| %s\n", "Step", "Expected", "Replayed", "State", "Match")
	fmt.Fprintf(w, "%-12s+%-15s+%-15s+%-16s+%s\n",
		"------------", "----------------", "----------------", "-----------------", "------")

	for i, r := range results {
		exp := "-"
		if i < len(f.ExpectedResults) {
			exp = f.ExpectedResults[i].Action
		}
		match := "OK"
		if diffAt[i] || i >= len(f.ExpectedResults) {
			match = "DIFF"
		}
		fmt.Fprintf(w, "%-12s| %-15s| %-15s| %-16s| %s\n",
			r.StepID, exp, r.Action, formatState(f.Config.Capacities, r.FinalState), match)
	}

	summary := replay.Summarize(f.PuzzleConfig(), f.Start(), results)
	fmt.Fprintf(w, "\nSummary: %d steps, %d commits, %d no-ops, %d gate rejects, %d eval rejects, target reached: %t\n",
		summary.TotalSteps, summary.Commits, summary.NoOps, summary.GateRejects, summary.EvalRejects, summary.TargetReached)
	for _, m := range mismatches {
		fmt.Fprintf(w, "  diverged: %s\n", m)
	}
	return len(mismatches)
}

// #endregion output
