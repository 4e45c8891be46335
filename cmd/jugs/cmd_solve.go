package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"github.com/danielpatrickdp/jugs/internal/replay"
	"github.com/danielpatrickdp/jugs/internal/solver"
	"github.com/spf13/cobra"
)

type solveStep struct {
	From        int    `json:"from"`
	To          int    `json:"to"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

type solveOutput struct {
	Capacities []int       `json:"capacities"`
	Target     int         `json:"target"`
	Start      []int       `json:"start"`
	Solved     bool        `json:"solved"`
	Explored   int         `json:"explored"`
	Steps      []solveStep `json:"steps"`
}

func runSolve(cmd *cobra.Command, _ []string) error {
	caps, target, err := resolvePuzzle(appConfig, presetName, capacitiesArg, targetArg)
	if err != nil {
		return err
	}
	cfg, err := puzzle.NewConfig(caps, target)
	if err != nil {
		return err
	}
	start := puzzle.InitialFill(cfg.Capacities)
	if solveStart != "" {
		amounts, err := parseInts(solveStart)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		start = amounts
	}

	began := time.Now()
	res, err := solver.Search(cmd.Context(), cfg, start, solver.Options{MaxStates: appConfig.MaxStates})
	if err != nil {
		return err
	}
	logger.Debug("solve", "explored", res.Explored, "elapsed", time.Since(began))

	if solveExport != "" && res.Solved {
		f := replay.NewFixture(fmt.Sprintf("Solution for %v measuring %d", cfg.Capacities, cfg.Target),
			cfg, start, replay.FromActions(res.Actions), replay.DefaultReplayConfig())
		if err := replay.WriteFixture(solveExport, f); err != nil {
			return err
		}
		logger.Info("fixture written", "path", solveExport)
	}

	out := solveOutput{
		Capacities: cfg.Capacities,
		Target:     cfg.Target,
		Start:      start,
		Solved:     res.Solved,
		Explored:   res.Explored,
		Steps:      []solveStep{},
	}
	for _, a := range res.Actions {
		out.Steps = append(out.Steps, solveStep{From: a.From, To: a.To, Quantity: a.Quantity, Description: a.Description()})
	}

	if solveJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printSolution(cmd.OutOrStdout(), out)
	return nil
}

func printSolution(w io.Writer, out solveOutput) {
	fmt.Fprintf(w, "Jars %v, target %d, start %s\n", out.Capacities, out.Target, formatState(out.Capacities, out.Start))
	if !out.Solved {
		fmt.Fprintf(w, "No solution (%d states explored).\n", out.Explored)
		return
	}
	if len(out.Steps) == 0 {
		fmt.Fprintln(w, "Already solved.")
		return
	}
	fmt.Fprintf(w, "Solution in %d pours (%d states explored):\n", len(out.Steps), out.Explored)
	for i, s := range out.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s.Description)
	}
}
