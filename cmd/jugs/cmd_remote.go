package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/danielpatrickdp/jugs/internal/rpc"
	"github.com/spf13/cobra"
)

const remoteTimeout = 30 * time.Second

var (
	remoteSetupCmd = &cobra.Command{
		Use:   "setup CAPACITIES TARGET",
		Short: "Configure the server session, e.g. setup 8,5,3 4",
		Args:  cobra.ExactArgs(2),
		RunE:  runRemoteSetup,
	}

	remotePourCmd = &cobra.Command{
		Use:   "pour FROM TO",
		Short: "Pour from one jar into another (jars numbered from 1)",
		Args:  cobra.ExactArgs(2),
		RunE:  runRemotePour,
	}

	remoteResetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Restore the initial fill",
		Args:  cobra.NoArgs,
		RunE:  runRemoteReset,
	}

	remoteSolveCmd = &cobra.Command{
		Use:   "solve",
		Short: "Ask the server for the shortest solution from the current state",
		Args:  cobra.NoArgs,
		RunE:  runRemoteSolve,
	}

	remoteApplyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Solve and replay the solution on the server",
		Args:  cobra.NoArgs,
		RunE:  runRemoteApply,
	}

	remoteRollbackCmd = &cobra.Command{
		Use:   "rollback INDEX",
		Short: "Restore a history entry and drop everything after it",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemoteRollback,
	}

	remoteStateCmd = &cobra.Command{
		Use:   "state",
		Short: "Show the current server state",
		Args:  cobra.NoArgs,
		RunE:  runRemoteState,
	}

	remoteHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "Show the server session history",
		Args:  cobra.NoArgs,
		RunE:  runRemoteHistory,
	}
)

// withClient dials the server and runs fn under a bounded context.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, c *rpc.Client) error) error {
	addr := remoteAddr
	if addr == "" {
		addr = appConfig.GRPCAddr
	}
	c, err := rpc.NewClient(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
	defer cancel()
	logger.Debug("remote call", "addr", addr, "command", cmd.Name())
	return fn(ctx, c)
}

func runRemoteSetup(cmd *cobra.Command, args []string) error {
	caps, err := parseInts(args[0])
	if err != nil {
		return fmt.Errorf("capacities: %w", err)
	}
	target, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("target %q is not a number", args[1])
	}
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.Setup(ctx, caps, target)
		if err != nil {
			return err
		}
		printStateView(cmd.OutOrStdout(), view)
		return nil
	})
}

func runRemotePour(cmd *cobra.Command, args []string) error {
	from, err := parseJar(args[0])
	if err != nil {
		return err
	}
	to, err := parseJar(args[1])
	if err != nil {
		return err
	}
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.Pour(ctx, from, to)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !view.Moved {
			fmt.Fprintln(w, "Nothing to pour.")
		} else {
			fmt.Fprintln(w, view.Description)
		}
		fmt.Fprintln(w, formatAmounts(view.Amounts))
		if view.Solved {
			fmt.Fprintln(w, "Target reached!")
		}
		return nil
	})
}

func runRemoteReset(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.Reset(ctx)
		if err != nil {
			return err
		}
		printStateView(cmd.OutOrStdout(), view)
		return nil
	})
}

func runRemoteSolve(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.Solve(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !view.Found {
			fmt.Fprintf(w, "No solution from this state (%d states explored)\n", view.Explored)
			return nil
		}
		fmt.Fprintf(w, "Solution in %d pours:\n", len(view.Actions))
		for i, a := range view.Actions {
			fmt.Fprintf(w, "%3d. %s\n", i+1, a.Description())
		}
		return nil
	})
}

func runRemoteApply(cmd *cobra.Command, _ []string) error {
	pace := time.Duration(-1)
	if remotePace >= 0 {
		pace = time.Duration(remotePace) * time.Millisecond
	}
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.Apply(ctx, pace)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if !view.Found {
			fmt.Fprintln(w, "No solution from this state")
			return nil
		}
		fmt.Fprintf(w, "Applied %d pours\n%s\n", view.Applied, formatAmounts(view.Amounts))
		if view.Solved {
			fmt.Fprintln(w, "Target reached!")
		}
		return nil
	})
}

func runRemoteRollback(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("index %q is not a number", args[0])
	}
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		entry, err := c.Rollback(ctx, index)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back to %d: %s\n%s\n",
			entry.Index, entry.Description, formatAmounts(entry.Amounts))
		return nil
	})
}

func runRemoteState(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		view, err := c.State(ctx)
		if err != nil {
			return err
		}
		printStateView(cmd.OutOrStdout(), view)
		return nil
	})
}

func runRemoteHistory(cmd *cobra.Command, _ []string) error {
	return withClient(cmd, func(ctx context.Context, c *rpc.Client) error {
		entries, err := c.History(ctx)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, e := range entries {
			fmt.Fprintf(w, "%3d  %-16s  %s\n", e.Index, formatAmounts(e.Amounts), e.Description)
		}
		return nil
	})
}

// #region output
func printStateView(w io.Writer, v rpc.StateView) {
	fmt.Fprintf(w, "Session %s  target %d\n%s\n", v.SessionID, v.Target, formatState(v.Capacities, v.Amounts))
	if v.Solved {
		fmt.Fprintln(w, "Target reached!")
	}
}

func formatAmounts(amounts []int) string {
	return fmt.Sprint(amounts)
}

// #endregion output
