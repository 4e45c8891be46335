package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/jugs/internal/session"
	"github.com/spf13/cobra"
)

const playHelp = `Commands:
  pour A B        pour jar A into jar B (jars numbered from 1)
  reset           restore the initial fill
  setup CAPS T    start a new puzzle, e.g. "setup 8,5,3 4"
  solve           show the shortest solution from here
  apply           solve and play the solution step by step
  rollback N      return to history step N
  history         list history steps
  state           show the jars
  quit            exit`

func runPlay(cmd *cobra.Command, _ []string) error {
	caps, target, err := resolvePuzzle(appConfig, presetName, capacitiesArg, targetArg)
	if err != nil {
		return err
	}
	sess, _, closeFn, err := openSession(strictMode)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), sess, caps, target, appConfig.ReplayPace)
}

// #region repl
// runREPL sets up the puzzle and reads commands from in until quit or EOF.
// State changes are printed from session events.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, sess *session.Session, caps []int, target int, pace time.Duration) error {
	sess.Observe(func(ev session.Event) {
		cfg, err := sess.Config()
		if err != nil {
			return
		}
		switch ev.Kind {
		case session.EventPour:
			fmt.Fprintf(out, "%s -> %s\n", ev.Description, formatState(cfg.Capacities, ev.Amounts))
		case session.EventSetup, session.EventReset, session.EventRollback:
			fmt.Fprintf(out, "%s: %s (target %d)\n", ev.Description, formatState(cfg.Capacities, ev.Amounts), cfg.Target)
		}
	})

	if _, err := sess.Setup(caps, target); err != nil {
		return err
	}
	fmt.Fprintln(out, "Type a command (or 'help'):")

	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := dispatch(ctx, out, sess, fields, pace); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, out io.Writer, sess *session.Session, fields []string, pace time.Duration) error {
	switch fields[0] {
	case "help":
		fmt.Fprintln(out, playHelp)

	case "pour":
		if len(fields) != 3 {
			return fmt.Errorf("usage: pour A B")
		}
		from, err := parseJar(fields[1])
		if err != nil {
			return err
		}
		to, err := parseJar(fields[2])
		if err != nil {
			return err
		}
		res, err := sess.Pour(from, to)
		if err != nil {
			return err
		}
		if !res.Moved() {
			fmt.Fprintln(out, "Nothing to pour.")
		}
		announceSolved(out, sess)

	case "reset":
		return sess.Reset()

	case "setup":
		if len(fields) != 3 {
			return fmt.Errorf("usage: setup CAPS TARGET")
		}
		caps, err := parseInts(fields[1])
		if err != nil {
			return err
		}
		target, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("target %q is not a number", fields[2])
		}
		_, err = sess.Setup(caps, target)
		return err

	case "solve":
		res, err := sess.Solve(ctx)
		if err != nil {
			return err
		}
		if !res.Solved {
			fmt.Fprintf(out, "No solution from this state (%d states explored).\n", res.Explored)
			return nil
		}
		if len(res.Actions) == 0 {
			fmt.Fprintln(out, "Already solved.")
			return nil
		}
		fmt.Fprintf(out, "Solution in %d pours:\n", len(res.Actions))
		for i, a := range res.Actions {
			fmt.Fprintf(out, "  %d. %s\n", i+1, a.Description())
		}

	case "apply":
		res, _, err := sess.SolveAndApply(ctx, pace)
		if err != nil {
			return err
		}
		if !res.Solved {
			fmt.Fprintln(out, "No solution from this state.")
			return nil
		}
		announceSolved(out, sess)

	case "rollback":
		if len(fields) != 2 {
			return fmt.Errorf("usage: rollback N")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("step %q is not a number", fields[1])
		}
		_, err = sess.Rollback(n)
		return err

	case "history":
		cfg, err := sess.Config()
		if err != nil {
			return err
		}
		for i, e := range sess.History() {
			fmt.Fprintf(out, "%3d  %-16s  %s\n", i, formatState(cfg.Capacities, e.Amounts), e.Description)
		}

	case "state":
		cfg, err := sess.Config()
		if err != nil {
			return err
		}
		amounts, err := sess.CurrentState()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (target %d)\n", formatState(cfg.Capacities, amounts), cfg.Target)
		announceSolved(out, sess)

	default:
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return nil
}

func announceSolved(out io.Writer, sess *session.Session) {
	if sess.Solved() {
		fmt.Fprintln(out, "Target reached!")
	}
}

// #endregion repl
