package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
)

// ErrStateLimit is returned when the search visits more states than Options.MaxStates.
var ErrStateLimit = errors.New("solver state limit exceeded")

// cancelCheckEvery controls how often the search polls ctx.
const cancelCheckEvery = 1024

// #region types
// Options tunes a search. The zero value explores the full reachable space.
type Options struct {
	MaxStates int // 0 = unlimited
}

// Result is the outcome of a search. Actions is non-nil and empty when the
// start already satisfies the target; Solved is false when no path exists.
type Result struct {
	Actions  []puzzle.Action
	Solved   bool
	Explored int
}

type node struct {
	state  puzzle.State
	parent int // index into nodes, -1 for the start
	action puzzle.Action
}

// #endregion types

// #region solve
// Solve returns a shortest pour sequence from start to a state containing
// cfg.Target, or ok=false when none exists.
func Solve(cfg puzzle.Config, start puzzle.State) (actions []puzzle.Action, ok bool) {
	res, err := Search(context.Background(), cfg, start, Options{})
	if err != nil {
		return nil, false
	}
	return res.Actions, res.Solved
}

// #endregion solve

// #region search
// Search runs a breadth-first search over states reachable from start. Pairs
// are expanded with i ascending as the outer loop and j ascending as the
// inner loop, so equal-length solutions are chosen deterministically. The
// search works on copies and never touches live engine state.
func Search(ctx context.Context, cfg puzzle.Config, start puzzle.State, opts Options) (Result, error) {
	caps := cfg.Capacities
	if !puzzle.WithinBounds(caps, start) {
		return Result{}, fmt.Errorf("search: start %v does not fit capacities %v", start, caps)
	}

	nodes := []node{{state: start.Clone(), parent: -1}}
	visited := map[string]struct{}{start.Key(): {}}

	for head := 0; head < len(nodes); head++ {
		if head%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Explored: head}, fmt.Errorf("search: %w", err)
			}
		}

		cur := nodes[head]
		if cur.state.Contains(cfg.Target) {
			return Result{Actions: pathTo(nodes, head), Solved: true, Explored: head + 1}, nil
		}

		for i := range caps {
			for j := range caps {
				q := puzzle.Quantity(caps, cur.state, i, j)
				if q <= 0 {
					continue
				}
				action := puzzle.Action{From: i, To: j, Quantity: q}
				next := cur.state.Apply(action)
				key := next.Key()
				if _, seen := visited[key]; seen {
					continue
				}
				if opts.MaxStates > 0 && len(visited) >= opts.MaxStates {
					return Result{Explored: head + 1}, fmt.Errorf("%w: %d states", ErrStateLimit, opts.MaxStates)
				}
				visited[key] = struct{}{}
				nodes = append(nodes, node{state: next, parent: head, action: action})
			}
		}
	}

	return Result{Explored: len(nodes)}, nil
}

// #endregion search

// #region path
func pathTo(nodes []node, idx int) []puzzle.Action {
	depth := 0
	for i := idx; nodes[i].parent >= 0; i = nodes[i].parent {
		depth++
	}
	path := make([]puzzle.Action, depth)
	for i := idx; nodes[i].parent >= 0; i = nodes[i].parent {
		depth--
		path[depth] = nodes[i].action
	}
	return path
}

// #endregion path
