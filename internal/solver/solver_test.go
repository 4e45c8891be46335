package solver

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/jugs/internal/puzzle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConfig(t *testing.T, caps []int, target int) puzzle.Config {
	t.Helper()
	cfg, err := puzzle.NewConfig(caps, target)
	require.NoError(t, err)
	return cfg
}

// walk replays actions from start, checking every step against the transition rule.
func walk(t *testing.T, cfg puzzle.Config, start puzzle.State, actions []puzzle.Action) puzzle.State {
	t.Helper()
	s := start.Clone()
	total := s.Total()
	for _, a := range actions {
		require.Equal(t, puzzle.Quantity(cfg.Capacities, s, a.From, a.To), a.Quantity, "action %+v from %v", a, s)
		s = s.Apply(a)
		require.True(t, puzzle.WithinBounds(cfg.Capacities, s))
		require.Equal(t, total, s.Total())
	}
	return s
}

func TestSolve_AlreadySolvedReturnsEmptyPath(t *testing.T) {
	cfg := mustConfig(t, []int{6}, 6)
	actions, ok := Solve(cfg, puzzle.InitialFill(cfg.Capacities))
	require.True(t, ok)
	require.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestSolve_CommonDivisorIsUnsolvable(t *testing.T) {
	cfg := mustConfig(t, []int{2, 4}, 3)
	actions, ok := Solve(cfg, puzzle.InitialFill(cfg.Capacities))
	assert.False(t, ok)
	assert.Nil(t, actions)
}

func TestSolve_TargetAboveEveryCapacityIsUnsolvable(t *testing.T) {
	cfg := mustConfig(t, []int{3, 5}, 9)
	_, ok := Solve(cfg, puzzle.InitialFill(cfg.Capacities))
	assert.False(t, ok)
}

// Pours conserve volume, so from [0,5] only [3,2] is reachable and 4 never appears.
func TestSolve_TwoJarPourOnlyCannotReachFour(t *testing.T) {
	cfg := mustConfig(t, []int{3, 5}, 4)
	res, err := Search(context.Background(), cfg, puzzle.State{0, 5}, Options{})
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Equal(t, 2, res.Explored)
}

func TestSolve_ThreePourSolution(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 6)
	start := puzzle.InitialFill(cfg.Capacities)

	actions, ok := Solve(cfg, start)
	require.True(t, ok)
	assert.Equal(t, []puzzle.Action{
		{From: 0, To: 1, Quantity: 5},
		{From: 1, To: 2, Quantity: 3},
		{From: 2, To: 0, Quantity: 3},
	}, actions)

	final := walk(t, cfg, start, actions)
	assert.Equal(t, puzzle.State{6, 2, 0}, final)
}

func TestSolve_ClassicEightFiveThree(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 4)
	start := puzzle.State{8, 0, 0}

	actions, ok := Solve(cfg, start)
	require.True(t, ok)
	require.Len(t, actions, 6)
	assert.Equal(t, []puzzle.Action{
		{From: 0, To: 1, Quantity: 5},
		{From: 1, To: 2, Quantity: 3},
		{From: 2, To: 0, Quantity: 3},
		{From: 1, To: 2, Quantity: 2},
		{From: 0, To: 1, Quantity: 5},
		{From: 1, To: 2, Quantity: 1},
	}, actions)

	final := walk(t, cfg, start, actions)
	assert.Equal(t, puzzle.State{1, 4, 3}, final)
	assert.True(t, final.Contains(4))
}

func TestSolve_FromMidGameState(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 4)
	actions, ok := Solve(cfg, puzzle.State{1, 5, 2})
	require.True(t, ok)
	assert.Equal(t, []puzzle.Action{{From: 1, To: 2, Quantity: 1}}, actions)
}

func TestSolve_Deterministic(t *testing.T) {
	cfg := mustConfig(t, []int{12, 7, 5, 3}, 1)
	start := puzzle.InitialFill(cfg.Capacities)

	first, ok := Solve(cfg, start)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := Solve(cfg, start)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	walk(t, cfg, start, first)
}

func TestSolve_ShortestLength(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 2)
	actions, ok := Solve(cfg, puzzle.State{8, 0, 0})
	require.True(t, ok)
	assert.Len(t, actions, 2, "[8,0,0] -> [3,5,0] -> [3,2,3]")
}

func TestSolve_DoesNotMutateStart(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 4)
	start := puzzle.State{8, 0, 0}
	Solve(cfg, start)
	assert.Equal(t, puzzle.State{8, 0, 0}, start)
}

func TestSearch_StateLimit(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 4)
	_, err := Search(context.Background(), cfg, puzzle.State{8, 0, 0}, Options{MaxStates: 3})
	require.ErrorIs(t, err, ErrStateLimit)
}

func TestSearch_Cancelled(t *testing.T) {
	cfg := mustConfig(t, []int{8, 5, 3}, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, cfg, puzzle.State{8, 0, 0}, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSearch_RejectsStartOutsideBounds(t *testing.T) {
	cfg := mustConfig(t, []int{3, 5}, 4)
	_, err := Search(context.Background(), cfg, puzzle.State{4, 0}, Options{})
	require.Error(t, err)
}

func TestSearch_ExploresWholeSpaceWhenUnsolvable(t *testing.T) {
	cfg := mustConfig(t, []int{2, 4}, 3)
	res, err := Search(context.Background(), cfg, puzzle.State{0, 4}, Options{})
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Nil(t, res.Actions)
	assert.Equal(t, 2, res.Explored, "[0,4] and [2,2]")
}
