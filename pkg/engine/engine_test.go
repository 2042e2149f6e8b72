package engine

import (
	"context"
	"testing"

	"connectk/pkg/connectk"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func standardConfig() Config {
	return Config{
		Width:      7,
		Height:     6,
		WinLength:  4,
		Iterations: 2000,
		Seed:       42,
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero width", Config{Width: 0, Height: 6, WinLength: 4, Iterations: 100}},
		{"win length too long", Config{Width: 3, Height: 3, WinLength: 4, Iterations: 100}},
		{"no budget", Config{Width: 7, Height: 6, WinLength: 4}},
		{"negative exploration", Config{Width: 7, Height: 6, WinLength: 4, Iterations: 100, Exploration: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			require.Error(t, err)

			var cfgErr *connectk.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestSearchRunsFullBudget(t *testing.T) {
	e, err := New(standardConfig())
	require.NoError(t, err)

	result, err := e.Search(context.Background())
	require.NoError(t, err)

	assert.Less(t, int(result.Best), 7)
	assert.Equal(t, 2000, result.Cycles)
	assert.Equal(t, int32(2000), e.Root.Visits())
	assert.Len(t, result.Moves, 7)

	// The position must come back untouched after searching
	assert.Equal(t, 0, e.Position().Ply())
}

func TestBestMoveFindsImmediateWin(t *testing.T) {
	cfg := standardConfig()
	cfg.Iterations = 1000
	e, err := New(cfg)
	require.NoError(t, err)

	// Red has three in a row on the bottom rank, column 3 wins on the spot
	pos, err := connectk.FromMoves(7, 6, 4, []connectk.Move{0, 0, 1, 1, 2, 2})
	require.NoError(t, err)
	e.SetPosition(pos)

	best, err := e.BestMove(context.Background())
	require.NoError(t, err)
	assert.Equal(t, connectk.Move(3), best)
}

func TestDeterminism(t *testing.T) {
	run := func() SearchResult {
		e, err := New(standardConfig())
		require.NoError(t, err)

		result, err := e.Search(context.Background())
		require.NoError(t, err)
		return result
	}

	first, second := run(), run()
	assert.Equal(t, first.Best, second.Best)
	assert.Equal(t, first.Moves, second.Moves)
	assert.Equal(t, first.Pv, second.Pv)
}

func TestBestMoveOnFinishedGame(t *testing.T) {
	e, err := New(Config{Width: 3, Height: 3, WinLength: 3, Iterations: 100, Seed: 1})
	require.NoError(t, err)

	// A drawn 3x3 board
	pos, err := connectk.FromMoves(3, 3, 3, []connectk.Move{0, 1, 0, 1, 2, 0, 1, 2, 2})
	require.NoError(t, err)
	require.True(t, pos.IsDraw())
	e.SetPosition(pos)

	assert.Equal(t, Draw, e.Result())

	_, err = e.BestMove(context.Background())
	require.Error(t, err)

	var noMoves *NoMovesAvailableError
	require.ErrorAs(t, err, &noMoves)
	assert.Equal(t, Draw, noMoves.Result)

	_, err = e.Search(context.Background())
	assert.Error(t, err)
}

func TestApplyMoveInvalid(t *testing.T) {
	e, err := New(standardConfig())
	require.NoError(t, err)

	err = e.ApplyMove(connectk.Move(9))
	require.Error(t, err)

	var invalid *connectk.InvalidMoveError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, 0, e.Position().Ply())
}

func TestApplyMoveReusesTree(t *testing.T) {
	e, err := New(standardConfig())
	require.NoError(t, err)

	_, err = e.Search(context.Background())
	require.NoError(t, err)

	best := e.RootMove()
	var bestVisits int32
	for i := range e.Root.Children {
		if e.Root.Children[i].Move == best {
			bestVisits = e.Root.Children[i].Visits()
		}
	}
	require.Greater(t, bestVisits, int32(0))

	require.NoError(t, e.ApplyMove(best))

	// The chosen subtree survives the move: the new root carries the
	// statistics the search accumulated under that child
	assert.Equal(t, bestVisits, e.Root.Visits())
	assert.Equal(t, best, e.Root.Move)
	assert.Equal(t, 1, e.Position().Ply())
}

func TestNewGameDiscardsState(t *testing.T) {
	e, err := New(standardConfig())
	require.NoError(t, err)

	_, err = e.Search(context.Background())
	require.NoError(t, err)
	require.NoError(t, e.ApplyMove(e.RootMove()))

	pos := e.NewGame()
	assert.Equal(t, 0, pos.Ply())
	assert.Equal(t, int32(0), e.Root.Visits())
	assert.Equal(t, Ongoing, e.Result())
}

func TestMoveTimeBudget(t *testing.T) {
	cfg := standardConfig()
	cfg.Iterations = 0
	cfg.MoveTime = 50
	e, err := New(cfg)
	require.NoError(t, err)

	result, err := e.Search(context.Background())
	require.NoError(t, err)
	assert.Greater(t, result.Cycles, 0)
	assert.Less(t, int(result.Best), 7)
}

func TestSelfPlayFinishesCleanly(t *testing.T) {
	e, err := New(Config{Width: 4, Height: 4, WinLength: 3, Iterations: 200, Seed: 7})
	require.NoError(t, err)

	for e.Result() == Ongoing {
		move, err := e.BestMove(context.Background())
		require.NoError(t, err)
		require.NoError(t, e.ApplyMove(move))
	}

	assert.True(t, e.Position().IsTerminated())
	assert.LessOrEqual(t, e.Position().Ply(), 16)
}
