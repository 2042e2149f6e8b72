package bench

import (
	"context"
	"sync"
	"testing"

	"connectk/pkg/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingListener struct {
	mu      sync.Mutex
	moves   int
	games   int
	workers int
	summary *SummaryInfo
}

func (c *countingListener) OnMoveMade(WorkerInfo) {
	c.mu.Lock()
	c.moves++
	c.mu.Unlock()
}

func (c *countingListener) OnFinishedGame(info WorkerInfo) {
	c.mu.Lock()
	c.games++
	c.mu.Unlock()
}

func (c *countingListener) OnFinishedWork(WorkerInfo) {
	c.mu.Lock()
	c.workers++
	c.mu.Unlock()
}

func (c *countingListener) Summary(info SummaryInfo) {
	c.mu.Lock()
	c.summary = &info
	c.mu.Unlock()
}

func fastConfig(seed int64) engine.Config {
	return engine.Config{
		Width:      4,
		Height:     4,
		WinLength:  3,
		Iterations: 50,
		Seed:       seed,
	}
}

func TestArenaPlaysAllGames(t *testing.T) {
	arena := NewArena(fastConfig(1), fastConfig(2))
	arena.NGames = 6
	arena.NWorkers = 2

	listener := &countingListener{}
	require.NoError(t, arena.Run(listener))

	assert.Equal(t, 6, arena.Total())
	assert.Equal(t, arena.Total(), arena.P1Wins()+arena.P2Wins()+arena.Draws())
	assert.Equal(t, arena.P1Wins()+arena.P2Wins(),
		arena.FirstToMoveWins()+arena.SecondToMoveWins())

	assert.Equal(t, 6, listener.games)
	assert.Equal(t, 2, listener.workers)
	assert.Greater(t, listener.moves, 0)
	require.NotNil(t, listener.summary)
	assert.Equal(t, 6, listener.summary.TotalGames)
	assert.Equal(t, "player1", listener.summary.P1Name)
}

func TestArenaUnevenSplit(t *testing.T) {
	arena := NewArena(fastConfig(1), fastConfig(2))
	arena.NGames = 5
	arena.NWorkers = 2

	require.NoError(t, arena.Run(nil))
	assert.Equal(t, 5, arena.Total())
}

func TestArenaBadConfig(t *testing.T) {
	bad := fastConfig(1)
	bad.Iterations = 0

	arena := NewArena(bad, fastConfig(2))
	assert.Error(t, arena.Run(nil))
}

func TestArenaCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	arena := NewArena(fastConfig(1), fastConfig(2)).WithContext(ctx)
	arena.NGames = 10
	arena.NWorkers = 2

	require.NoError(t, arena.Run(nil))
	assert.Equal(t, 0, arena.Total())
}
