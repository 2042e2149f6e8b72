package connectkservice

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"connectk/internal/logger"
	"connectk/pkg/connectk"
	"connectk/pkg/engine"
	"connectk/pkg/mcts"
)

// ErrGameNotFound reports an unknown game ID
type ErrGameNotFound struct {
	ID string
}

func (e *ErrGameNotFound) Error() string {
	return fmt.Sprintf("no game with id %q", e.ID)
}

type game struct {
	mu     sync.Mutex
	id     string
	engine *engine.Engine
}

// Service keeps every ongoing game in memory, one engine (and so one
// search tree) per game. Individual games lock independently, so a slow
// search in one game never blocks moves in another.
type Service struct {
	mu     sync.RWMutex
	games  map[string]*game
	nextID uint64
	log    *logger.Logger
	hub    *SearchHub
}

func New(log *logger.Logger) *Service {
	return &Service{
		games: make(map[string]*game),
		log:   log,
		hub:   NewSearchHub(),
	}
}

func (s *Service) Hub() *SearchHub {
	return s.hub
}

// GameState is the full board snapshot the API returns after every call
type GameState struct {
	ID        string          `json:"id"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	WinLength int             `json:"win_length"`
	Grid      [][]int         `json:"grid"`
	Turn      string          `json:"turn"`
	Status    string          `json:"status"`
	Ply       int             `json:"ply"`
	History   []connectk.Move `json:"history"`
}

// EngineReply couples the committed engine move with the search
// statistics that produced it
type EngineReply struct {
	State  GameState           `json:"state"`
	Move   connectk.Move       `json:"move"`
	Search engine.SearchResult `json:"search"`
}

func (s *Service) CreateGame(ctx context.Context, cfg engine.Config) (GameState, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return GameState{}, err
	}

	g := &game{
		id:     fmt.Sprintf("g%08x", atomic.AddUint64(&s.nextID, 1)),
		engine: eng,
	}

	state := s.snapshot(g)

	s.mu.Lock()
	s.games[g.id] = g
	s.mu.Unlock()

	logger.FromContext(ctx).Info().
		Str("game", g.id).
		Int("width", cfg.Width).Int("height", cfg.Height).Int("win_length", cfg.WinLength).
		Msg("game created")

	return state, nil
}

func (s *Service) Game(ctx context.Context, id string) (GameState, error) {
	g, err := s.find(id)
	if err != nil {
		return GameState{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return s.snapshot(g), nil
}

func (s *Service) DeleteGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return &ErrGameNotFound{ID: id}
	}
	delete(s.games, id)
	return nil
}

// PlayMove commits a player's move. InvalidMoveError comes back for a
// full or out-of-range column, leaving the game untouched.
func (s *Service) PlayMove(ctx context.Context, id string, move connectk.Move) (GameState, error) {
	g, err := s.find(id)
	if err != nil {
		return GameState{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.engine.ApplyMove(move); err != nil {
		return GameState{}, err
	}

	logger.FromContext(ctx).Info().
		Str("game", g.id).Uint8("column", uint8(move)).
		Msg("move played")
	return s.snapshot(g), nil
}

// EngineMove searches the game's full budget, commits the chosen move
// and returns it with the search statistics. Progress is streamed to the
// hub while the search runs.
func (s *Service) EngineMove(ctx context.Context, id string) (EngineReply, error) {
	g, err := s.find(id)
	if err != nil {
		return EngineReply{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.engine.StatsListener().
		OnCycle(s.progressFn(g.id)).
		SetCycleInterval(500)
	defer g.engine.ResetListener()

	result, err := g.engine.Search(ctx)
	if err != nil {
		return EngineReply{}, err
	}
	if err := g.engine.ApplyMove(result.Best); err != nil {
		return EngineReply{}, err
	}

	logger.FromContext(ctx).Info().
		Str("game", g.id).
		Uint8("column", uint8(result.Best)).
		Int("cycles", result.Cycles).
		Int("depth", result.Depth).
		Str("stop", result.StopReason).
		Msg("engine moved")

	return EngineReply{
		State:  s.snapshot(g),
		Move:   result.Best,
		Search: result,
	}, nil
}

func (s *Service) progressFn(gameID string) mcts.ListenerFunc[connectk.Move] {
	return func(stats mcts.ListenerTreeStats[connectk.Move]) {
		s.hub.Publish(SearchProgress{
			GameID:    gameID,
			Cycles:    stats.Cycles,
			Cps:       int(stats.Cps),
			Depth:     stats.Maxdepth,
			Nodes:     int(stats.Size),
			UpdatedAt: time.Now().UnixMilli(),
		})
	}
}

func (s *Service) find(id string) (*game, error) {
	s.mu.RLock()
	g, ok := s.games[id]
	s.mu.RUnlock()

	if !ok {
		return nil, &ErrGameNotFound{ID: id}
	}
	return g, nil
}

// snapshot reads the engine, callers hold the game's lock
func (s *Service) snapshot(g *game) GameState {
	pos := g.engine.Position()
	cfg := g.engine.Config()

	grid := make([][]int, pos.Height())
	for row := 0; row < pos.Height(); row++ {
		grid[row] = make([]int, pos.Width())
		for col := 0; col < pos.Width(); col++ {
			grid[row][col] = int(pos.At(col, row))
		}
	}

	status := "ongoing"
	switch pos.Termination() {
	case connectk.TerminationRedWon:
		status = "red_won"
	case connectk.TerminationYellowWon:
		status = "yellow_won"
	case connectk.TerminationDraw:
		status = "draw"
	}

	return GameState{
		ID:        g.id,
		Width:     cfg.Width,
		Height:    cfg.Height,
		WinLength: cfg.WinLength,
		Grid:      grid,
		Turn:      pos.Turn().String(),
		Status:    status,
		Ply:       pos.Ply(),
		History:   pos.Moves(),
	}
}
