package engine

import (
	"context"

	"connectk/pkg/connectk"
	"connectk/pkg/mcts"
)

type GameResult int

const (
	Ongoing GameResult = iota
	RedWin
	YellowWin
	Draw
)

func (r GameResult) String() string {
	switch r {
	case RedWin:
		return "red wins"
	case YellowWin:
		return "yellow wins"
	case Draw:
		return "draw"
	}
	return "ongoing"
}

// Config describes one engine instance. Exactly the knobs the pre-game
// menu collects: board geometry, the exploration constant, a budget (fixed
// iteration count and/or a wall clock in milliseconds - at least one must
// be set) and the random seed that makes the whole search reproducible.
type Config struct {
	Width       int
	Height      int
	WinLength   int
	Exploration float64 // 0 means the default, sqrt(2)
	Iterations  int
	MoveTime    int
	MultiPv     int
	Seed        int64
}

func (cfg Config) limits() *mcts.Limits {
	limits := mcts.DefaultLimits().SetMultiPv(cfg.MultiPv)
	if cfg.Iterations > 0 {
		limits.SetCycles(uint32(cfg.Iterations))
	}
	if cfg.MoveTime > 0 {
		limits.SetMovetime(cfg.MoveTime)
	}
	return limits
}

// Engine owns one search tree and the position it searches. One engine
// per ongoing game; the tree is carried across committed moves (subtree
// reuse) and rebuilt only on NewGame or SetPosition.
type Engine struct {
	mcts.MCTS[connectk.Move]
	ops    *gameOps
	config Config
}

func New(cfg Config) (*Engine, error) {
	pos, err := connectk.NewPosition(cfg.Width, cfg.Height, cfg.WinLength)
	if err != nil {
		return nil, err
	}

	if cfg.Iterations <= 0 && cfg.MoveTime <= 0 {
		return nil, &connectk.ConfigurationError{
			Width: cfg.Width, Height: cfg.Height, WinLength: cfg.WinLength,
			Reason: "a search budget is required, set Iterations or MoveTime",
		}
	}
	if cfg.Exploration < 0 {
		return nil, &connectk.ConfigurationError{
			Width: cfg.Width, Height: cfg.Height, WinLength: cfg.WinLength,
			Reason: "the exploration constant cannot be negative",
		}
	}
	if cfg.Exploration == 0 {
		cfg.Exploration = mcts.DefaultExplorationParam
	}

	ops := newGameOps(pos)
	e := &Engine{
		MCTS: *mcts.NewMCTS(
			mcts.NewUCB1[connectk.Move](cfg.Exploration),
			ops,
			pos.IsTerminated(),
			cfg.Seed,
		),
		ops:    ops,
		config: cfg,
	}
	e.SetLimits(cfg.limits())

	return e, nil
}

func (e *Engine) Config() Config {
	return e.config
}

// NewGame discards the tree and starts over from an empty board, Red to
// move. Returns the starting position.
func (e *Engine) NewGame() *connectk.Position {
	pos, _ := connectk.NewPosition(e.config.Width, e.config.Height, e.config.WinLength)
	e.ops.position = pos
	e.MCTS.Reset(e.ops, false)
	return pos.Clone()
}

// SetPosition rebuilds the tree over an arbitrary (possibly mid-game)
// position. The engine keeps its own copy.
func (e *Engine) SetPosition(pos *connectk.Position) {
	e.ops.position = pos.Clone()
	e.MCTS.Reset(e.ops, pos.IsTerminated())
}

// Position returns a copy of the position the engine currently searches
func (e *Engine) Position() *connectk.Position {
	return e.ops.position.Clone()
}

func (e *Engine) Result() GameResult {
	switch e.ops.position.Termination() {
	case connectk.TerminationRedWon:
		return RedWin
	case connectk.TerminationYellowWon:
		return YellowWin
	case connectk.TerminationDraw:
		return Draw
	}
	return Ongoing
}

// BestMove runs the full configured budget and returns the move with the
// most visits at the root. Returns NoMovesAvailableError when the game is
// already over. The context cancels a running search early; the move
// found so far is still returned.
func (e *Engine) BestMove(ctx context.Context) (connectk.Move, error) {
	if e.ops.position.IsTerminated() {
		return connectk.MoveIllegal, &NoMovesAvailableError{Result: e.Result()}
	}

	e.SetContext(ctx)
	e.MCTS.Search(e.ops)
	return e.RootMove(), nil
}

// Search runs the budget like BestMove, and reports the full statistics:
// the chosen move, the principal variation, and visit count plus average
// reward of every root child (for display next to the board)
func (e *Engine) Search(ctx context.Context) (SearchResult, error) {
	if e.ops.position.IsTerminated() {
		return SearchResult{}, &NoMovesAvailableError{Result: e.Result()}
	}

	e.SetContext(ctx)
	e.MCTS.Search(e.ops)
	return e.searchResult(), nil
}

// ApplyMove commits a real move: plays it on the position and advances
// the tree root into the matching child, pruning every sibling subtree
// while preserving the child's accumulated statistics
func (e *Engine) ApplyMove(m connectk.Move) error {
	if err := e.ops.position.ApplyMove(m); err != nil {
		return err
	}

	if !e.MCTS.MakeMove(e.ops, m) {
		// The root is expanded whenever the game is on, so a missing child
		// means the tree lost sync with the position. Rebuild instead of
		// searching a wrong tree.
		e.MCTS.Reset(e.ops, e.ops.position.IsTerminated())
	}
	return nil
}

// MoveStats is the per-root-child summary exposed for display
type MoveStats struct {
	Move      connectk.Move `json:"move"`
	Visits    int32         `json:"visits"`
	AvgReward float64       `json:"avg_reward"`
}

type SearchResult struct {
	Best       connectk.Move   `json:"best"`
	Turn       connectk.Piece  `json:"-"`
	Eval       float64         `json:"eval"`
	Pv         []connectk.Move `json:"pv"`
	Moves      []MoveStats     `json:"moves"`
	Cycles     int             `json:"cycles"`
	Depth      int             `json:"depth"`
	Cps        uint32          `json:"cps"`
	Size       uint32          `json:"size"`
	TimeMs     int             `json:"time_ms"`
	StopReason string          `json:"stop_reason"`
}

func (e *Engine) searchResult() SearchResult {
	pv, _, _ := e.Pv(e.Root, mcts.BestChildMostVisits, false)

	moves := make([]MoveStats, len(e.Root.Children))
	for i := range e.Root.Children {
		child := &e.Root.Children[i]
		moves[i] = MoveStats{Move: child.Move, Visits: child.Visits()}
		if child.Visits() > 0 {
			moves[i].AvgReward = float64(child.AvgReward())
		}
	}

	return SearchResult{
		Best:       e.RootMove(),
		Turn:       e.ops.rootSide,
		Eval:       float64(e.RootScore()),
		Pv:         pv,
		Moves:      moves,
		Cycles:     e.Cycles(),
		Depth:      e.MaxDepth(),
		Cps:        e.Cps(),
		Size:       e.Size(),
		TimeMs:     int(e.Limiter.Elapsed()),
		StopReason: e.StopReason().String(),
	}
}
