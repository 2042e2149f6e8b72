package bench

import (
	"context"
	"sync"

	"connectk/pkg/connectk"
	"connectk/pkg/engine"
)

// Arena plays a series of games between two engine configurations and
// tallies the results. Work is split across worker goroutines, each with
// its own pair of engines, so games within a worker are sequential but
// workers run in parallel. The first mover alternates every game to
// cancel out the first-player advantage.
type Arena struct {
	ArenaStats
	Player1  engine.Config
	Player2  engine.Config
	P1Name   string
	P2Name   string
	NGames   int
	NWorkers int
	wg       sync.WaitGroup
	ctx      context.Context
}

func NewArena(p1, p2 engine.Config) *Arena {
	return &Arena{
		Player1:  p1,
		Player2:  p2,
		P1Name:   "player1",
		P2Name:   "player2",
		NGames:   100,
		NWorkers: 2,
		ctx:      context.Background(),
	}
}

func (a *Arena) WithContext(ctx context.Context) *Arena {
	a.ctx = ctx
	return a
}

func (a *Arena) WithNames(p1, p2 string) *Arena {
	a.P1Name, a.P2Name = p1, p2
	return a
}

// Run plays all the games and blocks until they finish (or the context
// is cancelled). The returned error is the constructor error of the
// first engine that failed to build, before any game started.
func (a *Arena) Run(listener ListenerLike) error {
	if listener == nil {
		listener = NopListener{}
	}

	// Fail fast on a bad config, before spawning anything
	if _, err := engine.New(a.Player1); err != nil {
		return err
	}
	if _, err := engine.New(a.Player2); err != nil {
		return err
	}

	nGames := a.NGames / a.NWorkers
	rest := a.NGames % a.NWorkers
	for i := 0; i < a.NWorkers; i++ {
		delta := 0
		if rest > 0 {
			delta = 1
			rest--
		}

		a.wg.Add(1)
		go a.worker(i, nGames+delta, listener)
	}

	a.wg.Wait()
	listener.Summary(SummaryInfo{
		TotalGames:       a.Total(),
		P1Wins:           a.P1Wins(),
		P2Wins:           a.P2Wins(),
		Draws:            a.Draws(),
		FirstToMoveWins:  a.FirstToMoveWins(),
		SecondToMoveWins: a.SecondToMoveWins(),
		Workers:          a.NWorkers,
		P1Name:           a.P1Name,
		P2Name:           a.P2Name,
	})
	return nil
}

func (a *Arena) worker(id, nGames int, listener ListenerLike) {
	defer a.wg.Done()

	// Each worker gets its own engines, seeded apart so workers do not
	// replay each other's games
	cfg1, cfg2 := a.Player1, a.Player2
	cfg1.Seed += int64(id) * 7919
	cfg2.Seed += int64(id) * 7919

	p1, err := engine.New(cfg1)
	if err != nil {
		return
	}
	p2, err := engine.New(cfg2)
	if err != nil {
		return
	}

	for i := 0; i < nGames; i++ {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		p1WentFirst := (id+i)%2 == 0
		first, second := p1, p2
		if !p1WentFirst {
			first, second = p2, p1
		}

		outcome, moves := a.playGame(first, second, id, nGames, i, listener)
		if a.ctx.Err() != nil {
			return
		}

		a.add(a.toResult(outcome, p1WentFirst), p1WentFirst)
		listener.OnFinishedGame(WorkerInfo{
			WorkerID:      id,
			NGames:        nGames,
			FinishedGames: i + 1,
			Moves:         moves,
			P1Wins:        a.P1Wins(),
			P2Wins:        a.P2Wins(),
			Draws:         a.Draws(),
		})
	}

	listener.OnFinishedWork(WorkerInfo{
		WorkerID: id,
		NGames:   nGames,
		P1Wins:   a.P1Wins(),
		P2Wins:   a.P2Wins(),
		Draws:    a.Draws(),
	})
}

// playGame runs one game between two engines. Both engines track the
// same position: the one to move searches, then both commit the move.
// Returns the final game result from the first mover's perspective.
func (a *Arena) playGame(first, second *engine.Engine, workerID, nGames, finished int, listener ListenerLike) (engine.GameResult, []connectk.Move) {
	first.NewGame()
	second.NewGame()

	moves := make([]connectk.Move, 0, a.Player1.Width*a.Player1.Height)
	toMove, other := first, second

	for first.Result() == engine.Ongoing {
		move, err := toMove.BestMove(a.ctx)
		if err != nil {
			break
		}
		if a.ctx.Err() != nil {
			return engine.Draw, moves
		}

		if toMove.ApplyMove(move) != nil || other.ApplyMove(move) != nil {
			break
		}
		moves = append(moves, move)

		listener.OnMoveMade(WorkerInfo{
			WorkerID:      workerID,
			NGames:        nGames,
			FinishedGames: finished,
			Moves:         moves,
			P1Wins:        a.P1Wins(),
			P2Wins:        a.P2Wins(),
			Draws:         a.Draws(),
		})

		toMove, other = other, toMove
	}

	return first.Result(), moves
}

// toResult maps a red/yellow outcome to which configured player won. The
// first mover always plays red.
func (a *Arena) toResult(outcome engine.GameResult, p1WentFirst bool) MatchResult {
	switch outcome {
	case engine.RedWin:
		if p1WentFirst {
			return MatchP1Win
		}
		return MatchP2Win
	case engine.YellowWin:
		if p1WentFirst {
			return MatchP2Win
		}
		return MatchP1Win
	}
	return MatchDraw
}
