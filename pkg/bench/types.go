package bench

import (
	"sync/atomic"

	"connectk/pkg/connectk"
)

type MatchResult int

const (
	MatchP1Win MatchResult = 1
	MatchP2Win MatchResult = -1
	MatchDraw  MatchResult = 0
)

// ArenaStats accumulates game results across workers, so every counter
// is touched atomically
type ArenaStats struct {
	p1Wins           uint32
	p2Wins           uint32
	draws            uint32
	firstToMoveWins  uint32
	secondToMoveWins uint32
}

func (as *ArenaStats) Total() int {
	return as.P1Wins() + as.P2Wins() + as.Draws()
}

func (as *ArenaStats) P1Wins() int {
	return int(atomic.LoadUint32(&as.p1Wins))
}

func (as *ArenaStats) P2Wins() int {
	return int(atomic.LoadUint32(&as.p2Wins))
}

func (as *ArenaStats) Draws() int {
	return int(atomic.LoadUint32(&as.draws))
}

func (as *ArenaStats) FirstToMoveWins() int {
	return int(atomic.LoadUint32(&as.firstToMoveWins))
}

func (as *ArenaStats) SecondToMoveWins() int {
	return int(atomic.LoadUint32(&as.secondToMoveWins))
}

func (as *ArenaStats) add(result MatchResult, p1WentFirst bool) {
	switch {
	case result == MatchDraw:
		atomic.AddUint32(&as.draws, 1)
	case result == MatchP1Win:
		atomic.AddUint32(&as.p1Wins, 1)
	default:
		atomic.AddUint32(&as.p2Wins, 1)
	}

	if result != MatchDraw {
		if (result == MatchP1Win) == p1WentFirst {
			atomic.AddUint32(&as.firstToMoveWins, 1)
		} else {
			atomic.AddUint32(&as.secondToMoveWins, 1)
		}
	}
}

// WorkerInfo is a snapshot sent to listeners after every move and game
type WorkerInfo struct {
	WorkerID      int
	NGames        int
	FinishedGames int
	Moves         []connectk.Move
	P1Wins        int
	P2Wins        int
	Draws         int
}

type SummaryInfo struct {
	TotalGames       int    `json:"total_games"`
	P1Wins           int    `json:"player1_wins"`
	P2Wins           int    `json:"player2_wins"`
	Draws            int    `json:"draws"`
	FirstToMoveWins  int    `json:"first_to_move_wins"`
	SecondToMoveWins int    `json:"second_to_move_wins"`
	Workers          int    `json:"workers"`
	P1Name           string `json:"player1_name"`
	P2Name           string `json:"player2_name"`
}
