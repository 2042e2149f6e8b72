package engine

import "fmt"

// NoMovesAvailableError is returned when a move is requested for a
// position where the game is already decided. Recoverable: the caller
// should check Result before asking for a move.
type NoMovesAvailableError struct {
	Result GameResult
}

func (e *NoMovesAvailableError) Error() string {
	return fmt.Sprintf("engine: no moves available, the game is over (%s)", e.Result)
}
