package engine

import (
	"math/rand"

	"connectk/pkg/connectk"
	"connectk/pkg/mcts"
)

// gameOps walks a connect-K position alongside the search tree, using
// make/unmake instead of copying the board at every node
type gameOps struct {
	position *connectk.Position
	rootSide connectk.Piece
	random   *rand.Rand
}

func newGameOps(pos *connectk.Position) *gameOps {
	return &gameOps{
		position: pos,
		rootSide: pos.Turn(),
	}
}

func (ops *gameOps) Reset() {
	ops.rootSide = ops.position.Turn()
}

// Children are generated in GenerateMoves order (left to right), which is
// stable for a given position, keeping the whole search reproducible
func (ops *gameOps) ExpandNode(node *mcts.NodeBase[connectk.Move]) uint32 {
	moves := ops.position.GenerateMoves()
	node.Children = make([]mcts.NodeBase[connectk.Move], len(moves))

	for i, m := range moves {
		ops.position.MakeMove(m)
		terminal := ops.position.IsTerminated()
		ops.position.UndoMove()

		node.Children[i] = mcts.NewBaseNode(node, m, terminal)
	}

	return uint32(len(moves))
}

func (ops *gameOps) Traverse(m connectk.Move) {
	ops.position.MakeMove(m)
}

func (ops *gameOps) BackTraverse() {
	ops.position.UndoMove()
}

// Play uniformly random legal moves until the game ends, then undo them
// all. The outcome is reported for the side to move at the starting node.
func (ops *gameOps) Rollout() mcts.Result {
	leafTurn := ops.position.Turn()
	moveCount := 0

	for !ops.position.IsTerminated() {
		moves := ops.position.GenerateMoves()
		ops.position.MakeMove(moves[ops.random.Intn(len(moves))])
		moveCount++
	}

	var result mcts.Result = 0.5
	if winner := ops.position.Winner(); winner == leafTurn {
		result = 1.0
	} else if winner != connectk.None {
		result = 0.0
	}

	for i := 0; i < moveCount; i++ {
		ops.position.UndoMove()
	}

	return result
}

func (ops *gameOps) SetRand(r *rand.Rand) {
	ops.random = r
}

func (ops *gameOps) Clone() mcts.GameOperations[connectk.Move] {
	return &gameOps{
		position: ops.position.Clone(),
		rootSide: ops.rootSide,
		random:   ops.random,
	}
}
