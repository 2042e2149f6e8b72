package mcts

import "math/rand"

// GameOperations is the contract between the search engine and a concrete
// game implementation. The engine never sees the game state itself, it only
// asks the operations object to walk the game tree alongside the search tree.
type GameOperations[T MoveLike] interface {
	// Generate moves for the current position, and attach them as children
	// to the given node. Returns the number of created children.
	//
	// The children must ALWAYS be generated in the same, stable order for a
	// given position, since the expansion order is part of the engine's
	// determinism guarantee.
	ExpandNode(parent *NodeBase[T]) uint32
	// Make the move with the given signature on the internal position
	Traverse(T)
	// Undo the previous move made in Traverse, going up 1 level in the game tree
	BackTraverse()
	// Play out the game from the current position until a terminal state is
	// reached, and return the outcome from the perspective of the side to
	// move at the starting position
	Rollout() Result
	// Reset internal bookkeeping to the current root position, called after
	// the root changes (new game, or a committed move)
	Reset()
	// Clone itself, without any shared memory with the receiver
	Clone() GameOperations[T]
}

// Games with random (light) playouts additionally accept the engine's
// random number generator, so that the whole search is reproducible from
// a single seed
type RandGameOperations[T MoveLike] interface {
	GameOperations[T]
	SetRand(*rand.Rand)
}
