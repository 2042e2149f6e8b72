package mcts

// Shared type definitions for the search engine

// Result of a rollout, ranges over [0, 1] - 0 being a loss from the
// perspective of the side to move at the rollout's starting node,
// 1 being a win and 0.5 a draw
type Result float64

// Anything comparable can act as a move signature on the tree's edges
type MoveLike comparable

type BestChildPolicy int

const (
	// When choosing the best child, pick the one with the most visits
	// ("robust child"), ties broken by average reward, then by child order.
	// This is the go-to method for MCTS
	BestChildMostVisits BestChildPolicy = iota

	// Pick the child with the best average reward instead, among children
	// with a minimal share of the visits
	BestChildWinRate
)
