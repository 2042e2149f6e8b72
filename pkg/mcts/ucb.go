package mcts

import (
	"math"
	"math/rand"
)

// Exploration parameter used in the UCB1 formula, higher values increase
// exploration, lower values increase exploitation. sqrt(2) is the
// theoretical choice for rewards in [0, 1], tune it per game
const DefaultExplorationParam = math.Sqrt2

// SelectionPolicy scores the children of an expanded node during descent
// and returns the one to follow. Scores are computed on demand from the
// stored (visits, rewards) pair, never cached on the node, because the
// parent visit count changes between iterations
type SelectionPolicy[T MoveLike] func(rng *rand.Rand, parent *NodeBase[T]) *NodeBase[T]

// NewUCB1 builds the standard UCB1 policy:
//
//	score(child) = rewards/visits + C * sqrt(ln(parent visits) / visits)
//
// A child with zero visits has an infinite score, which guarantees every
// child is tried once before any sibling is revisited. Ties among maximal
// scores are broken uniformly at random to avoid a deterministic bias
// toward move ordering
func NewUCB1[T MoveLike](explorationParam float64) SelectionPolicy[T] {
	c := math.Max(0, explorationParam)

	return func(rng *rand.Rand, parent *NodeBase[T]) *NodeBase[T] {
		pick := -1

		// Unvisited children first, all tied at +Inf
		ties := 0
		for i := range parent.Children {
			if parent.Children[i].Visits() == 0 {
				ties++
				if rng.Intn(ties) == 0 {
					pick = i
				}
			}
		}
		if pick >= 0 {
			return &parent.Children[pick]
		}

		lnParentVisits := math.Log(float64(parent.Visits()))
		maxScore := math.Inf(-1)
		ties = 0

		for i := range parent.Children {
			child := &parent.Children[i]
			visits := float64(child.Visits())
			score := child.rewards/visits + c*math.Sqrt(lnParentVisits/visits)

			if score > maxScore {
				maxScore = score
				pick = i
				ties = 1
			} else if score == maxScore {
				ties++
				if rng.Intn(ties) == 0 {
					pick = i
				}
			}
		}

		return &parent.Children[pick]
	}
}
