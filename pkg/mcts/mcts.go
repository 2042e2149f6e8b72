package mcts

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"unsafe"
)

type TreeStats struct {
	maxdepth uint32
	cps      uint32
	cycles   uint32
}

// MCTS is the generic search tree: it owns the root node and, transitively,
// every descendant. Exactly one tree exists per ongoing game. The search
// itself is single threaded and strictly sequential: iterations never
// overlap, and the budget is checked only at iteration boundaries, so tree
// invariants are never observed half-updated. Given the same seed, limits
// and move history, two trees produce identical results.
type MCTS[T MoveLike] struct {
	TreeStats
	listener        *StatsListener[T]
	Limiter         LimiterLike
	selectionPolicy SelectionPolicy[T]
	Root            *NodeBase[T]
	rng             *rand.Rand
	size            uint32
}

// Create a new search tree over the game held by 'operations'. The root is
// expanded right away, so at any point after construction every legal move
// has a corresponding child. The seed is the only source of randomness in
// the whole search (selection tie-breaks, expansion descent, rollouts).
func NewMCTS[T MoveLike](
	selectionPolicy SelectionPolicy[T],
	operations GameOperations[T],
	terminated bool,
	seed int64,
) *MCTS[T] {
	mcts := &MCTS[T]{
		listener:        NewStatsListener[T](),
		Limiter:         LimiterLike(NewLimiter(uint32(unsafe.Sizeof(NodeBase[T]{})))),
		selectionPolicy: selectionPolicy,
		Root:            newRootNode[T](terminated),
		rng:             rand.New(rand.NewSource(seed)),
	}

	// Not searching yet
	mcts.Limiter.SetStop(true)

	// For random-based playouts, attach the tree's generator
	if rg, ok := operations.(RandGameOperations[T]); ok {
		rg.SetRand(mcts.rng)
	}

	mcts.size = 1
	if !terminated {
		mcts.size += operations.ExpandNode(mcts.Root)
		mcts.Root.FinishExpanding()
	}

	return mcts
}

func (mcts *MCTS[T]) invokeListener(f ListenerFunc[T]) {
	if f != nil {
		f(toListenerStats(mcts))
	}
}

func (mcts *MCTS[T]) ResetListener() {
	mcts.listener.OnCycle(nil).OnDepth(nil).OnStop(nil)
}

func (mcts *MCTS[T]) StatsListener() *StatsListener[T] {
	return mcts.listener
}

func (mcts *MCTS[T]) SetListener(listener StatsListener[T]) {
	// A zero-value listener would make the cycle interval modulus divide
	// by zero once OnCycle is attached
	if listener.nCycles < 1 {
		listener.nCycles = 1
	}
	*mcts.listener = listener
}

// Adds custom context to the limiter, enabling cancellation through it
//
// Example:
//
//	ctx, cancel := context.WithCancel(context.Background())
//
//	tree.SetContext(ctx)
//	go func() {
//	    time.Sleep(2 * time.Second)
//	    cancel() // Cancel the search after 2 seconds
//	}()
//
//	tree.Search(ops)
func (mcts *MCTS[T]) SetContext(ctx context.Context) {
	mcts.Limiter.SetContext(ctx)
}

func (mcts *MCTS[T]) IsSearching() bool {
	return !mcts.Limiter.Stop()
}

// Stop the search
func (mcts *MCTS[T]) Stop() {
	mcts.Limiter.SetStop(true)
}

// Maximum depth reached during the search, note that usually MaxDepth != len(pv)
func (mcts *MCTS[T]) MaxDepth() int {
	return int(mcts.maxdepth)
}

// Total number of iterations (selection/expansion/rollout/backpropagation
// cycles) ran during the search
func (mcts *MCTS[T]) Cycles() int {
	return int(mcts.cycles)
}

// Get cycles per second statistic
func (mcts *MCTS[T]) Cps() uint32 {
	return mcts.cps
}

// Get the reason why the search was stopped, valid after the search ends
func (mcts *MCTS[T]) StopReason() StopReason {
	return mcts.Limiter.StopReason()
}

func (mcts *MCTS[T]) SetLimits(limits *Limits) {
	mcts.Limiter.SetLimits(limits)
}

func (mcts *MCTS[T]) Limits() *Limits {
	return mcts.Limiter.Limits()
}

func (mcts *MCTS[T]) String() string {
	str := fmt.Sprintf("MCTS={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Stop=%v",
		mcts.Size(), mcts.MaxDepth(), mcts.Cps(), mcts.Cycles(), !mcts.IsSearching())
	str += fmt.Sprintf(", Root=%v, Root.Children=%v}", mcts.Root, mcts.Root.Children)
	return str
}

// Helper function to count tree nodes
func countTreeNodes[T MoveLike](node *NodeBase[T]) int {
	nodes := 1
	for i := range node.Children {
		if len(node.Children[i].Children) > 0 {
			nodes += countTreeNodes(&node.Children[i])
		} else {
			nodes += 1
		}
	}

	return nodes
}

// Get the size of the tree (by counting)
func (mcts *MCTS[T]) Count() int {
	return countTreeNodes(mcts.Root)
}

// Get the size of the tree
func (mcts *MCTS[T]) Size() uint32 {
	return mcts.size
}

// Returns approximation of memory usage of the tree structure
func (mcts *MCTS[T]) MemoryUsage() uint32 {
	return mcts.Size()*uint32(unsafe.Sizeof(NodeBase[T]{})) + uint32(unsafe.Sizeof(MCTS[T]{}))
}

// Commit a real move: the child for 'move' becomes the new root with its
// statistics intact, every sibling subtree is pruned. The caller must have
// played 'move' on the game state already. Returns false when no root child
// carries this move, which - since the root is always expanded - means the
// move is not legal here.
func (mcts *MCTS[T]) MakeMove(ops GameOperations[T], move T) bool {
	if mcts.IsSearching() {
		mcts.Stop()
	}

	var child *NodeBase[T]
	for i := range mcts.Root.Children {
		if mcts.Root.Children[i].Move == move {
			child = &mcts.Root.Children[i]
			break
		}
	}

	if child == nil {
		return false
	}

	// Copy the chosen child out of its sibling slice, otherwise the root
	// pointer would keep the whole pruned generation reachable
	oldRoot := mcts.Root
	newRoot := new(NodeBase[T])
	*newRoot = *child
	newRoot.Parent = nil
	for i := range newRoot.Children {
		newRoot.Children[i].Parent = newRoot
	}

	mcts.Root = newRoot
	oldRoot.Children = nil

	// A never-visited child has no children of its own yet, expand it so
	// the root invariant keeps holding
	if !newRoot.Expanded() && !newRoot.Terminal() {
		ops.ExpandNode(newRoot)
		newRoot.FinishExpanding()
	}
	ops.Reset()

	mcts.size = uint32(countTreeNodes(newRoot))
	mcts.maxdepth = uint32(max(0, mcts.MaxDepth()-1))
	return true
}

// Remove the previous tree and build a fresh root over the game's current
// state (which may be mid-game)
func (mcts *MCTS[T]) Reset(ops GameOperations[T], terminated bool) {
	if mcts.IsSearching() {
		mcts.Stop()
	}

	ops.Reset()
	mcts.Root = newRootNode[T](terminated)
	mcts.size = 1
	mcts.maxdepth = 0
	mcts.cycles = 0
	mcts.cps = 0

	if !terminated {
		mcts.size += ops.ExpandNode(mcts.Root)
		mcts.Root.FinishExpanding()
	}
}

// 'the best move' in the position
func (mcts *MCTS[T]) RootMove() T {
	var signature T
	if bestChild := mcts.BestChild(mcts.Root, BestChildMostVisits); bestChild != nil {
		signature = bestChild.Move
	}
	return signature
}

// Current evaluation of the position
func (mcts *MCTS[T]) RootScore() Result {
	if bestChild := mcts.BestChild(mcts.Root, BestChildMostVisits); bestChild != nil {
		return bestChild.AvgReward()
	}
	return Result(math.NaN())
}

// Return the best child, based on the policy. For BestChildMostVisits ties
// are broken by the higher average reward, then by child order, keeping the
// final move choice deterministic for a finished search.
func (mcts *MCTS[T]) BestChild(node *NodeBase[T], policy BestChildPolicy) *NodeBase[T] {
	var bestChild *NodeBase[T]
	var child *NodeBase[T]

	switch policy {
	case BestChildMostVisits:
		maxVisits := int32(0)
		for i := 0; i < len(node.Children); i++ {
			child = &node.Children[i]
			v := child.Visits()
			if v == 0 {
				continue
			}
			if bestChild == nil || v > maxVisits ||
				(v == maxVisits && child.AvgReward() > bestChild.AvgReward()) {
				maxVisits = v
				bestChild = child
			}
		}

	case BestChildWinRate:
		// A tiny sample can show a perfect win rate, require a minimal one
		const minVisitsThreshold = 10

		bestWinRate := math.Inf(-1)
		for i := 0; i < len(node.Children); i++ {
			child = &node.Children[i]
			if child.Visits() > minVisitsThreshold {
				if winRate := float64(child.AvgReward()); winRate > bestWinRate {
					bestWinRate = winRate
					bestChild = child
				}
			}
		}

		if bestChild == nil {
			bestChild = mcts.BestChild(node, BestChildMostVisits)
		}
	}

	return bestChild
}

type PvResult[T MoveLike] struct {
	Root     *NodeBase[T]
	Pv       []T
	Terminal bool
	Draw     bool
}

// Returns up to 'MultiPv' (from the limits) best move lines
func (mcts *MCTS[T]) MultiPv(policy BestChildPolicy) []PvResult[T] {
	if mcts.Root == nil {
		return nil
	}

	pvCount := mcts.Limiter.Limits().MultiPv
	childCount := len(mcts.Root.Children)
	multipv := make([]PvResult[T], 0, pvCount)
	rootNodes := make([]*NodeBase[T], childCount)
	for i := 0; i < childCount; i++ {
		rootNodes[i] = &mcts.Root.Children[i]
	}

	slices.SortFunc(rootNodes, func(a *NodeBase[T], b *NodeBase[T]) int {
		va, vb := a.Visits(), b.Visits()
		if va < vb {
			return 1
		} else if va > vb {
			return -1
		}
		return 0
	})

	for i := 0; i < pvCount; i++ {
		if i >= childCount {
			break
		}

		pv, terminal, draw := mcts.Pv(rootNodes[i], policy, true)
		multipv = append(multipv, PvResult[T]{
			Root:     rootNodes[i],
			Pv:       pv,
			Terminal: terminal,
			Draw:     draw,
		})
	}

	return multipv
}

// Get the principal variation (ie. the best sequence of moves)
// from given starting 'root' node, based on given best child policy
func (mcts *MCTS[T]) PvNodes(root *NodeBase[T], policy BestChildPolicy, includeRoot bool) ([]*NodeBase[T], bool) {
	if root == nil {
		return nil, false
	}

	pv := make([]*NodeBase[T], 0, mcts.MaxDepth()+1)
	node := root
	mate := false

	if includeRoot {
		pv = append(pv, root)
	}

	if len(root.Children) == 0 {
		// If there are no children, we cannot go further
		return pv, root.Terminal()
	}

	// Simply select 'best child' until we don't have any children
	// or the node is nil
	for len(node.Children) > 0 {
		node = mcts.BestChild(node, policy)
		if node == nil {
			break
		}

		pv = append(pv, node)

		// If that's a terminal node, we got a decided line
		if node.Terminal() {
			mate = true
			break
		}
	}

	return pv, mate
}

// Get the principal variation, but only the moves, returns (moves, mate, draw)
func (mcts *MCTS[T]) Pv(root *NodeBase[T], policy BestChildPolicy, includeRoot bool) ([]T, bool, bool) {
	if root == nil {
		return nil, false, false
	}

	var node *NodeBase[T]
	nodes, mate := mcts.PvNodes(root, policy, includeRoot)
	pv := make([]T, len(nodes))
	for i := 0; i < len(nodes); i++ {
		node = nodes[i]
		pv[i] = node.Move
	}

	return pv, mate, (mate && node.AvgReward() == 0.5)
}
