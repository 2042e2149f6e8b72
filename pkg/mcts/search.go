package mcts

// This function only resets the counters and the stop flag,
// it doesn't actually start the search
func (mcts *MCTS[T]) setupSearch() {
	mcts.Limiter.Reset()
	mcts.cps = 0
	mcts.cycles = 0
	mcts.maxdepth = 0
}

// Run the search until a limit is reached. One iteration:
//
// 1. selection - descend from the root by the selection policy to a leaf
//
// 2. expansion - a visited, non-terminal leaf gets its children generated,
// and one fresh child (chosen uniformly at random) becomes the iteration's
// node; at most one new node is visited per iteration
//
// 3. rollout - play the user-defined game out from the node
//
// 4. backpropagation - update statistics on the path back to the root
//
// The loop runs to completion of the current iteration before any limit
// takes effect, so the call leaves the tree in a consistent state.
func (mcts *MCTS[T]) Search(ops GameOperations[T]) {
	mcts.setupSearch()

	if mcts.Root.Terminal() || len(mcts.Root.Children) == 0 {
		mcts.Limiter.SetStop(true)
		mcts.invokeListener(mcts.listener.onStop)
		return
	}

	for mcts.Limiter.Ok(mcts.size, mcts.maxdepth, mcts.cycles) {
		// Choose the most promising node
		node := mcts.selection(ops)
		// Get the result of the playout and increment the counters
		// up to the root
		backpropagate(ops, node, ops.Rollout())

		mcts.cycles++
		mcts.cps = mcts.cycles * 1000 / mcts.Limiter.Elapsed()

		if mcts.listener.onCycle != nil && mcts.cycles%uint32(mcts.listener.nCycles) == 0 {
			mcts.listener.onCycle(toListenerStats(mcts))
		}
	}

	mcts.Limiter.EvaluateStopReason(mcts.size, mcts.maxdepth, mcts.cycles)
	mcts.Limiter.SetStop(true)
	mcts.invokeListener(mcts.listener.onStop)
}

// Selects the next node to roll out, by the user-defined selection policy.
// Walks the game operations alongside the tree, leaving them positioned at
// the returned node (backpropagate restores them to the root).
func (mcts *MCTS[T]) selection(ops GameOperations[T]) *NodeBase[T] {
	node := mcts.Root
	depth := uint32(0)

	for node.Expanded() {
		node = mcts.selectionPolicy(mcts.rng, node)
		ops.Traverse(node.Move)
		depth++
	}

	// A leaf that has been rolled out before gets expanded, and one of the
	// fresh children becomes this iteration's node. A never-visited leaf is
	// rolled out as-is, and terminal nodes are never expanded.
	if node.Visits() > 0 && !node.Terminal() && mcts.Limiter.Expand() {
		mcts.size += ops.ExpandNode(node)
		node.FinishExpanding()

		if len(node.Children) > 0 {
			node = &node.Children[mcts.rng.Intn(len(node.Children))]
			ops.Traverse(node.Move)
			depth++
		}
	}

	if depth > mcts.maxdepth {
		mcts.maxdepth = depth
		mcts.invokeListener(mcts.listener.onDepth)
	}

	return node
}

// Iterative walk from the rolled out node back to the root. The rollout
// result is expressed for the side to move at the node, while a node's
// reward belongs to the player who moved into it, so the value flips at
// every level on the way up (the game is two-player and zero-sum: a draw
// counts 0.5 for both).
func backpropagate[T MoveLike](ops GameOperations[T], node *NodeBase[T], result Result) {
	for node != nil {
		result = 1.0 - result
		node.AddReward(result)

		if node.Parent != nil {
			ops.BackTraverse()
		}
		node = node.Parent
	}
}
