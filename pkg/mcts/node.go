package mcts

// Accumulated reward and visit count of a single node. Rewards are stored
// from the perspective of the player who made the move leading into the
// node, so a node's average reward answers "how good was it to come here"
// for the player who chose to.
type NodeStats struct {
	rewards float64
	visits  int32
}

// Number of completed backpropagations through this node
func (stats *NodeStats) Visits() int32 {
	return stats.visits
}

// Cumulated rewards for this node
func (stats *NodeStats) Rewards() float64 {
	return stats.rewards
}

// Average reward for this node, NaN-free only when visits > 0
func (stats *NodeStats) AvgReward() Result {
	return Result(stats.rewards) / Result(stats.visits)
}

// Record one backpropagated outcome
func (stats *NodeStats) AddReward(result Result) {
	stats.rewards += float64(result)
	stats.visits++
}

const (
	ExpandedMask uint32 = 1
	TerminalMask uint32 = 2
)

type NodeBase[T MoveLike] struct {
	NodeStats

	// Move that leads from Parent to this node
	Move T

	// Forward edges are exclusively owned by the parent: children live in
	// one contiguous slice, so the tree needs a single allocation per
	// expansion and no per-child boxing
	Children []NodeBase[T]

	// Non-owning back reference, nil for the root. Never extends the
	// child's lifetime past its owner
	Parent *NodeBase[T]

	flags uint32
}

func newRootNode[T MoveLike](terminated bool) *NodeBase[T] {
	return &NodeBase[T]{flags: TerminalFlag(terminated)}
}

func NewBaseNode[T MoveLike](parent *NodeBase[T], move T, terminated bool) NodeBase[T] {
	return NodeBase[T]{
		Move:   move,
		Parent: parent,
		flags:  TerminalFlag(terminated),
	}
}

func TerminalFlag(terminal bool) uint32 {
	if terminal {
		return TerminalMask
	}
	return 0
}

// Whether the node holds a terminal game state, fixed at creation
func (node *NodeBase[T]) Terminal() bool {
	return node.flags&TerminalMask == TerminalMask
}

// Whether the node's children have been generated. Note that a child with
// zero visits counts as an "untried move" of its parent: it has never been
// rolled out, and the selection policy always prefers it over any visited
// sibling
func (node *NodeBase[T]) Expanded() bool {
	return node.flags&ExpandedMask == ExpandedMask
}

func (node *NodeBase[T]) FinishExpanding() {
	node.flags |= ExpandedMask
}

// Deep copy of the subtree under this node
func (node *NodeBase[T]) Clone() *NodeBase[T] {
	clone := &NodeBase[T]{
		NodeStats: node.NodeStats,
		Move:      node.Move,
		Children:  make([]NodeBase[T], len(node.Children)),
		Parent:    node.Parent,
		flags:     node.flags,
	}
	for i := range node.Children {
		clone.Children[i] = *node.Children[i].Clone()
		clone.Children[i].Parent = clone
	}
	return clone
}
