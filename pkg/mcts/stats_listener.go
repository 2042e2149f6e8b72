package mcts

type SearchLine[T MoveLike] struct {
	BestMove T
	Moves    []T
	Eval     float64
	Visits   int32
	Terminal bool
	Draw     bool
}

type ListenerTreeStats[T MoveLike] struct {
	Maxdepth   int
	Cycles     int
	TimeMs     int
	Cps        uint32
	Size       uint32
	Lines      []SearchLine[T]
	StopReason StopReason
}

// Convert the tree's counters to a 'ListenerTreeStats' struct
func toListenerStats[T MoveLike](tree *MCTS[T]) ListenerTreeStats[T] {
	pv := tree.MultiPv(BestChildMostVisits)
	lines := make([]SearchLine[T], len(pv))
	for i := 0; i < len(pv); i++ {
		lines[i] = SearchLine[T]{
			BestMove: pv[i].Root.Move,
			Moves:    pv[i].Pv,
			Eval:     float64(pv[i].Root.AvgReward()),
			Visits:   pv[i].Root.Visits(),
			Terminal: pv[i].Terminal,
			Draw:     pv[i].Draw,
		}
	}

	return ListenerTreeStats[T]{
		Lines:      lines,
		Maxdepth:   tree.MaxDepth(),
		Cycles:     tree.Cycles(),
		TimeMs:     int(tree.Limiter.Elapsed()),
		Cps:        tree.Cps(),
		Size:       tree.Size(),
		StopReason: tree.Limiter.StopReason(),
	}
}

// Listener function callback, will receive current tree statistics, like
// max depth of the tree, number of iterations so far
type ListenerFunc[T MoveLike] func(ListenerTreeStats[T])

type StatsListener[T MoveLike] struct {
	// called when 'max depth' increases
	onDepth ListenerFunc[T]

	// called every N full iterations
	onCycle ListenerFunc[T]
	nCycles int // call 'onCycle' every N cycles

	// called when the search stops (either by limiter or 'stop' signal)
	onStop ListenerFunc[T]
}

func NewStatsListener[T MoveLike]() *StatsListener[T] {
	return &StatsListener[T]{nCycles: 1}
}

// Attach new on max depth change callback
func (listener *StatsListener[T]) OnDepth(onDepth ListenerFunc[T]) *StatsListener[T] {
	listener.onDepth = onDepth
	return listener
}

// Attach new on iteration increase callback, this will noticeably slow down
// the search because of the pv evaluation, so keep the interval reasonable
func (listener *StatsListener[T]) OnCycle(onCycle ListenerFunc[T]) *StatsListener[T] {
	listener.onCycle = onCycle
	return listener
}

func (listener *StatsListener[T]) SetCycleInterval(n int) *StatsListener[T] {
	if n < 1 {
		n = 1
	}
	listener.nCycles = n
	return listener
}

// Attach 'on search end' callback, makes 'StopReason' available in the stats
func (listener *StatsListener[T]) OnStop(onStop ListenerFunc[T]) *StatsListener[T] {
	listener.onStop = onStop
	return listener
}
