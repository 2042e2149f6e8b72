package bench

// ListenerLike receives progress callbacks from arena workers. The
// callbacks come from multiple goroutines, implementations synchronize
// on their own.
type ListenerLike interface {
	OnMoveMade(info WorkerInfo)
	OnFinishedGame(info WorkerInfo)
	OnFinishedWork(info WorkerInfo)
	Summary(info SummaryInfo)
}

// NopListener runs the arena silently
type NopListener struct{}

func (NopListener) OnMoveMade(WorkerInfo)     {}
func (NopListener) OnFinishedGame(WorkerInfo) {}
func (NopListener) OnFinishedWork(WorkerInfo) {}
func (NopListener) Summary(SummaryInfo)       {}
