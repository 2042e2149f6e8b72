package mcts

import "time"

// deadline tracks the wall-clock budget of one search. A negative budget
// means no time limit; the reference point is set by restart at the top
// of every search.
type deadline struct {
	since  time.Time
	budget time.Duration
}

func newDeadline() deadline {
	return deadline{since: time.Now(), budget: -1}
}

// set the time budget in milliseconds, negative disables the limit
func (d *deadline) set(ms int) {
	if ms < 0 {
		d.budget = -1
	} else {
		d.budget = time.Duration(ms) * time.Millisecond
	}
}

func (d *deadline) restart() {
	d.since = time.Now()
}

// armed reports whether a time limit is in effect
func (d *deadline) armed() bool {
	return d.budget >= 0
}

func (d *deadline) expired() bool {
	return d.budget >= 0 && time.Since(d.since) >= d.budget
}

// elapsedMs never reports zero, so it is safe as a rate divisor
func (d *deadline) elapsedMs() int {
	return max(int(time.Since(d.since).Milliseconds()), 1)
}
