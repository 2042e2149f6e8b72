package mcts

import (
	"testing"
	"time"
)

func TestLimiterSingleLimits(t *testing.T) {
	limiter := LimiterLike(NewLimiter(32))

	if !limiter.Ok(1000000, 1000000, 1000000) || !limiter.Expand() {
		t.Error("Default limiter should search infinitely, expand=", limiter.Expand())
	}

	limiter.SetLimits(DefaultLimits().SetNodes(100))
	limiter.Reset()
	if ok := limiter.Ok(101, 1, 1); ok {
		t.Errorf("<Nodes=%d: ok=%v, want=%v", 101, ok, !ok)
	}

	if ok := limiter.Ok(99, 1, 1); !ok {
		t.Errorf(">Nodes=%d: ok=%v, want=%v", 99, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetByteSize(10 * 32))
	limiter.Reset()

	if ok := limiter.Ok(10, 1, 1); ok {
		t.Errorf("<Size=%d: ok=%v, want=%v", 10, ok, !ok)
	}

	if ok := limiter.Ok(9, 1, 1); !ok {
		t.Errorf(">Size=%d: ok=%v, want=%v", 9, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetCycles(50))
	limiter.Reset()

	if ok := limiter.Ok(1, 1, 50); ok {
		t.Errorf("<Cycles=%d: ok=%v, want=%v", 50, ok, !ok)
	}

	if ok := limiter.Ok(1, 1, 49); !ok {
		t.Errorf(">Cycles=%d: ok=%v, want=%v", 49, ok, !ok)
	}

	limiter.SetLimits(DefaultLimits().SetMovetime(100))
	limiter.Reset()
	time.Sleep(time.Millisecond * 101)

	if ok := limiter.Ok(1, 1, 1); ok {
		t.Errorf("<Movetime: ok=%v, want=%v", ok, !ok)
	}

	limiter.Reset()
	if ok := limiter.Ok(1, 1, 1); !ok {
		t.Errorf(">Movetime: ok=%v, want=%v", ok, !ok)
	}
}

func TestDeadline(t *testing.T) {
	d := newDeadline()

	if d.armed() || d.expired() {
		t.Error("fresh deadline must be unarmed: armed=", d.armed(), "expired=", d.expired())
	}

	if ms := d.elapsedMs(); ms < 1 {
		t.Errorf("elapsedMs=%d, want >= 1", ms)
	}

	d.set(30)
	d.restart()
	if !d.armed() || d.expired() {
		t.Error("armed deadline expired early: armed=", d.armed(), "expired=", d.expired())
	}

	time.Sleep(time.Millisecond * 31)
	if !d.expired() {
		t.Error("deadline did not expire after its budget")
	}

	d.set(-1)
	if d.armed() {
		t.Error("negative budget must disarm the deadline")
	}
}

func TestLimiterCombos(t *testing.T) {
	limiter := LimiterLike(NewLimiter(32))

	// Memory + cycles: when memory is exhausted, expansion is disabled and
	// the search waits for the cycle limit instead of stopping
	limiter.SetLimits(DefaultLimits().SetCycles(1000).SetByteSize(32 * 10))
	limiter.Reset()

	if !(limiter.Ok(10, 1, 1) && !limiter.Expand()) {
		t.Error("Memory+Cycles failed: ok=", limiter.Ok(10, 1, 1), "expand=", limiter.Expand())
	}

	if ok := limiter.Ok(10, 1, 1000); ok {
		t.Error("Memory+Cycles: cycle limit not honored, ok=", ok)
	}

	// Memory alone still stops the search
	limiter.SetLimits(DefaultLimits().SetByteSize(32 * 10))
	limiter.Reset()

	if ok := limiter.Ok(10, 1, 1); ok {
		t.Error("Memory-only limit not honored, ok=", ok)
	}
}

func TestLimiterStopReason(t *testing.T) {
	limiter := LimiterLike(NewLimiter(32))

	limiter.SetLimits(DefaultLimits().SetCycles(100))
	limiter.Reset()
	limiter.EvaluateStopReason(1, 1, 100)

	if reason := limiter.StopReason(); reason&StopCycles != StopCycles {
		t.Errorf("StopReason=%v, want Cycles", reason)
	}

	limiter.Reset()
	limiter.SetStop(true)
	limiter.EvaluateStopReason(1, 1, 1)

	if reason := limiter.StopReason(); reason&StopInterrupt != StopInterrupt {
		t.Errorf("StopReason=%v, want Interrupt", reason)
	}
}
