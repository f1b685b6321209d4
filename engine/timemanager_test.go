package engine

import (
	"testing"
	"time"
)

func TestTimeManagerUnlimitedNeverStops(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{})
	if tm.CheckStopCondition(1<<40, false) {
		t.Fatalf("zero limits must mean unbounded")
	}
}

func TestTimeManagerNodeBudget(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{MaxNodes: 1000})
	if tm.CheckStopCondition(1000, false) {
		t.Fatalf("stopped at exactly the budget; budget itself is allowed")
	}
	if !tm.CheckStopCondition(1001, false) {
		t.Fatalf("did not stop past the node budget")
	}
}

func TestTimeManagerStopIsSticky(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{MaxNodes: 10})
	if !tm.CheckStopCondition(11, false) {
		t.Fatalf("expected stop")
	}
	// Lower node count afterwards must not clear the flag.
	if !tm.CheckStopCondition(1, false) || !tm.IsStopped() {
		t.Fatalf("stop flag not sticky")
	}
	tm.Start(SearchLimits{MaxNodes: 10})
	if tm.IsStopped() {
		t.Fatalf("Start must reset the stop flag")
	}
}

func TestTimeManagerReportsWhichBudgetTripped(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{MaxNodes: 10, TimeLimitMs: 0})
	if !tm.CheckStopCondition(11, false) {
		t.Fatalf("expected a node-budget stop")
	}
	if tm.StoppedByTime() {
		t.Fatalf("node-budget stop must not read as a time stop")
	}

	tm.Start(SearchLimits{TimeLimitMs: 1})
	if tm.StoppedByTime() {
		t.Fatalf("Start must reset the time-stop flag")
	}
	time.Sleep(5 * time.Millisecond)
	if !tm.CheckStopCondition(0, false) {
		t.Fatalf("expected a time stop")
	}
	if !tm.StoppedByTime() {
		t.Fatalf("time stop not reported as such")
	}
}

func TestTimeManagerTimeBudget(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{TimeLimitMs: 1})
	time.Sleep(5 * time.Millisecond)
	if !tm.CheckStopCondition(0, false) {
		t.Fatalf("did not stop past the time budget")
	}
}

func TestTimeManagerPanicExtension(t *testing.T) {
	var tm TimeManager
	tm.Start(SearchLimits{TimeLimitMs: 1, PanicExtraMs: 60_000})
	time.Sleep(5 * time.Millisecond)
	if tm.CheckStopCondition(0, true) {
		t.Fatalf("panic allowance should still cover this point")
	}
	if !tm.CheckStopCondition(0, false) {
		t.Fatalf("without panic the base budget is exhausted")
	}
}
