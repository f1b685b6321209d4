package engine

import "time"

// TimeManager tracks the wall-clock and node budget of one search run. The
// stop flag is sticky: once tripped it stays set until the next Start.
type TimeManager struct {
	startTime     time.Time
	limits        SearchLimits
	stopped       bool
	stoppedByTime bool
}

func (tm *TimeManager) Start(limits SearchLimits) {
	tm.startTime = time.Now()
	tm.limits = limits
	tm.stopped = false
	tm.stoppedByTime = false
}

func (tm *TimeManager) IsStopped() bool {
	return tm.stopped
}

// StoppedByTime reports whether the wall clock, rather than the node budget,
// ended the run. False while the search is still going.
func (tm *TimeManager) StoppedByTime() bool {
	return tm.stoppedByTime
}

func (tm *TimeManager) ElapsedMs() uint64 {
	return uint64(time.Since(tm.startTime) / time.Millisecond)
}

// CheckStopCondition trips the stop flag when the time budget (extended by
// the panic allowance when inPanic) or the node budget is exhausted. A zero
// limit leaves that dimension unbounded.
func (tm *TimeManager) CheckStopCondition(nodesVisited uint64, inPanic bool) bool {
	if tm.stopped {
		return true
	}
	if tm.limits.TimeLimitMs > 0 {
		budget := tm.limits.TimeLimitMs
		if inPanic {
			budget += tm.limits.PanicExtraMs
		}
		if tm.ElapsedMs() > budget {
			tm.stopped = true
			tm.stoppedByTime = true
			return true
		}
	}
	if tm.limits.MaxNodes > 0 && nodesVisited > tm.limits.MaxNodes {
		tm.stopped = true
		return true
	}
	return false
}
