package engine

import "math"

// EvalScore is the engine-wide score unit. Scores are root-relative during
// search: positive always favors the side to move at the root of the whole
// search, independent of recursion depth.
type EvalScore = int

const (
	ScoreInfinity EvalScore = math.MaxInt / 4
	ScoreMate     EvalScore = ScoreInfinity - 1000
	ScoreDraw     EvalScore = 0
)

// IsMateScore reports whether score encodes a forced win or loss.
func IsMateScore(score EvalScore) bool {
	if score < 0 {
		score = -score
	}
	return score >= ScoreMate-maxMatePly
}

// maxMatePly bounds the mate-distance offsets baked into mate scores.
const maxMatePly = 512

// SearchLimits is the configuration surface of one search invocation.
type SearchLimits struct {
	MaxDepth        int    `json:"max_depth"`
	MaxNodes        uint64 `json:"max_nodes"`         // 0 = unlimited
	TimeLimitMs     uint64 `json:"time_limit_ms"`     // 0 = unlimited
	PanicExtraMs    uint64 `json:"panic_extra_ms"`
	EnableNullMove  bool   `json:"enable_null_move"`
	EnablePanicMode bool   `json:"enable_panic_mode"`
}

func DefaultSearchLimits() SearchLimits {
	return SearchLimits{
		MaxDepth:        32,
		MaxNodes:        0,
		TimeLimitMs:     1000,
		PanicExtraMs:    300,
		EnableNullMove:  true,
		EnablePanicMode: true,
	}
}

// SearchResult reports the outcome of one SearchBestMove call. BestScore is
// root-relative.
type SearchResult struct {
	BestMove     Move      `json:"best_move"`
	BestScore    EvalScore `json:"best_score"`
	DepthReached int       `json:"depth_reached"`
	IsMate       bool      `json:"is_mate"`
	IsTimeout    bool      `json:"is_timeout"`
	IsForcedWin  bool      `json:"is_forced_win"`

	PrincipalVariation []Move `json:"principal_variation"`

	Nodes    uint64 `json:"nodes"`
	QNodes   uint64 `json:"qnodes"`
	HashHits uint64 `json:"hash_hits"`
}

// Evaluator scores quiescent positions. Implementations must return scores
// positive when the position favors maxPlayer and must not mutate the board.
type Evaluator interface {
	Evaluate(board *Board, maxPlayer Player) EvalScore
}

// HistoryHeuristic supplies move-ordering statistics. Expected O(1) per call
// and safe to consult on every node. Not thread-safe.
type HistoryHeuristic interface {
	HistoryScore(side Player, move Move) int
	RecordBetaCutoff(side Player, move Move, depth int)
	RecordPVMove(side Player, move Move, depth int)
	Clear()
}

// ThreatAnalysis is the coarse tactical summary exposed through the
// ThreatSolver interface.
type ThreatAnalysis struct {
	AttackerHasForcedWin bool
	FirstWinningMove     Move
	WinningLine          []Move
	DefensiveMoves       []Move
}

// ThreatSolver is the tactical capability consumed by the search engine.
// One production implementation exists (NewThreatSolver); tests substitute
// doubles.
type ThreatSolver interface {
	AnalyzeThreats(board *Board, attacker Player) ThreatAnalysis
	NotifyMove(move Move)
	NotifyUndo(move Move)
}
