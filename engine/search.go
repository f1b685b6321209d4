package engine

import "sort"

const (
	// nullMoveReduction is subtracted on top of the regular depth step when
	// verifying a null move.
	nullMoveReduction = 2
	// nullMoveMinDepth keeps null-move pruning away from the leaves, where
	// the verification search would be too shallow to trust.
	nullMoveMinDepth = 3
	// defensiveSetMinDepth gates the expensive defensive-set computation to
	// nodes with enough remaining depth to profit from the restriction.
	defensiveSetMinDepth = 3
	// quiescenceMaxDepth bounds the forcing-move extension below depth 0.
	quiescenceMaxDepth = 6
	// stopCheckInterval is how many nodes pass between wall-clock checks.
	stopCheckInterval = 1024
	// panicDropThreshold is the score drop between two completed iterations
	// that switches the clock into its extended panic budget.
	panicDropThreshold = 400
)

// nodeThreatLimits bounds the per-node defensive-set searches so tactical
// verification stays a fraction of the main search budget.
var nodeThreatLimits = ThreatSearchLimits{MaxNodes: 4000, MaxDepth: 8}

// rootThreatLimits is the deeper budget spent once per SearchBestMove call
// to certify a forced win before any alpha-beta work starts.
var rootThreatLimits = ThreatSearchLimits{MaxNodes: 150000, MaxDepth: 16}

// SearchEngine runs iterative-deepening alpha-beta over a Board. Scores are
// root-relative: the side to move when SearchBestMove is entered is the
// maximizing player at every node, so a cached score means the same thing no
// matter which side's node it came from.
//
// The engine owns no goroutines; one call to SearchBestMove runs to
// completion on the caller's goroutine and the engine must not be shared
// across concurrent searches.
type SearchEngine struct {
	board     *Board
	evaluator Evaluator
	solver    FullThreatSolver
	history   HistoryHeuristic
	tt        *TranspositionTable
	clock     TimeManager

	rootSide Player
	limits   SearchLimits
	inPanic  bool

	nodes    uint64
	qnodes   uint64
	hashHits uint64
}

// NewSearchEngine wires a search over board with the default collaborators.
func NewSearchEngine(board *Board) *SearchEngine {
	return &SearchEngine{
		board:     board,
		evaluator: NewEvaluator(),
		solver:    NewThreatSolver(board),
		history:   NewHistoryTable(),
		tt:        NewTranspositionTable(DefaultTTSize),
	}
}

// NewSearchEngineWith builds a search with explicit collaborators. solver and
// history may be nil; the corresponding pruning and ordering steps are then
// skipped.
func NewSearchEngineWith(board *Board, evaluator Evaluator, solver FullThreatSolver, history HistoryHeuristic, tt *TranspositionTable) *SearchEngine {
	if evaluator == nil {
		evaluator = NewEvaluator()
	}
	if tt == nil {
		tt = NewTranspositionTable(DefaultTTSize)
	}
	return &SearchEngine{
		board:     board,
		evaluator: evaluator,
		solver:    solver,
		history:   history,
		tt:        tt,
	}
}

// TranspositionTable exposes the engine's table, mainly so callers can
// snapshot or preload it between runs.
func (s *SearchEngine) TranspositionTable() *TranspositionTable {
	return s.tt
}

// Board returns the board the engine searches on.
func (s *SearchEngine) Board() *Board {
	return s.board
}

// SearchBestMove picks a move for the current side to move under limits.
// A stop mid-iteration returns the deepest fully completed iteration's move;
// IsTimeout is set only when the wall clock ended the run, a node-budget
// stop leaves it false. The first iteration always runs to completion so a
// valid move comes back whenever one exists.
func (s *SearchEngine) SearchBestMove(limits SearchLimits) SearchResult {
	if limits.MaxDepth <= 0 {
		limits.MaxDepth = DefaultSearchLimits().MaxDepth
	}
	if limits.MaxDepth > maxMatePly/2 {
		limits.MaxDepth = maxMatePly / 2
	}
	s.limits = limits
	s.rootSide = s.board.SideToMove()
	s.inPanic = false
	s.nodes = 0
	s.qnodes = 0
	s.hashHits = 0
	s.clock.Start(limits)
	if s.solver != nil {
		s.solver.SyncFromBoard(s.board)
	}

	result := s.iterativeDeepening()
	result.Nodes = s.nodes
	result.QNodes = s.qnodes
	result.HashHits = s.hashHits
	return result
}

func (s *SearchEngine) iterativeDeepening() SearchResult {
	result := SearchResult{BestMove: NewMove(-1, -1)}

	// A certified forcing sequence beats anything deepening could find.
	if s.solver != nil {
		var seq ThreatSequence
		win := s.solver.FindWinningThreatSequence(s.rootSide, &seq, s.certifyLimits())
		if win && len(seq.AttackerMoves) > 0 {
			matePly := matePlyFromSequence(&seq)
			result.BestMove = seq.AttackerMoves[0]
			result.BestScore = ScoreMate - matePly
			result.DepthReached = matePly
			result.IsMate = true
			result.IsForcedWin = true
			result.PrincipalVariation = append([]Move(nil), seq.AttackerMoves...)
			return result
		}
	}

	prevScore := EvalScore(0)
	for depth := 1; depth <= s.limits.MaxDepth; depth++ {
		score, move, completed := s.searchRoot(depth)
		if !completed {
			result.IsTimeout = s.clock.StoppedByTime()
			// Nothing finished yet: fall back to the partial iteration so a
			// legal move comes back even on a first-depth timeout.
			if !result.BestMove.IsValid() && move.IsValid() {
				result.BestMove = move
				result.BestScore = score
				result.DepthReached = depth
			}
			break
		}
		result.BestMove = move
		result.BestScore = score
		result.DepthReached = depth
		result.IsMate = IsMateScore(score)
		result.PrincipalVariation = s.extractPrincipalVariation(depth)
		if result.IsMate {
			break
		}
		if depth > 1 && s.limits.EnablePanicMode && score < prevScore-panicDropThreshold {
			s.inPanic = true
		}
		prevScore = score
		if s.clock.CheckStopCondition(s.nodes+s.qnodes, s.inPanic) {
			if depth < s.limits.MaxDepth {
				result.IsTimeout = s.clock.StoppedByTime()
			}
			break
		}
	}
	return result
}

// matePlyFromSequence converts a certified forcing line into a mate
// distance. A line ending in a five completion mates on the attacker's last
// move; one ending in a double five threat still needs the defender's block
// and the finishing placement, two plies more.
func matePlyFromSequence(seq *ThreatSequence) int {
	ply := 2*len(seq.AttackerMoves) - 1
	if n := len(seq.Threats); n > 0 && seq.Threats[n-1].Type != ThreatFive {
		ply += 2
	}
	return ply
}

// searchRoot runs one full-width iteration. completed is false when the
// clock fired mid-iteration, in which case score and move are meaningless.
func (s *SearchEngine) searchRoot(depth int) (EvalScore, Move, bool) {
	moves := s.rootMoves()
	if len(moves) == 0 {
		return ScoreDraw, NewMove(-1, -1), true
	}

	alpha := -ScoreInfinity
	beta := ScoreInfinity
	best := -ScoreInfinity
	bestMove := moves[0]
	for i, m := range moves {
		if !s.board.MakeMove(m.X, m.Y) {
			continue
		}
		if s.solver != nil {
			s.solver.NotifyMove(m)
		}
		value := s.search(depth-1, alpha, beta, 1, true, i == 0)
		if s.solver != nil {
			s.solver.NotifyUndo(m)
		}
		s.board.UnmakeMove(m.X, m.Y)
		if s.clock.IsStopped() {
			if best == -ScoreInfinity {
				return 0, moves[0], false
			}
			return best, bestMove, false
		}
		if value > best {
			best = value
			bestMove = m
		}
		if value > alpha {
			alpha = value
		}
	}

	s.tt.Store(s.board.Hash(), ToTTScore(best, 0), s.evaluator.Evaluate(s.board, s.rootSide), depth, TTExact, bestMove)
	if s.history != nil {
		s.history.RecordPVMove(s.rootSide, bestMove, depth)
	}
	return best, bestMove, true
}

// rootMoves is the candidate set at the root, restricted to the defensive
// set when the opponent already has forcing threats running.
func (s *SearchEngine) rootMoves() []Move {
	if s.solver != nil {
		if len(s.solver.CollectCurrentForcingThreats(s.rootSide.Other())) > 0 {
			ds := s.solver.ComputeDefensiveSet(s.rootSide, s.nodeLimits())
			if !ds.IsLost && len(ds.DefensiveMoves) > 0 {
				moves := append([]Move(nil), ds.DefensiveMoves...)
				s.orderMoves(moves, s.rootSide, NewMove(-1, -1))
				return moves
			}
			// Lost or inconclusive positions keep the full candidate set
			// so the engine still picks the most resistant move.
		}
	}
	moves := s.board.CandidateMoves()
	ttMove := NewMove(-1, -1)
	if entry := s.tt.Probe(s.board.Hash()); entry.used && entry.Key == s.board.Hash() {
		ttMove = entry.BestMove
	}
	s.orderMoves(moves, s.rootSide, ttMove)
	return moves
}

// search is the recursive alpha-beta step. depth is remaining depth, ply the
// distance from the root. Scores returned while the clock is stopped are
// garbage; every caller discards them after checking IsStopped.
func (s *SearchEngine) search(depth int, alpha, beta EvalScore, ply int, allowNull, inPV bool) EvalScore {
	s.nodes++
	if s.nodes%stopCheckInterval == 0 {
		s.clock.CheckStopCondition(s.nodes+s.qnodes, s.inPanic)
	}
	if s.clock.IsStopped() {
		return 0
	}

	side := s.board.SideToMove()
	mover := side.Other()
	if s.board.CheckWin(mover) {
		return s.mateScore(mover, ply)
	}
	if s.board.IsFull() {
		return ScoreDraw
	}
	if ply >= maxMatePly {
		return s.evaluator.Evaluate(s.board, s.rootSide)
	}

	key := s.board.Hash()
	ttMove := NewMove(-1, -1)
	entry := s.tt.Probe(key)
	if entry.used && entry.Key == key {
		s.hashHits++
		ttMove = entry.BestMove
		if entry.Depth >= depth && !inPV {
			value := FromTTScore(entry.Value, ply)
			switch entry.Type {
			case TTExact:
				return value
			case TTLowerBound:
				if value > alpha {
					alpha = value
				}
			case TTUpperBound:
				if value < beta {
					beta = value
				}
			}
			if alpha >= beta {
				return value
			}
		}
	}

	var restricted []Move
	threatened := false
	if s.solver != nil {
		if s.solver.HasImmediateWinningThreat(side) {
			return s.mateScore(side, ply+1)
		}
		threatened = len(s.solver.CollectCurrentForcingThreats(mover)) > 0
		if threatened && depth >= defensiveSetMinDepth {
			ds := s.solver.ComputeDefensiveSet(side, s.nodeLimits())
			if ds.IsLost {
				return s.mateScore(mover, ply+2)
			}
			if len(ds.DefensiveMoves) > 0 {
				restricted = ds.DefensiveMoves
			}
		}
	}

	if depth <= 0 {
		return s.quiescence(alpha, beta, ply, quiescenceMaxDepth)
	}

	if s.canDoNullMove(depth, allowNull, inPV, threatened) {
		value := s.nullMoveSearch(depth, alpha, beta, ply, side)
		if s.clock.IsStopped() {
			return 0
		}
		if side == s.rootSide && value >= beta {
			return value
		}
		if side != s.rootSide && value <= alpha {
			return value
		}
	}

	moves := restricted
	if moves == nil {
		moves = s.board.CandidateMoves()
	} else {
		moves = append([]Move(nil), moves...)
	}
	s.orderMoves(moves, side, ttMove)

	isMax := side == s.rootSide
	origAlpha := alpha
	origBeta := beta
	best := ScoreInfinity
	if isMax {
		best = -ScoreInfinity
	}
	bestMove := NewMove(-1, -1)
	searched := 0
	for i, m := range moves {
		if !s.board.MakeMove(m.X, m.Y) {
			continue
		}
		if s.solver != nil {
			s.solver.NotifyMove(m)
		}
		value := s.search(depth-1, alpha, beta, ply+1, true, inPV && i == 0)
		if s.solver != nil {
			s.solver.NotifyUndo(m)
		}
		s.board.UnmakeMove(m.X, m.Y)
		if s.clock.IsStopped() {
			return 0
		}
		searched++
		if isMax {
			if value > best {
				best = value
				bestMove = m
			}
			if value > alpha {
				alpha = value
			}
		} else {
			if value < best {
				best = value
				bestMove = m
			}
			if value < beta {
				beta = value
			}
		}
		if alpha >= beta {
			if s.history != nil {
				s.history.RecordBetaCutoff(side, m, depth)
			}
			break
		}
	}
	if searched == 0 {
		return s.evaluator.Evaluate(s.board, s.rootSide)
	}

	nodeType := TTExact
	if best <= origAlpha {
		nodeType = TTUpperBound
	} else if best >= origBeta {
		nodeType = TTLowerBound
	}
	s.tt.Store(key, ToTTScore(best, ply), s.evaluator.Evaluate(s.board, s.rootSide), depth, nodeType, bestMove)
	if nodeType == TTExact && s.history != nil {
		s.history.RecordPVMove(side, bestMove, depth)
	}
	return best
}

// canDoNullMove rejects the null move wherever skipping a turn could hide a
// tactic: PV nodes, shallow depths, and any position where the opponent has
// forcing threats running.
func (s *SearchEngine) canDoNullMove(depth int, allowNull, inPV, threatened bool) bool {
	if !s.limits.EnableNullMove || !allowNull || inPV || threatened {
		return false
	}
	if depth < nullMoveMinDepth {
		return false
	}
	if s.solver != nil && s.solver.HasImmediateWinningThreat(s.board.SideToMove().Other()) {
		return false
	}
	return true
}

// nullMoveSearch hands the turn over and verifies the resulting position at
// reduced depth with a null window around the bound the caller wants to
// prove.
func (s *SearchEngine) nullMoveSearch(depth int, alpha, beta EvalScore, ply int, side Player) EvalScore {
	s.board.MakeNullMove()
	var value EvalScore
	if side == s.rootSide {
		value = s.search(depth-1-nullMoveReduction, beta-1, beta, ply+1, false, false)
	} else {
		value = s.search(depth-1-nullMoveReduction, alpha, alpha+1, ply+1, false, false)
	}
	s.board.UnmakeNullMove()
	return value
}

// quiescence extends the search past depth 0 through forcing placements
// only: winning completions, forced blocks, and four-making moves. The
// static evaluation stands in for everything quieter.
func (s *SearchEngine) quiescence(alpha, beta EvalScore, ply, qdepth int) EvalScore {
	s.qnodes++
	if s.qnodes%stopCheckInterval == 0 {
		s.clock.CheckStopCondition(s.nodes+s.qnodes, s.inPanic)
	}
	if s.clock.IsStopped() {
		return 0
	}

	side := s.board.SideToMove()
	mover := side.Other()
	if s.board.CheckWin(mover) {
		return s.mateScore(mover, ply)
	}
	if s.board.IsFull() {
		return ScoreDraw
	}

	stand := s.evaluator.Evaluate(s.board, s.rootSide)
	if s.solver == nil || qdepth <= 0 || ply >= maxMatePly {
		return stand
	}

	isMax := side == s.rootSide
	if isMax {
		if stand >= beta {
			return stand
		}
		if stand > alpha {
			alpha = stand
		}
	} else {
		if stand <= alpha {
			return stand
		}
		if stand < beta {
			beta = stand
		}
	}

	moves := s.forcingQuiescenceMoves(side, mover)
	if len(moves) == 0 {
		return stand
	}

	best := stand
	for _, m := range moves {
		if !s.board.MakeMove(m.X, m.Y) {
			continue
		}
		s.solver.NotifyMove(m)
		value := s.quiescence(alpha, beta, ply+1, qdepth-1)
		s.solver.NotifyUndo(m)
		s.board.UnmakeMove(m.X, m.Y)
		if s.clock.IsStopped() {
			return 0
		}
		if isMax {
			if value > best {
				best = value
			}
			if value > alpha {
				alpha = value
			}
		} else {
			if value < best {
				best = value
			}
			if value < beta {
				beta = value
			}
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// forcingQuiescenceMoves picks what the quiescence layer is allowed to play:
// the side's own win-in-one if it has one, mandatory blocks of the
// opponent's win-in-one, otherwise the side's four-making placements.
func (s *SearchEngine) forcingQuiescenceMoves(side, mover Player) []Move {
	if m, ok := s.solver.ImmediateWinningMove(side); ok {
		return []Move{m}
	}
	if blocks := s.solver.FiveCompletions(mover); len(blocks) > 0 {
		return blocks
	}
	return s.solver.FourPlacements(side)
}

// orderMoves sorts in place: the table move first, then by history score,
// preserving the row-major candidate order as the final tie-break.
func (s *SearchEngine) orderMoves(moves []Move, side Player, ttMove Move) {
	if len(moves) < 2 {
		return
	}
	sort.SliceStable(moves, func(i, j int) bool {
		if ttMove.IsValid() {
			if moves[i].Equals(ttMove) {
				return true
			}
			if moves[j].Equals(ttMove) {
				return false
			}
		}
		if s.history == nil {
			return false
		}
		return s.history.HistoryScore(side, moves[i]) > s.history.HistoryScore(side, moves[j])
	})
}

// extractPrincipalVariation replays table best moves from the root position.
// The walk stops at the first missing or stale entry, so the line can be
// shorter than the depth reached.
func (s *SearchEngine) extractPrincipalVariation(maxLen int) []Move {
	var pv []Move
	for len(pv) < maxLen {
		key := s.board.Hash()
		entry := s.tt.Probe(key)
		if !entry.used || entry.Key != key || !entry.BestMove.IsValid() {
			break
		}
		m := entry.BestMove
		mover := s.board.SideToMove()
		if !s.board.MakeMove(m.X, m.Y) {
			break
		}
		if s.solver != nil {
			s.solver.NotifyMove(m)
		}
		pv = append(pv, m)
		if s.board.CheckWin(mover) {
			break
		}
	}
	for i := len(pv) - 1; i >= 0; i-- {
		if s.solver != nil {
			s.solver.NotifyUndo(pv[i])
		}
		s.board.UnmakeMove(pv[i].X, pv[i].Y)
	}
	return pv
}

// mateScore encodes a win for winner materializing at ply, root-relative.
func (s *SearchEngine) mateScore(winner Player, ply int) EvalScore {
	if ply > maxMatePly {
		ply = maxMatePly
	}
	score := ScoreMate - ply
	if winner != s.rootSide {
		return -score
	}
	return score
}

func (s *SearchEngine) nodeLimits() ThreatSearchLimits {
	return nodeThreatLimits
}

func (s *SearchEngine) certifyLimits() ThreatSearchLimits {
	return rootThreatLimits
}
