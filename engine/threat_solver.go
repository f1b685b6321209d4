package engine

import "sync/atomic"

// ThreatInstance binds a pattern on the board to its attacker, direction and
// the cells that make or break it.
type ThreatInstance struct {
	Type      ThreatType
	Attacker  Player
	Direction Direction

	// Attacker stones forming the pattern.
	Stones []Move
	// Empty cells that must stay empty for the threat to hold.
	RequiredEmpty []Move
	// Cells where the defender can legally answer the threat.
	DefensePoints []Move
	// Cells the attacker can play to upgrade or finish the threat.
	FinishingMoves []Move
}

// ThreatSequence is one forcing line ending in a winning threat.
type ThreatSequence struct {
	Attacker      Player
	Threats       []ThreatInstance
	AttackerMoves []Move
	DefenderMoves []Move
}

// DefensiveSet reports whether a defender survives the opponent's forcing
// sequences. IsLost means no reply survives; an empty move list with
// IsLost == false means no restriction at all.
type DefensiveSet struct {
	IsLost         bool
	DefensiveMoves []Move
}

// ThreatSearchLimits bounds one forcing-sequence search. AbortFlag is
// non-owning; the caller keeps it and may set it from another goroutine.
type ThreatSearchLimits struct {
	MaxNodes  int
	MaxDepth  int
	AbortFlag *atomic.Bool
}

func DefaultThreatSearchLimits() ThreatSearchLimits {
	return ThreatSearchLimits{MaxNodes: 200000, MaxDepth: 20}
}

// FullThreatSolver is the production tactical capability: the narrow
// ThreatSolver interface plus the sequence search and defensive queries the
// search engine builds its pruning on.
type FullThreatSolver interface {
	ThreatSolver

	SyncFromBoard(board *Board)
	FindWinningThreatSequence(attacker Player, out *ThreatSequence, limits ThreatSearchLimits) bool
	ComputeDefensiveSet(defender Player, limits ThreatSearchLimits) DefensiveSet
	HasImmediateWinningThreat(attacker Player) bool
	ImmediateWinningMove(attacker Player) (Move, bool)
	FiveCompletions(attacker Player) []Move
	FourPlacements(attacker Player) []Move
	CollectCurrentForcingThreats(attacker Player) []ThreatInstance
	ThreatAt(attacker Player, move Move, direction Direction) ThreatType
	ThreatsAt(attacker Player, move Move) [4]ThreatType
}

// threatSolver keeps, for every empty cell, direction and player, the
// ThreatType that player would create by playing there. The classification
// is maintained incrementally around each move notification.
type threatSolver struct {
	board   *Board
	threats [2][4][BoardSize * BoardSize]ThreatType
}

// NewThreatSolver builds a solver synchronized to board. The board must
// outlive the solver; keep it in sync through NotifyMove/NotifyUndo or
// SyncFromBoard.
func NewThreatSolver(board *Board) FullThreatSolver {
	s := &threatSolver{}
	s.SyncFromBoard(board)
	return s
}

func (s *threatSolver) SyncFromBoard(board *Board) {
	s.board = board
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			s.reclassifyCell(x, y)
		}
	}
}

// NotifyMove incrementally reclassifies the windows passing through the
// changed cell. Call directly after Board.MakeMove or PlaceStone.
func (s *threatSolver) NotifyMove(move Move) {
	s.reclassifyAround(move)
}

// NotifyUndo mirrors NotifyMove after Board.UnmakeMove or RemoveStone.
func (s *threatSolver) NotifyUndo(move Move) {
	s.reclassifyAround(move)
}

func (s *threatSolver) reclassifyAround(move Move) {
	if !move.IsValid() {
		return
	}
	s.reclassifyCell(move.X, move.Y)
	for dir, d := range directionDeltas {
		for k := -windowReach; k <= windowReach; k++ {
			if k == 0 {
				continue
			}
			x, y := move.X+k*d[0], move.Y+k*d[1]
			if !inBounds(x, y) {
				continue
			}
			s.reclassifyDir(x, y, Direction(dir))
		}
	}
}

func (s *threatSolver) reclassifyCell(x, y int) {
	for dir := 0; dir < 4; dir++ {
		s.reclassifyDir(x, y, Direction(dir))
	}
}

func (s *threatSolver) reclassifyDir(x, y int, dir Direction) {
	idx := cellIndex(x, y)
	if s.board.Occupied(x, y) {
		s.threats[PlayerBlack][dir][idx] = ThreatNone
		s.threats[PlayerWhite][dir][idx] = ThreatNone
		return
	}
	table := classificationTable()
	for _, player := range [2]Player{PlayerBlack, PlayerWhite} {
		s.threats[player][dir][idx] = table[s.windowKey(x, y, dir, player)]
	}
}

// windowKey encodes the eight cells around (x,y) along dir as base-3 digits:
// empty, attacker stone, or blocked (opponent stone or board edge).
func (s *threatSolver) windowKey(x, y int, dir Direction, attacker Player) int {
	d := directionDeltas[dir]
	key := 0
	pow := 1
	for k := -windowReach; k <= windowReach; k++ {
		if k == 0 {
			continue
		}
		cx, cy := x+k*d[0], y+k*d[1]
		state := windowBlocked
		if inBounds(cx, cy) {
			if !s.board.Occupied(cx, cy) {
				state = windowEmpty
			} else if s.board.hasStone(cx, cy, attacker) {
				state = windowAttacker
			}
		}
		key += state * pow
		pow *= 3
	}
	return key
}

func (s *threatSolver) ThreatAt(attacker Player, move Move, direction Direction) ThreatType {
	if !move.IsValid() || s.board.Occupied(move.X, move.Y) {
		return ThreatNone
	}
	return s.threats[attacker][direction][move.index()]
}

func (s *threatSolver) ThreatsAt(attacker Player, move Move) [4]ThreatType {
	var out [4]ThreatType
	if !move.IsValid() || s.board.Occupied(move.X, move.Y) {
		return out
	}
	for dir := 0; dir < 4; dir++ {
		out[dir] = s.threats[attacker][dir][move.index()]
	}
	return out
}

// strongestThreatAt is the best placement classification across directions.
func (s *threatSolver) strongestThreatAt(attacker Player, idx int) ThreatType {
	best := ThreatNone
	for dir := 0; dir < 4; dir++ {
		if t := s.threats[attacker][dir][idx]; t.Stronger(best) {
			best = t
		}
	}
	return best
}

// ImmediateWinningMove returns, in row-major order, the first empty cell
// that completes five for attacker.
func (s *threatSolver) ImmediateWinningMove(attacker Player) (Move, bool) {
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		for dir := 0; dir < 4; dir++ {
			if s.threats[attacker][dir][idx] == ThreatFive {
				return Move{X: idx % BoardSize, Y: idx / BoardSize}, true
			}
		}
	}
	return Move{}, false
}

// HasImmediateWinningThreat reports whether attacker already has five on the
// board or one legal move makes five.
func (s *threatSolver) HasImmediateWinningThreat(attacker Player) bool {
	if s.board.CheckWin(attacker) {
		return true
	}
	_, ok := s.ImmediateWinningMove(attacker)
	return ok
}

// CollectCurrentForcingThreats enumerates the patterns attacker already has
// on the board that the defender must answer: fours (via their five
// completions) and the threes that convert into an open four. No recursive
// search is involved.
func (s *threatSolver) CollectCurrentForcingThreats(attacker Player) []ThreatInstance {
	var out []ThreatInstance
	seen := make(map[uint64]struct{})
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		move := Move{X: idx % BoardSize, Y: idx / BoardSize}
		for dir := 0; dir < 4; dir++ {
			switch s.threats[attacker][dir][idx] {
			case ThreatFive:
				if inst, ok := s.currentFourInstance(attacker, move, Direction(dir)); ok {
					if dedupeInstance(seen, inst) {
						out = append(out, inst)
					}
				}
			case ThreatOpenFour:
				if inst, ok := s.currentThreeInstance(attacker, move, Direction(dir)); ok {
					if dedupeInstance(seen, inst) {
						out = append(out, inst)
					}
				}
			}
		}
	}
	return out
}

// dedupeInstance filters instances that describe the same stone group in the
// same direction discovered from different finishing cells.
func dedupeInstance(seen map[uint64]struct{}, inst ThreatInstance) bool {
	key := uint64(inst.Direction)<<32 | uint64(inst.Type)<<40
	for _, st := range inst.Stones {
		key = key*147 + uint64(st.index()) + 1
	}
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}

// currentFourInstance reconstructs the four whose completion cell is move.
// The four is open when a second five-completion exists for the same stones.
func (s *threatSolver) currentFourInstance(attacker Player, move Move, dir Direction) (ThreatInstance, bool) {
	d := directionDeltas[dir]
	for start := -windowReach; start <= 0; start++ {
		stones := make([]Move, 0, 4)
		completions := make([]Move, 0, 2)
		ok := true
		for j := start; j < start+5; j++ {
			x, y := move.X+j*d[0], move.Y+j*d[1]
			if !inBounds(x, y) {
				ok = false
				break
			}
			switch {
			case s.board.hasStone(x, y, attacker):
				stones = append(stones, Move{X: x, Y: y})
			case s.board.Occupied(x, y):
				ok = false
			default:
				completions = append(completions, Move{X: x, Y: y})
			}
			if !ok {
				break
			}
		}
		if !ok || len(stones) != 4 {
			continue
		}
		// The lone empty cell in the window must be the finishing move.
		if len(completions) != 1 || !completions[0].Equals(move) {
			continue
		}
		instType := ThreatSimpleFour
		// A contiguous four with both outer neighbours empty completes two
		// ways: that is the unstoppable open four.
		if fourIsOpen(s.board, attacker, stones, d) {
			instType = ThreatOpenFour
		}
		sortMoves(stones)
		return ThreatInstance{
			Type:           instType,
			Attacker:       attacker,
			Direction:      dir,
			Stones:         stones,
			RequiredEmpty:  []Move{move},
			DefensePoints:  []Move{move},
			FinishingMoves: []Move{move},
		}, true
	}
	return ThreatInstance{}, false
}

func fourIsOpen(board *Board, attacker Player, stones []Move, d [2]int) bool {
	if len(stones) != 4 {
		return false
	}
	sorted := append([]Move(nil), stones...)
	sortMoves(sorted)
	for i := 1; i < 4; i++ {
		if sorted[i].X != sorted[i-1].X+d[0] || sorted[i].Y != sorted[i-1].Y+d[1] {
			return false
		}
	}
	lx, ly := sorted[0].X-d[0], sorted[0].Y-d[1]
	rx, ry := sorted[3].X+d[0], sorted[3].Y+d[1]
	return inBounds(lx, ly) && !board.Occupied(lx, ly) &&
		inBounds(rx, ry) && !board.Occupied(rx, ry)
}

// currentThreeInstance reconstructs the three that move would convert into
// an open four.
func (s *threatSolver) currentThreeInstance(attacker Player, move Move, dir Direction) (ThreatInstance, bool) {
	d := directionDeltas[dir]
	stones := make([]Move, 0, 3)
	for k := -windowReach; k <= windowReach; k++ {
		if k == 0 {
			continue
		}
		x, y := move.X+k*d[0], move.Y+k*d[1]
		if inBounds(x, y) && s.board.hasStone(x, y, attacker) && absInt(k) <= 3 {
			stones = append(stones, Move{X: x, Y: y})
		}
	}
	if len(stones) < 3 {
		return ThreatInstance{}, false
	}
	stones = stones[:3]
	sortMoves(stones)
	contiguous := true
	for i := 1; i < len(stones); i++ {
		if stones[i].X != stones[i-1].X+d[0] || stones[i].Y != stones[i-1].Y+d[1] {
			contiguous = false
			break
		}
	}
	instType := ThreatBrokenThree
	if contiguous {
		instType = ThreatOpenThree
	}
	// Defending means taking the conversion cell or one of the open ends of
	// the four it would create.
	defense := []Move{move}
	lx, ly := stones[0].X-d[0], stones[0].Y-d[1]
	rx, ry := stones[len(stones)-1].X+d[0], stones[len(stones)-1].Y+d[1]
	if inBounds(lx, ly) && !s.board.Occupied(lx, ly) {
		defense = appendUnique(defense, Move{X: lx, Y: ly})
	}
	if inBounds(rx, ry) && !s.board.Occupied(rx, ry) {
		defense = appendUnique(defense, Move{X: rx, Y: ry})
	}
	return ThreatInstance{
		Type:           instType,
		Attacker:       attacker,
		Direction:      dir,
		Stones:         stones,
		RequiredEmpty:  append([]Move(nil), defense...),
		DefensePoints:  defense,
		FinishingMoves: []Move{move},
	}, true
}

// AnalyzeThreats is the interface adapter: a forced-win search for attacker
// first. When attacker has no win of their own, the analysis reports how
// attacker must answer the opponent's forcing sequences instead.
func (s *threatSolver) AnalyzeThreats(board *Board, attacker Player) ThreatAnalysis {
	if board != s.board {
		s.SyncFromBoard(board)
	}
	var result ThreatAnalysis
	var sequence ThreatSequence
	if s.FindWinningThreatSequence(attacker, &sequence, DefaultThreatSearchLimits()) {
		result.AttackerHasForcedWin = true
		if len(sequence.AttackerMoves) > 0 {
			result.FirstWinningMove = sequence.AttackerMoves[0]
			result.WinningLine = sequence.AttackerMoves
		}
		return result
	}
	defensive := s.ComputeDefensiveSet(attacker, DefaultThreatSearchLimits())
	result.DefensiveMoves = defensive.DefensiveMoves
	return result
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sortMoves(moves []Move) {
	for i := 1; i < len(moves); i++ {
		for j := i; j > 0 && moves[j].Less(moves[j-1]); j-- {
			moves[j], moves[j-1] = moves[j-1], moves[j]
		}
	}
}

func appendUnique(moves []Move, m Move) []Move {
	for _, have := range moves {
		if have.Equals(m) {
			return moves
		}
	}
	return append(moves, m)
}
