package engine

// threeLayerLimit caps how many leading forcing layers may use three-level
// threats. Four-chains (simple fours all the way to five) are searched at
// every layer and are exact under the all-defenses rule; three layers widen
// the defender reply set and get more expensive, so they are restricted to
// the front of the sequence.
const threeLayerLimit = 2

// threatSearchContext carries the budget and the representative line of one
// forcing-sequence search. Node accounting is shared across nested searches
// started from the same context (ComputeDefensiveSet re-searches under one
// budget).
type threatSearchContext struct {
	limits   ThreatSearchLimits
	nodes    int
	exceeded bool

	attackerMoves []Move
	defenderMoves []Move
	threats       []ThreatInstance
}

func (ctx *threatSearchContext) aborted() bool {
	return ctx.limits.AbortFlag != nil && ctx.limits.AbortFlag.Load()
}

func (ctx *threatSearchContext) spendNode() bool {
	ctx.nodes++
	if ctx.limits.MaxNodes > 0 && ctx.nodes > ctx.limits.MaxNodes {
		ctx.exceeded = true
		return false
	}
	return true
}

func (ctx *threatSearchContext) truncate(nAttack, nDefend, nThreats int) {
	ctx.attackerMoves = ctx.attackerMoves[:nAttack]
	ctx.defenderMoves = ctx.defenderMoves[:nDefend]
	ctx.threats = ctx.threats[:nThreats]
}

// FindWinningThreatSequence searches the attacker's forcing moves for a
// sequence the defender cannot refute, under the all-defenses assumption.
// False means "no proof under these limits", never "proven safe". The first
// sequence found is returned; it is not necessarily the shortest.
func (s *threatSolver) FindWinningThreatSequence(attacker Player, out *ThreatSequence, limits ThreatSearchLimits) bool {
	ctx := &threatSearchContext{limits: limits}
	return s.findSequence(attacker, out, ctx)
}

func (s *threatSolver) findSequence(attacker Player, out *ThreatSequence, ctx *threatSearchContext) bool {
	if s.board.CheckWin(attacker) {
		if out != nil {
			*out = ThreatSequence{Attacker: attacker}
		}
		return true
	}
	if !s.searchForcedWin(attacker, 0, ctx) {
		return false
	}
	if out != nil {
		*out = ThreatSequence{
			Attacker:      attacker,
			Threats:       append([]ThreatInstance(nil), ctx.threats...),
			AttackerMoves: append([]Move(nil), ctx.attackerMoves...),
			DefenderMoves: append([]Move(nil), ctx.defenderMoves...),
		}
	}
	return true
}

// searchForcedWin is the recursive core: attacker to move. A branch point
// succeeds when the attacker can win immediately, create an unanswerable
// double five threat, or force every candidate defender reply into a lost
// continuation.
func (s *threatSolver) searchForcedWin(attacker Player, depth int, ctx *threatSearchContext) bool {
	if ctx.aborted() || ctx.exceeded {
		return false
	}
	defender := attacker.Other()

	// Win in one: a five completion wins on the spot, even against a
	// pending defender five, because the attacker moves first.
	if winMove, ok := s.ImmediateWinningMove(attacker); ok {
		ctx.attackerMoves = append(ctx.attackerMoves, winMove)
		ctx.threats = append(ctx.threats, ThreatInstance{
			Type:           ThreatFive,
			Attacker:       attacker,
			FinishingMoves: []Move{winMove},
		})
		return true
	}
	// The defender completes five first: no slower threat can save this
	// branch.
	if _, ok := s.ImmediateWinningMove(defender); ok {
		return false
	}
	if ctx.limits.MaxDepth > 0 && depth >= ctx.limits.MaxDepth {
		return false
	}

	candidates := s.forcingCandidates(attacker, depth)
	baseA, baseD, baseT := len(ctx.attackerMoves), len(ctx.defenderMoves), len(ctx.threats)
	for _, cand := range candidates {
		if ctx.aborted() || !ctx.spendNode() {
			return false
		}
		move := cand.move
		if !s.board.PlaceStone(move.X, move.Y, attacker) {
			continue
		}
		s.NotifyMove(move)

		won := s.resolveThreatBranch(attacker, move, cand.threat, depth, ctx)

		s.board.RemoveStone(move.X, move.Y, attacker)
		s.NotifyUndo(move)

		if won {
			return true
		}
		ctx.truncate(baseA, baseD, baseT)
	}
	return false
}

// resolveThreatBranch assumes move was just placed for attacker and decides
// whether the created threat wins against every defender reply.
func (s *threatSolver) resolveThreatBranch(attacker Player, move Move, created ThreatType, depth int, ctx *threatSearchContext) bool {
	defender := attacker.Other()

	// The forcing move handed the defender a five: refuted.
	if _, ok := s.ImmediateWinningMove(defender); ok {
		return false
	}

	completions := s.FiveCompletions(attacker)
	instance := ThreatInstance{
		Type:           created,
		Attacker:       attacker,
		FinishingMoves: completions,
	}

	// Two or more five completions cannot all be blocked in one reply.
	if len(completions) >= 2 {
		ctx.attackerMoves = append(ctx.attackerMoves, move)
		ctx.threats = append(ctx.threats, instance)
		return true
	}

	var replies []Move
	if len(completions) == 1 {
		// A four: the block is the only reply that matters. Anything else
		// loses to the completion immediately.
		replies = completions
	} else {
		replies = s.defenseCandidates(attacker, move)
		if len(replies) == 0 {
			return false
		}
	}
	instance.DefensePoints = replies
	instance.RequiredEmpty = append([]Move(nil), replies...)

	ctx.attackerMoves = append(ctx.attackerMoves, move)
	ctx.threats = append(ctx.threats, instance)
	baseA, baseD, baseT := len(ctx.attackerMoves), len(ctx.defenderMoves), len(ctx.threats)

	for _, reply := range replies {
		ctx.truncate(baseA, baseD, baseT)
		if ctx.aborted() || ctx.exceeded {
			return false
		}
		if !s.board.PlaceStone(reply.X, reply.Y, defender) {
			return false
		}
		s.NotifyMove(reply)
		ctx.defenderMoves = append(ctx.defenderMoves, reply)

		won := s.searchForcedWin(attacker, depth+1, ctx)

		s.board.RemoveStone(reply.X, reply.Y, defender)
		s.NotifyUndo(reply)

		if !won {
			return false
		}
	}
	return true
}

type forcingCandidate struct {
	move   Move
	threat ThreatType
}

// forcingCandidates lists the attacker's forcing placements, strongest
// class first and row-major within a class. Three-level threats only join
// the front layers of a sequence.
func (s *threatSolver) forcingCandidates(attacker Player, depth int) []forcingCandidate {
	allowThrees := depth < threeLayerLimit
	var byClass [4][]Move // OpenFour, SimpleFour, OpenThree, BrokenThree
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		best := s.strongestThreatAt(attacker, idx)
		move := Move{X: idx % BoardSize, Y: idx / BoardSize}
		switch best {
		case ThreatOpenFour:
			byClass[0] = append(byClass[0], move)
		case ThreatSimpleFour:
			byClass[1] = append(byClass[1], move)
		case ThreatOpenThree:
			if allowThrees {
				byClass[2] = append(byClass[2], move)
			}
		case ThreatBrokenThree:
			if allowThrees {
				byClass[3] = append(byClass[3], move)
			}
		}
	}
	classes := [4]ThreatType{ThreatOpenFour, ThreatSimpleFour, ThreatOpenThree, ThreatBrokenThree}
	out := make([]forcingCandidate, 0, len(byClass[0])+len(byClass[1])+len(byClass[2])+len(byClass[3]))
	for i, moves := range byClass {
		for _, m := range moves {
			out = append(out, forcingCandidate{move: m, threat: classes[i]})
		}
	}
	return out
}

// FiveCompletions lists the attacker's current win-in-one cells in
// row-major order.
func (s *threatSolver) FiveCompletions(attacker Player) []Move {
	var out []Move
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		for dir := 0; dir < 4; dir++ {
			if s.threats[attacker][dir][idx] == ThreatFive {
				out = append(out, Move{X: idx % BoardSize, Y: idx / BoardSize})
				break
			}
		}
	}
	return out
}

// FourPlacements lists the empty cells where the attacker can create an
// open or simple four with a single stone.
func (s *threatSolver) FourPlacements(attacker Player) []Move {
	var out []Move
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		switch s.strongestThreatAt(attacker, idx) {
		case ThreatOpenFour, ThreatSimpleFour:
			out = append(out, Move{X: idx % BoardSize, Y: idx / BoardSize})
		}
	}
	return out
}

// defenseCandidates is the defender reply superset after a three-level
// attacker threat at move: blocks of the attacker's open-four conversions,
// the local line cells around the new stone, and the defender's own
// four-making counters. Extra candidates only make a win harder to prove,
// which is the safe direction.
func (s *threatSolver) defenseCandidates(attacker Player, move Move) []Move {
	defender := attacker.Other()
	var set moveSet
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		m := Move{X: idx % BoardSize, Y: idx / BoardSize}
		attackerBest := s.strongestThreatAt(attacker, idx)
		if attackerBest == ThreatFive || attackerBest == ThreatOpenFour {
			set.Add(m)
		}
		defenderBest := s.strongestThreatAt(defender, idx)
		if defenderBest == ThreatFive || defenderBest == ThreatOpenFour || defenderBest == ThreatSimpleFour {
			set.Add(m)
		}
	}
	for _, d := range directionDeltas {
		for k := -windowReach; k <= windowReach; k++ {
			if k == 0 {
				continue
			}
			x, y := move.X+k*d[0], move.Y+k*d[1]
			if inBounds(x, y) && !s.board.Occupied(x, y) {
				set.Add(Move{X: x, Y: y})
			}
		}
	}
	return set.Moves()
}

// ComputeDefensiveSet searches for the opponent's forcing wins from the
// defender's perspective and verifies which replies survive all of them.
// When no win is found the position is tactically safe: IsLost is false and
// the empty move list means "no restriction". IsLost is only reported after
// every candidate was fully verified to fail; running out of budget mid
// verification stays inconclusive.
func (s *threatSolver) ComputeDefensiveSet(defender Player, limits ThreatSearchLimits) DefensiveSet {
	attacker := defender.Other()
	ctx := &threatSearchContext{limits: limits}
	var sequence ThreatSequence
	if !s.findSequence(attacker, &sequence, ctx) {
		return DefensiveSet{}
	}

	candidates := s.refutationCandidates(defender, sequence)
	surviving := make([]Move, 0, len(candidates))
	fullyVerified := true
	for _, cand := range candidates {
		if ctx.aborted() || ctx.exceeded {
			fullyVerified = false
			break
		}
		if !s.board.PlaceStone(cand.X, cand.Y, defender) {
			continue
		}
		s.NotifyMove(cand)
		ctx.truncate(0, 0, 0)
		won := s.findSequence(attacker, nil, ctx)
		s.board.RemoveStone(cand.X, cand.Y, defender)
		s.NotifyUndo(cand)
		if ctx.aborted() || ctx.exceeded {
			// A cut-off search proves nothing about cand either way.
			fullyVerified = false
			break
		}
		if !won {
			surviving = append(surviving, cand)
		}
	}

	if len(surviving) == 0 {
		if !fullyVerified {
			return DefensiveSet{}
		}
		return DefensiveSet{IsLost: true}
	}
	return DefensiveSet{DefensiveMoves: surviving}
}

// refutationCandidates gathers the moves worth testing as defenses against
// a discovered winning sequence.
func (s *threatSolver) refutationCandidates(defender Player, sequence ThreatSequence) []Move {
	attacker := defender.Other()
	var set moveSet

	if len(sequence.AttackerMoves) > 0 {
		first := sequence.AttackerMoves[0]
		set.Add(first)
		for _, d := range directionDeltas {
			for k := -windowReach; k <= windowReach; k++ {
				if k == 0 {
					continue
				}
				x, y := first.X+k*d[0], first.Y+k*d[1]
				if inBounds(x, y) && !s.board.Occupied(x, y) {
					set.Add(Move{X: x, Y: y})
				}
			}
		}
	}
	if len(sequence.Threats) > 0 {
		for _, m := range sequence.Threats[0].DefensePoints {
			set.Add(m)
		}
		for _, m := range sequence.Threats[0].RequiredEmpty {
			set.Add(m)
		}
	}
	for idx := 0; idx < BoardSize*BoardSize; idx++ {
		m := Move{X: idx % BoardSize, Y: idx / BoardSize}
		attackerBest := s.strongestThreatAt(attacker, idx)
		if attackerBest == ThreatFive || attackerBest == ThreatOpenFour {
			set.Add(m)
		}
		defenderBest := s.strongestThreatAt(defender, idx)
		if defenderBest == ThreatFive || defenderBest == ThreatOpenFour || defenderBest == ThreatSimpleFour {
			set.Add(m)
		}
	}
	return set.Moves()
}
