package engine

import "testing"

func placeRow(t *testing.T, b *Board, player Player, y int, xs ...int) {
	t.Helper()
	for _, x := range xs {
		if !b.PlaceStone(x, y, player) {
			t.Fatalf("setup: PlaceStone(%d,%d) failed", x, y)
		}
	}
}

func TestThreatClassificationFiveCompletion(t *testing.T) {
	b := NewBoard()
	// Black: .XXXX.  completing at either end makes five.
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	if got := s.ThreatAt(PlayerBlack, Move{X: 2, Y: 5}, DirHorizontal); got != ThreatFive {
		t.Fatalf("left completion classified %v, want Five", got)
	}
	if got := s.ThreatAt(PlayerBlack, Move{X: 7, Y: 5}, DirHorizontal); got != ThreatFive {
		t.Fatalf("right completion classified %v, want Five", got)
	}
	if got := s.ThreatAt(PlayerWhite, Move{X: 2, Y: 5}, DirHorizontal); got == ThreatFive {
		t.Fatalf("white must not see a five completion here")
	}
}

func TestThreatClassificationOpenFour(t *testing.T) {
	b := NewBoard()
	// Black: ..XXX..  playing x=3 or x=7 makes an open four.
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6)
	s := NewThreatSolver(b)

	if got := s.ThreatAt(PlayerBlack, Move{X: 3, Y: 5}, DirHorizontal); got != ThreatOpenFour {
		t.Fatalf("open four conversion classified %v, want OpenFour", got)
	}
	if got := s.ThreatAt(PlayerBlack, Move{X: 7, Y: 5}, DirHorizontal); got != ThreatOpenFour {
		t.Fatalf("open four conversion classified %v, want OpenFour", got)
	}
}

func TestThreatClassificationSimpleFour(t *testing.T) {
	b := NewBoard()
	// White blocks the left end: OXXX...  playing x=6 leaves one completion.
	placeRow(t, b, PlayerWhite, 5, 2)
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5)
	s := NewThreatSolver(b)

	if got := s.ThreatAt(PlayerBlack, Move{X: 6, Y: 5}, DirHorizontal); got != ThreatSimpleFour {
		t.Fatalf("blocked four classified %v, want SimpleFour", got)
	}
}

func TestThreatClassificationOpenThree(t *testing.T) {
	b := NewBoard()
	// Black: ...XX...  playing x=4 makes an open three.
	placeRow(t, b, PlayerBlack, 5, 5, 6)
	s := NewThreatSolver(b)

	if got := s.ThreatAt(PlayerBlack, Move{X: 4, Y: 5}, DirHorizontal); got != ThreatOpenThree {
		t.Fatalf("open three placement classified %v, want OpenThree", got)
	}
}

func TestThreatClassificationEdgeCountsAsBlocked(t *testing.T) {
	b := NewBoard()
	// Black against the left edge: XXX at x=0..2. Playing x=3 makes a four
	// with a single completion; the board edge blocks the other side.
	placeRow(t, b, PlayerBlack, 0, 0, 1, 2)
	s := NewThreatSolver(b)

	if got := s.ThreatAt(PlayerBlack, Move{X: 3, Y: 0}, DirHorizontal); got != ThreatSimpleFour {
		t.Fatalf("edge-bounded four classified %v, want SimpleFour", got)
	}
}

func TestImmediateWinningMoveIsFirstRowMajor(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	m, ok := s.ImmediateWinningMove(PlayerBlack)
	if !ok {
		t.Fatalf("no winning move found for a four")
	}
	if m != (Move{X: 2, Y: 5}) {
		t.Fatalf("winning move %v, want the row-major first completion (2,5)", m)
	}
	if !b.PlaceStone(m.X, m.Y, PlayerBlack) {
		t.Fatalf("winning move not placeable")
	}
	if !b.CheckWin(PlayerBlack) {
		t.Fatalf("applying the winning move did not produce five in a row")
	}
}

func TestHasImmediateWinningThreat(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)
	if !s.HasImmediateWinningThreat(PlayerBlack) {
		t.Fatalf("four in a row must be an immediate winning threat")
	}
	if s.HasImmediateWinningThreat(PlayerWhite) {
		t.Fatalf("white has nothing")
	}
}

func TestFiveCompletionsAndFourPlacements(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6) // open four on the board
	placeRow(t, b, PlayerBlack, 9, 4, 5, 6)    // open three on the board
	s := NewThreatSolver(b)

	completions := s.FiveCompletions(PlayerBlack)
	if len(completions) != 2 {
		t.Fatalf("open four should have two completions, got %v", completions)
	}
	fours := s.FourPlacements(PlayerBlack)
	found := false
	for _, m := range fours {
		if m == (Move{X: 3, Y: 9}) || m == (Move{X: 7, Y: 9}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("open three extension missing from four placements: %v", fours)
	}
}

func TestCollectCurrentForcingThreatsOpenFour(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	threats := s.CollectCurrentForcingThreats(PlayerBlack)
	if len(threats) == 0 {
		t.Fatalf("open four not collected")
	}
	var inst *ThreatInstance
	for i := range threats {
		if threats[i].Type == ThreatOpenFour {
			inst = &threats[i]
		}
	}
	if inst == nil {
		t.Fatalf("no OpenFour instance in %v", threats)
	}
	if len(inst.Stones) != 4 || inst.Attacker != PlayerBlack || inst.Direction != DirHorizontal {
		t.Fatalf("malformed instance: %+v", inst)
	}
}

func TestCollectCurrentForcingThreatsSimpleFour(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerWhite, 5, 2)
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	threats := s.CollectCurrentForcingThreats(PlayerBlack)
	foundFour := false
	for _, inst := range threats {
		if inst.Type == ThreatSimpleFour {
			foundFour = true
			if len(inst.FinishingMoves) != 1 || inst.FinishingMoves[0] != (Move{X: 7, Y: 5}) {
				t.Fatalf("simple four must finish at (7,5): %+v", inst)
			}
		}
	}
	if !foundFour {
		t.Fatalf("blocked four not collected: %v", threats)
	}
}

func TestNotifyMoveMatchesFullResync(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 4, 5)
	placeRow(t, b, PlayerWhite, 6, 4)
	s := NewThreatSolver(b).(*threatSolver)

	m := Move{X: 6, Y: 5}
	if !b.MakeMove(m.X, m.Y) {
		t.Fatalf("MakeMove failed")
	}
	s.NotifyMove(m)

	fresh := NewThreatSolver(b).(*threatSolver)
	if s.threats != fresh.threats {
		t.Fatalf("incremental reclassification diverged from full resync after move")
	}

	b.UnmakeMove(m.X, m.Y)
	s.NotifyUndo(m)
	fresh = NewThreatSolver(b).(*threatSolver)
	if s.threats != fresh.threats {
		t.Fatalf("incremental reclassification diverged from full resync after undo")
	}
}

func TestAnalyzeThreatsForcedWin(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6) // open three, black to convert
	s := NewThreatSolver(b)

	analysis := s.AnalyzeThreats(b, PlayerBlack)
	if !analysis.AttackerHasForcedWin {
		t.Fatalf("open three with free space must be a forced win for the mover")
	}
	if !analysis.FirstWinningMove.IsValid() {
		t.Fatalf("forced win without a first move")
	}
}

func TestAnalyzeThreatsDefensive(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerWhite, 5, 2)          // blocker
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6) // black four, one completion
	s := NewThreatSolver(b)

	analysis := s.AnalyzeThreats(b, PlayerWhite)
	if analysis.AttackerHasForcedWin {
		t.Fatalf("white has no win here")
	}
	foundBlock := false
	for _, m := range analysis.DefensiveMoves {
		if m == (Move{X: 7, Y: 5}) {
			foundBlock = true
		}
	}
	if !foundBlock {
		t.Fatalf("the block of black's four is missing: %v", analysis.DefensiveMoves)
	}
}
