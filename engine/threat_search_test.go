package engine

import (
	"sync/atomic"
	"testing"
)

func TestFindWinningSequenceFromOpenFour(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6) // .XXXX.
	s := NewThreatSolver(b)
	before := b.Hash()

	var seq ThreatSequence
	if !s.FindWinningThreatSequence(PlayerBlack, &seq, DefaultThreatSearchLimits()) {
		t.Fatalf("open four must be a forced win")
	}
	if len(seq.AttackerMoves) == 0 {
		t.Fatalf("winning sequence without moves")
	}
	if b.Hash() != before {
		t.Fatalf("search left the board modified")
	}
}

func TestFindWinningSequenceFromOpenThree(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6) // ..XXX.. with free ends
	s := NewThreatSolver(b)

	var seq ThreatSequence
	if !s.FindWinningThreatSequence(PlayerBlack, &seq, DefaultThreatSearchLimits()) {
		t.Fatalf("unobstructed open three must convert into a forced win")
	}
	// First move extends to an open four.
	first := seq.AttackerMoves[0]
	if first != (Move{X: 3, Y: 5}) && first != (Move{X: 7, Y: 5}) {
		t.Fatalf("first winning move %v should extend the three", first)
	}
}

func TestFindWinningSequenceDoubleFour(t *testing.T) {
	b := NewBoard()
	// Row three blocked on the left, diagonal three blocked at the far end.
	// Playing (6,5) makes two fours at once; their completions (7,5) and
	// (5,4) cannot both be answered.
	placeRow(t, b, PlayerWhite, 5, 2)
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5)
	for _, m := range []Move{{X: 7, Y: 6}, {X: 8, Y: 7}, {X: 9, Y: 8}} {
		if !b.PlaceStone(m.X, m.Y, PlayerBlack) {
			t.Fatalf("setup failed at %v", m)
		}
	}
	if !b.PlaceStone(10, 9, PlayerWhite) {
		t.Fatalf("setup failed")
	}
	s := NewThreatSolver(b)

	var seq ThreatSequence
	if !s.FindWinningThreatSequence(PlayerBlack, &seq, DefaultThreatSearchLimits()) {
		t.Fatalf("double four must be a forced win")
	}
	if seq.AttackerMoves[0] != (Move{X: 6, Y: 5}) {
		t.Fatalf("expected the double-four point (6,5) first, got %v", seq.AttackerMoves[0])
	}
}

func TestFindWinningSequenceRespectsDefenderFive(t *testing.T) {
	b := NewBoard()
	// Black has an open three but white already has four in a row: any slow
	// black threat loses the race.
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6)
	placeRow(t, b, PlayerWhite, 9, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	if s.FindWinningThreatSequence(PlayerBlack, nil, DefaultThreatSearchLimits()) {
		t.Fatalf("three-based win claimed while the defender completes five first")
	}
}

func TestFindWinningSequenceNoThreats(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 5)
	s := NewThreatSolver(b)
	if s.FindWinningThreatSequence(PlayerBlack, nil, DefaultThreatSearchLimits()) {
		t.Fatalf("a lone stone is not a forced win")
	}
}

func TestFindWinningSequenceAbortFlag(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6)
	s := NewThreatSolver(b)

	var abort atomic.Bool
	abort.Store(true)
	limits := DefaultThreatSearchLimits()
	limits.AbortFlag = &abort
	if s.FindWinningThreatSequence(PlayerBlack, nil, limits) {
		t.Fatalf("aborted search must not claim a win")
	}
}

func TestComputeDefensiveSetBlocksSimpleFour(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerWhite, 5, 2)          // blocker
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6) // four, completion at (7,5)
	s := NewThreatSolver(b)
	before := b.Hash()

	ds := s.ComputeDefensiveSet(PlayerWhite, DefaultThreatSearchLimits())
	if ds.IsLost {
		t.Fatalf("a single four is defensible")
	}
	found := false
	for _, m := range ds.DefensiveMoves {
		if m == (Move{X: 7, Y: 5}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("the only block (7,5) missing from %v", ds.DefensiveMoves)
	}
	if b.Hash() != before {
		t.Fatalf("defensive-set computation left the board modified")
	}
}

func TestComputeDefensiveSetOpenFourIsLost(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6) // .XXXX. both completions open
	s := NewThreatSolver(b)

	ds := s.ComputeDefensiveSet(PlayerWhite, DefaultThreatSearchLimits())
	if !ds.IsLost {
		t.Fatalf("an open four admits no defense")
	}
	if len(ds.DefensiveMoves) != 0 {
		t.Fatalf("lost position must not report surviving moves: %v", ds.DefensiveMoves)
	}
}

func TestComputeDefensiveSetDoubleOpenThreeIsLost(t *testing.T) {
	// A horizontal open three on row 5 and a vertical one on column 9,
	// refutations disjoint: any single reply leaves the other three
	// converting to an open four.
	b := NewBoard()
	placeRow(t, b, PlayerWhite, 5, 4, 5, 6)
	for y := 7; y <= 9; y++ {
		if !b.PlaceStone(9, y, PlayerWhite) {
			t.Fatalf("setup stone (9,%d) not placeable", y)
		}
	}
	s := NewThreatSolver(b)

	ds := s.ComputeDefensiveSet(PlayerBlack, DefaultThreatSearchLimits())
	if !ds.IsLost {
		t.Fatalf("two independent open threes admit no defense: %+v", ds)
	}
	if len(ds.DefensiveMoves) != 0 {
		t.Fatalf("lost position must not report surviving moves: %v", ds.DefensiveMoves)
	}
}

func TestComputeDefensiveSetNoThreatMeansNoRestriction(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 5, 6)
	s := NewThreatSolver(b)

	ds := s.ComputeDefensiveSet(PlayerWhite, DefaultThreatSearchLimits())
	if ds.IsLost || len(ds.DefensiveMoves) != 0 {
		t.Fatalf("two stones are no forcing threat: %+v", ds)
	}
}

func TestComputeDefensiveSetBudgetExhaustionInconclusive(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerBlack, 5, 4, 5, 6) // open three, wins with search
	s := NewThreatSolver(b)

	// One node finds the win but cannot verify a single defense; the result
	// must stay inconclusive rather than claim a loss.
	ds := s.ComputeDefensiveSet(PlayerWhite, ThreatSearchLimits{MaxNodes: 1, MaxDepth: 20})
	if ds.IsLost {
		t.Fatalf("budget exhaustion must never report a proven loss")
	}
}

func TestDefensiveMovesSurviveReSearch(t *testing.T) {
	b := NewBoard()
	placeRow(t, b, PlayerWhite, 5, 2)
	placeRow(t, b, PlayerBlack, 5, 3, 4, 5, 6)
	s := NewThreatSolver(b)

	ds := s.ComputeDefensiveSet(PlayerWhite, DefaultThreatSearchLimits())
	for _, m := range ds.DefensiveMoves {
		if !b.PlaceStone(m.X, m.Y, PlayerWhite) {
			t.Fatalf("defensive move %v not placeable", m)
		}
		s.NotifyMove(m)
		if s.FindWinningThreatSequence(PlayerBlack, nil, DefaultThreatSearchLimits()) {
			t.Fatalf("reported defense %v does not refute the win", m)
		}
		b.RemoveStone(m.X, m.Y, PlayerWhite)
		s.NotifyUndo(m)
	}
}
