package engine

import "testing"

func TestTTStoreAndProbe(t *testing.T) {
	tt := NewTranspositionTable(1 << 10)
	key := uint64(0xDEADBEEFCAFE)
	move := Move{X: 4, Y: 7}
	tt.Store(key, 123, 45, 6, TTExact, move)

	entry := tt.Probe(key)
	if entry.Key != key {
		t.Fatalf("probe returned wrong key: %x", entry.Key)
	}
	if entry.Value != 123 || entry.Eval != 45 || entry.Depth != 6 || entry.Type != TTExact || entry.BestMove != move {
		t.Fatalf("stored entry corrupted: %+v", entry)
	}
}

func TestTTDepthPreferredReplacement(t *testing.T) {
	tt := NewTranspositionTable(1 << 10)
	key := uint64(42)
	tt.Store(key, 100, 0, 8, TTExact, Move{X: 1, Y: 1})

	// Shallower result for the same key must not evict the deep one.
	tt.Store(key, 999, 0, 3, TTExact, Move{X: 2, Y: 2})
	if entry := tt.Probe(key); entry.Value != 100 || entry.Depth != 8 {
		t.Fatalf("shallow store evicted deeper entry: %+v", entry)
	}

	// Equal depth favors the newer entry.
	tt.Store(key, 555, 0, 8, TTLowerBound, Move{X: 3, Y: 3})
	if entry := tt.Probe(key); entry.Value != 555 || entry.Type != TTLowerBound {
		t.Fatalf("equal-depth store did not replace: %+v", entry)
	}
}

func TestTTDifferentKeySameSlotAlwaysReplaces(t *testing.T) {
	tt := NewTranspositionTable(8)
	a := uint64(3)
	b := a + 8 // same index, different key
	tt.Store(a, 100, 0, 10, TTExact, Move{X: 1, Y: 1})
	tt.Store(b, 200, 0, 1, TTExact, Move{X: 2, Y: 2})
	if entry := tt.Probe(b); entry.Key != b || entry.Value != 200 {
		t.Fatalf("colliding key did not replace regardless of depth: %+v", entry)
	}
}

func TestTTMateScoreRoundTrip(t *testing.T) {
	scores := []EvalScore{
		ScoreMate - 3,
		ScoreMate - 17,
		-(ScoreMate - 5),
		1234,
		-987,
		0,
	}
	for _, score := range scores {
		for _, ply := range []int{0, 1, 7, 42} {
			if got := FromTTScore(ToTTScore(score, ply), ply); got != score {
				t.Fatalf("round trip broke: score=%d ply=%d got=%d", score, ply, got)
			}
		}
	}
}

func TestTTMateScoreRebasedAcrossPlies(t *testing.T) {
	// A mate 7 plies from the root, found at a node 4 plies down, is a mate
	// in 3 from that node. Stored in node-distance form, another node that
	// transposes into the same position reads the mate relative to itself.
	stored := ToTTScore(ScoreMate-7, 4)
	if stored != ScoreMate-3 {
		t.Fatalf("stored form should be node distance 3, got %d", ScoreMate-stored)
	}
	if got := FromTTScore(stored, 4); got != ScoreMate-7 {
		t.Fatalf("same-ply read changed the score: %d", got)
	}
	if got := FromTTScore(stored, 2); got != ScoreMate-5 {
		t.Fatalf("probing at ply 2 should read mate at root distance 5, got %d", ScoreMate-got)
	}
}

func TestTTNonMateScoresUntouched(t *testing.T) {
	if ToTTScore(500, 9) != 500 || FromTTScore(-500, 9) != -500 {
		t.Fatalf("plain scores must not be ply-adjusted")
	}
}

func TestTTSnapshotLoadRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1 << 8)
	tt.Store(11, 100, 1, 4, TTExact, Move{X: 1, Y: 2})
	tt.Store(22, 200, 2, 5, TTLowerBound, Move{X: 3, Y: 4})
	tt.Store(33, 300, 3, 6, TTUpperBound, Move{X: 5, Y: 6})

	snap := tt.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snap))
	}

	fresh := NewTranspositionTable(1 << 8)
	fresh.Load(snap)
	for _, key := range []uint64{11, 22, 33} {
		if entry := fresh.Probe(key); entry.Key != key {
			t.Fatalf("entry for key %d lost through snapshot/load", key)
		}
	}
}

func TestTTClear(t *testing.T) {
	tt := NewTranspositionTable(1 << 8)
	tt.Store(7, 70, 0, 1, TTExact, Move{X: 0, Y: 0})
	tt.Clear()
	if tt.Count() != 0 {
		t.Fatalf("table not empty after clear: %d entries", tt.Count())
	}
}
