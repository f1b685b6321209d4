package engine

import "testing"

func TestMoveOrderingRowMajor(t *testing.T) {
	a := Move{X: 3, Y: 2}
	b := Move{X: 0, Y: 3}
	c := Move{X: 4, Y: 2}
	if !a.Less(b) || !a.Less(c) || b.Less(a) {
		t.Fatalf("row-major ordering broken")
	}
}

func TestMoveValidity(t *testing.T) {
	valid := []Move{{X: 0, Y: 0}, {X: 11, Y: 11}, {X: 5, Y: 0}}
	for _, m := range valid {
		if !m.IsValid() {
			t.Fatalf("%v should be valid", m)
		}
	}
	invalid := []Move{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 12, Y: 0}, {X: 0, Y: 12}}
	for _, m := range invalid {
		if m.IsValid() {
			t.Fatalf("%v should be invalid", m)
		}
	}
}

func TestMoveSetDedupAndOrder(t *testing.T) {
	var set moveSet
	set.Add(Move{X: 7, Y: 1})
	set.Add(Move{X: 2, Y: 1})
	set.Add(Move{X: 7, Y: 1})
	set.Add(Move{X: 0, Y: 0})

	moves := set.Moves()
	if len(moves) != 3 {
		t.Fatalf("duplicates not collapsed: %v", moves)
	}
	for i := 1; i < len(moves); i++ {
		if !moves[i-1].Less(moves[i]) {
			t.Fatalf("set iteration not row-major: %v", moves)
		}
	}
}

func TestZobristKeysDistinct(t *testing.T) {
	z := zobristKeys()
	seen := make(map[uint64]struct{})
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			for _, p := range []Player{PlayerBlack, PlayerWhite} {
				k := z.stone(x, y, p)
				if k == 0 {
					t.Fatalf("zero key at (%d,%d)", x, y)
				}
				if _, dup := seen[k]; dup {
					t.Fatalf("duplicate zobrist key at (%d,%d)", x, y)
				}
				seen[k] = struct{}{}
			}
		}
	}
	if _, dup := seen[z.side]; dup || z.side == 0 {
		t.Fatalf("side key collides or is zero")
	}
}

func TestZobristDeterministic(t *testing.T) {
	a := zobristKeys()
	b := zobristKeys()
	if a != b {
		t.Fatalf("zobrist table must be a shared singleton")
	}
}
