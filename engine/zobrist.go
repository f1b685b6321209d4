package engine

import "sync"

// Zobrist constants for the fixed 12x12 board: one 64-bit key per
// (cell, color) plus a side-to-move key. Built once, never mutated.
type zobristTable struct {
	cells [BoardSize * BoardSize * 2]uint64
	side  uint64
}

var (
	zobristOnce sync.Once
	zobrist     zobristTable
)

func zobristKeys() *zobristTable {
	zobristOnce.Do(func() {
		rng := splitmix64{state: 0x9e3779b97f4a7c15 ^ uint64(BoardSize)}
		for i := range zobrist.cells {
			zobrist.cells[i] = rng.next()
		}
		zobrist.side = rng.next()
	})
	return &zobrist
}

func (z *zobristTable) stone(x, y int, player Player) uint64 {
	idx := (y*BoardSize + x) * 2
	if player == PlayerWhite {
		idx++
	}
	return z.cells[idx]
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
