package engine

import "math/bits"

// candidateRadius is the Chebyshev distance around existing stones within
// which CandidateMoves generates moves.
const candidateRadius = 2

// Board is the canonical position state: two bitboards (three 64-bit words
// per player cover the 144 cells), the side to move, and an incrementally
// maintained Zobrist hash. Mutation happens only through paired
// MakeMove/UnmakeMove (plus the null-move pair used by the search) and the
// hash-consistent setup utilities.
type Board struct {
	bb      [2][3]uint64
	side    Player
	hashKey uint64
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

func (b *Board) Reset() {
	b.bb = [2][3]uint64{}
	b.side = PlayerBlack
	b.hashKey = 0
}

func (b *Board) Clone() *Board {
	clone := *b
	return &clone
}

func cellIndex(x, y int) int {
	return y*BoardSize + x
}

func inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < BoardSize && y < BoardSize
}

func (b *Board) hasStone(x, y int, player Player) bool {
	idx := cellIndex(x, y)
	return b.bb[player][idx>>6]&(1<<uint(idx&63)) != 0
}

func (b *Board) Occupied(x, y int) bool {
	if !inBounds(x, y) {
		return true
	}
	return b.hasStone(x, y, PlayerBlack) || b.hasStone(x, y, PlayerWhite)
}

// CellState reports 0 for empty, 1 for black, 2 for white. Out-of-range
// coordinates report empty.
func (b *Board) CellState(x, y int) int {
	if !inBounds(x, y) {
		return 0
	}
	if b.hasStone(x, y, PlayerBlack) {
		return 1
	}
	if b.hasStone(x, y, PlayerWhite) {
		return 2
	}
	return 0
}

func (b *Board) SideToMove() Player {
	return b.side
}

// SetSideToMove is a setup utility; it keeps the hash consistent.
func (b *Board) SetSideToMove(p Player) {
	if b.side == p {
		return
	}
	b.side = p
	b.hashKey ^= zobristKeys().side
}

func (b *Board) Hash() uint64 {
	return b.hashKey
}

// MakeMove places the side-to-move's stone at (x,y), flips the side and
// updates the hash. It fails (false, no state change) when the cell is out
// of range or occupied.
func (b *Board) MakeMove(x, y int) bool {
	if !inBounds(x, y) || b.Occupied(x, y) {
		return false
	}
	idx := cellIndex(x, y)
	b.bb[b.side][idx>>6] |= 1 << uint(idx&63)
	z := zobristKeys()
	b.hashKey ^= z.stone(x, y, b.side)
	b.hashKey ^= z.side
	b.side = b.side.Other()
	return true
}

// UnmakeMove is the exact inverse of MakeMove and is only well defined when
// (x,y) was the most recent successful MakeMove. Stack discipline is the
// caller's contract.
func (b *Board) UnmakeMove(x, y int) bool {
	if !inBounds(x, y) {
		return false
	}
	mover := b.side.Other()
	if !b.hasStone(x, y, mover) {
		return false
	}
	idx := cellIndex(x, y)
	b.bb[mover][idx>>6] &^= 1 << uint(idx&63)
	z := zobristKeys()
	b.hashKey ^= z.stone(x, y, mover)
	b.hashKey ^= z.side
	b.side = mover
	return true
}

// MakeNullMove passes the turn: side and hash flip, occupancy is untouched.
func (b *Board) MakeNullMove() {
	b.hashKey ^= zobristKeys().side
	b.side = b.side.Other()
}

func (b *Board) UnmakeNullMove() {
	b.hashKey ^= zobristKeys().side
	b.side = b.side.Other()
}

// PlaceStone puts a stone for an arbitrary player without touching the side
// to move. Setup utility; keeps the hash consistent.
func (b *Board) PlaceStone(x, y int, player Player) bool {
	if !inBounds(x, y) || b.Occupied(x, y) {
		return false
	}
	idx := cellIndex(x, y)
	b.bb[player][idx>>6] |= 1 << uint(idx&63)
	b.hashKey ^= zobristKeys().stone(x, y, player)
	return true
}

func (b *Board) RemoveStone(x, y int, player Player) bool {
	if !inBounds(x, y) || !b.hasStone(x, y, player) {
		return false
	}
	idx := cellIndex(x, y)
	b.bb[player][idx>>6] &^= 1 << uint(idx&63)
	b.hashKey ^= zobristKeys().stone(x, y, player)
	return true
}

func (b *Board) CountStones(player Player) int {
	w := b.bb[player]
	return bits.OnesCount64(w[0]) + bits.OnesCount64(w[1]) + bits.OnesCount64(w[2])
}

func (b *Board) IsFull() bool {
	return b.CountStones(PlayerBlack)+b.CountStones(PlayerWhite) == BoardSize*BoardSize
}

var lineDirections = [4][2]int{
	{1, 0},  // horizontal
	{0, 1},  // vertical
	{1, 1},  // diagonal NW-SE
	{1, -1}, // diagonal NE-SW
}

// CheckWin reports whether player has five contiguous stones in any line
// direction. Pure query.
func (b *Board) CheckWin(player Player) bool {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !b.hasStone(x, y, player) {
				continue
			}
			for _, d := range lineDirections {
				// Count only runs starting here to avoid rescanning.
				px, py := x-d[0], y-d[1]
				if inBounds(px, py) && b.hasStone(px, py, player) {
					continue
				}
				run := 1
				nx, ny := x+d[0], y+d[1]
				for inBounds(nx, ny) && b.hasStone(nx, ny, player) {
					run++
					nx += d[0]
					ny += d[1]
				}
				if run >= 5 {
					return true
				}
			}
		}
	}
	return false
}

// LegalMoves returns every empty cell in row-major order.
func (b *Board) LegalMoves() []Move {
	out := make([]Move, 0, BoardSize*BoardSize-b.CountStones(PlayerBlack)-b.CountStones(PlayerWhite))
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !b.Occupied(x, y) {
				out = append(out, Move{X: x, Y: y})
			}
		}
	}
	return out
}

// CandidateMoves returns the empty cells within candidateRadius (Chebyshev)
// of any existing stone, row-major. On an empty board it returns just the
// center cell.
func (b *Board) CandidateMoves() []Move {
	if b.CountStones(PlayerBlack)+b.CountStones(PlayerWhite) == 0 {
		return []Move{{X: BoardSize / 2, Y: BoardSize / 2}}
	}
	var near moveSet
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if !b.Occupied(x, y) {
				continue
			}
			for dy := -candidateRadius; dy <= candidateRadius; dy++ {
				for dx := -candidateRadius; dx <= candidateRadius; dx++ {
					nx, ny := x+dx, y+dy
					if inBounds(nx, ny) && !b.Occupied(nx, ny) {
						near.Add(Move{X: nx, Y: ny})
					}
				}
			}
		}
	}
	return near.Moves()
}

// recomputeHash rebuilds the Zobrist hash from scratch; used by tests to
// validate the incremental updates.
func (b *Board) recomputeHash() uint64 {
	z := zobristKeys()
	var hash uint64
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			if b.hasStone(x, y, PlayerBlack) {
				hash ^= z.stone(x, y, PlayerBlack)
			} else if b.hasStone(x, y, PlayerWhite) {
				hash ^= z.stone(x, y, PlayerWhite)
			}
		}
	}
	if b.side == PlayerWhite {
		hash ^= z.side
	}
	return hash
}
