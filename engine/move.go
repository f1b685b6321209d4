package engine

import "fmt"

// BoardSize is fixed: the engine plays five-in-a-row on a 12x12 grid.
const BoardSize = 12

type Player int

const (
	PlayerBlack Player = iota
	PlayerWhite
)

func (p Player) Other() Player {
	if p == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}

func (p Player) String() string {
	if p == PlayerBlack {
		return "Black"
	}
	return "White"
}

type Move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewMove(x, y int) Move {
	return Move{X: x, Y: y}
}

func (m Move) IsValid() bool {
	return m.X >= 0 && m.Y >= 0 && m.X < BoardSize && m.Y < BoardSize
}

func (m Move) Equals(other Move) bool {
	return m.X == other.X && m.Y == other.Y
}

// Less orders moves row-major (by y, then x) so move containers iterate
// deterministically.
func (m Move) Less(other Move) bool {
	if m.Y != other.Y {
		return m.Y < other.Y
	}
	return m.X < other.X
}

func (m Move) index() int {
	return m.Y*BoardSize + m.X
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.X, m.Y)
}

// moveSet is a fixed-size membership set over board cells. Iteration via
// Moves() is row-major regardless of insertion order.
type moveSet struct {
	present [BoardSize * BoardSize]bool
	count   int
}

func (s *moveSet) Add(m Move) {
	if !m.IsValid() || s.present[m.index()] {
		return
	}
	s.present[m.index()] = true
	s.count++
}

func (s *moveSet) Contains(m Move) bool {
	return m.IsValid() && s.present[m.index()]
}

func (s *moveSet) Len() int {
	return s.count
}

func (s *moveSet) Moves() []Move {
	out := make([]Move, 0, s.count)
	for idx, ok := range s.present {
		if ok {
			out = append(out, Move{X: idx % BoardSize, Y: idx / BoardSize})
		}
	}
	return out
}
