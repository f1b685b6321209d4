package main

import (
	"errors"
	"sync"
	"time"

	"github.com/AgainTri412/gomoku/engine"
)

type GameStatus int

const (
	StatusRunning GameStatus = iota
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

var (
	errGameOver    = errors.New("game is over")
	errIllegalMove = errors.New("illegal move")
)

// HistoryEntry records one applied move for clients.
type HistoryEntry struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Player    int    `json:"player"`
	IsAi      bool   `json:"is_ai"`
	ElapsedMs uint64 `json:"elapsed_ms"`
	Depth     int    `json:"depth"`
	Score     int    `json:"score,omitempty"`
}

// Game is one session: a board, the engine searching on it, and the move
// history. The transposition table is shared across resets so knowledge
// carries over between games.
type Game struct {
	mu      sync.Mutex
	board   *engine.Board
	eng     *engine.SearchEngine
	history []HistoryEntry
	status  GameStatus
	started time.Time
}

func NewGame(tt *engine.TranspositionTable) *Game {
	board := engine.NewBoard()
	return &Game{
		board:   board,
		eng:     engine.NewSearchEngineWith(board, nil, engine.NewThreatSolver(board), engine.NewHistoryTable(), tt),
		started: time.Now(),
	}
}

// Reset starts a fresh game on the same engine and table.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.board.Reset()
	g.history = g.history[:0]
	g.status = StatusRunning
	g.started = time.Now()
}

// ApplyHumanMove plays a stone for the side to move. The caller decides
// whether the engine answers afterwards.
func (g *Game) ApplyHumanMove(x, y int) (HistoryEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.applyLocked(x, y, false, 0, 0, 0)
}

// PlayEngineMove searches the current position under limits and applies the
// best move found.
func (g *Game) PlayEngineMove(limits engine.SearchLimits) (HistoryEntry, engine.SearchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusRunning {
		return HistoryEntry{}, engine.SearchResult{}, errGameOver
	}
	start := time.Now()
	result := g.eng.SearchBestMove(limits)
	if !result.BestMove.IsValid() {
		return HistoryEntry{}, result, errIllegalMove
	}
	elapsed := uint64(time.Since(start) / time.Millisecond)
	entry, err := g.applyLocked(result.BestMove.X, result.BestMove.Y, true, elapsed, result.DepthReached, result.BestScore)
	return entry, result, err
}

// Analyze runs a search on the current position without applying the move.
func (g *Game) Analyze(limits engine.SearchLimits) (engine.SearchResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status != StatusRunning {
		return engine.SearchResult{}, errGameOver
	}
	return g.eng.SearchBestMove(limits), nil
}

func (g *Game) applyLocked(x, y int, isAi bool, elapsedMs uint64, depth, score int) (HistoryEntry, error) {
	if g.status != StatusRunning {
		return HistoryEntry{}, errGameOver
	}
	mover := g.board.SideToMove()
	if !g.board.MakeMove(x, y) {
		return HistoryEntry{}, errIllegalMove
	}
	entry := HistoryEntry{
		X:         x,
		Y:         y,
		Player:    playerToInt(mover),
		IsAi:      isAi,
		ElapsedMs: elapsedMs,
		Depth:     depth,
		Score:     score,
	}
	g.history = append(g.history, entry)
	switch {
	case g.board.CheckWin(mover):
		if mover == engine.PlayerBlack {
			g.status = StatusBlackWon
		} else {
			g.status = StatusWhiteWon
		}
	case g.board.IsFull():
		g.status = StatusDraw
	}
	return entry, nil
}

// Snapshot is the wire representation of the session state.
type Snapshot struct {
	Board      [][]int        `json:"board"`
	NextPlayer int            `json:"next_player"`
	Winner     int            `json:"winner"`
	Status     string         `json:"status"`
	MoveCount  int            `json:"move_count"`
	BoardSize  int            `json:"board_size"`
	History    []HistoryEntry `json:"history"`
}

func (g *Game) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	rows := make([][]int, engine.BoardSize)
	for y := 0; y < engine.BoardSize; y++ {
		rows[y] = make([]int, engine.BoardSize)
		for x := 0; x < engine.BoardSize; x++ {
			rows[y][x] = g.board.CellState(x, y)
		}
	}
	return Snapshot{
		Board:      rows,
		NextPlayer: playerToInt(g.board.SideToMove()),
		Winner:     winnerFromStatus(g.status),
		Status:     statusToString(g.status),
		MoveCount:  len(g.history),
		BoardSize:  engine.BoardSize,
		History:    append([]HistoryEntry(nil), g.history...),
	}
}

func playerToInt(player engine.Player) int {
	if player == engine.PlayerBlack {
		return 1
	}
	return 2
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	case StatusDraw:
		return "draw"
	default:
		return "running"
	}
}
