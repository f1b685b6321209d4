package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AgainTri412/gomoku/engine"
)

type engineMoveMsg struct {
	result engine.SearchResult
}

type model struct {
	board      *engine.Board
	eng        *engine.SearchEngine
	limits     engine.SearchLimits
	humanSide  engine.Player
	cursorX    int
	cursorY    int
	thinking   bool
	gameOver   bool
	statusLine string
	lastResult engine.SearchResult
	haveResult bool
}

func initialModel() model {
	board := engine.NewBoard()
	limits := engine.DefaultSearchLimits()
	limits.TimeLimitMs = 2000
	return model{
		board:      board,
		eng:        engine.NewSearchEngine(board),
		limits:     limits,
		humanSide:  engine.PlayerBlack,
		cursorX:    engine.BoardSize / 2,
		cursorY:    engine.BoardSize / 2,
		statusLine: "your move",
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

// engineTurn runs the search off the update loop. Input stays locked until
// the message comes back, so the board is never touched concurrently.
func (m model) engineTurn() tea.Cmd {
	eng := m.eng
	limits := m.limits
	return func() tea.Msg {
		return engineMoveMsg{result: eng.SearchBestMove(limits)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "n":
			if m.thinking {
				return m, nil
			}
			m.board.Reset()
			m.gameOver = false
			m.haveResult = false
			m.cursorX = engine.BoardSize / 2
			m.cursorY = engine.BoardSize / 2
			m.statusLine = "your move"
			return m, nil
		case "up", "k":
			if !m.thinking && m.cursorY > 0 {
				m.cursorY--
			}
		case "down", "j":
			if !m.thinking && m.cursorY < engine.BoardSize-1 {
				m.cursorY++
			}
		case "left", "h":
			if !m.thinking && m.cursorX > 0 {
				m.cursorX--
			}
		case "right", "l":
			if !m.thinking && m.cursorX < engine.BoardSize-1 {
				m.cursorX++
			}
		case "enter", " ":
			return m.placeAtCursor()
		}
	case engineMoveMsg:
		return m.applyEngineMove(msg.result)
	}
	return m, nil
}

func (m model) placeAtCursor() (tea.Model, tea.Cmd) {
	if m.thinking || m.gameOver || m.board.SideToMove() != m.humanSide {
		return m, nil
	}
	if !m.board.MakeMove(m.cursorX, m.cursorY) {
		m.statusLine = "cell is taken"
		return m, nil
	}
	if m.finishIfOver(m.humanSide) {
		return m, nil
	}
	m.thinking = true
	m.statusLine = "thinking..."
	return m, m.engineTurn()
}

func (m model) applyEngineMove(result engine.SearchResult) (tea.Model, tea.Cmd) {
	m.thinking = false
	m.lastResult = result
	m.haveResult = true
	if !result.BestMove.IsValid() {
		m.statusLine = "engine found no move"
		m.gameOver = true
		return m, nil
	}
	engineSide := m.board.SideToMove()
	if !m.board.MakeMove(result.BestMove.X, result.BestMove.Y) {
		m.statusLine = "engine produced an illegal move"
		m.gameOver = true
		return m, nil
	}
	if m.finishIfOver(engineSide) {
		return m, nil
	}
	m.statusLine = "your move"
	return m, nil
}

// finishIfOver updates the terminal status after mover's stone landed. The
// receiver is a pointer-backed struct copy; the flags set here survive
// because the caller returns m.
func (m *model) finishIfOver(mover engine.Player) bool {
	if m.board.CheckWin(mover) {
		m.gameOver = true
		if mover == m.humanSide {
			m.statusLine = "you win"
		} else {
			m.statusLine = "engine wins"
		}
		return true
	}
	if m.board.IsFull() {
		m.gameOver = true
		m.statusLine = "draw"
		return true
	}
	return false
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString("  ")
	for x := 0; x < engine.BoardSize; x++ {
		fmt.Fprintf(&b, "%2x", x)
	}
	b.WriteString("\n")
	for y := 0; y < engine.BoardSize; y++ {
		fmt.Fprintf(&b, "%x ", y)
		for x := 0; x < engine.BoardSize; x++ {
			glyph := byte('.')
			switch m.board.CellState(x, y) {
			case 1:
				glyph = 'x'
			case 2:
				glyph = 'o'
			}
			// The cursor shows as [g]; the bracket borrows the padding
			// column of the neighbouring cells so rows stay aligned.
			sep := byte(' ')
			if y == m.cursorY && !m.gameOver {
				if x == m.cursorX {
					sep = '['
				} else if x == m.cursorX+1 {
					sep = ']'
				}
			}
			b.WriteByte(sep)
			b.WriteByte(glyph)
		}
		if y == m.cursorY && m.cursorX == engine.BoardSize-1 && !m.gameOver {
			b.WriteByte(']')
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.statusLine + "\n")
	if m.haveResult {
		fmt.Fprintf(&b, "depth %d  score %d  nodes %d  hits %d",
			m.lastResult.DepthReached, m.lastResult.BestScore,
			m.lastResult.Nodes+m.lastResult.QNodes, m.lastResult.HashHits)
		if m.lastResult.IsMate {
			b.WriteString("  (mate line)")
		}
		b.WriteString("\n")
	}
	b.WriteString("\narrows/hjkl move, enter places, n new game, q quits\n")
	return b.String()
}
