package engine

// historyTable is the production HistoryHeuristic: a per-side butterfly
// table over board cells. Cutoffs bump quadratically with depth so moves
// that refute deep subtrees bubble up fast.
type historyTable struct {
	scores [2][BoardSize * BoardSize]int
}

func NewHistoryTable() HistoryHeuristic {
	return &historyTable{}
}

func (h *historyTable) HistoryScore(side Player, move Move) int {
	if !move.IsValid() {
		return 0
	}
	return h.scores[side][move.index()]
}

func (h *historyTable) RecordBetaCutoff(side Player, move Move, depth int) {
	if !move.IsValid() {
		return
	}
	h.scores[side][move.index()] += depth * depth
}

func (h *historyTable) RecordPVMove(side Player, move Move, depth int) {
	if !move.IsValid() {
		return
	}
	h.scores[side][move.index()] += depth * depth * 2
}

func (h *historyTable) Clear() {
	h.scores = [2][BoardSize * BoardSize]int{}
}
