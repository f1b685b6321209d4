package engine

// TTNodeType tags a stored score with its alpha-beta bound semantics.
type TTNodeType uint8

const (
	TTExact TTNodeType = iota
	TTLowerBound
	TTUpperBound
)

// TTEntry is one transposition slot. Key must be verified against the probed
// hash before any other field is trusted; unrelated positions can share a
// slot.
type TTEntry struct {
	Key      uint64
	Value    EvalScore // root-relative, mate scores distance-normalized
	Eval     EvalScore // static eval snapshot at storage time
	Depth    int       // remaining search depth when stored
	Type     TTNodeType
	BestMove Move
	used     bool
}

// TranspositionTable is a fixed-capacity, single-slot-per-index memo for
// search results. Replacement is depth-preferred with ties going to the
// newer entry. Not safe for concurrent search runs.
type TranspositionTable struct {
	table []TTEntry
}

const DefaultTTSize = 1 << 20

func NewTranspositionTable(size int) *TranspositionTable {
	if size < 1 {
		size = 1
	}
	return &TranspositionTable{table: make([]TTEntry, size)}
}

func (tt *TranspositionTable) Clear() {
	for i := range tt.table {
		tt.table[i] = TTEntry{}
	}
}

func (tt *TranspositionTable) Capacity() int {
	return len(tt.table)
}

func (tt *TranspositionTable) Count() int {
	count := 0
	for i := range tt.table {
		if tt.table[i].used {
			count++
		}
	}
	return count
}

func (tt *TranspositionTable) index(key uint64) int {
	return int(key % uint64(len(tt.table)))
}

// Probe returns the slot that would hold key. The slot may hold unrelated
// data; callers must check Key before using Depth/Value/BestMove.
func (tt *TranspositionTable) Probe(key uint64) *TTEntry {
	return &tt.table[tt.index(key)]
}

// Store writes the entry unless the occupied slot holds a same-key result
// from a deeper search. Equal depth favors the incoming entry: it is the
// more recent one for this run.
func (tt *TranspositionTable) Store(key uint64, value, eval EvalScore, depth int, nodeType TTNodeType, bestMove Move) {
	slot := &tt.table[tt.index(key)]
	if slot.used && slot.Key == key && slot.Depth > depth {
		return
	}
	*slot = TTEntry{
		Key:      key,
		Value:    value,
		Eval:     eval,
		Depth:    depth,
		Type:     nodeType,
		BestMove: bestMove,
		used:     true,
	}
}

// ToTTScore converts a root-relative mate score into distance-from-this-node
// form before storage. Without this a mate cached at one ply distance reads
// back wrong at another.
func ToTTScore(score EvalScore, plyFromRoot int) EvalScore {
	if score >= ScoreMate-maxMatePly {
		return score + plyFromRoot
	}
	if score <= -(ScoreMate - maxMatePly) {
		return score - plyFromRoot
	}
	return score
}

// FromTTScore reverses ToTTScore at probe time.
func FromTTScore(score EvalScore, plyFromRoot int) EvalScore {
	if score >= ScoreMate-maxMatePly {
		return score - plyFromRoot
	}
	if score <= -(ScoreMate - maxMatePly) {
		return score + plyFromRoot
	}
	return score
}

// Snapshot copies out all used entries; used by callers that persist the
// table across runs.
func (tt *TranspositionTable) Snapshot() []TTEntry {
	out := make([]TTEntry, 0, tt.Count())
	for i := range tt.table {
		if tt.table[i].used {
			out = append(out, tt.table[i])
		}
	}
	return out
}

// Load reinserts previously snapshotted entries through the normal
// replacement policy.
func (tt *TranspositionTable) Load(entries []TTEntry) {
	for _, e := range entries {
		tt.Store(e.Key, e.Value, e.Eval, e.Depth, e.Type, e.BestMove)
	}
}
