package engine

// Pattern weights for the default evaluator. Fours dominate threes,
// threes dominate twos, so material never outranks a forcing shape.
type EvalWeights struct {
	Five  EvalScore `json:"five"`
	Four  EvalScore `json:"four"`
	Three EvalScore `json:"three"`
	Two   EvalScore `json:"two"`
	One   EvalScore `json:"one"`
	Tempo EvalScore `json:"tempo"`
}

func DefaultEvalWeights() EvalWeights {
	return EvalWeights{
		Five:  1000000,
		Four:  15000,
		Three: 2500,
		Two:   200,
		One:   20,
		Tempo: 100,
	}
}

// windowEvaluator is the production Evaluator: it slides every five-cell
// window over the board and credits windows a player could still complete.
// Open windows count once per placement, so shapes with more completions
// score higher automatically.
type windowEvaluator struct {
	weights EvalWeights
}

func NewEvaluator() Evaluator {
	return &windowEvaluator{weights: DefaultEvalWeights()}
}

func NewEvaluatorWithWeights(weights EvalWeights) Evaluator {
	return &windowEvaluator{weights: weights}
}

func (e *windowEvaluator) Evaluate(board *Board, maxPlayer Player) EvalScore {
	score := e.playerScore(board, maxPlayer) - e.playerScore(board, maxPlayer.Other())
	if board.SideToMove() == maxPlayer {
		score += e.weights.Tempo
	} else {
		score -= e.weights.Tempo
	}
	return score
}

func (e *windowEvaluator) playerScore(board *Board, player Player) EvalScore {
	var total EvalScore
	opponent := player.Other()
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			for _, d := range lineDirections {
				ex, ey := x+4*d[0], y+4*d[1]
				if !inBounds(ex, ey) {
					continue
				}
				stones := 0
				blocked := false
				for k := 0; k < 5; k++ {
					cx, cy := x+k*d[0], y+k*d[1]
					if board.hasStone(cx, cy, opponent) {
						blocked = true
						break
					}
					if board.hasStone(cx, cy, player) {
						stones++
					}
				}
				if blocked {
					continue
				}
				total += e.windowWeight(stones)
			}
		}
	}
	return total
}

func (e *windowEvaluator) windowWeight(stones int) EvalScore {
	switch stones {
	case 5:
		return e.weights.Five
	case 4:
		return e.weights.Four
	case 3:
		return e.weights.Three
	case 2:
		return e.weights.Two
	case 1:
		return e.weights.One
	default:
		return 0
	}
}
