package engine

import "sync"

// Direction indexes the four line orientations threats can appear in.
type Direction uint8

const (
	DirHorizontal Direction = iota
	DirVertical
	DirDiagNWSE
	DirDiagNESW
)

var directionDeltas = [4][2]int{
	{1, 0},
	{0, 1},
	{1, 1},
	{1, -1},
}

// ThreatType ranks line-local patterns by (stones placed toward five,
// distinct ways to complete to five). Five and OpenFour cannot be refuted;
// SimpleFour, OpenThree and BrokenThree force an immediate reply.
type ThreatType uint8

const (
	ThreatNone ThreatType = iota
	ThreatFive
	ThreatOpenFour
	ThreatSimpleFour
	ThreatOpenThree
	ThreatBrokenThree
	ThreatSimpleThree
	ThreatTwoFourWays
	ThreatTwoThreeWays
	ThreatTwoTwoWays
	ThreatTwoOneWay
	ThreatOneFiveWays
	ThreatOneFourWays
	ThreatOneThreeWays
	ThreatOneTwoWays
	ThreatOneOneWay
)

func (t ThreatType) String() string {
	switch t {
	case ThreatFive:
		return "Five"
	case ThreatOpenFour:
		return "OpenFour"
	case ThreatSimpleFour:
		return "SimpleFour"
	case ThreatOpenThree:
		return "OpenThree"
	case ThreatBrokenThree:
		return "BrokenThree"
	case ThreatSimpleThree:
		return "SimpleThree"
	case ThreatTwoFourWays:
		return "TwoFourWays"
	case ThreatTwoThreeWays:
		return "TwoThreeWays"
	case ThreatTwoTwoWays:
		return "TwoTwoWays"
	case ThreatTwoOneWay:
		return "TwoOneWay"
	case ThreatOneFiveWays:
		return "OneFiveWays"
	case ThreatOneFourWays:
		return "OneFourWays"
	case ThreatOneThreeWays:
		return "OneThreeWays"
	case ThreatOneTwoWays:
		return "OneTwoWays"
	case ThreatOneOneWay:
		return "OneOneWay"
	default:
		return "None"
	}
}

// IsWinning reports threats the opponent cannot refute in one reply.
func (t ThreatType) IsWinning() bool {
	return t == ThreatFive || t == ThreatOpenFour
}

// IsForcing reports threats the opponent must answer or lose next move.
func (t ThreatType) IsForcing() bool {
	return t == ThreatSimpleFour || t == ThreatOpenThree || t == ThreatBrokenThree
}

// Stronger reports whether t outranks other. ThreatNone ranks below
// everything; otherwise smaller enum values are stronger.
func (t ThreatType) Stronger(other ThreatType) bool {
	if t == ThreatNone {
		return false
	}
	if other == ThreatNone {
		return true
	}
	return t < other
}

// Window cell states used as base-3 digits in the lookup key. windowBlocked
// covers both opponent stones and off-board cells.
const (
	windowEmpty    = 0
	windowAttacker = 1
	windowBlocked  = 2
)

// windowReach is how far the classification window extends to each side of
// the inspected cell.
const windowReach = 4

const patternTableSize = 6561 // 3^8: eight window cells around the center

var (
	patternTableOnce sync.Once
	patternTable     [patternTableSize]ThreatType
)

// classificationTable lazily builds the shared placement-classification
// table. Keys encode the eight cells around an empty cell (center assumed
// filled by the attacker); values are the ThreatType the placement creates.
func classificationTable() *[patternTableSize]ThreatType {
	patternTableOnce.Do(func() {
		for key := 0; key < patternTableSize; key++ {
			patternTable[key] = classifyWindowKey(key)
		}
	})
	return &patternTable
}

// classifyWindowKey decodes a window key and ranks it. Among the five-cell
// windows that contain the center and no blocked cell, a is the maximum
// attacker-stone count (center included) and b the number of windows
// attaining it; (a,b) maps onto the ThreatType ladder.
func classifyWindowKey(key int) ThreatType {
	var cells [2*windowReach + 1]int
	k := key
	for i := 0; i < 2*windowReach+1; i++ {
		if i == windowReach {
			cells[i] = windowAttacker
			continue
		}
		cells[i] = k % 3
		k /= 3
	}

	best := 0
	ways := 0
	for start := 0; start <= windowReach; start++ {
		stones := 0
		open := true
		for j := start; j < start+5; j++ {
			switch cells[j] {
			case windowBlocked:
				open = false
			case windowAttacker:
				stones++
			}
			if !open {
				break
			}
		}
		if !open {
			continue
		}
		if stones > best {
			best = stones
			ways = 1
		} else if stones == best {
			ways++
		}
	}
	return threatFromRank(best, ways)
}

func threatFromRank(stones, ways int) ThreatType {
	switch stones {
	case 5:
		return ThreatFive
	case 4:
		if ways >= 2 {
			return ThreatOpenFour
		}
		return ThreatSimpleFour
	case 3:
		switch {
		case ways >= 3:
			return ThreatOpenThree
		case ways == 2:
			return ThreatBrokenThree
		default:
			return ThreatSimpleThree
		}
	case 2:
		switch {
		case ways >= 4:
			return ThreatTwoFourWays
		case ways == 3:
			return ThreatTwoThreeWays
		case ways == 2:
			return ThreatTwoTwoWays
		default:
			return ThreatTwoOneWay
		}
	case 1:
		switch {
		case ways >= 5:
			return ThreatOneFiveWays
		case ways == 4:
			return ThreatOneFourWays
		case ways == 3:
			return ThreatOneThreeWays
		case ways == 2:
			return ThreatOneTwoWays
		default:
			return ThreatOneOneWay
		}
	default:
		return ThreatNone
	}
}
