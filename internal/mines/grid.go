package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellState int8

const (
	Unknown       CellState = -2
	Flagged       CellState = -1
	CorrectFlag   CellState = 64 // post-game-over
	ExplodedMine  CellState = 65
	WrongFlag     CellState = 66
	UnflaggedMine CellState = 67
	// 0-8 for open cells with the given number of mined neighbors
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return " "
	case s == Flagged:
		return "*"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Hidden reports whether the cell is still unopened from the player's point
// of view (flags count as hidden).
func (s CellState) Hidden() bool {
	return s == Unknown || s == Flagged
}

func (s CellState) Open() bool {
	return 0 <= s && s <= 8
}

// Grid is the player-visible board state, one CellState per cell in row
// major order.
type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
