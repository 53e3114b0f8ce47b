package mines

import (
	"fmt"
	"strings"
)

type GameParams struct {
	Width, Height, MineCount int
}

func (p GameParams) Unpack() (w int, h int, mc int) {
	return p.Width, p.Height, p.MineCount
}

func (p GameParams) CellCount() int {
	return p.Width * p.Height
}

// Validate rejects parameters that cannot produce a playable board. The
// first opened cell and its neighbors are always mine-free, so at least a
// 3x3 region must stay unmined.
func (p GameParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf(
			"%w: non-positive dimensions %dx%d",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.MineCount < 0 {
		return fmt.Errorf(
			"%w: negative mine count %d", ErrInvalidConfiguration, p.MineCount,
		)
	}
	if p.MineCount >= p.CellCount()-9 {
		return fmt.Errorf(
			"%w: %d mines do not fit %dx%d cells minus the safe region",
			ErrInvalidConfiguration, p.MineCount, p.Width, p.Height,
		)
	}
	return nil
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

func (p GameParams) ValidatePoint(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}

func (p GameParams) Index(x, y int) int {
	return y*p.Width + x
}

func (p GameParams) Coords(i int) (x, y int) {
	return i % p.Width, i / p.Width
}

// Neighbors returns the flat indices of the up to 8 cells adjacent to i,
// in index order.
func (p GameParams) Neighbors(i int) []int {
	x, y := p.Coords(i)
	ns := make([]int, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if p.ValidatePoint(x+dx, y+dy) {
				ns = append(ns, p.Index(x+dx, y+dy))
			}
		}
	}
	return ns
}
