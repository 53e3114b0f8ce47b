package kb

import (
	"fmt"
	"sort"
	"strings"
)

// Constraint states that exactly Mines of the cells in its set are mines.
// Cells are flat board indices, kept sorted for deterministic iteration.
type Constraint struct {
	Cells []int
	Mines int
}

func (c Constraint) String() string {
	parts := make([]string, len(c.Cells))
	for i, cell := range c.Cells {
		parts[i] = fmt.Sprintf("%d", cell)
	}
	return fmt.Sprintf("{%s}=%d", strings.Join(parts, " "), c.Mines)
}

// constraint is the mutable in-base representation. The cell set is a map
// so that resolving a cell is O(1); dead constraints stay allocated until
// compaction so pending worklist entries can skip them.
type constraint struct {
	cells map[int]struct{}
	mines int
	todo  bool
	dead  bool
}

func newConstraint(cells []int, mines int) *constraint {
	c := &constraint{
		cells: make(map[int]struct{}, len(cells)),
		mines: mines,
	}
	for _, cell := range cells {
		c.cells[cell] = struct{}{}
	}
	return c
}

func (c *constraint) has(cell int) bool {
	_, ok := c.cells[cell]
	return ok
}

// subsetOf reports whether every cell of c is in other.
func (c *constraint) subsetOf(other *constraint) bool {
	if len(c.cells) > len(other.cells) {
		return false
	}
	for cell := range c.cells {
		if !other.has(cell) {
			return false
		}
	}
	return true
}

func (c *constraint) equal(other *constraint) bool {
	return len(c.cells) == len(other.cells) && c.subsetOf(other)
}

func (c *constraint) sortedCells() []int {
	cells := make([]int, 0, len(c.cells))
	for cell := range c.cells {
		cells = append(cells, cell)
	}
	sort.Ints(cells)
	return cells
}

func (c *constraint) snapshot() Constraint {
	return Constraint{Cells: c.sortedCells(), Mines: c.mines}
}
