// Package kb accumulates exact-count mine constraints derived from revealed
// hints and performs sound fixpoint deduction over them.
package kb

import (
	"fmt"
	"sort"

	"github.com/gammazero/deque"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// Level selects how much deduction Infer performs.
type Level int

const (
	// LevelBasic applies only the two single-constraint closure rules
	// (count zero => all safe, count equals cardinality => all mines).
	LevelBasic Level = iota
	// LevelFull additionally derives difference constraints whenever one
	// constraint's cell set contains another's (subset elimination).
	LevelFull
)

// KnowledgeBase is an evolving collection of constraints plus the derived
// known-safe and known-mine cell sets. Knowledge only ever grows:
// constraints shrink or resolve, resolved cells never come back.
type KnowledgeBase struct {
	constraints []*constraint
	safe, mine  map[int]struct{}
	todo        deque.Deque[*constraint]

	// cells resolved since the last Infer call returned
	newSafe, newMine []int
}

func New() *KnowledgeBase {
	return &KnowledgeBase{
		safe: make(map[int]struct{}),
		mine: make(map[int]struct{}),
	}
}

func (b *KnowledgeBase) IsSafe(cell int) bool {
	_, ok := b.safe[cell]
	return ok
}

func (b *KnowledgeBase) IsMine(cell int) bool {
	_, ok := b.mine[cell]
	return ok
}

func (b *KnowledgeBase) KnownSafe() []int {
	return sortedKeys(b.safe)
}

func (b *KnowledgeBase) KnownMine() []int {
	return sortedKeys(b.mine)
}

// Constraints returns a snapshot of the active constraints with sorted
// cell sets, for the probability estimator.
func (b *KnowledgeBase) Constraints() []Constraint {
	out := make([]Constraint, 0, len(b.constraints))
	for _, c := range b.constraints {
		if !c.dead {
			out = append(out, c.snapshot())
		}
	}
	return out
}

// Add inserts the constraint "exactly count of cells are mines". Cells
// already known safe are dropped, cells already known mines are dropped
// with the count decremented. Empty and duplicate results are discarded.
func (b *KnowledgeBase) Add(cells []int, count int) error {
	filtered := make([]int, 0, len(cells))
	for _, cell := range cells {
		if b.IsSafe(cell) {
			continue
		}
		if b.IsMine(cell) {
			count--
			continue
		}
		filtered = append(filtered, cell)
	}
	_, err := b.insert(newConstraint(filtered, count))
	return err
}

func (b *KnowledgeBase) insert(c *constraint) (added bool, err error) {
	if err := b.check(c); err != nil {
		return false, err
	}
	if len(c.cells) == 0 {
		return false, nil
	}
	for _, existing := range b.constraints {
		if !existing.dead && existing.equal(c) {
			// same cell set: counts must agree, and there is nothing new
			if existing.mines != c.mines {
				return false, mines.NewAssertionError(fmt.Sprintf(
					"contradictory constraints over one cell set: %d vs %d mines",
					existing.mines, c.mines,
				))
			}
			return false, nil
		}
	}
	b.constraints = append(b.constraints, c)
	b.enqueue(c)
	return true, nil
}

// check fails fast on a count outside [0, |cells|], which can only mean a
// bug upstream of the knowledge base.
func (b *KnowledgeBase) check(c *constraint) error {
	if c.mines < 0 || c.mines > len(c.cells) {
		return mines.NewAssertionError(fmt.Sprintf(
			"constraint with %d mines over %d cells", c.mines, len(c.cells),
		))
	}
	return nil
}

func (b *KnowledgeBase) enqueue(c *constraint) {
	if c.todo || c.dead {
		return
	}
	c.todo = true
	b.todo.PushBack(c)
}

func (b *KnowledgeBase) remove(c *constraint) {
	c.dead = true
}

// MarkSafe records that cell holds no mine and removes it from every
// constraint. Constraints that change go back on the inference worklist.
func (b *KnowledgeBase) MarkSafe(cell int) error {
	return b.resolve(cell, false)
}

// MarkMine records that cell holds a mine and removes it from every
// constraint, decrementing their counts.
func (b *KnowledgeBase) MarkMine(cell int) error {
	return b.resolve(cell, true)
}

func (b *KnowledgeBase) resolve(cell int, mine bool) error {
	if mine && b.IsSafe(cell) || !mine && b.IsMine(cell) {
		return mines.NewAssertionError(fmt.Sprintf(
			"cell %d resolved both safe and mine", cell,
		))
	}
	if mine {
		if _, done := b.mine[cell]; done {
			return nil
		}
		b.mine[cell] = struct{}{}
		b.newMine = append(b.newMine, cell)
	} else {
		if _, done := b.safe[cell]; done {
			return nil
		}
		b.safe[cell] = struct{}{}
		b.newSafe = append(b.newSafe, cell)
	}
	for _, c := range b.constraints {
		if c.dead || !c.has(cell) {
			continue
		}
		delete(c.cells, cell)
		if mine {
			c.mines--
		}
		if err := b.check(c); err != nil {
			return err
		}
		if len(c.cells) == 0 {
			b.remove(c)
			continue
		}
		b.enqueue(c)
	}
	return nil
}

// Infer runs deduction to a fixpoint and returns the cells newly resolved
// since the previous call. Calling it again with no new information yields
// empty slices.
func (b *KnowledgeBase) Infer(level Level) (safe []int, mine []int, err error) {
	b.newSafe = b.newSafe[:0]
	b.newMine = b.newMine[:0]

	for {
		if err := b.drainTodo(); err != nil {
			return nil, nil, err
		}
		if level != LevelFull {
			break
		}
		derived, err := b.eliminateSubsets()
		if err != nil {
			return nil, nil, err
		}
		if !derived && b.todo.Len() == 0 {
			break
		}
	}
	b.compact()

	safe = append([]int(nil), b.newSafe...)
	mine = append([]int(nil), b.newMine...)
	sort.Ints(safe)
	sort.Ints(mine)
	b.newSafe = b.newSafe[:0]
	b.newMine = b.newMine[:0]
	return safe, mine, nil
}

// drainTodo applies the two single-constraint rules until the worklist is
// empty. Resolving a cell re-enqueues every constraint it touched, so the
// loop naturally reaches a fixpoint.
func (b *KnowledgeBase) drainTodo() error {
	for b.todo.Len() > 0 {
		c := b.todo.PopFront()
		c.todo = false
		if c.dead {
			continue
		}
		if c.mines == 0 {
			b.remove(c)
			for _, cell := range c.sortedCells() {
				if err := b.MarkSafe(cell); err != nil {
					return err
				}
			}
		} else if c.mines == len(c.cells) {
			b.remove(c)
			for _, cell := range c.sortedCells() {
				if err := b.MarkMine(cell); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// eliminateSubsets derives, for every pair where A's cells are contained
// in B's, the difference constraint B\A with count K_B-K_A. Reports
// whether anything new was learned.
func (b *KnowledgeBase) eliminateSubsets() (bool, error) {
	derived := false
	active := make([]*constraint, 0, len(b.constraints))
	for _, c := range b.constraints {
		if !c.dead {
			active = append(active, c)
		}
	}
	for i, a := range active {
		for _, c := range active[i+1:] {
			if a.dead || c.dead {
				continue
			}
			var sub, super *constraint
			switch {
			case a.subsetOf(c):
				sub, super = a, c
			case c.subsetOf(a):
				sub, super = c, a
			default:
				continue
			}
			diff := make([]int, 0, len(super.cells)-len(sub.cells))
			for cell := range super.cells {
				if !sub.has(cell) {
					diff = append(diff, cell)
				}
			}
			// the superset constraint is subsumed by sub + diff
			b.remove(super)
			added, err := b.insert(newConstraint(diff, super.mines-sub.mines))
			if err != nil {
				return false, err
			}
			if added {
				derived = true
			}
		}
	}
	return derived, nil
}

func (b *KnowledgeBase) compact() {
	alive := b.constraints[:0]
	for _, c := range b.constraints {
		if !c.dead {
			alive = append(alive, c)
		}
	}
	b.constraints = alive
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
