// Package prob turns a set of mine constraints into per-cell mine
// probabilities by exact enumeration of independent constraint components,
// falling back to a local-density approximation for components too large
// to enumerate.
package prob

import (
	"fmt"
	"sort"

	"github.com/vancomm/minesweeper-agent/internal/kb"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// MaxExactCells caps the size of a component that gets enumerated exactly.
// 2^20 partial assignments is still fast with pruning; beyond that the
// estimator switches to the approximation.
const MaxExactCells = 20

// Estimate holds per-cell mine probabilities for every hidden cell that was
// passed in, plus the cells an exact enumeration proved safe or mined.
type Estimate struct {
	Prob map[int]float64
	Safe []int
	Mine []int

	// Exact is false when at least one component exceeded MaxExactCells
	// and was approximated instead of enumerated.
	Exact bool
}

// Compute estimates the mine probability of every cell in hidden.
// Constraints partition into components that share no cells; each component
// is solved independently. Hidden cells outside every constraint share the
// leftover mine density: minesLeft minus the mines the constraint regions
// are expected to hold, spread uniformly.
func Compute(constraints []kb.Constraint, hidden []int, minesLeft int) (*Estimate, error) {
	est := &Estimate{
		Prob:  make(map[int]float64, len(hidden)),
		Exact: true,
	}

	inConstraint := make(map[int]bool)
	for _, c := range constraints {
		for _, cell := range c.Cells {
			inConstraint[cell] = true
		}
	}

	expected := 0.0
	for _, comp := range components(constraints) {
		e, err := comp.solve()
		if err != nil {
			return nil, err
		}
		if !e.exact {
			est.Exact = false
		}
		for cell, p := range e.prob {
			est.Prob[cell] = p
			expected += p
			if e.exact {
				if p == 0 {
					est.Safe = append(est.Safe, cell)
				} else if p == 1 {
					est.Mine = append(est.Mine, cell)
				}
			}
		}
	}

	var outside []int
	for _, cell := range hidden {
		if !inConstraint[cell] {
			outside = append(outside, cell)
		}
	}
	if len(outside) > 0 {
		density := (float64(minesLeft) - expected) / float64(len(outside))
		density = clamp(density)
		for _, cell := range outside {
			est.Prob[cell] = density
		}
	}

	sort.Ints(est.Safe)
	sort.Ints(est.Mine)
	return est, nil
}

// BestGuess returns the cell with the lowest mine probability, breaking ties
// toward the lowest index. Returns -1 when the estimate covers no cells.
func (e *Estimate) BestGuess() (int, float64) {
	best, bestP := -1, 2.0
	for cell, p := range e.Prob {
		if p < bestP || (p == bestP && cell < best) {
			best, bestP = cell, p
		}
	}
	if best == -1 {
		return -1, 0
	}
	return best, bestP
}

// component is a maximal group of constraints connected through shared
// cells. Assignments in one component never affect another.
type component struct {
	constraints []kb.Constraint
	cells       []int
}

func components(constraints []kb.Constraint) []*component {
	cellToCons := make(map[int][]int)
	for i, c := range constraints {
		for _, cell := range c.Cells {
			cellToCons[cell] = append(cellToCons[cell], i)
		}
	}

	seen := make([]bool, len(constraints))
	var out []*component
	for start := range constraints {
		if seen[start] {
			continue
		}
		comp := &component{}
		cellSet := make(map[int]struct{})
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			comp.constraints = append(comp.constraints, constraints[i])
			for _, cell := range constraints[i].Cells {
				if _, ok := cellSet[cell]; ok {
					continue
				}
				cellSet[cell] = struct{}{}
				for _, j := range cellToCons[cell] {
					if !seen[j] {
						seen[j] = true
						queue = append(queue, j)
					}
				}
			}
		}
		comp.cells = make([]int, 0, len(cellSet))
		for cell := range cellSet {
			comp.cells = append(comp.cells, cell)
		}
		sort.Ints(comp.cells)
		out = append(out, comp)
	}
	return out
}

type componentEstimate struct {
	prob  map[int]float64
	exact bool
}

func (c *component) solve() (*componentEstimate, error) {
	if len(c.cells) > MaxExactCells {
		return c.approximate(), nil
	}
	return c.enumerate()
}

// enumerate backtracks over mine/safe assignments to the component's cells,
// pruning any branch where a constraint can no longer be satisfied. The
// probability of a cell is the fraction of full assignments that mine it.
func (c *component) enumerate() (*componentEstimate, error) {
	index := make(map[int]int, len(c.cells))
	for i, cell := range c.cells {
		index[cell] = i
	}

	// per-constraint counters updated as cells get assigned
	type counter struct {
		mines     int // cells assigned mine so far
		remaining int // cells not yet assigned
		target    int
	}
	counters := make([]counter, len(c.constraints))
	memberOf := make([][]int, len(c.cells))
	for ci, con := range c.constraints {
		counters[ci] = counter{remaining: len(con.Cells), target: con.Mines}
		for _, cell := range con.Cells {
			i := index[cell]
			memberOf[i] = append(memberOf[i], ci)
		}
	}

	solutions := 0
	mined := make([]int, len(c.cells))
	path := make([]bool, len(c.cells))

	feasible := func(ci int) bool {
		cnt := counters[ci]
		return cnt.mines <= cnt.target && cnt.target <= cnt.mines+cnt.remaining
	}
	var rec func(i int)
	rec = func(i int) {
		if i == len(c.cells) {
			solutions++
			for j, m := range path {
				if m {
					mined[j]++
				}
			}
			return
		}
		for _, isMine := range []bool{false, true} {
			ok := true
			for _, ci := range memberOf[i] {
				counters[ci].remaining--
				if isMine {
					counters[ci].mines++
				}
			}
			for _, ci := range memberOf[i] {
				if !feasible(ci) {
					ok = false
					break
				}
			}
			if ok {
				path[i] = isMine
				rec(i + 1)
			}
			for _, ci := range memberOf[i] {
				counters[ci].remaining++
				if isMine {
					counters[ci].mines--
				}
			}
		}
	}
	rec(0)

	if solutions == 0 {
		return nil, mines.NewAssertionError(fmt.Sprintf(
			"no consistent assignment for %d constraints over %d cells",
			len(c.constraints), len(c.cells),
		))
	}

	e := &componentEstimate{prob: make(map[int]float64, len(c.cells)), exact: true}
	for i, cell := range c.cells {
		e.prob[cell] = float64(mined[i]) / float64(solutions)
	}
	return e, nil
}

// approximate treats each constraint as an independent local density k/n and
// combines overlapping densities multiplicatively: a cell under constraints
// with densities d1..dm gets 1-(1-d1)...(1-dm). Cheap and biased, but only
// used when a component is too entangled to enumerate.
func (c *component) approximate() *componentEstimate {
	e := &componentEstimate{prob: make(map[int]float64, len(c.cells))}
	for _, cell := range c.cells {
		e.prob[cell] = 0
	}
	for _, con := range c.constraints {
		d := float64(con.Mines) / float64(len(con.Cells))
		for _, cell := range con.Cells {
			p := e.prob[cell]
			e.prob[cell] = 1 - (1-p)*(1-d)
		}
	}
	for cell, p := range e.prob {
		e.prob[cell] = clamp(p)
	}
	return e
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
