package prob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/kb"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

func TestSingleConstraint(t *testing.T) {
	est, err := Compute([]kb.Constraint{
		{Cells: []int{0, 1, 2}, Mines: 1},
	}, []int{0, 1, 2}, 1)
	require.NoError(t, err)
	assert.True(t, est.Exact)
	for _, cell := range []int{0, 1, 2} {
		assert.InDelta(t, 1.0/3.0, est.Prob[cell], 1e-12)
	}
}

func TestCertainties(t *testing.T) {
	est, err := Compute([]kb.Constraint{
		{Cells: []int{0}, Mines: 1},
		{Cells: []int{1, 2}, Mines: 0},
	}, []int{0, 1, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, est.Mine)
	assert.Equal(t, []int{1, 2}, est.Safe)
	assert.Equal(t, 1.0, est.Prob[0])
	assert.Equal(t, 0.0, est.Prob[1])
}

func TestOverlappingConstraints(t *testing.T) {
	// {A,B,C}=1 with {B,C}=1 leaves no assignment mining A
	est, err := Compute([]kb.Constraint{
		{Cells: []int{10, 11, 12}, Mines: 1},
		{Cells: []int{11, 12}, Mines: 1},
	}, []int{10, 11, 12}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, est.Safe)
	assert.InDelta(t, 0.5, est.Prob[11], 1e-12)
	assert.InDelta(t, 0.5, est.Prob[12], 1e-12)
}

func TestIndependentComponents(t *testing.T) {
	est, err := Compute([]kb.Constraint{
		{Cells: []int{0, 1}, Mines: 1},
		{Cells: []int{5, 6}, Mines: 1},
	}, []int{0, 1, 5, 6}, 2)
	require.NoError(t, err)
	for _, cell := range []int{0, 1, 5, 6} {
		assert.InDelta(t, 0.5, est.Prob[cell], 1e-12)
	}
}

func TestExpectedMinesPerComponent(t *testing.T) {
	constraints := []kb.Constraint{
		{Cells: []int{0, 1, 2}, Mines: 2},
		{Cells: []int{2, 3}, Mines: 1},
	}
	est, err := Compute(constraints, []int{0, 1, 2, 3}, 2)
	require.NoError(t, err)

	// three satisfying assignments: {0,2}, {1,2} and {0,1,3}, so cells
	// 0..2 are mined in two of three and cell 3 in one of three
	assert.InDelta(t, 2.0/3.0, est.Prob[0], 1e-12)
	assert.InDelta(t, 2.0/3.0, est.Prob[1], 1e-12)
	assert.InDelta(t, 2.0/3.0, est.Prob[2], 1e-12)
	assert.InDelta(t, 1.0/3.0, est.Prob[3], 1e-12)
}

func TestOutsideDensity(t *testing.T) {
	est, err := Compute([]kb.Constraint{
		{Cells: []int{0, 1}, Mines: 1},
	}, []int{0, 1, 10, 11, 12, 13}, 3)
	require.NoError(t, err)

	// one mine is expected inside the constraint, the remaining two spread
	// over the four outside cells
	for _, cell := range []int{10, 11, 12, 13} {
		assert.InDelta(t, 0.5, est.Prob[cell], 1e-12)
	}
}

func TestOutsideDensityClamped(t *testing.T) {
	est, err := Compute([]kb.Constraint{
		{Cells: []int{0, 1}, Mines: 2},
	}, []int{0, 1, 5}, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, est.Prob[5])
}

func TestBestGuess(t *testing.T) {
	est := &Estimate{Prob: map[int]float64{
		4: 0.5,
		7: 0.25,
		2: 0.25,
	}}
	cell, p := est.BestGuess()
	assert.Equal(t, 2, cell)
	assert.Equal(t, 0.25, p)

	empty := &Estimate{Prob: map[int]float64{}}
	cell, _ = empty.BestGuess()
	assert.Equal(t, -1, cell)
}

func TestInconsistentConstraints(t *testing.T) {
	_, err := Compute([]kb.Constraint{
		{Cells: []int{0, 1}, Mines: 0},
		{Cells: []int{0, 1}, Mines: 2},
	}, []int{0, 1}, 2)
	var assertionErr mines.AssertionError
	assert.ErrorAs(t, err, &assertionErr)
}

func TestLargeComponentFallsBack(t *testing.T) {
	// a 25-cell chain exceeds MaxExactCells and must be approximated
	var constraints []kb.Constraint
	var hidden []int
	for i := 0; i < 25; i++ {
		hidden = append(hidden, i)
	}
	for i := 0; i+2 < 25; i++ {
		constraints = append(constraints, kb.Constraint{
			Cells: []int{i, i + 1, i + 2}, Mines: 1,
		})
	}
	est, err := Compute(constraints, hidden, 9)
	require.NoError(t, err)
	assert.False(t, est.Exact)
	for _, cell := range hidden {
		p := est.Prob[cell]
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}
