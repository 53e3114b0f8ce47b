package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

func TestSingletonConstraint(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{7}, 1))

	safe, mine, err := b.Infer(LevelBasic)
	require.NoError(t, err)
	assert.Empty(t, safe)
	assert.Equal(t, []int{7}, mine)
	assert.True(t, b.IsMine(7))
}

func TestAllSafeConstraint(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{1, 2, 3}, 0))

	safe, mine, err := b.Infer(LevelBasic)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, safe)
	assert.Empty(t, mine)
}

func TestSubsetElimination(t *testing.T) {
	// {A,B,C}=1 and {B,C}=1 force A safe
	b := New()
	require.NoError(t, b.Add([]int{10, 11, 12}, 1))
	require.NoError(t, b.Add([]int{11, 12}, 1))

	safe, mine, err := b.Infer(LevelFull)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, safe)
	assert.Empty(t, mine)
}

func TestBasicLevelSkipsSubsetElimination(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{10, 11, 12}, 1))
	require.NoError(t, b.Add([]int{11, 12}, 1))

	safe, mine, err := b.Infer(LevelBasic)
	require.NoError(t, err)
	assert.Empty(t, safe)
	assert.Empty(t, mine)
	assert.False(t, b.IsSafe(10))
}

func TestChainedDeduction(t *testing.T) {
	// the 1-2-1 pattern resolves completely: {a,b}=1, {a,b,c}=2 and
	// {b,c}=1 put mines under both ones and clear the middle
	b := New()
	require.NoError(t, b.Add([]int{0, 1}, 1))
	require.NoError(t, b.Add([]int{0, 1, 2}, 2))
	require.NoError(t, b.Add([]int{1, 2}, 1))

	safe, mine, err := b.Infer(LevelFull)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, safe)
	assert.Equal(t, []int{0, 2}, mine)
	assert.Empty(t, b.Constraints())
}

func TestInferIdempotent(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{10, 11, 12}, 1))
	require.NoError(t, b.Add([]int{11, 12}, 1))

	safe, mine, err := b.Infer(LevelFull)
	require.NoError(t, err)
	require.NotEmpty(t, safe)

	safe, mine, err = b.Infer(LevelFull)
	require.NoError(t, err)
	assert.Empty(t, safe)
	assert.Empty(t, mine)
}

func TestAddSimplifiesAgainstKnown(t *testing.T) {
	b := New()
	require.NoError(t, b.MarkMine(5))
	require.NoError(t, b.MarkSafe(6))

	// {5,6,7}=2 reduces to {7}=1 on insertion
	require.NoError(t, b.Add([]int{5, 6, 7}, 2))
	safe, mine, err := b.Infer(LevelBasic)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, safe)
	assert.Equal(t, []int{5, 7}, mine)
}

func TestResolveUpdatesConstraints(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{0, 1, 2}, 1))
	require.NoError(t, b.MarkMine(1))

	safe, mine, err := b.Infer(LevelBasic)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, safe)
	assert.Equal(t, []int{1}, mine)
}

func TestConflictingResolution(t *testing.T) {
	b := New()
	require.NoError(t, b.MarkSafe(3))
	err := b.MarkMine(3)
	var assertionErr mines.AssertionError
	assert.ErrorAs(t, err, &assertionErr)
}

func TestInvalidConstraint(t *testing.T) {
	b := New()
	var assertionErr mines.AssertionError
	assert.ErrorAs(t, b.Add([]int{1, 2}, 3), &assertionErr)
	assert.ErrorAs(t, b.Add([]int{1, 2}, -1), &assertionErr)
}

func TestContradictoryConstraints(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{1, 2}, 1))
	err := b.Add([]int{2, 1}, 2)
	var assertionErr mines.AssertionError
	assert.ErrorAs(t, err, &assertionErr)
}

func TestDuplicateConstraintIgnored(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{1, 2, 3}, 1))
	require.NoError(t, b.Add([]int{3, 2, 1}, 1))
	assert.Len(t, b.Constraints(), 1)
}

func TestConstraintsSnapshot(t *testing.T) {
	b := New()
	require.NoError(t, b.Add([]int{9, 4, 7}, 2))

	cs := b.Constraints()
	require.Len(t, cs, 1)
	assert.Equal(t, []int{4, 7, 9}, cs[0].Cells)
	assert.Equal(t, 2, cs[0].Mines)
	assert.Equal(t, "{4 7 9}=2", cs[0].String())
}
