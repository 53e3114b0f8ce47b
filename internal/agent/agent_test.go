package agent

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/kb"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

type stubView struct {
	params mines.GameParams
	grid   mines.Grid
}

func newStubView(params mines.GameParams) *stubView {
	grid := make(mines.Grid, params.CellCount())
	for i := range grid {
		grid[i] = mines.Unknown
	}
	return &stubView{params: params, grid: grid}
}

func (v *stubView) Params() mines.GameParams { return v.params }

func (v *stubView) StatusAt(i int) mines.CellState { return v.grid[i] }

func (v *stubView) HiddenCount() int {
	n := 0
	for _, c := range v.grid {
		if c.Hidden() {
			n++
		}
	}
	return n
}

func (v *stubView) MinesRemaining() int { return v.params.MineCount }

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func knowledge(t *testing.T, a Agent) *kb.KnowledgeBase {
	t.Helper()
	k, ok := a.(interface{ Knowledge() *kb.KnowledgeBase })
	require.True(t, ok)
	return k.Knowledge()
}

func TestRandomAgentGuessesHidden(t *testing.T) {
	params := mines.GameParams{Width: 3, Height: 3, MineCount: 1}
	view := newStubView(params)
	view.grid[4] = 1

	a := NewRandom(params, testRand())
	for range 10 {
		action, err := a.ChooseMove(view)
		require.NoError(t, err)
		assert.Equal(t, Guess, action.Kind)
		assert.Equal(t, mines.Unknown, view.grid[action.Cell])
	}
}

func TestObserveBuildsConstraints(t *testing.T) {
	params := mines.GameParams{Width: 3, Height: 3, MineCount: 2}
	a := NewBasic(params, testRand())

	require.NoError(t, a.Observe(4, 2))

	base := knowledge(t, a)
	assert.Equal(t, []int{4}, base.KnownSafe())
	cs := base.Constraints()
	require.Len(t, cs, 1)
	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, cs[0].Cells)
	assert.Equal(t, 2, cs[0].Mines)
}

func TestFlagsKnownMinesBeforeOpening(t *testing.T) {
	params := mines.GameParams{Width: 4, Height: 1, MineCount: 1}
	view := newStubView(params)
	view.grid[0] = 1
	view.grid[3] = 0

	a := NewBasic(params, testRand())
	require.NoError(t, a.Observe(0, 1)) // {1}=1
	require.NoError(t, a.Observe(3, 0)) // {2}=0

	action, err := a.ChooseMove(view)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: Flag, Cell: 1}, action)

	view.grid[1] = mines.Flagged
	action, err = a.ChooseMove(view)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: Open, Cell: 2}, action)
}

func TestBasicAgentGuessesWhenStuck(t *testing.T) {
	params := mines.GameParams{Width: 3, Height: 3, MineCount: 1}
	view := newStubView(params)

	a := NewBasic(params, testRand())
	require.NoError(t, knowledge(t, a).Add([]int{0, 1, 2}, 1))

	action, err := a.ChooseMove(view)
	require.NoError(t, err)
	assert.Equal(t, Guess, action.Kind)
}

func TestEstimatorCertaintiesFoldBack(t *testing.T) {
	// a+b+c=2 and b+c+d=1 force a mined and d safe, but neither
	// constraint contains the other so subset elimination cannot see it
	params := mines.GameParams{Width: 4, Height: 4, MineCount: 2}
	view := newStubView(params)

	a := NewProb(params, testRand())
	base := knowledge(t, a)
	require.NoError(t, base.Add([]int{0, 1, 2}, 2))
	require.NoError(t, base.Add([]int{1, 2, 3}, 1))

	action, err := a.ChooseMove(view)
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: Flag, Cell: 0}, action)
	assert.True(t, base.IsMine(0))
	assert.True(t, base.IsSafe(3))
}

func TestGuessMethods(t *testing.T) {
	// cells 1, 3, 5 and 6 tie for the lowest probability; 3 is the only
	// corner among them
	params := mines.GameParams{Width: 4, Height: 4, MineCount: 5}
	setup := func(a Agent) Agent {
		require.NoError(t, knowledge(t, a).Add([]int{1, 3, 5, 6}, 1))
		return a
	}

	a := setup(NewFull(params, testRand(), GuessProbability))
	action, err := a.ChooseMove(newStubView(params))
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: Guess, Cell: 1}, action)

	a = setup(NewFull(params, testRand(), GuessCornerEdge))
	action, err = a.ChooseMove(newStubView(params))
	require.NoError(t, err)
	assert.Equal(t, Action{Kind: Guess, Cell: 3}, action)
}

func TestNoHiddenCells(t *testing.T) {
	params := mines.GameParams{Width: 2, Height: 1, MineCount: 0}
	view := newStubView(params)
	view.grid[0] = 0
	view.grid[1] = 0

	a := NewBasic(params, testRand())
	_, err := a.ChooseMove(view)
	var assertionErr mines.AssertionError
	assert.ErrorAs(t, err, &assertionErr)
}

func TestReset(t *testing.T) {
	params := mines.GameParams{Width: 3, Height: 3, MineCount: 1}
	a := NewBasic(params, testRand())
	require.NoError(t, a.Observe(4, 1))
	require.NotEmpty(t, knowledge(t, a).KnownSafe())

	a.Reset()
	assert.Empty(t, knowledge(t, a).KnownSafe())
	assert.Empty(t, knowledge(t, a).Constraints())
}

func TestForName(t *testing.T) {
	params := mines.GameParams{Width: 9, Height: 9, MineCount: 10}
	for name, want := range map[string]string{
		"random": "random",
		"basic":  "basic",
		"full":   "full:corner-edge",
		"prob":   "prob",
	} {
		factory, err := ForName(name, GuessCornerEdge)
		require.NoError(t, err)
		assert.Equal(t, want, factory(params, testRand()).Name())
	}

	_, err := ForName("clairvoyant", GuessProbability)
	assert.Error(t, err)
}
