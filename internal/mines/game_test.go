package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		params GameParams
		ok     bool
	}{
		{"9x9(10)", GameParams{9, 9, 10}, true},
		{"30x16(99)", GameParams{30, 16, 99}, true},
		{"zero mines", GameParams{5, 5, 0}, true},
		{"zero width", GameParams{0, 5, 1}, false},
		{"negative mines", GameParams{5, 5, -1}, false},
		{"too many mines", GameParams{5, 5, 16}, false},
		{"full board", GameParams{3, 3, 1}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.params.Validate()
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			}
		})
	}
}

func TestSeedRoundTrip(t *testing.T) {
	params := GameParams{Width: 30, Height: 16, MineCount: 99}
	parsed, err := ParseSeed(params.Seed())
	require.NoError(t, err)
	assert.Equal(t, params, *parsed)

	_, err = ParseSeed("bogus")
	assert.Error(t, err)
}

func TestNewGamePlacesExactMineCount(t *testing.T) {
	t.Parallel()
	r := testRand()
	params := GameParams{Width: 9, Height: 9, MineCount: 10}
	for range 50 {
		x, y := r.IntN(params.Width), r.IntN(params.Height)
		game, err := NewGame(&params, x, y, r)
		require.NoError(t, err)

		mines := 0
		for _, m := range game.Grid {
			if m {
				mines++
			}
		}
		assert.Equal(t, params.MineCount, mines)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if params.ValidatePoint(x+dx, y+dy) {
					assert.False(t, game.MineAt(x+dx, y+dy),
						"mine in safe region at %d:%d", x+dx, y+dy)
				}
			}
		}
		assert.True(t, game.PlayerGrid[params.Index(x, y)].Open())
	}
}

func TestNewGameRejectsBadParams(t *testing.T) {
	params := GameParams{Width: 4, Height: 4, MineCount: 8}
	_, err := NewGame(&params, 0, 0, testRand())
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestOpenCellMineKills(t *testing.T) {
	game := &GameState{
		GameParams: GameParams{Width: 3, Height: 1, MineCount: 1},
		Grid:       []bool{false, false, true},
		PlayerGrid: Grid{Unknown, Unknown, Unknown},
	}
	assert.Equal(t, -1, game.OpenCell(2, 0))
	assert.True(t, game.Dead)
	assert.Equal(t, ExplodedMine, game.PlayerGrid[2])
}

func TestOpenCellFloodFill(t *testing.T) {
	// single mine in a corner; opening the far corner must cascade
	// through every zero-count cell and stop at the numbered fringe
	game := &GameState{
		GameParams: GameParams{Width: 4, Height: 4, MineCount: 1},
		Grid: []bool{
			true, false, false, false,
			false, false, false, false,
			false, false, false, false,
			false, false, false, false,
		},
		PlayerGrid: make(Grid, 16),
	}
	for i := range game.PlayerGrid {
		game.PlayerGrid[i] = Unknown
	}

	assert.Equal(t, 0, game.OpenCell(3, 3))
	assert.True(t, game.Won)
	assert.Equal(t, CellState(1), game.PlayerGrid[1])
	assert.Equal(t, CellState(1), game.PlayerGrid[4])
	assert.Equal(t, CellState(1), game.PlayerGrid[5])
	assert.Equal(t, CellState(0), game.PlayerGrid[15])
	// the mine itself stays covered (auto-flagged on win)
	assert.Equal(t, Flagged, game.PlayerGrid[0])
}

func TestFlagToggle(t *testing.T) {
	game := &GameState{
		GameParams: GameParams{Width: 2, Height: 1, MineCount: 1},
		Grid:       []bool{true, false},
		PlayerGrid: Grid{Unknown, Unknown},
	}
	game.FlagCell(0, 0)
	assert.Equal(t, Flagged, game.PlayerGrid[0])
	assert.Equal(t, 0, game.MinesRemaining())

	game.FlagCell(0, 0)
	assert.Equal(t, Unknown, game.PlayerGrid[0])
	assert.Equal(t, 1, game.MinesRemaining())

	game.OpenCell(1, 0)
	before := game.PlayerGrid[1]
	game.FlagCell(1, 0) // no-op on an open cell
	assert.Equal(t, before, game.PlayerGrid[1])
}

func TestChordCell(t *testing.T) {
	game := &GameState{
		GameParams: GameParams{Width: 3, Height: 1, MineCount: 1},
		Grid:       []bool{true, false, false},
		PlayerGrid: Grid{Unknown, Unknown, Unknown},
	}
	game.OpenCell(1, 0)
	require.Equal(t, CellState(1), game.PlayerGrid[1])

	game.ChordCell(1, 0) // flag count 0 != 1, nothing happens
	assert.Equal(t, Unknown, game.PlayerGrid[2])

	game.FlagCell(0, 0)
	game.ChordCell(1, 0)
	assert.True(t, game.PlayerGrid[2].Open())
	assert.True(t, game.Won)
}

func TestRevealMines(t *testing.T) {
	game := &GameState{
		GameParams: GameParams{Width: 3, Height: 1, MineCount: 2},
		Grid:       []bool{true, false, true},
		PlayerGrid: Grid{Flagged, Flagged, Unknown},
	}
	game.RevealMines()
	assert.True(t, game.Dead)
	assert.Equal(t, CorrectFlag, game.PlayerGrid[0])
	assert.Equal(t, WrongFlag, game.PlayerGrid[1])
	assert.Equal(t, UnflaggedMine, game.PlayerGrid[2])
}

func TestGobRoundTrip(t *testing.T) {
	params := GameParams{Width: 9, Height: 9, MineCount: 10}
	game, err := NewGame(&params, 4, 4, testRand())
	require.NoError(t, err)

	b, err := game.Bytes()
	require.NoError(t, err)

	decoded, err := DecodeGameState(b)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerGrid, decoded.PlayerGrid)
	assert.Equal(t, game.Grid, decoded.Grid)
	assert.Equal(t, game.GameParams, decoded.GameParams)
}

func TestNeighbors(t *testing.T) {
	params := GameParams{Width: 3, Height: 3, MineCount: 0}
	assert.Equal(t, []int{1, 3, 4}, params.Neighbors(0))
	assert.Equal(t, []int{0, 1, 2, 3, 5, 6, 7, 8}, params.Neighbors(4))
	assert.Equal(t, []int{4, 5, 7}, params.Neighbors(8))
}
