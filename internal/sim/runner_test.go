package sim

import (
	"context"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRunnerCompletesBatch(t *testing.T) {
	t.Parallel()
	runner := &Runner{
		Params:  mines.GameParams{Width: 5, Height: 5, MineCount: 3},
		Factory: agent.NewRandom,
		Games:   50,
		Workers: 4,
		Seed:    1,
		Log:     quietLogger(),
	}
	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Games)
	assert.GreaterOrEqual(t, stats.AvgMoves, 1.0)
	assert.Equal(t, stats.AvgMoves, stats.AvgGuesses,
		"the random agent only ever guesses")
}

func TestRunnerReproducible(t *testing.T) {
	t.Parallel()
	run := func() *Stats {
		runner := &Runner{
			Params: mines.GameParams{Width: 9, Height: 9, MineCount: 10},
			Factory: func(params mines.GameParams, r *rand.Rand) agent.Agent {
				return agent.NewBasic(params, r)
			},
			Games: 20,
			Seed:  42,
			Log:   quietLogger(),
		}
		stats, err := runner.Run(context.Background())
		require.NoError(t, err)
		return stats
	}
	a, b := run(), run()
	b.Duration = a.Duration
	assert.Equal(t, a, b)
}

func TestRunnerRejectsBadConfig(t *testing.T) {
	runner := &Runner{
		Params:  mines.GameParams{Width: 0, Height: 5, MineCount: 1},
		Factory: agent.NewRandom,
		Games:   1,
		Log:     quietLogger(),
	}
	_, err := runner.Run(context.Background())
	assert.ErrorIs(t, err, mines.ErrInvalidConfiguration)

	runner.Params = mines.GameParams{Width: 5, Height: 5, MineCount: 1}
	runner.Games = 0
	_, err = runner.Run(context.Background())
	assert.ErrorIs(t, err, mines.ErrInvalidConfiguration)
}

func TestRunnerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &Runner{
		Params:  mines.GameParams{Width: 9, Height: 9, MineCount: 10},
		Factory: agent.NewRandom,
		Games:   100,
		Log:     quietLogger(),
	}
	_, err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFullAgentSoundness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1000-game batch in short mode")
	}
	t.Parallel()
	runner := &Runner{
		Params: mines.GameParams{Width: 9, Height: 9, MineCount: 10},
		Factory: func(params mines.GameParams, r *rand.Rand) agent.Agent {
			return agent.NewFull(params, r, agent.GuessProbability)
		},
		Games:          1000,
		Workers:        8,
		Seed:           7,
		CheckSoundness: true,
		Log:            quietLogger(),
	}
	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000, stats.Games)
	assert.Positive(t, stats.Wins, "full inference should win some games")
}

func TestAggregate(t *testing.T) {
	stats := aggregate([]Result{
		{Won: true, Moves: 10, Guesses: 2},
		{Won: false, Moves: 4, Guesses: 4},
		{Won: true, Moves: 12, Guesses: 0},
		{Won: false, Moves: 2, Guesses: 2},
	})
	assert.Equal(t, 4, stats.Games)
	assert.Equal(t, 2, stats.Wins)
	assert.InDelta(t, 0.5, stats.WinRate, 1e-12)
	assert.InDelta(t, 7.0, stats.AvgMoves, 1e-12)
	assert.InDelta(t, 2.0, stats.AvgGuesses, 1e-12)
	assert.InDelta(t, 1.0, stats.AvgGuessesWon, 1e-12)
}
