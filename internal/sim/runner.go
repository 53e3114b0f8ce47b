// Package sim runs batches of games and aggregates their outcomes. Games
// are independent, so the batch fans out across a bounded worker pool with
// no shared mutable state.
package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/kb"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// Result is the outcome of a single game.
type Result struct {
	Won     bool `json:"won"`
	Moves   int  `json:"moves"`
	Guesses int  `json:"guesses"`
}

// Stats aggregates a batch of results.
type Stats struct {
	Games         int           `json:"games"`
	Wins          int           `json:"wins"`
	WinRate       float64       `json:"win_rate"`
	AvgMoves      float64       `json:"avg_moves"`
	AvgGuesses    float64       `json:"avg_guesses"`
	AvgGuessesWon float64       `json:"avg_guesses_won"`
	Duration      time.Duration `json:"duration"`
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"games %d | wins %d (%.1f%%) | avg moves %.1f | avg guesses %.2f | avg guesses when won %.2f | took %s",
		s.Games, s.Wins, 100*s.WinRate, s.AvgMoves, s.AvgGuesses, s.AvgGuessesWon,
		s.Duration.Round(time.Millisecond),
	)
}

// Runner plays Games independent games of the given shape with agents built
// by Factory. Game i draws its randomness from PCG(Seed, i), so a run is
// fully reproducible from its seed.
type Runner struct {
	Params  mines.GameParams
	Factory agent.Factory
	Games   int
	Workers int
	Seed    uint64

	// CheckSoundness compares every deduction against ground truth after
	// each move and fails the run on the first mismatch. Meant for tests;
	// it is quadratic-ish and slows large batches down.
	CheckSoundness bool

	Log *logrus.Logger
}

// Run plays the batch. Cancellation is coarse: a canceled context stops new
// games from starting but never interrupts one mid-game.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if err := r.Params.Validate(); err != nil {
		return nil, err
	}
	if r.Games <= 0 {
		return nil, fmt.Errorf("%w: game count must be positive", mines.ErrInvalidConfiguration)
	}
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()
	results := make([]Result, r.Games)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range r.Games {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.playGame(i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			log.WithFields(logrus.Fields{
				"game":    i,
				"won":     res.Won,
				"moves":   res.Moves,
				"guesses": res.Guesses,
			}).Debug("game finished")
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := aggregate(results)
	stats.Duration = time.Since(start)
	log.WithFields(logrus.Fields{
		"games":    stats.Games,
		"wins":     stats.Wins,
		"win_rate": stats.WinRate,
	}).Info("batch finished")
	return stats, nil
}

func (r *Runner) playGame(i int) (Result, error) {
	rng := rand.New(rand.NewPCG(r.Seed, uint64(i)))
	ag := r.Factory(r.Params, rng)

	x, y := rng.IntN(r.Params.Width), rng.IntN(r.Params.Height)
	game, err := mines.NewGame(&r.Params, x, y, rng)
	if err != nil {
		return Result{}, err
	}

	observed := make([]bool, r.Params.CellCount())
	if err := observeReveals(game, ag, observed); err != nil {
		return Result{}, err
	}

	var res Result
	// flags are bounded by the mine count and every open makes progress,
	// so this cap is only ever hit by a stuck agent
	maxMoves := 2 * r.Params.CellCount()
	for !game.Dead && !game.Won {
		if res.Moves >= maxMoves {
			return Result{}, mines.NewAssertionError("agent made no progress")
		}
		action, err := ag.ChooseMove(game)
		if err != nil {
			return Result{}, err
		}
		ax, ay := r.Params.Coords(action.Cell)
		switch action.Kind {
		case agent.Flag:
			game.FlagCell(ax, ay)
		case agent.Guess:
			res.Guesses++
			game.OpenCell(ax, ay)
		case agent.Open:
			game.OpenCell(ax, ay)
		}
		res.Moves++

		if err := observeReveals(game, ag, observed); err != nil {
			return Result{}, err
		}
		if r.CheckSoundness {
			if err := checkSoundness(game, ag); err != nil {
				return Result{}, err
			}
		}
	}
	res.Won = game.Won
	return res, nil
}

// observeReveals feeds every newly opened cell to the agent exactly once.
func observeReveals(game *mines.GameState, ag agent.Agent, observed []bool) error {
	for i, c := range game.PlayerGrid {
		if observed[i] || !c.Open() {
			continue
		}
		observed[i] = true
		if err := ag.Observe(i, int(c)); err != nil {
			return err
		}
	}
	return nil
}

// checkSoundness verifies the agent's resolved cells against ground truth.
// Agents without a knowledge base trivially pass.
func checkSoundness(game *mines.GameState, ag agent.Agent) error {
	k, ok := ag.(interface{ Knowledge() *kb.KnowledgeBase })
	if !ok {
		return nil
	}
	base := k.Knowledge()
	for _, cell := range base.KnownMine() {
		if !game.Grid[cell] {
			return mines.NewAssertionError(fmt.Sprintf(
				"cell %d deduced a mine but holds none", cell,
			))
		}
	}
	for _, cell := range base.KnownSafe() {
		if game.Grid[cell] {
			return mines.NewAssertionError(fmt.Sprintf(
				"cell %d deduced safe but holds a mine", cell,
			))
		}
	}
	return nil
}

func aggregate(results []Result) *Stats {
	stats := &Stats{Games: len(results)}
	moves, guesses, guessesWon := 0, 0, 0
	for _, res := range results {
		moves += res.Moves
		guesses += res.Guesses
		if res.Won {
			stats.Wins++
			guessesWon += res.Guesses
		}
	}
	if stats.Games > 0 {
		stats.WinRate = float64(stats.Wins) / float64(stats.Games)
		stats.AvgMoves = float64(moves) / float64(stats.Games)
		stats.AvgGuesses = float64(guesses) / float64(stats.Games)
	}
	if stats.Wins > 0 {
		stats.AvgGuessesWon = float64(guessesWon) / float64(stats.Wins)
	}
	return stats
}
