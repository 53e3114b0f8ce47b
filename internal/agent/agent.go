// Package agent implements the decision policies that play a game through
// the board's read-only view. All agents are deterministic given their
// random source, so whole games replay from a seed.
package agent

import (
	"fmt"
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

// ActionKind tags what an agent wants done with a cell. Guess is the same
// board mutation as Open but marks moves made without certainty, which the
// simulation driver counts separately.
type ActionKind int

const (
	Open ActionKind = iota
	Flag
	Guess
)

func (k ActionKind) String() string {
	switch k {
	case Open:
		return "open"
	case Flag:
		return "flag"
	case Guess:
		return "guess"
	default:
		return "unknown"
	}
}

type Action struct {
	Kind ActionKind
	Cell int
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%d)", a.Kind, a.Cell)
}

// BoardView is the read-only slice of game state an agent may consult.
// Ground truth mine positions are deliberately absent.
type BoardView interface {
	Params() mines.GameParams
	StatusAt(i int) mines.CellState
	HiddenCount() int
	MinesRemaining() int
}

// Agent is a turn-by-turn decision policy. Observe feeds it every newly
// revealed cell and its adjacent-mine count; ChooseMove is called once per
// turn on a non-terminal board.
type Agent interface {
	Name() string
	Observe(cell, count int) error
	ChooseMove(view BoardView) (Action, error)
	Reset()
}

// Factory builds a fresh agent for one game. The simulation driver calls it
// per game so no knowledge leaks between runs.
type Factory func(params mines.GameParams, r *rand.Rand) Agent

// ForName maps a strategy name to its factory. The method parameter only
// affects the "full" strategy.
func ForName(name string, method GuessMethod) (Factory, error) {
	switch name {
	case "random":
		return NewRandom, nil
	case "basic":
		return NewBasic, nil
	case "full":
		return func(params mines.GameParams, r *rand.Rand) Agent {
			return NewFull(params, r, method)
		}, nil
	case "prob":
		return NewProb, nil
	default:
		return nil, fmt.Errorf("unknown agent %q", name)
	}
}

// randomAgent opens an arbitrary hidden cell every turn. It exists as the
// baseline the deductive agents are measured against.
type randomAgent struct {
	params mines.GameParams
	r      *rand.Rand
}

func NewRandom(params mines.GameParams, r *rand.Rand) Agent {
	return &randomAgent{params: params, r: r}
}

func (a *randomAgent) Name() string { return "random" }

func (a *randomAgent) Observe(cell, count int) error { return nil }

func (a *randomAgent) Reset() {}

func (a *randomAgent) ChooseMove(view BoardView) (Action, error) {
	var hidden []int
	for i := range a.params.CellCount() {
		if view.StatusAt(i) == mines.Unknown {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return Action{}, mines.NewAssertionError("no hidden cells to play")
	}
	return Action{Kind: Guess, Cell: hidden[a.r.IntN(len(hidden))]}, nil
}
