package agent

import (
	"math/rand/v2"
	"sort"

	"github.com/vancomm/minesweeper-agent/internal/kb"
	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/prob"
)

// GuessMethod selects how the full-inference agent breaks ties among the
// lowest-probability cells when it has to guess.
type GuessMethod int

const (
	// GuessProbability takes the lowest-probability cell outright, lowest
	// index on ties.
	GuessProbability GuessMethod = iota
	// GuessCornerEdge prefers corners, then edges, among the cells tied
	// for lowest probability.
	GuessCornerEdge
)

func (m GuessMethod) String() string {
	switch m {
	case GuessProbability:
		return "probability"
	case GuessCornerEdge:
		return "corner-edge"
	default:
		return "unknown"
	}
}

// inferAgent covers the three deductive strategies. They differ in the
// inference level they run and in how they pick a cell when no certain move
// exists.
type inferAgent struct {
	name     string
	params   mines.GameParams
	r        *rand.Rand
	base     *kb.KnowledgeBase
	level    kb.Level
	estimate bool
	method   GuessMethod
}

// NewBasic runs only the single-constraint closure rules and guesses
// uniformly at random when stuck.
func NewBasic(params mines.GameParams, r *rand.Rand) Agent {
	return &inferAgent{
		name:   "basic",
		params: params,
		r:      r,
		base:   kb.New(),
		level:  kb.LevelBasic,
	}
}

// NewFull runs complete inference with subset elimination and guesses via
// the probability estimator, tie-broken by the given method.
func NewFull(params mines.GameParams, r *rand.Rand, method GuessMethod) Agent {
	return &inferAgent{
		name:     "full:" + method.String(),
		params:   params,
		r:        r,
		base:     kb.New(),
		level:    kb.LevelFull,
		estimate: true,
		method:   method,
	}
}

// NewProb is the full-inference agent pinned to pure probability guessing.
// It serves as the fixed baseline the guess-method variants compare against.
func NewProb(params mines.GameParams, r *rand.Rand) Agent {
	return &inferAgent{
		name:     "prob",
		params:   params,
		r:        r,
		base:     kb.New(),
		level:    kb.LevelFull,
		estimate: true,
		method:   GuessProbability,
	}
}

func (a *inferAgent) Name() string { return a.name }

func (a *inferAgent) Reset() { a.base = kb.New() }

// Knowledge exposes the agent's knowledge base so tests can check every
// deduction against ground truth.
func (a *inferAgent) Knowledge() *kb.KnowledgeBase { return a.base }

// Observe records a revealed cell: the cell itself is safe and its hidden
// neighborhood holds exactly count mines.
func (a *inferAgent) Observe(cell, count int) error {
	if err := a.base.MarkSafe(cell); err != nil {
		return err
	}
	return a.base.Add(a.params.Neighbors(cell), count)
}

func (a *inferAgent) ChooseMove(view BoardView) (Action, error) {
	if _, _, err := a.base.Infer(a.level); err != nil {
		return Action{}, err
	}

	// flag known mines before anything else so the board's mine counter
	// tracks the knowledge base
	for _, cell := range a.base.KnownMine() {
		if view.StatusAt(cell) == mines.Unknown {
			return Action{Kind: Flag, Cell: cell}, nil
		}
	}
	for _, cell := range a.base.KnownSafe() {
		if view.StatusAt(cell) == mines.Unknown {
			return Action{Kind: Open, Cell: cell}, nil
		}
	}

	hidden := a.undetermined(view)
	if len(hidden) == 0 {
		return Action{}, mines.NewAssertionError("no hidden cells to play")
	}

	if !a.estimate {
		return Action{Kind: Guess, Cell: hidden[a.r.IntN(len(hidden))]}, nil
	}

	minesLeft := a.params.MineCount - len(a.base.KnownMine())
	est, err := prob.Compute(a.base.Constraints(), hidden, minesLeft)
	if err != nil {
		return Action{}, err
	}

	// exact enumeration can prove cells the symbolic rules could not;
	// fold those back into the knowledge base and act on them first
	for _, cell := range est.Mine {
		if err := a.base.MarkMine(cell); err != nil {
			return Action{}, err
		}
	}
	for _, cell := range est.Safe {
		if err := a.base.MarkSafe(cell); err != nil {
			return Action{}, err
		}
	}
	if len(est.Mine) > 0 {
		return Action{Kind: Flag, Cell: est.Mine[0]}, nil
	}
	if len(est.Safe) > 0 {
		return Action{Kind: Open, Cell: est.Safe[0]}, nil
	}

	return Action{Kind: Guess, Cell: a.pick(est)}, nil
}

// undetermined lists the hidden cells the knowledge base has not resolved.
func (a *inferAgent) undetermined(view BoardView) []int {
	var hidden []int
	for i := range a.params.CellCount() {
		if view.StatusAt(i) == mines.Unknown && !a.base.IsMine(i) && !a.base.IsSafe(i) {
			hidden = append(hidden, i)
		}
	}
	return hidden
}

func (a *inferAgent) pick(est *prob.Estimate) int {
	cell, best := est.BestGuess()
	if a.method != GuessCornerEdge {
		return cell
	}

	var tied []int
	for c, p := range est.Prob {
		if p-best <= 1e-9 {
			tied = append(tied, c)
		}
	}
	sort.Ints(tied)

	pick, bestRank := cell, 3
	for _, c := range tied {
		if r := a.positionRank(c); r < bestRank {
			pick, bestRank = c, r
		}
	}
	return pick
}

// positionRank orders board positions for the corner/edge preference:
// corners first, edges second, interior last.
func (a *inferAgent) positionRank(cell int) int {
	x, y := a.params.Coords(cell)
	onX := x == 0 || x == a.params.Width-1
	onY := y == 0 || y == a.params.Height-1
	switch {
	case onX && onY:
		return 0
	case onX || onY:
		return 1
	default:
		return 2
	}
}
