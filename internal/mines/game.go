package mines

import (
	"bytes"
	"encoding/gob"
	"math/rand/v2"
)

type GameState struct {
	Dead, Won  bool
	Grid       []bool /* real mine points, never shown to a solver */
	PlayerGrid Grid   /* player knowledge */
	GameParams
}

func DecodeGameState(buf []byte) (*GameState, error) {
	var game GameState
	err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (g GameState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(g)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewGame places mines uniformly at random, keeping the starting cell and
// all of its neighbors clear, then opens the starting cell.
func NewGame(params *GameParams, x, y int, r *rand.Rand) (*GameState, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !params.ValidatePoint(x, y) {
		return nil, ErrInvalidConfiguration
	}

	width, height, mineCount := params.Unpack()

	grid := make([]bool, width*height)
	candidates := make([]int, 0, width*height)

	/*
	 * Write down the list of possible mine locations.
	 */
	for yy := range height {
		for xx := range width {
			if absDiff(y, yy) > 1 || absDiff(x, xx) > 1 {
				candidates = append(candidates, yy*width+xx)
			}
		}
	}

	/*
	 * Now pick n off the list at random.
	 */
	k := len(candidates)
	for range mineCount {
		i := r.IntN(k)
		grid[candidates[i]] = true
		k--
		candidates[i] = candidates[k]
	}

	playerGrid := make(Grid, len(grid))
	for i := range playerGrid {
		playerGrid[i] = Unknown
	}
	state := &GameState{
		GameParams: *params,
		Grid:       grid,
		PlayerGrid: playerGrid,
	}
	if state.OpenCell(x, y) != 0 {
		return nil, NewAssertionError("mine in starting cell")
	}
	return state, nil
}

// MineAt exposes ground truth. It exists for the board's own bookkeeping
// and for soundness checks in tests; solver code must go through the player
// grid instead.
func (s GameState) MineAt(x, y int) bool {
	return s.Grid[y*s.Width+x]
}

func (s GameState) adjacentMines(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if s.ValidatePoint(x+dx, y+dy) && s.MineAt(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

// OpenCell opens a cell. Opening a mine kills the game and returns -1.
// Opening a safe cell reveals its mine count and, on a zero count,
// flood-fills the neighborhood; each cell is revealed at most once. Returns
// 0 on a safe open.
func (s *GameState) OpenCell(x, y int) int {
	i := y*s.Width + x
	if s.Grid[i] {
		/*
		 * The player has landed on a mine. Expose the mine that
		 * killed them, but not the rest.
		 */
		s.Dead = true
		s.PlayerGrid[i] = ExplodedMine
		return -1
	}

	/*
	 * Otherwise the player has opened a safe cell. Reveal it and keep a
	 * queue of zero-count cells whose neighborhoods cascade open.
	 */
	queue := []int{i}
	s.PlayerGrid[i] = CellState(s.adjacentMines(x, y))

	for len(queue) > 0 {
		j := queue[0]
		queue = queue[1:]
		if s.PlayerGrid[j] != 0 {
			continue
		}
		jx, jy := s.Coords(j)
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if !s.ValidatePoint(jx+dx, jy+dy) {
					continue
				}
				n := (jy+dy)*s.Width + (jx + dx)
				if s.PlayerGrid[n] == Unknown {
					s.PlayerGrid[n] = CellState(s.adjacentMines(jx+dx, jy+dy))
					queue = append(queue, n)
				}
			}
		}
	}

	/*
	 * Finally, see if exactly as many cells are still covered as there
	 * are mines. If so the game is won; mark the remaining covered
	 * cells as flagged mines.
	 */
	if s.HiddenCount() == s.MineCount {
		for j := range s.PlayerGrid {
			if s.PlayerGrid[j] == Unknown {
				s.PlayerGrid[j] = Flagged
			}
		}
		s.Won = true
	}

	return 0
}

// FlagCell toggles a flag on a covered cell. Open cells are unaffected.
func (s *GameState) FlagCell(x, y int) {
	i := y*s.Width + x
	if s.PlayerGrid[i] == Unknown {
		s.PlayerGrid[i] = Flagged
	} else if s.PlayerGrid[i] == Flagged {
		s.PlayerGrid[i] = Unknown
	}
}

// ChordCell opens every unflagged neighbor of an open cell whose flag count
// already matches its mine count.
func (s *GameState) ChordCell(x, y int) {
	i := y*s.Width + x
	if !s.PlayerGrid[i].Open() {
		return
	}
	c := int(s.PlayerGrid[i])
	js := make([]int, 0, 8)
	m := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && s.ValidatePoint(x+dx, y+dy) {
				j := (y+dy)*s.Width + (x + dx)
				if s.PlayerGrid[j] == Flagged {
					m++
				} else if s.PlayerGrid[j] == Unknown {
					js = append(js, j)
				}
			}
		}
	}
	if c == m {
		for _, j := range js {
			jx, jy := s.Coords(j)
			s.OpenCell(jx, jy)
			if s.Dead || s.Won {
				return
			}
		}
	}
}

func (s *GameState) Forfeit() {
	if !(s.Dead || s.Won) {
		s.Dead = true
	}
	s.RevealMines()
}

// RevealMines discloses the full board after the game has ended: correct
// and wrong flags are marked as such, unflagged mines are shown and clear
// covered cells get their counts.
func (s *GameState) RevealMines() {
	if !(s.Dead || s.Won) {
		s.Dead = true
	}
	for i := range s.Grid {
		x, y := s.Coords(i)
		if s.PlayerGrid[i] == Flagged {
			if s.Grid[i] {
				s.PlayerGrid[i] = CorrectFlag
			} else {
				s.PlayerGrid[i] = WrongFlag
			}
		} else if s.PlayerGrid[i] == Unknown {
			if s.Grid[i] {
				s.PlayerGrid[i] = UnflaggedMine
			} else {
				s.PlayerGrid[i] = CellState(s.adjacentMines(x, y))
			}
		}
	}
}

func (s GameState) HiddenCount() (count int) {
	for _, c := range s.PlayerGrid {
		if c.Hidden() {
			count++
		}
	}
	return
}

func (s GameState) FlagCount() (count int) {
	for _, c := range s.PlayerGrid {
		if c == Flagged {
			count++
		}
	}
	return
}

// MinesRemaining is the player-visible mine counter: total mines minus
// placed flags.
func (s GameState) MinesRemaining() int {
	return s.MineCount - s.FlagCount()
}

// Params returns the board dimensions; part of the read-only view consumed
// by agents.
func (s GameState) Params() GameParams {
	return s.GameParams
}

// StatusAt is the read-only view of a single cell.
func (s GameState) StatusAt(i int) CellState {
	return s.PlayerGrid[i]
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
