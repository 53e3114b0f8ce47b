package handlers

import (
	"fmt"
	"net/http"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/mines"
)

type HintDTO struct {
	Move string `json:"move"`
	Cell int    `json:"cell"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func newHintDTO(params mines.GameParams, action agent.Action) *HintDTO {
	x, y := params.Coords(action.Cell)
	return &HintDTO{
		Move: action.Kind.String(),
		Cell: action.Cell,
		X:    x,
		Y:    y,
	}
}

func parseGuessMethod(s string) (agent.GuessMethod, error) {
	switch s {
	case "", "probability":
		return agent.GuessProbability, nil
	case "corner-edge":
		return agent.GuessCornerEdge, nil
	default:
		return 0, fmt.Errorf("unknown guess method %q", s)
	}
}

// buildAgent constructs the requested strategy and replays every revealed
// cell of the board into it, so its knowledge matches the session.
func (g Game) buildAgent(r *http.Request, game *mines.GameState) (agent.Agent, error) {
	name := r.URL.Query().Get("agent")
	if name == "" {
		name = "prob"
	}
	method, err := parseGuessMethod(r.URL.Query().Get("method"))
	if err != nil {
		return nil, err
	}
	factory, err := agent.ForName(name, method)
	if err != nil {
		return nil, err
	}

	ag := factory(game.Params(), g.rnd)
	for i, c := range game.PlayerGrid {
		if !c.Open() {
			continue
		}
		if err := ag.Observe(i, int(c)); err != nil {
			return nil, err
		}
	}
	return ag, nil
}

// Hint suggests the next move for an ongoing session without applying it.
func (g Game) Hint(w http.ResponseWriter, r *http.Request) {
	_, game, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	if game.Dead || game.Won {
		w.WriteHeader(http.StatusConflict)
		sendJSONOrLog(w, g.log, wrapError(fmt.Errorf("game is over")))
		return
	}

	ag, err := g.buildAgent(r, game)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	action, err := ag.ChooseMove(game)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("agent failed to choose a move")
		return
	}

	sendJSONOrLog(w, g.log, newHintDTO(game.Params(), action))
}
