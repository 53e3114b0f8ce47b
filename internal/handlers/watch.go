package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minesweeper-agent/internal/agent"
)

type WatchFrameDTO struct {
	Move    *HintDTO        `json:"move,omitempty"`
	Session *GameSessionDTO `json:"session"`
}

// Watch upgrades to a websocket and streams an agent playing the session
// out move by move, persisting the board after every action. The connection
// closes once the game reaches a terminal state.
func (g Game) Watch(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	ag, err := g.buildAgent(r, game)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Error("unable to upgrade connection")
		return
	}
	defer conn.Close()

	if err := conn.WriteJSON(WatchFrameDTO{
		Session: NewGameSessionDTO(session, game),
	}); err != nil {
		g.log.WithError(err).Error("unable to write frame")
		return
	}

	observed := make([]bool, game.CellCount())
	for i, c := range game.PlayerGrid {
		if c.Open() {
			observed[i] = true
		}
	}

	maxMoves := 2 * game.CellCount()
	for moves := 0; !game.Dead && !game.Won; moves++ {
		if moves >= maxMoves {
			g.log.Error("agent made no progress, closing")
			return
		}

		action, err := ag.ChooseMove(game)
		if err != nil {
			g.log.WithError(err).Error("agent failed to choose a move")
			return
		}

		x, y := game.Coords(action.Cell)
		switch action.Kind {
		case agent.Flag:
			game.FlagCell(x, y)
		case agent.Open, agent.Guess:
			game.OpenCell(x, y)
		}

		for i, c := range game.PlayerGrid {
			if observed[i] || !c.Open() {
				continue
			}
			observed[i] = true
			if err := ag.Observe(i, int(c)); err != nil {
				g.log.WithError(err).Error("agent rejected an observation")
				return
			}
		}

		if game.Dead || game.Won {
			game.RevealMines()
		}

		session, err = g.repo.SaveGameState(r.Context(), session.GameSessionId, game)
		if err != nil {
			g.log.WithError(err).Error("unable to update session in db")
			return
		}

		if err := conn.WriteJSON(WatchFrameDTO{
			Move:    newHintDTO(game.Params(), action),
			Session: NewGameSessionDTO(session, game),
		}); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				g.log.WithError(err).Warn("unable to write frame")
			}
			return
		}
	}

	outcome := "lost"
	if game.Won {
		outcome = "won"
	}
	g.log.WithField("session", session.GameSessionId).
		Debug(fmt.Sprintf("autoplay finished, game %s", outcome))
}
