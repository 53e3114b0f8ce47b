package handlers

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

type Game struct {
	log     *logrus.Logger
	repo    *repository.Queries
	cookies *config.Cookies
	ws      *config.WebSocket
	rnd     *rand.Rand
}

func NewGame(
	log *logrus.Logger,
	db *pgxpool.Pool,
	cookies *config.Cookies,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *Game {
	return &Game{
		log:     log,
		repo:    repository.New(db),
		cookies: cookies,
		ws:      ws,
		rnd:     rnd,
	}
}

func (g Game) Create(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dto, err := ParseNewGameDTO(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	gameParams := mines.GameParams(dto)

	pos, err := ParsePosition(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	if !gameParams.ValidatePoint(pos.X, pos.Y) {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(fmt.Errorf("invalid cell position")))
		return
	}

	game, err := mines.NewGame(&gameParams, pos.X, pos.Y, g.rnd)
	if errors.Is(err, mines.ErrInvalidConfiguration) {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to generate a new game")
		return
	}

	var params repository.CreateGameSessionParams
	if claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims); ok {
		g.log.WithField("username", claims.Username).Debug("creating player session")
		params.PlayerId = &claims.PlayerId
	} else {
		g.log.Debug("creating anonymous session")
	}

	session, err := g.repo.CreateGameSession(r.Context(), game, params)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to create game session")
		return
	}

	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

// fetchSession loads a session and its decoded board, writing the error
// response itself when anything goes wrong.
func (g Game) fetchSession(
	w http.ResponseWriter, r *http.Request,
) (*repository.GameSession, *mines.GameState, bool) {
	sessionId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, nil, false
	}

	session, err := g.repo.FetchGameSession(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, nil, false
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to fetch session from db")
		return nil, nil, false
	}

	game, err := session.GameState()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("db returned invalid game_session.state")
		return nil, nil, false
	}
	return session, game, true
}

func (g Game) Fetch(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.fetchSession(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

func (g Game) MakeAMove(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	move, err := ParseGameMove(query.Get("move"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	pos, err := ParsePosition(query)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, g.log, wrapError(err))
		return
	}

	session, game, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	if game.Dead || game.Won {
		w.WriteHeader(http.StatusConflict)
		sendJSONOrLog(w, g.log, wrapError(fmt.Errorf("game is over")))
		return
	}

	if !game.ValidatePoint(pos.X, pos.Y) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch move {
	case MoveOpen:
		game.OpenCell(pos.X, pos.Y)
	case MoveFlag:
		game.FlagCell(pos.X, pos.Y)
	case MoveChord:
		game.ChordCell(pos.X, pos.Y)
	}

	if game.Won || game.Dead {
		game.RevealMines()
	}

	session, err = g.repo.SaveGameState(r.Context(), session.GameSessionId, game)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to update session in db")
		return
	}

	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}

func (g Game) Forfeit(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.fetchSession(w, r)
	if !ok {
		return
	}

	game.Forfeit()

	session, err := g.repo.SaveGameState(r.Context(), session.GameSessionId, game)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.log.WithError(err).Error("unable to update session in db")
		return
	}

	sendJSONOrLog(w, g.log, NewGameSessionDTO(session, game))
}
