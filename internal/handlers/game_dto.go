package handlers

import (
	"fmt"
	"strconv"

	"github.com/gorilla/schema"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type NewGameDTO struct {
	Width     int `schema:"width,required"`
	Height    int `schema:"height,required"`
	MineCount int `schema:"mine_count,required"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	err := dec.Decode(&dto, src)
	return dto, err
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

func ParsePosition(src map[string][]string) (PositionDTO, error) {
	var dto PositionDTO
	err := dec.Decode(&dto, src)
	return dto, err
}

type GameMove int

const (
	MoveOpen GameMove = iota
	MoveFlag
	MoveChord
)

func ParseGameMove(s string) (GameMove, error) {
	switch s {
	case "open":
		return MoveOpen, nil
	case "flag":
		return MoveFlag, nil
	case "chord":
		return MoveChord, nil
	default:
		return 0, fmt.Errorf("unknown move %q", s)
	}
}

type GameSessionDTO struct {
	GameSessionId string     `json:"game_session_id"`
	Grid          mines.Grid `json:"grid"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	MineCount     int        `json:"mine_count"`
	Dead          bool       `json:"dead"`
	Won           bool       `json:"won"`
	StartedAt     int64      `json:"started_at"`
	EndedAt       *int64     `json:"ended_at,omitempty"`
}

func NewGameSessionDTO(session *repository.GameSession, g *mines.GameState) *GameSessionDTO {
	dto := &GameSessionDTO{
		GameSessionId: strconv.FormatInt(session.GameSessionId, 10),
		Grid:          g.PlayerGrid,
		Width:         g.Width,
		Height:        g.Height,
		MineCount:     g.MineCount,
		Dead:          g.Dead,
		Won:           g.Won,
		StartedAt:     session.StartedAt.Time.UnixMilli(),
		EndedAt:       timestamptzMilli(session.EndedAt),
	}
	return dto
}

func timestamptzMilli(ts pgtype.Timestamptz) *int64 {
	if !ts.Valid {
		return nil
	}
	ms := ts.Time.UnixMilli()
	return &ms
}
