package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-agent/internal/mines"
)

type GameSession struct {
	GameSessionId int64
	PlayerId      *int64
	Width         int
	Height        int
	MineCount     int
	Dead          bool
	Won           bool
	StartedAt     pgtype.Timestamptz
	EndedAt       pgtype.Timestamptz
	State         []byte
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

// GameState decodes the stored board back into its live form.
func (s GameSession) GameState() (*mines.GameState, error) {
	return mines.DecodeGameState(s.State)
}

type CreateGameSessionParams struct {
	PlayerId *int64
}

func (p CreateGameSessionParams) UpdateArgs(args *pgx.NamedArgs) *pgx.NamedArgs {
	if p.PlayerId != nil {
		(*args)["player_id"] = *p.PlayerId
	}
	return args
}

func (q Queries) CreateGameSession(
	ctx context.Context, state *mines.GameState, params CreateGameSessionParams,
) (*GameSession, error) {
	buf, err := state.Bytes()
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"width":      state.Width,
		"height":     state.Height,
		"mine_count": state.MineCount,
		"dead":       state.Dead,
		"won":        state.Won,
		"state":      buf,
	}
	params.UpdateArgs(&args)

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, width, height, mine_count, dead, won, state
		)
		VALUES (
			@player_id, @width, @height, @mine_count, @dead, @won, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

type UpdateGameSessionParams struct {
	Dead    *bool
	Won     *bool
	EndedAt *time.Time
	State   *[]byte
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any) {
	parts := []string{"updated_at = now()"}
	args := make(map[string]any)

	if p.Dead != nil {
		parts = append(parts, "dead = @dead")
		args["dead"] = *p.Dead
	}
	if p.Won != nil {
		parts = append(parts, "won = @won")
		args["won"] = *p.Won
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		pgx.NamedArgs(args),
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

// SaveGameState persists the board after a move, stamping ended_at when the
// game reached a terminal state.
func (q Queries) SaveGameState(
	ctx context.Context, gameSessionId int64, state *mines.GameState,
) (*GameSession, error) {
	buf, err := state.Bytes()
	if err != nil {
		return nil, err
	}
	params := UpdateGameSessionParams{
		Dead:  &state.Dead,
		Won:   &state.Won,
		State: &buf,
	}
	if state.Dead || state.Won {
		now := time.Now().UTC()
		params.EndedAt = &now
	}
	return q.UpdateGameSession(ctx, gameSessionId, params)
}
