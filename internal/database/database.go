package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper-agent/internal/config"
)

func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	config, err := config.NewPgxpoolConfig()
	if err != nil {
		return nil, err
	}
	return pgxpool.NewWithConfig(ctx, config)
}

const schema = `
CREATE TABLE IF NOT EXISTS player (
	player_id     bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	username      text NOT NULL UNIQUE,
	password_hash bytea NOT NULL,
	created_at    timestamptz NOT NULL DEFAULT now(),
	updated_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game_session (
	game_session_id bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	player_id       bigint REFERENCES player (player_id),
	width           integer NOT NULL,
	height          integer NOT NULL,
	mine_count      integer NOT NULL,
	dead            boolean NOT NULL DEFAULT false,
	won             boolean NOT NULL DEFAULT false,
	started_at      timestamptz NOT NULL DEFAULT now(),
	ended_at        timestamptz,
	state           bytea NOT NULL,
	created_at      timestamptz NOT NULL DEFAULT now(),
	updated_at      timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS benchmark (
	benchmark_id    bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	player_id       bigint REFERENCES player (player_id),
	agent           text NOT NULL,
	width           integer NOT NULL,
	height          integer NOT NULL,
	mine_count      integer NOT NULL,
	seed            bigint NOT NULL,
	games           integer NOT NULL,
	wins            integer NOT NULL,
	win_rate        double precision NOT NULL,
	avg_moves       double precision NOT NULL,
	avg_guesses     double precision NOT NULL,
	avg_guesses_won double precision NOT NULL,
	duration_ms     double precision NOT NULL,
	created_at      timestamptz NOT NULL DEFAULT now()
);
`

// EnsureSchema creates missing tables on startup. Statements are idempotent
// so running against an up-to-date database is a no-op.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("unable to ensure database schema: %w", err)
	}
	return nil
}

func ConnectAndEnsureSchema(ctx context.Context) (*pgxpool.Pool, error) {
	db, err := Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to db: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
