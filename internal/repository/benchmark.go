package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/sim"
)

type Benchmark struct {
	BenchmarkId   int64              `json:"benchmark_id"`
	PlayerId      *int64             `json:"player_id,omitempty"`
	Agent         string             `json:"agent"`
	Width         int                `json:"width"`
	Height        int                `json:"height"`
	MineCount     int                `json:"mine_count"`
	Seed          int64              `json:"seed"`
	Games         int                `json:"games"`
	Wins          int                `json:"wins"`
	WinRate       float64            `json:"win_rate"`
	AvgMoves      float64            `json:"avg_moves"`
	AvgGuesses    float64            `json:"avg_guesses"`
	AvgGuessesWon float64            `json:"avg_guesses_won"`
	DurationMs    float64            `json:"duration_ms"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type CreateBenchmarkParams struct {
	PlayerId *int64
	Agent    string
	Params   mines.GameParams
	Seed     uint64
}

func (q Queries) CreateBenchmark(
	ctx context.Context, params CreateBenchmarkParams, stats *sim.Stats,
) (*Benchmark, error) {
	args := pgx.NamedArgs{
		"agent":           params.Agent,
		"width":           params.Params.Width,
		"height":          params.Params.Height,
		"mine_count":      params.Params.MineCount,
		"seed":            int64(params.Seed),
		"games":           stats.Games,
		"wins":            stats.Wins,
		"win_rate":        stats.WinRate,
		"avg_moves":       stats.AvgMoves,
		"avg_guesses":     stats.AvgGuesses,
		"avg_guesses_won": stats.AvgGuessesWon,
		"duration_ms":     float64(stats.Duration.Microseconds()) / 1000,
	}
	if params.PlayerId != nil {
		args["player_id"] = *params.PlayerId
	}

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO benchmark (
			player_id, agent, width, height, mine_count, seed, games, wins,
			win_rate, avg_moves, avg_guesses, avg_guesses_won, duration_ms
		)
		VALUES (
			@player_id, @agent, @width, @height, @mine_count, @seed, @games,
			@wins, @win_rate, @avg_moves, @avg_guesses, @avg_guesses_won,
			@duration_ms
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Benchmark])
}

type BenchmarkFilter struct {
	Agent      *string
	GameParams *mines.GameParams
}

func (f BenchmarkFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Agent != nil {
		clauses = append(clauses, "agent = @agent")
		args["agent"] = *f.Agent
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mineCount",
		)
		args["width"] = f.GameParams.Width
		args["height"] = f.GameParams.Height
		args["mineCount"] = f.GameParams.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

// GetBenchmarks lists stored benchmark runs, best win rate first.
func (q Queries) GetBenchmarks(
	ctx context.Context, filter BenchmarkFilter,
) ([]Benchmark, error) {
	query := "SELECT * FROM benchmark"

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	query += " ORDER BY win_rate DESC, created_at DESC;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Benchmark])
}
