package handlers

import (
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/repository"
	"github.com/vancomm/minesweeper-agent/internal/sim"
)

// maxBenchmarkGames bounds a single synchronous benchmark request.
const maxBenchmarkGames = 10000

type Benchmark struct {
	log  *logrus.Logger
	repo *repository.Queries
}

func NewBenchmark(log *logrus.Logger, db *pgxpool.Pool) *Benchmark {
	return &Benchmark{
		log:  log,
		repo: repository.New(db),
	}
}

type RunBenchmarkDTO struct {
	Width     int    `schema:"width,required"`
	Height    int    `schema:"height,required"`
	MineCount int    `schema:"mine_count,required"`
	Games     int    `schema:"games,required"`
	Agent     string `schema:"agent,required"`
	Method    string `schema:"method"`
	Seed      uint64 `schema:"seed"`
	Workers   int    `schema:"workers"`
}

// Run plays a batch of games synchronously, stores the aggregate outcome
// and returns the stored row.
func (b Benchmark) Run(w http.ResponseWriter, r *http.Request) {
	var dto RunBenchmarkDTO
	if err := dec.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(err))
		return
	}

	if dto.Games <= 0 || dto.Games > maxBenchmarkGames {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(fmt.Errorf(
			"games must be between 1 and %d", maxBenchmarkGames,
		)))
		return
	}

	method, err := parseGuessMethod(dto.Method)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(err))
		return
	}
	factory, err := agent.ForName(dto.Agent, method)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(err))
		return
	}

	params := mines.GameParams{
		Width:     dto.Width,
		Height:    dto.Height,
		MineCount: dto.MineCount,
	}
	runner := &sim.Runner{
		Params:  params,
		Factory: factory,
		Games:   dto.Games,
		Workers: dto.Workers,
		Seed:    dto.Seed,
		Log:     b.log,
	}

	stats, err := runner.Run(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(err))
		return
	}

	createParams := repository.CreateBenchmarkParams{
		Agent:  factory(params, nil).Name(),
		Params: params,
		Seed:   dto.Seed,
	}
	if claims, ok := r.Context().Value(middleware.CtxPlayerClaims).(*config.PlayerClaims); ok {
		createParams.PlayerId = &claims.PlayerId
	}

	row, err := b.repo.CreateBenchmark(r.Context(), createParams, stats)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		b.log.WithError(err).Error("unable to store benchmark")
		return
	}

	sendJSONOrLog(w, b.log, row)
}

type ListBenchmarksDTO struct {
	Agent     *string `schema:"agent"`
	Width     *int    `schema:"width"`
	Height    *int    `schema:"height"`
	MineCount *int    `schema:"mine_count"`
}

func (b Benchmark) List(w http.ResponseWriter, r *http.Request) {
	var dto ListBenchmarksDTO
	if err := dec.Decode(&dto, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		sendJSONOrLog(w, b.log, wrapError(err))
		return
	}

	filter := repository.BenchmarkFilter{Agent: dto.Agent}
	if dto.Width != nil && dto.Height != nil && dto.MineCount != nil {
		filter.GameParams = &mines.GameParams{
			Width:     *dto.Width,
			Height:    *dto.Height,
			MineCount: *dto.MineCount,
		}
	}

	rows, err := b.repo.GetBenchmarks(r.Context(), filter)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		b.log.WithError(err).Error("unable to list benchmarks")
		return
	}

	sendJSONOrLog(w, b.log, rows)
}
