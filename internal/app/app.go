// Package app wires configuration, storage and handlers into a runnable
// HTTP server.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
)

type App struct {
	log     *logrus.Logger
	router  *http.ServeMux
	db      *pgxpool.Pool
	cookies *config.Cookies
	ws      *config.WebSocket
}

func New(log *logrus.Logger) *App {
	return &App{
		log:    log,
		router: http.NewServeMux(),
	}
}

// Start brings up every dependency, serves until ctx is canceled and shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	db, err := database.ConnectAndEnsureSchema(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	a.db = db

	jwt, err := config.NewJWT()
	if err != nil {
		return err
	}

	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return err
	}
	a.cookies = cookies

	ws, err := config.NewWebSocket()
	if err != nil {
		return err
	}
	a.ws = ws

	a.loadRoutes()

	server := &http.Server{
		Addr: config.Addr(),
		Handler: middleware.Wrap(
			a.router,
			middleware.Auth(cookies),
			middleware.Cors(),
			middleware.Logging(a.log),
		),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", server.Addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe()
	})
	g.Go(func() error {
		<-gCtx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
