package app

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/vancomm/minesweeper-agent/internal/handlers"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func (a *App) loadRoutes() {
	auth := handlers.NewAuth(a.log, a.db, a.cookies)
	game := handlers.NewGame(a.log, a.db, a.cookies, a.ws, createRand())
	benchmark := handlers.NewBenchmark(a.log, a.db)

	a.router.HandleFunc("GET /auth/status", auth.Status)
	a.router.HandleFunc("POST /auth/register", auth.Register)
	a.router.HandleFunc("POST /auth/login", auth.Login)
	a.router.HandleFunc("POST /auth/logout", auth.Logout)

	a.router.HandleFunc("POST /game", game.Create)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.MakeAMove)
	a.router.HandleFunc("POST /game/{id}/forfeit", game.Forfeit)
	a.router.HandleFunc("GET /game/{id}/hint", game.Hint)
	a.router.HandleFunc("/game/{id}/watch", game.Watch)

	a.router.HandleFunc("POST /benchmark", benchmark.Run)
	a.router.HandleFunc("GET /benchmark", benchmark.List)
}
