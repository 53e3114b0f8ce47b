// Command sweepsim plays batches of games from the command line and prints
// aggregate statistics for the chosen strategy.
package main

import (
	"context"
	"fmt"
	"hash/maphash"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vancomm/minesweeper-agent/internal/agent"
	"github.com/vancomm/minesweeper-agent/internal/mines"
	"github.com/vancomm/minesweeper-agent/internal/sim"
)

var log = logrus.New()

var (
	flagWidth     int
	flagHeight    int
	flagMineCount int
	flagGames     int
	flagWorkers   int
	flagSeed      uint64
	flagAgent     string
	flagMethod    string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:     "sweepsim",
	Short:   "Benchmark minesweeper agents over batches of random boards",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.SetLevel(logrus.WarnLevel)
		if flagVerbose {
			log.SetLevel(logrus.DebugLevel)
		}

		method, err := parseGuessMethod(flagMethod)
		if err != nil {
			return err
		}
		factory, err := agent.ForName(flagAgent, method)
		if err != nil {
			return err
		}

		seed := flagSeed
		if !cmd.Flags().Changed("seed") {
			seed = new(maphash.Hash).Sum64()
		}

		params := mines.GameParams{
			Width:     flagWidth,
			Height:    flagHeight,
			MineCount: flagMineCount,
		}
		runner := &sim.Runner{
			Params:  params,
			Factory: factory,
			Games:   flagGames,
			Workers: flagWorkers,
			Seed:    seed,
			Log:     log,
		}

		stats, err := runner.Run(cmd.Context())
		if err != nil {
			return err
		}

		name := factory(params, nil).Name()
		fmt.Printf("agent %s on %s, seed %d\n", name, params.Seed(), seed)
		fmt.Println(stats)
		return nil
	},
}

func parseGuessMethod(s string) (agent.GuessMethod, error) {
	switch s {
	case "probability":
		return agent.GuessProbability, nil
	case "corner-edge":
		return agent.GuessCornerEdge, nil
	default:
		return 0, fmt.Errorf("unknown guess method %q", s)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVarP(&flagWidth, "width", "W", 9, "board width")
	flags.IntVarP(&flagHeight, "height", "H", 9, "board height")
	flags.IntVarP(&flagMineCount, "mines", "M", 10, "mine count")
	flags.IntVarP(&flagGames, "games", "n", 1000, "number of games to play")
	flags.IntVarP(&flagWorkers, "workers", "j", runtime.GOMAXPROCS(0), "concurrent games")
	flags.Uint64Var(&flagSeed, "seed", 0, "batch seed (random when omitted)")
	flags.StringVarP(&flagAgent, "agent", "a", "prob",
		"strategy: random, basic, full or prob")
	flags.StringVarP(&flagMethod, "method", "m", "probability",
		"guess method for the full agent: probability or corner-edge")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log every game")
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
