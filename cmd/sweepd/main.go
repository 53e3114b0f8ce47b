package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-agent/internal/app"
	"github.com/vancomm/minesweeper-agent/internal/config"
)

var log = logrus.New()

func setupLogging() {
	logLevel := logrus.InfoLevel
	if config.Development() {
		logLevel = logrus.DebugLevel
	}
	log.SetLevel(logLevel)
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	if logPath, ok := os.LookupEnv("APP_LOG_FILE"); ok {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   logPath,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      logLevel,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			log.WithError(err).Fatal("unable to create log file hook")
		}
		log.AddHook(hook)
	}
}

func main() {
	mainCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	setupLogging()

	log.Info("starting up, development = ", config.Development())

	if err := app.New(log).Start(mainCtx); err != nil {
		log.Fatal("exit reason: ", err)
	}
}
