// Package main starts the arena daemon process lifecycle.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	arenacmd "github.com/louisbranch/ffa-arena/internal/cmd/arena"
	"github.com/louisbranch/ffa-arena/internal/platform/logging"
)

func main() {
	logger := logging.New(os.Stderr, os.Getenv("ARENA_LOG_LEVEL"))
	cfg, err := arenacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("parse flags")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenacmd.Run(ctx, cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to serve")
	}
}
