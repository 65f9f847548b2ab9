package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tetress/agent"
	"github.com/domino14/tetress/automatic"
	"github.com/domino14/tetress/config"
)

// autoplay plays engine vs engine games without the interactive shell.
// Both sides use the configured engine; they differ only in name.
func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zerolog.SetGlobalLevel(cfg.LogLevel())

	opts, err := agent.OptionsFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bad-options")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logfile := cfg.GetString(config.ConfigAutoplayLogfile)
	f, err := os.Create(logfile)
	if err != nil {
		log.Fatal().Err(err).Msg("creating-logfile")
	}
	defer f.Close()

	players := [2]automatic.Player{
		{Name: "engine-1", Options: opts},
		{Name: "engine-2", Options: opts},
	}
	summary, err := automatic.StartCompVComp(ctx, players,
		cfg.GetDuration(config.ConfigTimeLimit),
		cfg.GetInt(config.ConfigAutoplayGames),
		cfg.GetInt(config.ConfigAutoplayThreads), f)
	if err != nil {
		log.Fatal().Err(err).Msg("autoplay-failed")
	}
	fmt.Print(summary.String())
	if err := summary.Histogram(os.Stdout); err != nil {
		log.Error().Err(err).Msg("histogram")
	}
	log.Info().Str("logfile", logfile).Msg("autoplay-done")
}
