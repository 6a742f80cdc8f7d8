package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/services"
	"github.com/dhmun/mediapack/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var music services.MusicService
	if config.Credentials.Music.ClientID != "" && config.Credentials.Music.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Music); err == nil {
			music = svc
		} else {
			logger.Warn("music provider unavailable", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Music:  music,
		Logger: logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "mediapack",
		Usage:    "Browse the media catalog and share gift packs",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(errors.Unwrap(err), shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
