package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	sessions := session.NewManager(
		config.Auth.URL,
		config.Auth.AnonKey,
		session.NewStore(stateDir()),
		nil,
		logger,
	)

	client := services.NewClient(config.API.BaseURL, sessions, nil, logger)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Sessions:   sessions,
		Client:     client,
		Playlists:  services.NewPlaylistAPI(client),
		Catalog:    services.NewCatalogAPI(client, config.Catalog.RequestsPerMinute),
		Collection: services.NewCollectionAPI(client),
		Users:      services.NewUserAPI(client),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "crate",
		Usage:    "Browse and manage your record collection & playlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// stateDir is where the session fallback file and TUI logs live.
func stateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crate"
	}
	return filepath.Join(home, ".crate")
}
