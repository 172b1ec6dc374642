package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(filepath.Join(stateDir(), "crate-tui.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	var history *repositories.HistoryRepository
	var cache *repositories.PlaylistCacheRepository
	if db, err := r.openDatabase(); err == nil {
		defer db.Close()
		history = repositories.NewHistoryRepository(db)
		cache = repositories.NewPlaylistCacheRepository(db)
	} else {
		fileLogger.Warnf("local cache unavailable: %v", err)
	}

	model := ui.NewModel(ctx, r.playlists, r.catalog, history, cache, fileLogger)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
