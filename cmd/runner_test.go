package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			playlists := &tu.MockPlaylists{}
			catalog := &tu.MockCatalog{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Playlists:  playlists,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.playlists != playlists {
				t.Error("expected playlists to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("pretty output", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"name": "crate"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "\"name\": \"crate\"") {
				t.Errorf("expected indented JSON, got %q", output.String())
			}
		})

		t.Run("write failure surfaces", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlain("hello %s\n", "crate")

		if output.String() != "hello crate\n" {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "crate",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"crate"}, args...))
}

func TestPlaylistCommands(t *testing.T) {
	t.Run("Reorder", func(t *testing.T) {
		t.Run("Parses And Persists Order", func(t *testing.T) {
			var gotPlaylist string
			var gotIDs []string
			playlists := &tu.MockPlaylists{
				ReorderFunc: func(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error) {
					gotPlaylist = playlistID
					gotIDs = trackIDs
					return []models.Track{
						{ID: "t-2", Title: "Tha", Artist: "Aphex Twin", TrackOrder: 1},
						{ID: "t-1", Title: "Xtal", Artist: "Aphex Twin", TrackOrder: 2},
					}, nil
				},
			}

			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Playlists: playlists, Output: output})

			err := runCommand(t, runner, "playlist", "reorder", "pl-1", "t-2, t-1")
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}

			if gotPlaylist != "pl-1" {
				t.Errorf("unexpected playlist %q", gotPlaylist)
			}
			if len(gotIDs) != 2 || gotIDs[0] != "t-2" || gotIDs[1] != "t-1" {
				t.Errorf("unexpected track ids %v", gotIDs)
			}
			if !strings.Contains(output.String(), "1. Aphex Twin - Tha") {
				t.Errorf("expected canonical order in output, got %q", output.String())
			}
		})

		t.Run("Rejects Empty Order", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Playlists: &tu.MockPlaylists{}, Output: &bytes.Buffer{}})

			err := runCommand(t, runner, "playlist", "reorder", "pl-1", " , ,")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Propagates Service Failure", func(t *testing.T) {
			playlists := &tu.MockPlaylists{
				ReorderFunc: func(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error) {
					return nil, shared.ErrPlaylistNotFound
				},
			}
			runner := NewRunner(RunnerOpts{Playlists: playlists, Output: &bytes.Buffer{}})

			err := runCommand(t, runner, "playlist", "reorder", "missing", "t-1")
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})

	t.Run("Show", func(t *testing.T) {
		playlists := &tu.MockPlaylists{
			GetFunc: func(ctx context.Context, playlistID string) (*models.PlaylistWithTracks, error) {
				return &models.PlaylistWithTracks{
					Playlist: models.Playlist{ID: playlistID, Name: "Crate Digging"},
					Tracks: []models.Track{
						{ID: "t-1", Title: "Xtal", Artist: "Aphex Twin", TrackOrder: 1, Duration: "4:51"},
					},
					TotalDuration: "4:51",
				}, nil
			},
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Playlists: playlists, Output: output})

		if err := runCommand(t, runner, "playlist", "show", "pl-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if !strings.Contains(output.String(), "Crate Digging") {
			t.Errorf("expected playlist name in output")
		}
		if !strings.Contains(output.String(), "Aphex Twin - Xtal [4:51]") {
			t.Errorf("expected track line in output, got %q", output.String())
		}
	})

	t.Run("Show Requires ID", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Playlists: &tu.MockPlaylists{}, Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "playlist", "show")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("Prints Results", func(t *testing.T) {
		catalog := &tu.MockCatalog{
			SearchFunc: func(ctx context.Context, query string, page, perPage int) (*models.SearchPage, error) {
				if query != "aphex" {
					t.Errorf("unexpected query %q", query)
				}
				return &models.SearchPage{
					Results: []models.SearchResult{
						{ID: 1001, Title: "Selected Ambient Works 85-92", Year: 1992, Format: "Vinyl"},
					},
					Pagination: models.Pagination{Page: 1, Pages: 1, Items: 1},
				}, nil
			},
		}

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Catalog: catalog, Output: output})

		if err := runCommand(t, runner, "search", "aphex"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if !strings.Contains(output.String(), "Selected Ambient Works 85-92 (1992) [Vinyl]") {
			t.Errorf("expected result line, got %q", output.String())
		}
	})

	t.Run("Release Rejects Non Numeric ID", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Catalog: &tu.MockCatalog{}, Output: &bytes.Buffer{}})

		err := runCommand(t, runner, "search", "release", "abc")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
