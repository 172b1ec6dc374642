package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search performs a one-shot catalog search and prints the result page.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query required", shared.ErrMissingArgument)
	}

	page, err := r.catalog.SearchReleases(ctx, query, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("Results for %q (%d total)", query, page.Pagination.Items))
	for _, result := range page.Results {
		line := fmt.Sprintf("%d  %s", result.ID, result.Title)
		if result.Year > 0 {
			line += fmt.Sprintf(" (%d)", result.Year)
		}
		if result.Format != "" {
			line += fmt.Sprintf(" [%s]", result.Format)
		}
		r.writePlain("%s\n", line)
	}
	if page.Pagination.Pages > page.Pagination.Page {
		r.writePlain("\nPage %d of %d, use --page\n", page.Pagination.Page, page.Pagination.Pages)
	}
	return nil
}

// SearchRelease shows full release details by Discogs release ID.
func (r *Runner) SearchRelease(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: release id must be numeric, got %q", shared.ErrInvalidInput, raw)
	}

	detail, err := r.catalog.Release(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s - %s", detail.ArtistName, detail.Title))
	if detail.Year > 0 {
		r.writePlain("Year: %d\n", detail.Year)
	}
	if detail.Country != "" {
		r.writePlain("Country: %s\n", detail.Country)
	}
	if detail.FormatString != "" {
		r.writePlain("Format: %s\n", detail.FormatString)
	}
	for _, label := range detail.Labels {
		r.writePlain("Label: %s %s\n", label.Name, label.CatNo)
	}

	r.writePlainln("Tracklist:")
	for _, track := range detail.Tracks {
		line := fmt.Sprintf("  %-4s %s", track.Position, track.Title)
		if track.Duration != "" {
			line += fmt.Sprintf(" [%s]", track.Duration)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

// SearchHistory lists or clears the locally recorded search history.
func (r *Runner) SearchHistory(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewHistoryRepository(db)

	if cmd.Bool("clear") {
		deleted, err := repo.Clear()
		if err != nil {
			return err
		}
		return r.writePlain("✓ Cleared %d history entries\n", deleted)
	}

	entries, err := repo.Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return r.writePlain("No search history yet\n")
	}

	r.writePlainHeader("Search history")
	for _, entry := range entries {
		r.writePlain("%s  %q → %s (release %d)\n",
			entry.SearchedAt.Format("2006-01-02 15:04"), entry.Query, entry.Title, entry.DiscogsReleaseID)
	}
	return nil
}
