package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// CollectionList lists releases in the synced collection.
func (r *Runner) CollectionList(ctx context.Context, cmd *cli.Command) error {
	page, err := r.collection.ListReleases(ctx, services.ReleaseListOptions{
		Page:      int(cmd.Int("page")),
		PageSize:  int(cmd.Int("limit")),
		SortBy:    cmd.String("sort"),
		SortOrder: cmd.String("order"),
		Search:    cmd.String("filter"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("Collection (%d releases)", page.Total))
	for _, release := range page.Items {
		line := fmt.Sprintf("%s  %s - %s", release.ID, release.ArtistName, release.Title)
		if release.Year > 0 {
			line += fmt.Sprintf(" (%d)", release.Year)
		}
		if release.Format != "" {
			line += fmt.Sprintf(" [%s]", release.Format)
		}
		r.writePlain("%s\n", line)
	}
	if page.HasMore {
		r.writePlain("\nMore pages available, use --page\n")
	}
	return nil
}

// CollectionShow shows one collection release with its tracklist.
func (r *Runner) CollectionShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: release id required", shared.ErrMissingArgument)
	}

	release, err := r.collection.GetRelease(ctx, id)
	if err != nil {
		return err
	}

	detail, err := r.collection.ReleaseTracks(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"release": release, "detail": detail}, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s - %s", release.ArtistName, release.Title))
	if release.Year > 0 {
		r.writePlain("Year: %d\n", release.Year)
	}
	if release.CatalogNumber != "" {
		r.writePlain("Catalog: %s\n", release.CatalogNumber)
	}
	for _, genre := range release.Genres {
		r.writePlain("Genre: %s\n", genre)
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

// CollectionSync reconciles the local collection with Discogs.
func (r *Runner) CollectionSync(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("syncing collection from Discogs")

	summary, err := r.collection.SyncCollection(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Collection synced\n")
	r.writePlain("Added: %d  Updated: %d  Removed: %d  Total: %d\n",
		summary.Added, summary.Updated, summary.Removed, summary.Total)
	return nil
}
