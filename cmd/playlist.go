package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistList lists the user's playlists, from the API or the local cache.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("cached") {
		return r.playlistListCached(cmd.Bool("json"))
	}

	page, err := r.playlists.ListPlaylists(ctx, int(cmd.Int("page")), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if db, err := r.openDatabase(); err == nil {
		defer db.Close()
		if err := repositories.NewPlaylistCacheRepository(db).PutList(page.Items); err != nil {
			r.logger.Debug("playlist cache write failed", "err", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, true)
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d total)", page.Total))
	for _, pl := range page.Items {
		r.writePlain("%s  %s (%d tracks)\n", pl.ID, pl.Name, pl.TrackCount)
	}
	if page.HasMore {
		r.writePlain("\nMore pages available, use --page\n")
	}
	return nil
}

func (r *Runner) playlistListCached(asJSON bool) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := repositories.NewPlaylistCacheRepository(db).List()
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(playlists, true)
	}

	r.writePlainHeader(fmt.Sprintf("Cached playlists (%d)", len(playlists)))
	for _, pl := range playlists {
		r.writePlain("%s  %s (%d tracks)\n", pl.ID, pl.Name, pl.TrackCount)
	}
	return nil
}

// PlaylistShow shows a playlist with its ordered tracks.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id required", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, true)
	}

	r.writePlainHeader(playlist.Name)
	if playlist.Description != "" {
		r.writePlain("%s\n\n", playlist.Description)
	}
	for _, track := range playlist.Tracks {
		line := fmt.Sprintf("%2d. %s - %s", track.TrackOrder, track.Artist, track.Title)
		if track.Duration != "" {
			line += fmt.Sprintf(" [%s]", track.Duration)
		}
		r.writePlain("%s\n", line)
	}
	if playlist.TotalDuration != "" {
		r.writePlain("\nTotal: %s\n", playlist.TotalDuration)
	}
	return nil
}

// PlaylistCreate creates a new, empty playlist.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name required", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.CreatePlaylist(ctx, models.CreatePlaylist{
		Name:        name,
		Description: cmd.String("description"),
		Tags:        cmd.StringSlice("tag"),
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistUpdate changes a playlist's name, description, or tags. Only the
// flags that were provided are sent, so unset fields keep their values.
func (r *Runner) PlaylistUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id required", shared.ErrMissingArgument)
	}

	var data models.UpdatePlaylist
	if cmd.IsSet("name") {
		name := cmd.String("name")
		data.Name = &name
	}
	if cmd.IsSet("description") {
		description := cmd.String("description")
		data.Description = &description
	}
	if cmd.IsSet("tag") {
		tags := cmd.StringSlice("tag")
		data.Tags = &tags
	}
	if data.Name == nil && data.Description == nil && data.Tags == nil {
		return fmt.Errorf("%w: nothing to update", shared.ErrInvalidInput)
	}

	playlist, err := r.playlists.UpdatePlaylist(ctx, id, data)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Updated playlist %s (%s)\n", playlist.Name, playlist.ID)
}

// PlaylistDelete deletes a playlist and drops it from the local cache.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id required", shared.ErrMissingArgument)
	}

	if err := r.playlists.DeletePlaylist(ctx, id); err != nil {
		return err
	}

	if db, err := r.openDatabase(); err == nil {
		defer db.Close()
		if err := repositories.NewPlaylistCacheRepository(db).Delete(id); err != nil {
			r.logger.Debug("playlist cache delete failed", "err", err)
		}
	}

	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistAdd appends a collection release to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	releaseID := cmd.String("release-id")

	release, err := r.collection.GetRelease(ctx, releaseID)
	if err != nil {
		return err
	}

	track, err := r.playlists.AddTrack(ctx, cmd.String("playlist-id"), models.AddTrack{
		ReleaseID:        release.ID,
		DiscogsReleaseID: release.DiscogsReleaseID,
		Position:         cmd.String("position"),
		Title:            release.Title,
		Artist:           release.ArtistName,
		CoverImageURL:    release.CoverImageURL,
	})
	if err != nil {
		return err
	}

	return r.writePlain("✓ Added %s - %s at position %d\n", track.Artist, track.Title, track.TrackOrder)
}

// PlaylistRemove removes a track from a playlist.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.playlists.RemoveTrack(ctx, cmd.String("playlist-id"), cmd.String("track-id")); err != nil {
		return err
	}
	return r.writePlain("✓ Removed track\n")
}

// PlaylistReorder persists a full track ordering given as comma-separated IDs.
//
// The server reorders atomically and returns the canonical order, which is
// printed so the caller sees exactly what was persisted.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	order := cmd.StringArg("order")
	if id == "" || order == "" {
		return fmt.Errorf("%w: playlist id and track order required", shared.ErrMissingArgument)
	}

	var trackIDs []string
	for _, part := range strings.Split(order, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			trackIDs = append(trackIDs, trimmed)
		}
	}
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track ids in order", shared.ErrInvalidInput)
	}

	tracks, err := r.playlists.ReorderTracks(ctx, id, trackIDs)
	if err != nil {
		return err
	}

	r.writePlain("✓ Order saved\n")
	for _, track := range tracks {
		r.writePlain("%2d. %s - %s\n", track.TrackOrder, track.Artist, track.Title)
	}
	return nil
}

// PlaylistExport exports a playlist to CSV, Markdown, or plain text.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id required", shared.ErrMissingArgument)
	}

	playlist, err := r.playlists.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	output := cmd.String("output")

	switch cmd.String("format") {
	case "csv":
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s and %s\n", result.TracksFile, result.MetadataFile)
	case "markdown", "md":
		coverURL := ""
		if len(playlist.Tracks) > 0 {
			coverURL = playlist.Tracks[0].CoverImageURL
		}
		result, err := formatter.WriteMarkdownExport(playlist, output, coverURL)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, cmd.String("format"))
	}

	return nil
}
