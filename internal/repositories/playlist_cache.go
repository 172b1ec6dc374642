package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/models"
)

// PlaylistCacheRepository caches playlist summaries and their ordered tracks.
//
// The backend remains authoritative; Put replaces the cached rows wholesale so
// a stale cache never survives a successful fetch.
type PlaylistCacheRepository struct {
	db *sql.DB
}

// NewPlaylistCacheRepository creates a new PlaylistCacheRepository with the given database connection
func NewPlaylistCacheRepository(db *sql.DB) *PlaylistCacheRepository {
	return &PlaylistCacheRepository{db: db}
}

// PutList replaces the cached playlist summaries with the given set.
func (r *PlaylistCacheRepository) PutList(playlists []models.Playlist) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_playlists"); err != nil {
		return fmt.Errorf("failed to clear playlist cache: %w", err)
	}

	stmt := `
		INSERT INTO cached_playlists (id, name, description, tags, track_count, synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	for _, p := range playlists {
		_, err := tx.Exec(stmt,
			p.ID,
			p.Name,
			nullableString(p.Description),
			nullableString(strings.Join(p.Tags, ",")),
			p.TrackCount,
			now,
			nullableString(p.CreatedAt),
			nullableString(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to cache playlist %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the cached playlist summaries in name order.
func (r *PlaylistCacheRepository) List() ([]models.Playlist, error) {
	query := `
		SELECT id, name, description, tags, track_count, created_at, updated_at
		FROM cached_playlists
		ORDER BY name COLLATE NOCASE
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist cache: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		var description, tags, createdAt, updatedAt sql.NullString

		err := rows.Scan(&p.ID, &p.Name, &description, &tags, &p.TrackCount, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached playlist: %w", err)
		}

		p.Description = description.String
		if tags.String != "" {
			p.Tags = strings.Split(tags.String, ",")
		}
		p.CreatedAt = createdAt.String
		p.UpdatedAt = updatedAt.String
		playlists = append(playlists, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate playlist cache: %w", err)
	}

	return playlists, nil
}

// PutTracks replaces the cached tracks for one playlist.
//
// The playlist summary must already be cached so the foreign key holds.
func (r *PlaylistCacheRepository) PutTracks(playlistID string, tracks []models.Track) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to clear track cache: %w", err)
	}

	stmt := `
		INSERT INTO cached_tracks (id, playlist_id, release_id, discogs_release_id, position, title, artist, duration, cover_image_url, track_order)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, t := range tracks {
		_, err := tx.Exec(stmt,
			t.ID,
			playlistID,
			nullableString(t.ReleaseID),
			t.DiscogsReleaseID,
			nullableString(t.Position),
			t.Title,
			nullableString(t.Artist),
			nullableString(t.Duration),
			nullableString(t.CoverImageURL),
			t.TrackOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to cache track %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// Tracks returns the cached tracks for a playlist in track order.
func (r *PlaylistCacheRepository) Tracks(playlistID string) ([]models.Track, error) {
	query := `
		SELECT id, release_id, discogs_release_id, position, title, artist, duration, cover_image_url, track_order
		FROM cached_tracks
		WHERE playlist_id = ?
		ORDER BY track_order
	`
	rows, err := r.db.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query track cache: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		var releaseID, position, artist, duration, coverImage sql.NullString

		err := rows.Scan(&t.ID, &releaseID, &t.DiscogsReleaseID, &position, &t.Title, &artist, &duration, &coverImage, &t.TrackOrder)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached track: %w", err)
		}

		t.PlaylistID = playlistID
		t.ReleaseID = releaseID.String
		t.Position = position.String
		t.Artist = artist.String
		t.Duration = duration.String
		t.CoverImageURL = coverImage.String
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate track cache: %w", err)
	}

	return tracks, nil
}

// Delete removes one playlist and its tracks from the cache.
func (r *PlaylistCacheRepository) Delete(playlistID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM cached_tracks WHERE playlist_id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete cached tracks: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM cached_playlists WHERE id = ?", playlistID); err != nil {
		return fmt.Errorf("failed to delete cached playlist: %w", err)
	}

	return tx.Commit()
}
