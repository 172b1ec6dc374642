package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/crate/internal/models"
)

// PlaylistAPI implements [PlaylistService] over the authenticated [Client].
type PlaylistAPI struct {
	client *Client
}

var _ PlaylistService = (*PlaylistAPI)(nil)

// NewPlaylistAPI creates a playlist service backed by the crate API.
func NewPlaylistAPI(client *Client) *PlaylistAPI {
	return &PlaylistAPI{client: client}
}

// ListPlaylists retrieves the user's playlists, newest first.
func (p *PlaylistAPI) ListPlaylists(ctx context.Context, page, pageSize int) (*models.Page[models.Playlist], error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}

	path := fmt.Sprintf("/playlists?page=%d&page_size=%d", page, pageSize)

	var result models.Page[models.Playlist]
	if err := p.client.Get(ctx, path, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPlaylist retrieves a playlist with its ordered tracks.
func (p *PlaylistAPI) GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistWithTracks, error) {
	var playlist models.PlaylistWithTracks
	path := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	if err := p.client.Get(ctx, path, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// CreatePlaylist creates a new, empty playlist.
func (p *PlaylistAPI) CreatePlaylist(ctx context.Context, data models.CreatePlaylist) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := p.client.Post(ctx, "/playlists", data, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// UpdatePlaylist updates playlist metadata.
func (p *PlaylistAPI) UpdatePlaylist(ctx context.Context, playlistID string, data models.UpdatePlaylist) (*models.Playlist, error) {
	var playlist models.Playlist
	path := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	if err := p.client.Patch(ctx, path, data, &playlist); err != nil {
		return nil, err
	}

	return &playlist, nil
}

// DeletePlaylist deletes a playlist and its tracks.
func (p *PlaylistAPI) DeletePlaylist(ctx context.Context, playlistID string) error {
	path := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))
	return p.client.Delete(ctx, path, nil)
}

// AddTrack appends a track to the end of a playlist.
func (p *PlaylistAPI) AddTrack(ctx context.Context, playlistID string, data models.AddTrack) (*models.Track, error) {
	var track models.Track
	path := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := p.client.Post(ctx, path, data, &track); err != nil {
		return nil, err
	}

	return &track, nil
}

// RemoveTrack removes a single track from a playlist.
func (p *PlaylistAPI) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	path := fmt.Sprintf("/playlists/%s/tracks/%s", url.PathEscape(playlistID), url.PathEscape(trackID))
	return p.client.Delete(ctx, path, nil)
}

// ReorderTracks persists a full ordering and returns the canonical track list.
func (p *PlaylistAPI) ReorderTracks(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error) {
	body := models.ReorderTracks{TrackIDs: trackIDs}

	var tracks []models.Track
	path := fmt.Sprintf("/playlists/%s/tracks/reorder", url.PathEscape(playlistID))
	if err := p.client.Patch(ctx, path, body, &tracks); err != nil {
		return nil, err
	}

	return tracks, nil
}
