// package services defines interfaces for the crate API surface
//
// Playlists, catalog search, collection, users
package services

import (
	"context"

	"github.com/desertthunder/crate/internal/models"
)

// PlaylistService defines playlist CRUD and track operations.
type PlaylistService interface {
	// ListPlaylists retrieves the user's playlists, newest first.
	ListPlaylists(ctx context.Context, page, pageSize int) (*models.Page[models.Playlist], error)

	// GetPlaylist retrieves a playlist with its ordered tracks.
	GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistWithTracks, error)

	// CreatePlaylist creates a new, empty playlist.
	CreatePlaylist(ctx context.Context, data models.CreatePlaylist) (*models.Playlist, error)

	// UpdatePlaylist updates playlist metadata. Nil fields are left unchanged.
	UpdatePlaylist(ctx context.Context, playlistID string, data models.UpdatePlaylist) (*models.Playlist, error)

	// DeletePlaylist deletes a playlist and its tracks.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// AddTrack appends a track to the end of a playlist.
	AddTrack(ctx context.Context, playlistID string, data models.AddTrack) (*models.Track, error)

	// RemoveTrack removes a single track from a playlist.
	RemoveTrack(ctx context.Context, playlistID, trackID string) error

	// ReorderTracks persists a full ordering of track IDs and returns the
	// server's canonical ordered track list. The server assigns order keys
	// and is the tie-breaker against concurrent edits.
	ReorderTracks(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error)
}

// CatalogService defines catalog search and release lookup.
//
// The catalog offers no ordering guarantee on response latency relative to
// request issue order; callers guard against stale responses themselves.
type CatalogService interface {
	// SearchReleases performs a free-text release search.
	SearchReleases(ctx context.Context, query string, page, perPage int) (*models.SearchPage, error)

	// Release fetches full release details by Discogs release ID.
	Release(ctx context.Context, discogsReleaseID int64) (*models.ReleaseDetail, error)
}

// CollectionService defines operations over the user's synced collection.
type CollectionService interface {
	// ListReleases lists collection releases with pagination, sorting, and
	// optional free-text filtering on title/artist.
	ListReleases(ctx context.Context, opts ReleaseListOptions) (*models.Page[models.Release], error)

	// GetRelease retrieves a single collection release.
	GetRelease(ctx context.Context, releaseID string) (*models.Release, error)

	// ReleaseTracks retrieves the tracklist for a collection release.
	ReleaseTracks(ctx context.Context, releaseID string) (*models.ReleaseDetail, error)

	// SyncCollection reconciles the local collection with Discogs.
	SyncCollection(ctx context.Context) (*models.SyncSummary, error)
}

// UserService defines profile and Discogs account linking operations.
type UserService interface {
	// Me retrieves the authenticated user's profile.
	Me(ctx context.Context) (*models.User, error)

	// UpdateProfile updates the user's display name.
	UpdateProfile(ctx context.Context, displayName string) (*models.User, error)

	// DiscogsAuthorize starts the Discogs account link flow. The user must
	// visit the returned URL; Discogs then redirects to callbackURL.
	DiscogsAuthorize(ctx context.Context, callbackURL string) (*DiscogsAuthorization, error)

	// DiscogsCallback completes the link flow with the verifier Discogs
	// delivered to the callback URL.
	DiscogsCallback(ctx context.Context, verifier, state string) (*models.User, error)

	// DiscogsDisconnect unlinks the Discogs account.
	DiscogsDisconnect(ctx context.Context) (*models.User, error)
}

// ReleaseListOptions are the query parameters for CollectionService.ListReleases.
type ReleaseListOptions struct {
	Page      int
	PageSize  int
	SortBy    string // artist_name, title, year, added_to_discogs_at
	SortOrder string // asc or desc
	Search    string // free text over title and artist
}

// DiscogsAuthorization is the start of a Discogs link flow.
type DiscogsAuthorization struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}
