// package models defines the data model for the crate client
package models

import "time"

// User represents a profile on the crate service.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name,omitempty"`
	AvatarURL          string     `json:"avatar_url,omitempty"`
	DiscogsUsername    string     `json:"discogs_username,omitempty"`
	DiscogsConnectedAt string     `json:"discogs_connected_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// Playlist represents a playlist summary. Track order lives on the individual
// tracks and is server-authoritative once persisted.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	TrackCount  int      `json:"track_count"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// Track represents a playlist entry backed by a collection release.
//
// TrackOrder is the 1-based order key within the playlist. The server assigns
// a gapless 1..n sequence on every successful reorder.
type Track struct {
	ID               string `json:"id"`
	PlaylistID       string `json:"playlist_id,omitempty"`
	ReleaseID        string `json:"release_id,omitempty"`
	DiscogsReleaseID int64  `json:"discogs_release_id,omitempty"`
	Position         string `json:"position,omitempty"`
	Title            string `json:"title"`
	Artist           string `json:"artist,omitempty"`
	Duration         string `json:"duration,omitempty"`
	CoverImageURL    string `json:"cover_image_url,omitempty"`
	TrackOrder       int    `json:"track_order"`
}

// PlaylistWithTracks is a playlist detail response with its ordered tracks.
type PlaylistWithTracks struct {
	Playlist
	Tracks        []Track `json:"tracks"`
	TotalDuration string  `json:"total_duration,omitempty"`
}

// SearchResult represents a single catalog search hit.
type SearchResult struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"`
	CoverImage string `json:"cover_image,omitempty"`
	Format     string `json:"format,omitempty"`
	Label      string `json:"label,omitempty"`
	Country    string `json:"country,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Pagination describes the catalog's page window.
type Pagination struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Items   int `json:"items"`
}

// SearchPage is one page of catalog search results.
type SearchPage struct {
	Results    []SearchResult `json:"results"`
	Pagination Pagination     `json:"pagination"`
}

// ReleaseTrack is one tracklist entry of a catalog release.
type ReleaseTrack struct {
	Position string   `json:"position"`
	Title    string   `json:"title"`
	Duration string   `json:"duration,omitempty"`
	Artists  []string `json:"artists,omitempty"`
}

// ReleaseLabel is a label credit on a release.
type ReleaseLabel struct {
	Name           string `json:"name"`
	CatNo          string `json:"catno,omitempty"`
	EntityTypeName string `json:"entity_type_name,omitempty"`
}

// ReleaseFormat is a physical format entry on a release.
type ReleaseFormat struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty,omitempty"`
	Descriptions []string `json:"descriptions,omitempty"`
}

// ReleaseDetail is the full catalog record for a release.
type ReleaseDetail struct {
	DiscogsReleaseID int64           `json:"discogs_release_id"`
	Title            string          `json:"title"`
	ArtistName       string          `json:"artist_name"`
	Year             int             `json:"year,omitempty"`
	CoverImageURL    string          `json:"cover_image_url,omitempty"`
	Country          string          `json:"country,omitempty"`
	Genres           []string        `json:"genres,omitempty"`
	Styles           []string        `json:"styles,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Tracks           []ReleaseTrack  `json:"tracks"`
	Labels           []ReleaseLabel  `json:"labels,omitempty"`
	Formats          []ReleaseFormat `json:"formats,omitempty"`
	FormatString     string          `json:"format_string,omitempty"`
}

// Release represents a synced collection entry.
type Release struct {
	ID                string   `json:"id"`
	DiscogsReleaseID  int64    `json:"discogs_release_id"`
	DiscogsInstanceID int64    `json:"discogs_instance_id,omitempty"`
	Title             string   `json:"title"`
	ArtistName        string   `json:"artist_name"`
	Year              int      `json:"year,omitempty"`
	CoverImageURL     string   `json:"cover_image_url,omitempty"`
	Format            string   `json:"format,omitempty"`
	Genres            []string `json:"genres,omitempty"`
	Styles            []string `json:"styles,omitempty"`
	Labels            []string `json:"labels,omitempty"`
	CatalogNumber     string   `json:"catalog_number,omitempty"`
	Country           string   `json:"country,omitempty"`
	AddedToDiscogsAt  string   `json:"added_to_discogs_at,omitempty"`
	SyncedAt          string   `json:"synced_at,omitempty"`
}

// SyncSummary reports the outcome of a collection sync.
type SyncSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

// Page is a paginated API response.
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// CreatePlaylist is the request body for playlist creation.
type CreatePlaylist struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdatePlaylist is the request body for playlist updates. Nil fields are left unchanged.
type UpdatePlaylist struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// AddTrack is the request body for appending a track to a playlist.
type AddTrack struct {
	ReleaseID        string `json:"release_id"`
	DiscogsReleaseID int64  `json:"discogs_release_id"`
	Position         string `json:"position"`
	Title            string `json:"title"`
	Artist           string `json:"artist"`
	Duration         string `json:"duration,omitempty"`
	CoverImageURL    string `json:"cover_image_url,omitempty"`
}

// ReorderTracks is the request body for the reorder endpoint: the full ordered
// list of track identities.
type ReorderTracks struct {
	TrackIDs []string `json:"track_ids"`
}

// UpdateProfile is the request body for profile updates.
type UpdateProfile struct {
	DisplayName string `json:"display_name"`
}

// HistoryEntry is a committed search selection recorded locally.
type HistoryEntry struct {
	ID               string    `json:"id"`
	Query            string    `json:"query"`
	DiscogsReleaseID int64     `json:"discogs_release_id"`
	Title            string    `json:"title"`
	Year             int       `json:"year,omitempty"`
	Format           string    `json:"format,omitempty"`
	Label            string    `json:"label,omitempty"`
	SearchedAt       time.Time `json:"searched_at"`
}
