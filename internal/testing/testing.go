// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/session"
)

// StubProvider is a test double for [session.Provider] with call counting.
type StubProvider struct {
	Session      *session.Session
	Refreshed    *session.Session
	CurrentErr   error
	RefreshErr   error
	CurrentCalls int
	RefreshCalls int
}

func (p *StubProvider) Current(ctx context.Context) (*session.Session, error) {
	p.CurrentCalls++
	return p.Session, p.CurrentErr
}

func (p *StubProvider) Refresh(ctx context.Context) (*session.Session, error) {
	p.RefreshCalls++
	return p.Refreshed, p.RefreshErr
}

// MockCatalog is a test double for [services.CatalogService].
type MockCatalog struct {
	SearchFunc  func(ctx context.Context, query string, page, perPage int) (*models.SearchPage, error)
	ReleaseFunc func(ctx context.Context, discogsReleaseID int64) (*models.ReleaseDetail, error)
}

func (m *MockCatalog) SearchReleases(ctx context.Context, query string, page, perPage int) (*models.SearchPage, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, page, perPage)
	}
	return &models.SearchPage{}, nil
}

func (m *MockCatalog) Release(ctx context.Context, discogsReleaseID int64) (*models.ReleaseDetail, error) {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, discogsReleaseID)
	}
	return nil, nil
}

// MockPlaylists is a test double for [services.PlaylistService].
type MockPlaylists struct {
	ListFunc    func(ctx context.Context, page, pageSize int) (*models.Page[models.Playlist], error)
	GetFunc     func(ctx context.Context, playlistID string) (*models.PlaylistWithTracks, error)
	CreateFunc  func(ctx context.Context, data models.CreatePlaylist) (*models.Playlist, error)
	UpdateFunc  func(ctx context.Context, playlistID string, data models.UpdatePlaylist) (*models.Playlist, error)
	DeleteFunc  func(ctx context.Context, playlistID string) error
	AddFunc     func(ctx context.Context, playlistID string, data models.AddTrack) (*models.Track, error)
	RemoveFunc  func(ctx context.Context, playlistID, trackID string) error
	ReorderFunc func(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error)
}

func (m *MockPlaylists) ListPlaylists(ctx context.Context, page, pageSize int) (*models.Page[models.Playlist], error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, pageSize)
	}
	return &models.Page[models.Playlist]{}, nil
}

func (m *MockPlaylists) GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistWithTracks, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, playlistID)
	}
	return &models.PlaylistWithTracks{}, nil
}

func (m *MockPlaylists) CreatePlaylist(ctx context.Context, data models.CreatePlaylist) (*models.Playlist, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, data)
	}
	return &models.Playlist{}, nil
}

func (m *MockPlaylists) UpdatePlaylist(ctx context.Context, playlistID string, data models.UpdatePlaylist) (*models.Playlist, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, playlistID, data)
	}
	return &models.Playlist{}, nil
}

func (m *MockPlaylists) DeletePlaylist(ctx context.Context, playlistID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, playlistID)
	}
	return nil
}

func (m *MockPlaylists) AddTrack(ctx context.Context, playlistID string, data models.AddTrack) (*models.Track, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, playlistID, data)
	}
	return &models.Track{}, nil
}

func (m *MockPlaylists) RemoveTrack(ctx context.Context, playlistID, trackID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, playlistID, trackID)
	}
	return nil
}

func (m *MockPlaylists) ReorderTracks(ctx context.Context, playlistID string, trackIDs []string) ([]models.Track, error) {
	if m.ReorderFunc != nil {
		return m.ReorderFunc(ctx, playlistID, trackIDs)
	}
	return nil, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = &FCloser{}
