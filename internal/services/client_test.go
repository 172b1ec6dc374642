package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
	"golang.org/x/oauth2"
)

func testSession(token string) *session.Session {
	return &session.Session{
		Token:  oauth2.Token{AccessToken: token},
		UserID: "user-1",
		Email:  "digger@example.com",
	}
}

func newTestClient(baseURL string, provider session.Provider, httpClient *http.Client) *Client {
	return NewClient(baseURL, provider, httpClient, shared.NewLogger(io.Discard))
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			c := newTestClient("", &tu.StubProvider{}, nil)
			if c.baseURL != "http://localhost:8000/api" {
				t.Errorf("expected default baseURL, got %s", c.baseURL)
			}
		})

		t.Run("With Nil HTTP Client", func(t *testing.T) {
			c := newTestClient("http://example.com", &tu.StubProvider{}, nil)
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("No Session", func(t *testing.T) {
		t.Run("Fails Without Network Call", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
			}))
			defer server.Close()

			provider := &tu.StubProvider{Session: nil}
			c := newTestClient(server.URL, provider, nil)

			err := c.Get(context.Background(), "/playlists", nil)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
			if hits.Load() != 0 {
				t.Errorf("expected no network call, saw %d", hits.Load())
			}
			if provider.RefreshCalls != 0 {
				t.Error("expected no refresh attempt")
			}
		})
	})

	t.Run("Success", func(t *testing.T) {
		t.Run("Attaches Bearer Token And Decodes", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
					t.Errorf("expected bearer token, got %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("expected JSON content type, got %q", got)
				}
				json.NewEncoder(w).Encode(map[string]string{"id": "pl-1"})
			}))
			defer server.Close()

			c := newTestClient(server.URL, &tu.StubProvider{Session: testSession("tok-1")}, nil)

			var result struct {
				ID string `json:"id"`
			}
			if err := c.Get(context.Background(), "/playlists/pl-1", &result); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.ID != "pl-1" {
				t.Errorf("expected decoded id 'pl-1', got %q", result.ID)
			}
		})

		t.Run("204 Is Success With No Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			c := newTestClient(server.URL, &tu.StubProvider{Session: testSession("tok-1")}, nil)

			var result map[string]any
			if err := c.Delete(context.Background(), "/playlists/pl-1", &result); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result != nil {
				t.Error("expected result untouched on 204")
			}
		})
	})

	t.Run("Unauthorized", func(t *testing.T) {
		t.Run("Refreshes Once And Retries Once", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				switch r.Header.Get("Authorization") {
				case "Bearer stale":
					w.WriteHeader(http.StatusUnauthorized)
				case "Bearer fresh":
					json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
				default:
					t.Errorf("unexpected token %q", r.Header.Get("Authorization"))
				}
			}))
			defer server.Close()

			provider := &tu.StubProvider{
				Session:   testSession("stale"),
				Refreshed: testSession("fresh"),
			}
			c := newTestClient(server.URL, provider, nil)

			var result map[string]string
			if err := c.Get(context.Background(), "/users/me", &result); err != nil {
				t.Fatalf("expected recovery, got %v", err)
			}
			if provider.RefreshCalls != 1 {
				t.Errorf("expected exactly one refresh, got %d", provider.RefreshCalls)
			}
			if hits.Load() != 2 {
				t.Errorf("expected original call plus one retry, got %d", hits.Load())
			}
		})

		t.Run("Refresh Yielding No Session Is SessionExpired", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			provider := &tu.StubProvider{Session: testSession("stale"), Refreshed: nil}
			c := newTestClient(server.URL, provider, nil)

			err := c.Get(context.Background(), "/users/me", nil)
			if !errors.Is(err, shared.ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}
			if hits.Load() != 1 {
				t.Errorf("expected no retry without a session, got %d calls", hits.Load())
			}
		})

		t.Run("Second 401 Is Terminal", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			provider := &tu.StubProvider{
				Session:   testSession("stale"),
				Refreshed: testSession("still-denied"),
			}
			c := newTestClient(server.URL, provider, nil)

			err := c.Get(context.Background(), "/users/me", nil)

			var statusErr *shared.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", statusErr.StatusCode)
			}
			if provider.RefreshCalls != 1 {
				t.Errorf("expected exactly one refresh, got %d", provider.RefreshCalls)
			}
			if hits.Load() != 2 {
				t.Errorf("expected exactly two calls, got %d", hits.Load())
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("Server Detail Message Passes Through", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"detail": "Playlist not found"})
			}))
			defer server.Close()

			c := newTestClient(server.URL, &tu.StubProvider{Session: testSession("tok")}, nil)

			err := c.Get(context.Background(), "/playlists/missing", nil)

			var statusErr *shared.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Message != "Playlist not found" {
				t.Errorf("expected server message, got %q", statusErr.Message)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected StatusError to wrap ErrAPIRequest")
			}
		})

		t.Run("Missing Detail Falls Back To Generic Message", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("<html>boom</html>"))
			}))
			defer server.Close()

			c := newTestClient(server.URL, &tu.StubProvider{Session: testSession("tok")}, nil)

			err := c.Get(context.Background(), "/playlists", nil)

			var statusErr *shared.StatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if statusErr.Message != "request failed" {
				t.Errorf("expected generic fallback, got %q", statusErr.Message)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			}
			c := newTestClient("http://example.com", &tu.StubProvider{Session: testSession("tok")}, client)

			err := c.Get(context.Background(), "/playlists", nil)
			if !errors.Is(err, shared.ErrRequestFailed) {
				t.Errorf("expected ErrRequestFailed, got %v", err)
			}
		})
	})
}
