package session

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("CRATE_NO_KEYRING", "1")
	return NewStore(t.TempDir())
}

func grantResponse(access, refresh string) map[string]any {
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"expires_in":    3600,
		"token_type":    "bearer",
		"user":          map[string]string{"id": "user-1", "email": "digger@example.com"},
	}
}

func TestManager(t *testing.T) {
	logger := shared.NewLogger(io.Discard)

	t.Run("Current", func(t *testing.T) {
		t.Run("Returns Nil When Logged Out", func(t *testing.T) {
			m := NewManager("http://auth", "anon", newTestStore(t), nil, logger)

			sess, err := m.Current(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess != nil {
				t.Error("expected nil session when logged out")
			}
		})

		t.Run("Loads Persisted Session", func(t *testing.T) {
			store := newTestStore(t)
			saved := &Session{
				Token:  oauth2.Token{AccessToken: "tok", RefreshToken: "ref"},
				UserID: "user-1",
				Email:  "digger@example.com",
			}
			if err := store.Save(saved); err != nil {
				t.Fatalf("failed to seed store: %v", err)
			}

			m := NewManager("http://auth", "anon", store, nil, logger)

			sess, err := m.Current(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess == nil || sess.AccessToken() != "tok" {
				t.Errorf("expected persisted session, got %+v", sess)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Password Grant Persists Session", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("grant_type") != "password" {
					t.Errorf("expected password grant, got %q", r.URL.Query().Get("grant_type"))
				}
				if r.Header.Get("apikey") != "anon" {
					t.Errorf("expected apikey header, got %q", r.Header.Get("apikey"))
				}
				json.NewEncoder(w).Encode(grantResponse("tok-1", "ref-1"))
			}))
			defer server.Close()

			store := newTestStore(t)
			m := NewManager(server.URL, "anon", store, nil, logger)

			sess, err := m.Login(context.Background(), "digger@example.com", "hunter2")
			if err != nil {
				t.Fatalf("expected login success, got %v", err)
			}
			if sess.AccessToken() != "tok-1" || sess.Email != "digger@example.com" {
				t.Errorf("unexpected session %+v", sess)
			}

			persisted, err := store.Load()
			if err != nil || persisted == nil || persisted.Token.RefreshToken != "ref-1" {
				t.Errorf("expected persisted session, got %+v err %v", persisted, err)
			}
		})

		t.Run("Rejected Credentials", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error_description": "Invalid login credentials"})
			}))
			defer server.Close()

			m := NewManager(server.URL, "anon", newTestStore(t), nil, logger)

			if _, err := m.Login(context.Background(), "digger@example.com", "wrong"); err == nil {
				t.Error("expected login failure")
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("Rotates Token", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["refresh_token"] != "ref-1" {
					t.Errorf("expected refresh token ref-1, got %q", body["refresh_token"])
				}
				json.NewEncoder(w).Encode(grantResponse("tok-2", "ref-2"))
			}))
			defer server.Close()

			store := newTestStore(t)
			store.Save(&Session{Token: oauth2.Token{AccessToken: "tok-1", RefreshToken: "ref-1"}})

			m := NewManager(server.URL, "anon", store, nil, logger)

			sess, err := m.Refresh(context.Background())
			if err != nil {
				t.Fatalf("expected refresh success, got %v", err)
			}
			if sess == nil || sess.AccessToken() != "tok-2" {
				t.Errorf("expected rotated session, got %+v", sess)
			}
		})

		t.Run("Without Refresh Token Yields Nil", func(t *testing.T) {
			store := newTestStore(t)
			store.Save(&Session{Token: oauth2.Token{AccessToken: "tok-1"}})

			m := NewManager("http://auth.invalid", "anon", store, nil, logger)

			sess, err := m.Refresh(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess != nil {
				t.Error("expected nil session without a refresh token")
			}
		})

		t.Run("Rejected Refresh Yields Nil And Drops Persisted Session", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"msg": "Invalid Refresh Token"})
			}))
			defer server.Close()

			store := newTestStore(t)
			store.Save(&Session{Token: oauth2.Token{AccessToken: "tok-1", RefreshToken: "revoked"}})

			m := NewManager(server.URL, "anon", store, nil, logger)

			sess, err := m.Refresh(context.Background())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if sess != nil {
				t.Error("expected nil session for rejected refresh")
			}

			persisted, err := store.Load()
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if persisted != nil {
				t.Error("rejected session must not survive in the store")
			}

			// With the dead session gone, the next refresh finds nothing to
			// exchange instead of replaying the rejected token.
			if sess, err := m.Refresh(context.Background()); err != nil || sess != nil {
				t.Errorf("expected (nil, nil) after rejection, got %+v err %v", sess, err)
			}
			if hits.Load() != 1 {
				t.Errorf("expected no second exchange with the rejected token, got %d", hits.Load())
			}
		})

		t.Run("Concurrent Callers Share One Exchange", func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				time.Sleep(50 * time.Millisecond)
				json.NewEncoder(w).Encode(grantResponse("tok-2", "ref-2"))
			}))
			defer server.Close()

			store := newTestStore(t)
			store.Save(&Session{Token: oauth2.Token{AccessToken: "tok-1", RefreshToken: "ref-1"}})

			m := NewManager(server.URL, "anon", store, nil, logger)

			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					sess, err := m.Refresh(context.Background())
					if err != nil || sess == nil || sess.AccessToken() != "tok-2" {
						t.Errorf("expected shared refreshed session, got %+v err %v", sess, err)
					}
				}()
			}
			wg.Wait()

			if hits.Load() != 1 {
				t.Errorf("expected one refresh exchange for all callers, got %d", hits.Load())
			}
		})
	})

	t.Run("Logout", func(t *testing.T) {
		store := newTestStore(t)
		store.Save(&Session{Token: oauth2.Token{AccessToken: "tok-1"}})

		m := NewManager("http://auth", "anon", store, nil, logger)
		if err := m.Logout(); err != nil {
			t.Fatalf("expected logout success, got %v", err)
		}

		sess, _ := m.Current(context.Background())
		if sess != nil {
			t.Error("expected no session after logout")
		}
	})
}

func TestStore(t *testing.T) {
	t.Run("File Fallback Roundtrip", func(t *testing.T) {
		store := newTestStore(t)

		sess := &Session{
			Token:  oauth2.Token{AccessToken: "tok", RefreshToken: "ref", Expiry: time.Now().Add(time.Hour)},
			UserID: "user-1",
			Email:  "digger@example.com",
		}
		if err := store.Save(sess); err != nil {
			t.Fatalf("save failed: %v", err)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if loaded.AccessToken() != "tok" || loaded.Token.RefreshToken != "ref" || loaded.Email != "digger@example.com" {
			t.Errorf("roundtrip mismatch: %+v", loaded)
		}
	})

	t.Run("Load Without Session", func(t *testing.T) {
		store := newTestStore(t)

		sess, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sess != nil {
			t.Error("expected nil session from empty store")
		}
	})

	t.Run("Delete Is Idempotent", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.Delete(); err != nil {
			t.Errorf("expected idempotent delete, got %v", err)
		}
	})
}

func TestSessionExpired(t *testing.T) {
	t.Run("Past Expiry", func(t *testing.T) {
		sess := &Session{Token: oauth2.Token{AccessToken: "tok", Expiry: time.Now().Add(-time.Minute)}}
		if !sess.Expired() {
			t.Error("expected expired")
		}
	})

	t.Run("Zero Expiry Assumed Live", func(t *testing.T) {
		sess := &Session{Token: oauth2.Token{AccessToken: "tok"}}
		if sess.Expired() {
			t.Error("expected live session")
		}
	})
}
