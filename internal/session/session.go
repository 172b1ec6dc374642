package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Session is the token-bearing login state. Read-only outside this package
// except for triggering refresh through a [Provider].
type Session struct {
	Token  oauth2.Token `json:"token"`
	UserID string       `json:"user_id"`
	Email  string       `json:"email"`
}

// AccessToken returns the bearer token string.
func (s *Session) AccessToken() string {
	return s.Token.AccessToken
}

// Expired reports whether the access token's expiry has passed.
// Sessions without a recorded expiry are assumed live.
func (s *Session) Expired() bool {
	if s.Token.Expiry.IsZero() {
		return false
	}
	return time.Now().After(s.Token.Expiry)
}

// Provider exposes the current session and a forced refresh to the request
// pipeline. Both return a nil session without error when no one is logged in
// or the session cannot be recovered.
type Provider interface {
	Current(ctx context.Context) (*Session, error)
	Refresh(ctx context.Context) (*Session, error)
}

// Manager implements [Provider] against a GoTrue-compatible auth server,
// persisting sessions through a [Store].
type Manager struct {
	authURL    string
	anonKey    string
	store      *Store
	httpClient *http.Client
	logger     *log.Logger

	mu      sync.Mutex
	current *Session

	// refreshes coalesces concurrent Refresh callers onto one network call
	refreshes singleflight.Group
}

// NewManager creates a session manager for the given auth server.
func NewManager(authURL, anonKey string, store *Store, client *http.Client, logger *log.Logger) *Manager {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Manager{
		authURL:    authURL,
		anonKey:    anonKey,
		store:      store,
		httpClient: client,
		logger:     logger,
	}
}

// tokenResponse is the auth server's grant response shape.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// Current returns the session on hand, loading it from the store on first use.
// Returns (nil, nil) when logged out.
func (m *Manager) Current(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return m.current, nil
	}

	sess, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	m.current = sess
	return sess, nil
}

// Refresh exchanges the stored refresh token for a new session. Concurrent
// callers share a single in-flight exchange, so simultaneous 401s from
// independent API calls rotate the refresh token once.
//
// Returns (nil, nil) when there is nothing to refresh or the auth server
// rejects the refresh token; the caller decides how fatal that is.
func (m *Manager) Refresh(ctx context.Context) (*Session, error) {
	v, err, _ := m.refreshes.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*Session), nil
}

func (m *Manager) refresh(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()

	if current == nil {
		loaded, err := m.store.Load()
		if err != nil || loaded == nil {
			return nil, err
		}
		current = loaded
	}

	if current.Token.RefreshToken == "" {
		m.logger.Debug("refresh requested without refresh token")
		return nil, nil
	}

	resp, err := m.grant(ctx, "refresh_token", map[string]string{
		"refresh_token": current.Token.RefreshToken,
	})
	if err != nil {
		m.logger.Warnf("token refresh rejected: %v", err)
		m.clear()
		// The refresh token is dead; a persisted copy would only be
		// reloaded and rejected again on the next call.
		if err := m.store.Delete(); err != nil {
			m.logger.Debug("failed to delete rejected session", "err", err)
		}
		return nil, nil
	}

	sess := sessionFromToken(resp)
	if err := m.adopt(sess); err != nil {
		return nil, err
	}

	m.logger.Debug("session refreshed", "user", sess.Email)
	return sess, nil
}

// Login performs a password grant and persists the resulting session.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := m.grant(ctx, "password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	sess := sessionFromToken(resp)
	if err := m.adopt(sess); err != nil {
		return nil, err
	}

	return sess, nil
}

// Logout drops the in-memory session and deletes the persisted one.
func (m *Manager) Logout() error {
	m.clear()
	return m.store.Delete()
}

// grant posts to the auth server's token endpoint with the given grant type.
func (m *Manager) grant(ctx context.Context, grantType string, body map[string]string) (*tokenResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode grant request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/token?grant_type=%s", m.authURL, grantType)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create grant request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if m.anonKey != "" {
		req.Header.Set("apikey", m.anonKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Message     string `json:"msg"`
			Description string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		msg := errBody.Message
		if msg == "" {
			msg = errBody.Description
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("auth server: %s", msg)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode grant response: %w", err)
	}

	return &token, nil
}

// adopt installs and persists a fresh session.
func (m *Manager) adopt(sess *Session) error {
	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()

	if err := m.store.Save(sess); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

func sessionFromToken(t *tokenResponse) *Session {
	var expiry time.Time
	if t.ExpiresIn > 0 {
		expiry = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	return &Session{
		Token: oauth2.Token{
			AccessToken:  t.AccessToken,
			RefreshToken: t.RefreshToken,
			TokenType:    t.TokenType,
			Expiry:       expiry,
		},
		UserID: t.User.ID,
		Email:  t.User.Email,
	}
}
