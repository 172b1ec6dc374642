package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "crate"
	storeKey    = "crate::session"
)

// Store handles session persistence, preferring the system keychain.
type Store struct {
	useKeyring  bool
	fallbackDir string
}

// NewStore creates a session store rooted at fallbackDir.
//
// Set CRATE_NO_KEYRING to force the file fallback (tests, headless hosts).
func NewStore(fallbackDir string) *Store {
	if os.Getenv("CRATE_NO_KEYRING") != "" {
		return &Store{useKeyring: false, fallbackDir: fallbackDir}
	}

	// Probe keyring availability before committing to it
	testKey := "crate::probe"
	if err := keyring.Set(serviceName, testKey, "ok"); err == nil {
		_ = keyring.Delete(serviceName, testKey)
		return &Store{useKeyring: true, fallbackDir: fallbackDir}
	}

	fmt.Fprintf(os.Stderr, "warning: system keyring unavailable, session stored in plaintext at %s\n",
		filepath.Join(fallbackDir, "session.json"))
	return &Store{useKeyring: false, fallbackDir: fallbackDir}
}

// Load retrieves the persisted session. Returns (nil, nil) when none is stored.
func (s *Store) Load() (*Session, error) {
	if s.useKeyring {
		data, err := keyring.Get(serviceName, storeKey)
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read keyring: %w", err)
		}
		return decodeSession([]byte(data))
	}

	data, err := os.ReadFile(s.filePath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	return decodeSession(data)
}

// Save persists the session.
func (s *Store) Save(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if s.useKeyring {
		if err := keyring.Set(serviceName, storeKey, string(data)); err != nil {
			return fmt.Errorf("failed to write keyring: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(s.fallbackDir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.filePath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Delete removes the persisted session. Missing sessions are not an error.
func (s *Store) Delete() error {
	if s.useKeyring {
		err := keyring.Delete(serviceName, storeKey)
		if err != nil && err != keyring.ErrNotFound {
			return fmt.Errorf("failed to delete keyring entry: %w", err)
		}
		return nil
	}

	err := os.Remove(s.filePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

func (s *Store) filePath() string {
	return filepath.Join(s.fallbackDir, "session.json")
}

func decodeSession(data []byte) (*Session, error) {
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}
