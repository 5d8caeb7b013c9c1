// internal/session/session.go
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// State is the authentication state machine:
// Unauthenticated -> Authenticating -> Authenticated, and back to
// Unauthenticated on logout.
type State string

const (
	Unauthenticated State = "unauthenticated"
	Authenticating  State = "authenticating"
	Authenticated   State = "authenticated"
)

type persisted struct {
	Token       string          `json:"token"`
	UserDetails json.RawMessage `json:"user_details,omitempty"`
}

// Store holds the auth token and cached user profile, backed by a JSON file.
// It never talks to the server itself: the UI layer performs the login call
// and records the result here. A token found on disk at startup is trusted
// without re-validation.
type Store struct {
	mu    sync.RWMutex
	path  string
	state State
	data  persisted
}

// NewStore loads any persisted session from path. A present token means the
// store starts Authenticated.
func NewStore(path string) *Store {
	s := &Store{path: path, state: Unauthenticated}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("could not read session file")
		}
		return s
	}

	var data persisted
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("corrupt session file, starting unauthenticated")
		return s
	}

	if data.Token != "" {
		s.data = data
		s.state = Authenticated
	}
	return s
}

// State returns the current auth state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	return s.State() == Authenticated
}

// Token returns the stored token, or "" when unauthenticated. This satisfies
// the API client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Token
}

// UserDetails returns the cached profile as raw JSON, nil when absent.
func (s *Store) UserDetails() json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.UserDetails
}

// BeginLogin marks the store Authenticating while the login call is in flight.
func (s *Store) BeginLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Authenticating
}

// Login records a successful authentication and persists it.
func (s *Store) Login(token string, userDetails json.RawMessage) error {
	if token == "" {
		return fmt.Errorf("login requires a token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = persisted{Token: token, UserDetails: userDetails}
	s.state = Authenticated
	return s.persist()
}

// Logout clears the in-memory and persisted session. It is synchronous and
// has no failure mode: a file that cannot be removed is logged and the
// in-memory state still resets.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = persisted{}
	s.state = Unauthenticated
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", s.path).Msg("could not remove session file")
	}
}

func (s *Store) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
