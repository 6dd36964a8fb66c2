// Package session keeps per-session credential configuration in memory.
// Nothing here is ever written to durable storage.
package session

import (
	"strings"
	"sync"

	"github.com/joseph-ayodele/cardscan/constants"
)

// DefaultID names the implicit session of single-user surfaces such as the CLI.
const DefaultID = "default"

// Credential is the provider selector and secret for one session.
type Credential struct {
	Provider constants.Provider
	Key      string
}

// HasKey reports whether a non-empty secret is configured.
func (c Credential) HasKey() bool { return strings.TrimSpace(c.Key) != "" }

type Store struct {
	sessions map[string]map[string]string
	mu       sync.RWMutex
}

func New() *Store {
	return &Store{
		sessions: make(map[string]map[string]string),
	}
}

func (s *Store) set(sessionID, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vals, ok := s.sessions[sessionID]
	if !ok {
		vals = make(map[string]string, 2)
		s.sessions[sessionID] = vals
	}
	if value == "" {
		delete(vals, key)
		return
	}
	vals[key] = value
}

// SetProvider selects the provider for sessionID.
func (s *Store) SetProvider(sessionID string, p constants.Provider) {
	s.set(sessionID, constants.SessionKeyProvider, string(p))
}

// SetKey stores the secret for sessionID. An empty key removes it.
func (s *Store) SetKey(sessionID, key string) {
	s.set(sessionID, constants.SessionKeyAPIKey, strings.TrimSpace(key))
}

// Get returns the credential for sessionID; the provider defaults to openai.
func (s *Store) Get(sessionID string) Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Credential{Provider: constants.DefaultProvider}
	vals, ok := s.sessions[sessionID]
	if !ok {
		return c
	}
	if p := vals[constants.SessionKeyProvider]; p != "" {
		c.Provider = constants.Provider(p)
	}
	c.Key = vals[constants.SessionKeyAPIKey]
	return c
}

// ClearKey drops the secret but keeps the provider selection.
func (s *Store) ClearKey(sessionID string) {
	s.set(sessionID, constants.SessionKeyAPIKey, "")
}

// End forgets everything held for sessionID.
func (s *Store) End(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len is the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
