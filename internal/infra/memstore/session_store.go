package memstore

import (
	"context"
	"sync"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type sessionEntry struct {
	tokenID string
	expires time.Time
}

// SessionStore maps a browser session to its active token id. Entries
// expire ttl after they were set; ttl <= 0 disables expiry.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	ttl     time.Duration
	now     func() time.Time
	sweep   sweeper
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{entries: make(map[string]sessionEntry), ttl: ttl, now: time.Now}
}

func (s *SessionStore) GetActiveToken(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sessionID]
	if !ok {
		return "", domain.ErrNotFound
	}
	if s.ttl > 0 && !s.now().Before(e.expires) {
		delete(s.entries, sessionID)
		return "", domain.ErrNotFound
	}
	return e.tokenID, nil
}

func (s *SessionStore) SetActiveToken(_ context.Context, sessionID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.ttl > 0 && s.sweep.due(now) {
		for id, e := range s.entries {
			if !now.Before(e.expires) {
				delete(s.entries, id)
			}
		}
	}
	s.entries[sessionID] = sessionEntry{tokenID: tokenID, expires: now.Add(s.ttl)}
	return nil
}

func (s *SessionStore) ClearActiveToken(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Len counts stored sessions, expired ones included until they are swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
