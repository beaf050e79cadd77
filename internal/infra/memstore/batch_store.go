package memstore

import (
	"context"
	"sync"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"
)

var _ repository.BatchStore = (*BatchStore)(nil)

type batchEntry struct {
	batch   *model.Batch
	expires time.Time
}

// BatchStore keeps one batch per session. Stored batches are deep copies.
// A batch expires ttl after it was saved; image commits keep the deadline.
// ttl <= 0 disables expiry.
type BatchStore struct {
	mu      sync.Mutex
	current map[string]batchEntry
	ttl     time.Duration
	now     func() time.Time
	sweep   sweeper
}

func NewBatchStore(ttl time.Duration) *BatchStore {
	return &BatchStore{current: make(map[string]batchEntry), ttl: ttl, now: time.Now}
}

func (s *BatchStore) SaveCurrent(_ context.Context, b *model.Batch) error {
	if b == nil || b.SessionID == "" {
		return domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.current[b.SessionID] = batchEntry{batch: b.Clone(), expires: now.Add(s.ttl)}
	return nil
}

func (s *BatchStore) Current(_ context.Context, sessionID string) (*model.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(sessionID, s.now())
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.batch.Clone(), nil
}

func (s *BatchStore) CommitIfCurrent(_ context.Context, b *model.Batch) (bool, error) {
	if b == nil {
		return false, domain.ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(b.SessionID, s.now())
	if !ok || e.batch.ID != b.ID {
		return false, nil
	}
	s.current[b.SessionID] = batchEntry{batch: b.Clone(), expires: e.expires}
	return true, nil
}

func (s *BatchStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.current, sessionID)
	return nil
}

// Len counts stored batches, expired ones included until they are swept.
func (s *BatchStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.current)
}

func (s *BatchStore) liveLocked(sessionID string, now time.Time) (batchEntry, bool) {
	e, ok := s.current[sessionID]
	if !ok {
		return batchEntry{}, false
	}
	if s.ttl > 0 && !now.Before(e.expires) {
		delete(s.current, sessionID)
		return batchEntry{}, false
	}
	return e, true
}

func (s *BatchStore) pruneLocked(now time.Time) {
	if s.ttl <= 0 || !s.sweep.due(now) {
		return
	}
	for id, e := range s.current {
		if !now.Before(e.expires) {
			delete(s.current, id)
		}
	}
}
