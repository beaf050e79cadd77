package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the active token marker per browser session.
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) key(sessionID string) string {
	return fmt.Sprintf("active_token:%s", sessionID)
}

func (s *SessionStore) GetActiveToken(ctx context.Context, sessionID string) (string, error) {
	id, err := s.client.Get(ctx, s.key(sessionID))
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	return id, err
}

func (s *SessionStore) SetActiveToken(ctx context.Context, sessionID, tokenID string) error {
	return s.client.Set(ctx, s.key(sessionID), tokenID, s.ttl)
}

func (s *SessionStore) ClearActiveToken(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID))
}
