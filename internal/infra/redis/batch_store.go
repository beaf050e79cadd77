package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.BatchStore = (*BatchStore)(nil)

// BatchStore keeps the current batch id and body of each session in two
// keys. Image commits go through a compare-and-set script on the id key.
type BatchStore struct {
	client *Client
	ttl    time.Duration
}

func NewBatchStore(client *Client, ttl time.Duration) *BatchStore {
	return &BatchStore{client: client, ttl: ttl}
}

func (s *BatchStore) idKey(sessionID string) string   { return fmt.Sprintf("batch_current:%s", sessionID) }
func (s *BatchStore) bodyKey(sessionID string) string { return fmt.Sprintf("batch:%s", sessionID) }

// storedBatch carries the session id, which model.Batch hides from JSON.
type storedBatch struct {
	SessionID string `json:"session_id"`
	*model.Batch
}

func (s *BatchStore) encode(b *model.Batch) ([]byte, error) {
	return json.Marshal(storedBatch{SessionID: b.SessionID, Batch: b})
}

func (s *BatchStore) SaveCurrent(ctx context.Context, b *model.Batch) error {
	if b == nil || b.SessionID == "" {
		return domain.ErrInvalidArgument
	}
	data, err := s.encode(b)
	if err != nil {
		return err
	}
	_, err = s.client.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.idKey(b.SessionID), b.ID, s.ttl)
		p.Set(ctx, s.bodyKey(b.SessionID), data, s.ttl)
		return nil
	})
	return err
}

func (s *BatchStore) Current(ctx context.Context, sessionID string) (*model.Batch, error) {
	data, err := s.client.Get(ctx, s.bodyKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sb := storedBatch{Batch: &model.Batch{}}
	if err := json.Unmarshal([]byte(data), &sb); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	sb.Batch.SessionID = sb.SessionID
	return sb.Batch, nil
}

var luaCommitIfCurrent = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("SET", KEYS[2], ARGV[2], "KEEPTTL")
	return 1
else
	return 0
end`)

func (s *BatchStore) CommitIfCurrent(ctx context.Context, b *model.Batch) (bool, error) {
	if b == nil || b.SessionID == "" {
		return false, domain.ErrInvalidArgument
	}
	data, err := s.encode(b)
	if err != nil {
		return false, err
	}
	n, err := luaCommitIfCurrent.Run(ctx, s.client.cli,
		[]string{s.idKey(b.SessionID), s.bodyKey(b.SessionID)}, b.ID, data).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *BatchStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.idKey(sessionID), s.bodyKey(sessionID))
}
