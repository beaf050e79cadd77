package redis

import (
	"context"
	"errors"
	"fmt"

	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.LedgerStore = (*LedgerStore)(nil)

// DefaultLedgerKey holds the whole ledger document.
const DefaultLedgerKey = "scenario:tokens"

// LedgerStore keeps the ledger as a single JSON value without expiry.
type LedgerStore struct {
	client *Client
	key    string
}

func NewLedgerStore(client *Client, key string) *LedgerStore {
	if key == "" {
		key = DefaultLedgerKey
	}
	return &LedgerStore{client: client, key: key}
}

func (s *LedgerStore) Load(ctx context.Context) ([]*model.Token, error) {
	data, err := s.client.Get(ctx, s.key)
	if errors.Is(err, redis.Nil) {
		return []*model.Token{}, nil
	}
	if err != nil {
		return nil, err
	}
	tokens, err := model.DecodeLedger([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode ledger %q: %w", s.key, err)
	}
	return tokens, nil
}

func (s *LedgerStore) Save(ctx context.Context, tokens []*model.Token) error {
	data, err := model.EncodeLedger(tokens)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0)
}
