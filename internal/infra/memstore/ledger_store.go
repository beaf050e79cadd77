// Package memstore holds in-process implementations of the repository
// ports. State is lost on restart.
package memstore

import (
	"context"
	"sync"

	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"
)

var _ repository.LedgerStore = (*LedgerStore)(nil)

// LedgerStore keeps the encoded ledger document in memory, so it goes
// through the same codec as the redis store.
type LedgerStore struct {
	mu  sync.RWMutex
	doc []byte
}

func NewLedgerStore() *LedgerStore { return &LedgerStore{} }

func (s *LedgerStore) Load(_ context.Context) ([]*model.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.DecodeLedger(s.doc)
}

func (s *LedgerStore) Save(_ context.Context, tokens []*model.Token) error {
	b, err := model.EncodeLedger(tokens)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.doc = b
	s.mu.Unlock()
	return nil
}
