package repository

import (
	"context"

	"scenario-quiz/internal/domain/model"
)

// LedgerStore persists the whole token ledger as one document.
// Load on an empty store returns an empty slice and no error.
type LedgerStore interface {
	Load(ctx context.Context) ([]*model.Token, error)
	Save(ctx context.Context, tokens []*model.Token) error
}
