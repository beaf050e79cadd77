package repository

import (
	"context"

	"scenario-quiz/internal/domain/model"
)

// BatchStore keeps the current generation batch of each session.
type BatchStore interface {
	// SaveCurrent replaces the session's current batch.
	SaveCurrent(ctx context.Context, batch *model.Batch) error
	// Current returns domain.ErrNotFound when the session has no batch.
	Current(ctx context.Context, sessionID string) (*model.Batch, error)
	// CommitIfCurrent stores batch only if batch.ID is still the session's
	// current id. It reports whether the write happened.
	CommitIfCurrent(ctx context.Context, batch *model.Batch) (bool, error)
	Clear(ctx context.Context, sessionID string) error
}
