package repository

import (
	"context"
)

// SessionStore holds the active token id per browser session.
type SessionStore interface {
	// GetActiveToken returns domain.ErrNotFound when the session has no marker.
	GetActiveToken(ctx context.Context, sessionID string) (string, error)
	SetActiveToken(ctx context.Context, sessionID, tokenID string) error
	ClearActiveToken(ctx context.Context, sessionID string) error
}
