package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// SessionUseCase manages the active token of a browser session. The marker
// is set only by a successful redeem and cleared only by Exit.
type SessionUseCase interface {
	Redeem(ctx context.Context, sessionID, rawTokenID string) (*model.Token, error)
	Active(ctx context.Context, sessionID string) (*model.Token, error)
	Exit(ctx context.Context, sessionID string) error
}

// RedeemPolicy limits redeem attempts per session. Limit 0 disables it.
type RedeemPolicy struct {
	Limit  int
	Window time.Duration
}

type sessionUC struct {
	ledger   LedgerUseCase
	sessions repository.SessionStore
	batches  repository.BatchStore
	limiter  repository.RateLimiter
	policy   RedeemPolicy
	dev      bool
	log      *zerolog.Logger
}

func NewSessionUseCase(
	ledger LedgerUseCase,
	sessions repository.SessionStore,
	batches repository.BatchStore,
	limiter repository.RateLimiter,
	policy RedeemPolicy,
	dev bool,
	logger *zerolog.Logger,
) *sessionUC {
	return &sessionUC{
		ledger:   ledger,
		sessions: sessions,
		batches:  batches,
		limiter:  limiter,
		policy:   policy,
		dev:      dev,
		log:      logger,
	}
}

// Redeem validates a token id and, when valid, makes it the session's
// active token. Redeeming never consumes a use.
func (s *sessionUC) Redeem(ctx context.Context, sessionID, rawTokenID string) (*model.Token, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Redeem")()

	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session", domain.ErrInvalidArgument)
	}
	if s.limiter != nil && s.policy.Limit > 0 {
		ok, err := s.limiter.Allow(ctx, redeemKey(sessionID), s.policy.Limit, s.policy.Window)
		if err != nil {
			// fail open
			s.log.Warn().Err(err).Msg("redeem rate limiter unavailable")
		} else if !ok {
			metrics.IncRedeem("limited")
			return nil, domain.ErrRateLimited
		}
	}

	id := model.NormalizeTokenID(rawTokenID)
	status := s.ledger.Validate(ctx, id)
	metrics.IncRedeem(string(status))

	log := logging.With(ctx, s.log)
	switch status {
	case model.TokenStatusInvalid:
		log.Info().Str("token_id", logging.Redact(id, s.dev)).Msg("redeem rejected: unknown token")
		return nil, domain.ErrInvalidToken
	case model.TokenStatusExpired:
		log.Info().Str("token_id", logging.Redact(id, s.dev)).Msg("redeem rejected: token used up")
		return nil, domain.ErrExpiredToken
	}

	if err := s.sessions.SetActiveToken(ctx, sessionID, id); err != nil {
		return nil, fmt.Errorf("store active token: %w", err)
	}
	return s.ledger.Get(ctx, id)
}

// Active returns a fresh copy of the session's token, including expired
// ones so callers can show zero remaining uses.
func (s *sessionUC) Active(ctx context.Context, sessionID string) (*model.Token, error) {
	if sessionID == "" {
		return nil, domain.ErrNoActiveSession
	}
	id, err := s.sessions.GetActiveToken(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	tok, err := s.ledger.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		// ledger storage was lost; the marker points nowhere
		_ = s.sessions.ClearActiveToken(ctx, sessionID)
		return nil, domain.ErrNoActiveSession
	}
	return tok, err
}

func (s *sessionUC) Exit(ctx context.Context, sessionID string) error {
	defer logging.TraceDuration(s.log, "SessionUC.Exit")()

	if sessionID == "" {
		return nil
	}
	if err := s.sessions.ClearActiveToken(ctx, sessionID); err != nil {
		return err
	}
	return s.batches.Clear(ctx, sessionID)
}

func redeemKey(sessionID string) string {
	return "rate_limit:redeem:" + sessionID
}
