package usecase

import (
	"context"
	"fmt"
	"sync"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/repository"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ LedgerUseCase = (*ledgerUC)(nil)

// LedgerUseCase owns the token ledger. Every mutation persists the whole
// ledger through the injected store.
type LedgerUseCase interface {
	Issue(ctx context.Context, limit int) (*model.Token, error)
	Validate(ctx context.Context, id string) model.TokenStatus
	RecordConsumption(ctx context.Context, id string) error
	List(ctx context.Context) []model.Token
	Get(ctx context.Context, id string) (*model.Token, error)
	Counts(ctx context.Context) (valid, expired int)
}

// maxIDAttempts bounds id regeneration on collision.
const maxIDAttempts = 8

type LedgerOption func(*ledgerUC)

// WithTokenIDGenerator replaces the random id source.
func WithTokenIDGenerator(gen func() (string, error)) LedgerOption {
	return func(l *ledgerUC) { l.newID = gen }
}

type ledgerUC struct {
	mu     sync.Mutex
	tokens []*model.Token
	byID   map[string]*model.Token

	store repository.LedgerStore
	newID func() (string, error)
	log   *zerolog.Logger
}

// NewLedgerUseCase loads the ledger from store once.
func NewLedgerUseCase(ctx context.Context, store repository.LedgerStore, logger *zerolog.Logger, opts ...LedgerOption) (*ledgerUC, error) {
	l := &ledgerUC{
		store: store,
		newID: generateTokenID,
		log:   logger,
		byID:  make(map[string]*model.Token),
	}
	for _, opt := range opts {
		opt(l)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	for _, t := range loaded {
		if t == nil {
			continue
		}
		if _, dup := l.byID[t.ID]; dup {
			logger.Warn().Str("token_id", logging.Redact(t.ID, false)).Msg("duplicate token id in stored ledger, keeping first")
			continue
		}
		cp := *t
		l.tokens = append(l.tokens, &cp)
		l.byID[cp.ID] = &cp
	}
	logger.Info().Int("tokens", len(l.tokens)).Msg("ledger loaded")
	return l, nil
}

func (l *ledgerUC) Issue(ctx context.Context, limit int) (*model.Token, error) {
	defer logging.TraceDuration(l.log, "LedgerUC.Issue")()

	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var id string
	for attempt := 0; ; attempt++ {
		if attempt == maxIDAttempts {
			return nil, domain.ErrTokenIDExhausted
		}
		candidate, err := l.newID()
		if err != nil {
			return nil, fmt.Errorf("generate token id: %w", err)
		}
		if _, taken := l.byID[candidate]; !taken {
			id = candidate
			break
		}
	}

	tok, err := model.NewToken(id, limit)
	if err != nil {
		return nil, err
	}

	l.tokens = append(l.tokens, tok)
	l.byID[id] = tok
	if err := l.persistLocked(ctx); err != nil {
		l.tokens = l.tokens[:len(l.tokens)-1]
		delete(l.byID, id)
		return nil, err
	}

	metrics.IncTokenIssued()
	l.log.Info().Str("token_id", logging.Redact(id, false)).Int("limit", limit).Msg("token issued")
	cp := *tok
	return &cp, nil
}

// Validate is a pure lookup; it never changes the ledger.
func (l *ledgerUC) Validate(_ context.Context, id string) model.TokenStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byID[id].Status()
}

// RecordConsumption charges one use. Each call is a real consumption, so it
// must only follow a successful generation.
func (l *ledgerUC) RecordConsumption(ctx context.Context, id string) error {
	defer logging.TraceDuration(l.log, "LedgerUC.RecordConsumption")()

	l.mu.Lock()
	defer l.mu.Unlock()

	tok, ok := l.byID[id]
	if !ok {
		return domain.ErrInvalidToken
	}
	tok.Used++
	if err := l.persistLocked(ctx); err != nil {
		tok.Used--
		return err
	}
	metrics.IncTokenConsumed()
	return nil
}

// List returns copies, most recently issued first.
func (l *ledgerUC) List(_ context.Context) []model.Token {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]model.Token, 0, len(l.tokens))
	for i := len(l.tokens) - 1; i >= 0; i-- {
		out = append(out, *l.tokens[i])
	}
	return out
}

func (l *ledgerUC) Get(_ context.Context, id string) (*model.Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tok, ok := l.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *tok
	return &cp, nil
}

func (l *ledgerUC) Counts(_ context.Context) (int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	valid, expired := 0, 0
	for _, t := range l.tokens {
		if t.Usable() {
			valid++
		} else {
			expired++
		}
	}
	return valid, expired
}

func (l *ledgerUC) persistLocked(ctx context.Context) error {
	snapshot := make([]*model.Token, len(l.tokens))
	for i, t := range l.tokens {
		cp := *t
		snapshot[i] = &cp
	}
	if err := l.store.Save(ctx, snapshot); err != nil {
		l.log.Error().Err(err).Msg("persist ledger")
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}
