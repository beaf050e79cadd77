//go:build !integration

package web

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
)

// newTestLogger creates a silent logger for tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(nil)
	return &logger
}

type mockLedgerUC struct {
	mu       sync.Mutex
	tokens   []model.Token
	IssueErr error
}

func (m *mockLedgerUC) Issue(ctx context.Context, limit int) (*model.Token, error) {
	if m.IssueErr != nil {
		return nil, m.IssueErr
	}
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := model.Token{ID: "1234567890AB", Limit: limit, CreatedAt: time.Unix(1700000000, 0).UTC()}
	m.tokens = append(m.tokens, t)
	return &t, nil
}

func (m *mockLedgerUC) Validate(ctx context.Context, id string) model.TokenStatus {
	return model.TokenStatusInvalid
}

func (m *mockLedgerUC) RecordConsumption(ctx context.Context, id string) error { return nil }

func (m *mockLedgerUC) List(ctx context.Context) []model.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Token(nil), m.tokens...)
}

func (m *mockLedgerUC) Get(ctx context.Context, id string) (*model.Token, error) {
	return nil, domain.ErrNotFound
}

func (m *mockLedgerUC) Counts(ctx context.Context) (int, int) { return len(m.tokens), 0 }

type mockSessionUC struct {
	mu        sync.Mutex
	RedeemErr error
	Token     *model.Token
	active    map[string]bool
	Sessions  []string
}

func (m *mockSessionUC) Redeem(ctx context.Context, sessionID, raw string) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions = append(m.Sessions, sessionID)
	if m.RedeemErr != nil {
		return nil, m.RedeemErr
	}
	if m.active == nil {
		m.active = map[string]bool{}
	}
	m.active[sessionID] = true
	return m.Token, nil
}

func (m *mockSessionUC) Active(ctx context.Context, sessionID string) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active[sessionID] {
		return nil, domain.ErrNoActiveSession
	}
	return m.Token, nil
}

func (m *mockSessionUC) Exit(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, sessionID)
	return nil
}

type mockGenerationUC struct {
	GenerateErr error
	Batch       *model.Batch
	LastReq     model.GenerationRequest
}

func (m *mockGenerationUC) Generate(ctx context.Context, sessionID string, req model.GenerationRequest) (*model.Batch, error) {
	m.LastReq = req
	if m.GenerateErr != nil {
		return nil, m.GenerateErr
	}
	return m.Batch, nil
}

func (m *mockGenerationUC) Illustrate(ctx context.Context, batch *model.Batch) (*model.Batch, bool, error) {
	return batch, true, nil
}

func (m *mockGenerationUC) Current(ctx context.Context, sessionID string) (*model.Batch, error) {
	if m.Batch == nil {
		return nil, domain.ErrNotFound
	}
	return m.Batch, nil
}

type mockExportUC struct {
	Err error
	Doc *model.Document
}

func (m *mockExportUC) Export(ctx context.Context, sessionID string) (*model.Document, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Doc, nil
}
