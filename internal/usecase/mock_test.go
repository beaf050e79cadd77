//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/domain/ports/repository"
	"scenario-quiz/internal/infra/worker"
)

// Compile-time checks
var (
	_ repository.LedgerStore    = (*MockLedgerStore)(nil)
	_ repository.SessionStore   = (*MockSessionStore)(nil)
	_ repository.BatchStore     = (*MockBatchStore)(nil)
	_ repository.Locker         = (*MockLocker)(nil)
	_ repository.RateLimiter    = (*MockRateLimiter)(nil)
	_ adapter.QuestionGenerator = (*MockQuestionGenerator)(nil)
	_ adapter.ImageGenerator    = (*MockImageGenerator)(nil)
	_ adapter.Renderer          = (*MockRenderer)(nil)
	_ adapter.Region            = (*MockRegion)(nil)
	_ adapter.DocumentWriter    = (*MockWriter)(nil)
	_ adapter.PrintableRenderer = (*MockPrintable)(nil)
)

// --- Mock Ledger Store ---

type MockLedgerStore struct {
	mu        sync.Mutex
	doc       []*model.Token
	SaveErr   error
	LoadErr   error
	SaveCalls int
}

func NewMockLedgerStore(initial ...*model.Token) *MockLedgerStore {
	return &MockLedgerStore{doc: initial}
}

func (m *MockLedgerStore) Load(ctx context.Context) ([]*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make([]*model.Token, len(m.doc))
	for i, t := range m.doc {
		cp := *t
		out[i] = &cp
	}
	return out, nil
}

func (m *MockLedgerStore) Save(ctx context.Context, tokens []*model.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.doc = tokens
	return nil
}

// Stored returns the last persisted document.
func (m *MockLedgerStore) Stored() []model.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Token, len(m.doc))
	for i, t := range m.doc {
		out[i] = *t
	}
	return out
}

// --- Mock Session Store ---

type MockSessionStore struct {
	mu     sync.Mutex
	active map[string]string
	SetErr error
}

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{active: make(map[string]string)}
}

func (m *MockSessionStore) GetActiveToken(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.active[sessionID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return id, nil
}

func (m *MockSessionStore) SetActiveToken(ctx context.Context, sessionID, tokenID string) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[sessionID] = tokenID
	return nil
}

func (m *MockSessionStore) ClearActiveToken(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, sessionID)
	return nil
}

// --- Mock Batch Store ---

type MockBatchStore struct {
	mu      sync.Mutex
	current map[string]*model.Batch
	Commits int
	SaveErr error
}

func NewMockBatchStore() *MockBatchStore {
	return &MockBatchStore{current: make(map[string]*model.Batch)}
}

func (m *MockBatchStore) SaveCurrent(ctx context.Context, b *model.Batch) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current[b.SessionID] = b.Clone()
	return nil
}

func (m *MockBatchStore) Current(ctx context.Context, sessionID string) (*model.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.current[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b.Clone(), nil
}

func (m *MockBatchStore) CommitIfCurrent(ctx context.Context, b *model.Batch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.current[b.SessionID]
	if !ok || cur.ID != b.ID {
		return false, nil
	}
	m.current[b.SessionID] = b.Clone()
	m.Commits++
	return true, nil
}

func (m *MockBatchStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.current, sessionID)
	return nil
}

// --- Mock Locker ---

type MockLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func NewMockLocker() *MockLocker { return &MockLocker{held: make(map[string]string)} }

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return "", false, nil
	}
	tok := uuid.NewString()
	m.held[key] = tok
	return tok, true, nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] == token {
		delete(m.held, key)
	}
	return nil
}

func (m *MockLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.held[key]
	return ok
}

// --- Mock Rate Limiter ---

type MockRateLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	Err    error
}

func NewMockRateLimiter() *MockRateLimiter { return &MockRateLimiter{counts: make(map[string]int)} }

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key] <= limit, nil
}

// --- Mock AI ---

type MockQuestionGenerator struct {
	mu       sync.Mutex
	Calls    int
	Generate func(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error)
}

func (m *MockQuestionGenerator) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Generate != nil {
		return m.Generate(ctx, req)
	}
	return sampleQuestions(model.QuestionsPerBatch), nil
}

type MockImageGenerator struct {
	mu       sync.Mutex
	Calls    int
	Generate func(ctx context.Context, scenario string) (string, error)
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, scenario string) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.Generate != nil {
		return m.Generate(ctx, scenario)
	}
	return "data:image/jpeg;base64," + scenario, nil
}

// --- Mock Scheduler ---

// MockScheduler queues tasks until RunAll is called.
type MockScheduler struct {
	mu        sync.Mutex
	tasks     []worker.Task
	SubmitErr error
}

func (m *MockScheduler) Submit(task worker.Task) error {
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *MockScheduler) RunAll(ctx context.Context) error {
	m.mu.Lock()
	tasks := m.tasks
	m.tasks = nil
	m.mu.Unlock()
	var errs []error
	for _, t := range tasks {
		errs = append(errs, t(ctx))
	}
	return errors.Join(errs...)
}

func (m *MockScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// --- Mock Export Pipeline ---

type MockPrintable struct {
	Err error
}

func (m *MockPrintable) RenderPrintable(b *model.Batch) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte("<html><body><div id=\"printable-area\">" + b.ID + "</div></body></html>"), nil
}

type MockRegion struct {
	mu                   sync.Mutex
	visibility           string
	History              []string
	AwaitErr             error
	CaptureErr           error
	Bitmap               model.Bitmap
	CapturedAt           float64
	VisibleDuringCapture bool
}

func (m *MockRegion) AwaitImages(ctx context.Context) error { return m.AwaitErr }

func (m *MockRegion) Visibility(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibility, nil
}

func (m *MockRegion) SetVisibility(ctx context.Context, v string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visibility = v
	m.History = append(m.History, v)
	return nil
}

func (m *MockRegion) Capture(ctx context.Context, scale float64) (model.Bitmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CapturedAt = scale
	m.VisibleDuringCapture = m.visibility == "visible"
	if m.CaptureErr != nil {
		return model.Bitmap{}, m.CaptureErr
	}
	return m.Bitmap, nil
}

func (m *MockRegion) CurrentVisibility() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visibility
}

type MockRenderer struct {
	Region   *MockRegion
	OpenErr  error
	Released int

	// Block, when set, is closed by the test to let Open return.
	Block  chan struct{}
	Opened chan struct{}
}

func (m *MockRenderer) Open(ctx context.Context, html []byte) (adapter.Region, func(), error) {
	if m.Opened != nil {
		close(m.Opened)
	}
	if m.Block != nil {
		<-m.Block
	}
	if m.OpenErr != nil {
		return nil, nil, m.OpenErr
	}
	return m.Region, func() { m.Released++ }, nil
}

type MockWriter struct {
	W, H          float64
	Pages         []model.PageSlice
	ContentHeight float64
	Err           error
}

func (m *MockWriter) PageSize() (float64, float64) { return m.W, m.H }

func (m *MockWriter) Write(bmp model.Bitmap, contentHeight float64, pages []model.PageSlice) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Pages = pages
	m.ContentHeight = contentHeight
	return []byte(fmt.Sprintf("%%PDF-1.3 pages=%d", len(pages))), nil
}

// --- Helpers ---

func sampleQuestions(n int) []model.GeneratedQuestion {
	qs := make([]model.GeneratedQuestion, n)
	for i := range qs {
		qs[i] = model.GeneratedQuestion{
			Scenario: fmt.Sprintf("scenario-%d", i+1),
			Tasks:    []model.Task{{ID: "a", Question: "What happens?"}, {ID: "b", Question: "Why?"}},
			Answers:  []model.Answer{{ID: "a", Answer: "It grows."}, {ID: "b", Answer: "Light."}},
		}
	}
	return qs
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
// It writes to io.Discard to prevent logs from cluttering test output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
