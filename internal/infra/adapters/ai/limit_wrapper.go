package ai

import (
	"context"

	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
)

// Compile-time check
var (
	_ adapter.QuestionGenerator = (*limitedAI)(nil)
	_ adapter.ImageGenerator    = (*limitedAI)(nil)
)

// limitedAI caps in-flight provider calls. Text and image calls share
// one semaphore.
type limitedAI struct {
	text   adapter.QuestionGenerator
	images adapter.ImageGenerator
	sem    chan struct{}
}

// NewLimitedAI wraps both generators. With maxConcurrent <= 0 the inputs
// are returned unchanged.
func NewLimitedAI(text adapter.QuestionGenerator, images adapter.ImageGenerator, maxConcurrent int) (adapter.QuestionGenerator, adapter.ImageGenerator) {
	if maxConcurrent <= 0 {
		return text, images
	}
	l := &limitedAI{
		text:   text,
		images: images,
		sem:    make(chan struct{}, maxConcurrent),
	}
	return l, l
}

func (l *limitedAI) acquire(ctx context.Context) error {
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *limitedAI) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}
	defer func() { <-l.sem }()
	return l.text.GenerateQuestions(ctx, req)
}

func (l *limitedAI) GenerateImage(ctx context.Context, scenario string) (string, error) {
	if err := l.acquire(ctx); err != nil {
		return "", err
	}
	defer func() { <-l.sem }()
	return l.images.GenerateImage(ctx, scenario)
}
