package ai_test

import (
	"context"
	"errors"
	"testing"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	ai "scenario-quiz/internal/infra/adapters/ai"
)

type stubAI struct {
	name      string
	textN     int
	imageN    int
	lastTopic string
}

func (s *stubAI) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	s.textN++
	s.lastTopic = req.Topic
	return []model.GeneratedQuestion{{Scenario: s.name}}, nil
}

func (s *stubAI) GenerateImage(ctx context.Context, scenario string) (string, error) {
	s.imageN++
	return "data:image/jpeg;base64," + s.name, nil
}

func TestRouting_TextAndImageProviders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	open := &stubAI{name: "openai"}
	gem := &stubAI{name: "gemini"}
	claude := &stubAI{name: "anthropic"}

	m := ai.NewMultiAIAdapter(
		"Anthropic", "gemini",
		map[string]adapter.QuestionGenerator{"openai": open, "gemini": gem, "anthropic": claude},
		map[string]adapter.ImageGenerator{"openai": open, "gemini": gem},
	)

	qs, err := m.GenerateQuestions(ctx, model.GenerationRequest{Topic: "Forces"})
	if err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if claude.textN != 1 || open.textN != 0 || gem.textN != 0 || qs[0].Scenario != "anthropic" {
		t.Fatalf("text should route to anthropic, got open:%d gem:%d claude:%d", open.textN, gem.textN, claude.textN)
	}
	if claude.lastTopic != "Forces" {
		t.Fatalf("request not forwarded, topic=%q", claude.lastTopic)
	}

	if _, err := m.GenerateImage(ctx, "s"); err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if gem.imageN != 1 || open.imageN != 0 {
		t.Fatalf("images should route to gemini, got open:%d gem:%d", open.imageN, gem.imageN)
	}

	text, image := m.Providers()
	if text != "anthropic" || image != "gemini" {
		t.Fatalf("Providers() = %q, %q", text, image)
	}
}

func TestRouting_FallbackAndEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gem := &stubAI{name: "gemini"}
	open := &stubAI{name: "openai"}

	// unknown provider falls back to the first available in name order
	m := ai.NewMultiAIAdapter(
		"missing", "missing",
		map[string]adapter.QuestionGenerator{"openai": open, "gemini": gem},
		map[string]adapter.ImageGenerator{"openai": open},
	)
	if _, err := m.GenerateQuestions(ctx, model.GenerationRequest{}); err != nil {
		t.Fatalf("GenerateQuestions: %v", err)
	}
	if gem.textN != 1 || open.textN != 0 {
		t.Fatalf("fallback should pick gemini, got open:%d gem:%d", open.textN, gem.textN)
	}
	if _, err := m.GenerateImage(ctx, "s"); err != nil || open.imageN != 1 {
		t.Fatalf("image fallback should pick openai, err=%v n=%d", err, open.imageN)
	}

	empty := ai.NewMultiAIAdapter("gemini", "gemini", nil, nil)
	if _, err := empty.GenerateQuestions(ctx, model.GenerationRequest{}); !errors.Is(err, domain.ErrGenerationFailure) {
		t.Fatalf("expected ErrGenerationFailure, got %v", err)
	}
	if _, err := empty.GenerateImage(ctx, "s"); !errors.Is(err, domain.ErrImageFailure) {
		t.Fatalf("expected ErrImageFailure, got %v", err)
	}
}
