package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/infra/prompts"
)

var (
	_ adapter.QuestionGenerator = (*MultiAIAdapter)(nil)
	_ adapter.ImageGenerator    = (*MultiAIAdapter)(nil)
)

// MultiAIAdapter routes text and image calls to the configured providers.
type MultiAIAdapter struct {
	textProvider  string
	imageProvider string
	text          map[string]adapter.QuestionGenerator
	images        map[string]adapter.ImageGenerator
}

func NewMultiAIAdapter(
	textProvider, imageProvider string,
	text map[string]adapter.QuestionGenerator,
	images map[string]adapter.ImageGenerator,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		textProvider:  strings.ToLower(textProvider),
		imageProvider: strings.ToLower(imageProvider),
		text:          text,
		images:        images,
	}
}

// pick returns the named entry or, as a last resort, the first available
// one in name order.
func pick[T any](m map[string]T, name string) (T, string, bool) {
	if v, ok := m[name]; ok {
		return v, name, true
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	var zero T
	if len(names) == 0 {
		return zero, "", false
	}
	return m[names[0]], names[0], true
}

func (m *MultiAIAdapter) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	g, _, ok := pick(m.text, m.textProvider)
	if !ok {
		return nil, fmt.Errorf("%w: no text provider configured", domain.ErrGenerationFailure)
	}
	return g.GenerateQuestions(ctx, req)
}

func (m *MultiAIAdapter) GenerateImage(ctx context.Context, scenario string) (string, error) {
	g, _, ok := pick(m.images, m.imageProvider)
	if !ok {
		return "", fmt.Errorf("%w: no image provider configured", domain.ErrImageFailure)
	}
	return g.GenerateImage(ctx, scenario)
}

// Providers reports the resolved provider names for startup logging.
func (m *MultiAIAdapter) Providers() (text, image string) {
	_, text, _ = pick(m.text, m.textProvider)
	_, image, _ = pick(m.images, m.imageProvider)
	return text, image
}

// Build constructs every provider named by cfg and wraps the router with
// the concurrency limit.
func Build(ctx context.Context, cfg config.AIConfig, catalog *prompts.Catalog, logger *zerolog.Logger) (adapter.QuestionGenerator, adapter.ImageGenerator, error) {
	text := map[string]adapter.QuestionGenerator{}
	images := map[string]adapter.ImageGenerator{}

	wanted := map[string]bool{
		strings.ToLower(cfg.TextProvider):  true,
		strings.ToLower(cfg.ImageProvider): true,
	}
	for name := range wanted {
		switch name {
		case "gemini":
			g, err := NewGeminiAdapter(ctx, cfg, catalog)
			if err != nil {
				return nil, nil, err
			}
			text[name], images[name] = g, g
		case "openai":
			o, err := NewOpenAIAdapter(cfg, catalog)
			if err != nil {
				return nil, nil, err
			}
			text[name], images[name] = o, o
		case "anthropic":
			a, err := NewAnthropicAdapter(cfg, catalog)
			if err != nil {
				return nil, nil, err
			}
			text[name] = a
		case "noop":
			n := NewNoopAIAdapter()
			text[name], images[name] = n, n
		default:
			return nil, nil, errors.New("unknown ai provider: " + name)
		}
	}
	if _, ok := images[strings.ToLower(cfg.ImageProvider)]; !ok {
		return nil, nil, fmt.Errorf("ai provider %q cannot generate images", cfg.ImageProvider)
	}

	multi := NewMultiAIAdapter(cfg.TextProvider, cfg.ImageProvider, text, images)
	tp, ip := multi.Providers()
	logger.Info().Str("text_provider", tp).Str("image_provider", ip).
		Int("concurrent_limit", cfg.ConcurrentLimit).Msg("ai providers ready")

	q, i := NewLimitedAI(multi, multi, cfg.ConcurrentLimit)
	return q, i, nil
}
