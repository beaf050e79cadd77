package ai

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/infra/prompts"
)

var _ adapter.QuestionGenerator = (*AnthropicAdapter)(nil)

// AnthropicAdapter is text only; pair it with another image provider.
type AnthropicAdapter struct {
	client      *anthropic.Client
	prompts     *prompts.Catalog
	model       string
	temperature float64
	maxOut      int64
	counter     TokenCounter
}

func NewAnthropicAdapter(cfg config.AIConfig, catalog *prompts.Catalog) (*AnthropicAdapter, error) {
	if cfg.AnthropicKey == "" {
		return nil, errors.New("anthropic: empty api key")
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicKey))
	maxOut := int64(cfg.MaxOutputTokens)
	if maxOut <= 0 {
		maxOut = 4096
	}
	return &AnthropicAdapter{
		client:      &client,
		prompts:     catalog,
		model:       cfg.AnthropicModel,
		temperature: cfg.Temperature,
		maxOut:      maxOut,
		counter:     NewTokenCounter(cfg.AnthropicModel),
	}, nil
}

func (a *AnthropicAdapter) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	system := a.prompts.System(req.Subject)
	user := a.prompts.UserPrompt(req)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxOut,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{{
			Role:    anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(user)},
		}},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, params)
	metrics.ObserveAICall("anthropic", a.model, "text", countTokens(a.counter, system+user), time.Since(start), err == nil)
	if err != nil {
		return nil, textFailure("anthropic", anthropicStatus(err), err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return parseQuestions(block.Text)
		}
	}
	return nil, textFailure("anthropic", 0, errors.New("no text content in response"))
}

func anthropicStatus(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
