package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/infra/prompts"
)

// Compile-time assurance this adapter satisfies the ports
var (
	_ adapter.QuestionGenerator = (*OpenAIAdapter)(nil)
	_ adapter.ImageGenerator    = (*OpenAIAdapter)(nil)
)

// OpenAIAdapter talks to the OpenAI API or any compatible endpoint set via
// openai_base_url.
type OpenAIAdapter struct {
	client      *openai.Client
	prompts     *prompts.Catalog
	model       string
	imageModel  string
	temperature float64
	maxOut      int64
	counter     TokenCounter
}

func NewOpenAIAdapter(cfg config.AIConfig, catalog *prompts.Catalog) (*OpenAIAdapter, error) {
	if cfg.OpenAIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIKey)}
	if base := strings.TrimSpace(cfg.OpenAIBaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)
	return &OpenAIAdapter{
		client:      &client,
		prompts:     catalog,
		model:       cfg.OpenAIModel,
		imageModel:  cfg.OpenAIImage,
		temperature: cfg.Temperature,
		maxOut:      int64(cfg.MaxOutputTokens),
		counter:     NewTokenCounter(cfg.OpenAIModel),
	}, nil
}

func (o *OpenAIAdapter) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	// json_object mode only accepts a top-level object
	system := o.prompts.System(req.Subject) + "\n" + o.prompts.ObjectWrapper()
	user := o.prompts.UserPrompt(req)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(o.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if o.maxOut > 0 {
		params.MaxCompletionTokens = openai.Int(o.maxOut)
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	metrics.ObserveAICall("openai", o.model, "text", countTokens(o.counter, system+user), time.Since(start), err == nil)
	if err != nil {
		return nil, textFailure("openai", openAIStatus(err), err)
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return parseQuestions(c.Message.Content)
		}
	}
	return nil, textFailure("openai", 0, errors.New("no choice content"))
}

func (o *OpenAIAdapter) GenerateImage(ctx context.Context, scenario string) (string, error) {
	start := time.Now()
	resp, err := o.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         o.prompts.ImagePrompt(scenario),
		Model:          openai.ImageModel(o.imageModel),
		N:              openai.Int(1),
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	metrics.ObserveAICall("openai", o.imageModel, "image", 0, time.Since(start), err == nil)
	if err != nil {
		return "", imageFailure("openai", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", imageFailure("openai", errors.New("no image returned"))
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return "", imageFailure("openai", fmt.Errorf("decode image: %w", err))
	}
	return dataURL(sniffImageMIME(raw), raw), nil
}

func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
