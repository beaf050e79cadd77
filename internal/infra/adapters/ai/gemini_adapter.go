package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/infra/prompts"
)

var (
	_ adapter.QuestionGenerator = (*GeminiAdapter)(nil)
	_ adapter.ImageGenerator    = (*GeminiAdapter)(nil)
)

const imageMIME = "image/jpeg"

// GeminiAdapter generates questions with a Gemini text model and images
// with Imagen, both through the official SDK.
type GeminiAdapter struct {
	client      *genai.Client
	prompts     *prompts.Catalog
	textModel   string
	imageModel  string
	temperature float32
	maxOut      int32
	counter     TokenCounter
}

func NewGeminiAdapter(ctx context.Context, cfg config.AIConfig, catalog *prompts.Catalog) (*GeminiAdapter, error) {
	if cfg.GeminiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.GeminiURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiAdapter{
		client:      c,
		prompts:     catalog,
		textModel:   cfg.GeminiModel,
		imageModel:  cfg.ImagenModel,
		temperature: float32(cfg.Temperature),
		maxOut:      int32(cfg.MaxOutputTokens),
		counter:     NewTokenCounter(cfg.GeminiModel),
	}, nil
}

func (g *GeminiAdapter) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	system := g.prompts.System(req.Subject)
	user := g.prompts.UserPrompt(req)

	temp := g.temperature
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		ResponseMIMEType: "application/json",
		Temperature:      &temp,
	}
	if g.maxOut > 0 {
		cfg.MaxOutputTokens = g.maxOut
	}

	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(user), cfg)
	metrics.ObserveAICall("gemini", g.textModel, "text", countTokens(g.counter, system+user), time.Since(start), err == nil)
	if err != nil {
		return nil, textFailure("gemini", geminiStatus(err), err)
	}
	return parseQuestions(result.Text())
}

func (g *GeminiAdapter) GenerateImage(ctx context.Context, scenario string) (string, error) {
	start := time.Now()
	resp, err := g.client.Models.GenerateImages(ctx, g.imageModel, g.prompts.ImagePrompt(scenario), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: imageMIME,
	})
	metrics.ObserveAICall("gemini", g.imageModel, "image", 0, time.Since(start), err == nil)
	if err != nil {
		return "", imageFailure("gemini", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil ||
		len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return "", imageFailure("gemini", errors.New("no image returned"))
	}
	return dataURL(imageMIME, resp.GeneratedImages[0].Image.ImageBytes), nil
}

func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
