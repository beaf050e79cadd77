package ai

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/jpeg"
	"time"

	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/domain/ports/adapter"
)

var (
	_ adapter.QuestionGenerator = (*NoopAIAdapter)(nil)
	_ adapter.ImageGenerator    = (*NoopAIAdapter)(nil)
)

// NoopAIAdapter serves canned questions and flat placeholder images for
// local/dev runs without provider keys.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) wait(ctx context.Context) error {
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *NoopAIAdapter) GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]model.GeneratedQuestion, 0, model.QuestionsPerBatch)
	for i := 1; i <= model.QuestionsPerBatch; i++ {
		out = append(out, model.GeneratedQuestion{
			Scenario: fmt.Sprintf("Scenario %d: a %s class studies %s at the %s level using local examples.",
				i, req.Subject, req.Topic, req.Difficulty),
			Tasks: []model.Task{
				{ID: "a", Question: fmt.Sprintf("Identify the main %s idea in scenario %d.", req.Topic, i)},
				{ID: "b", Question: "Explain how the details of the scenario support your answer."},
			},
			Answers: []model.Answer{
				{ID: "a", Answer: fmt.Sprintf("The scenario centres on %s.", req.Topic)},
				{ID: "b", Answer: "A complete answer refers to at least two details from the scenario."},
			},
		})
	}
	return out, nil
}

// GenerateImage returns a small solid JPEG whose colour is derived from
// the scenario text.
func (a *NoopAIAdapter) GenerateImage(ctx context.Context, scenario string) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(scenario))
	sum := h.Sum32()
	fill := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 0xff}

	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", imageFailure("noop", err)
	}
	return dataURL(imageMIME, buf.Bytes()), nil
}
