package adapter

import (
	"context"

	"scenario-quiz/internal/domain/model"
)

// QuestionGenerator is the port for the remote text model. Implementations
// return validated questions or an error wrapping domain.ErrGenerationFailure.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req model.GenerationRequest) ([]model.GeneratedQuestion, error)
}

// ImageGenerator is the port for the remote image model. It returns a
// data URL such as "data:image/jpeg;base64,...".
type ImageGenerator interface {
	GenerateImage(ctx context.Context, scenario string) (string, error)
}
