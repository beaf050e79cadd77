package ai

import (
	"fmt"
	"net/http"

	"scenario-quiz/internal/domain"
)

func textFailure(provider string, status int, err error) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %s: %w", domain.ErrGenerationFailure, domain.ErrRateLimited, provider, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrGenerationFailure, provider, err)
}

func imageFailure(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrImageFailure, provider, err)
}
