package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRateLimited     = errors.New("too many attempts, slow down")

	// Access tokens
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token usage limit reached")
	ErrNoActiveSession  = errors.New("no active session")
	ErrTokenIDExhausted = errors.New("could not allocate a unique token id")

	// Generation and export
	ErrGenerationFailure = errors.New("question generation failed")
	ErrImageFailure      = errors.New("image generation failed")
	ErrExportFailure     = errors.New("export failed")
	ErrExportBusy        = errors.New("export already in progress")
)
