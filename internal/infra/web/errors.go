package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"scenario-quiz/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to an HTTP status and a message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid token. Please check the code and try again."
	case errors.Is(err, domain.ErrExpiredToken):
		return http.StatusForbidden, "This token has reached its usage limit."
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many attempts. Please wait a moment and try again."
	case errors.Is(err, domain.ErrNoActiveSession):
		return http.StatusUnauthorized, "No active session. Enter an access token first."
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrExportBusy):
		return http.StatusConflict, "An export is already running or images are still loading. Try again shortly."
	case errors.Is(err, domain.ErrGenerationFailure):
		return http.StatusBadGateway, "Failed to generate questions. The AI may be busy or the topic is too complex. Please try again."
	case errors.Is(err, domain.ErrImageFailure):
		return http.StatusBadGateway, "Failed to generate an image for the scenario."
	case errors.Is(err, domain.ErrExportFailure):
		return http.StatusInternalServerError, "Failed to generate PDF. An image may have failed to load."
	case errors.Is(err, domain.ErrTokenIDExhausted):
		return http.StatusServiceUnavailable, "could not allocate a token id, try again"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The request took too long. Please try again."
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	status, msg := statusFor(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")
	writeJSON(w, status, errorBody{Error: msg})
}
