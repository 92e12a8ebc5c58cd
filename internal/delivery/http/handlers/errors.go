package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/LavaJover/shvark-escrow-service/internal/delivery/http/dto/escrow/response"
	"github.com/LavaJover/shvark-escrow-service/internal/domain"
	"github.com/labstack/echo/v4"
)

// writeError maps domain errors onto status codes and the shared error body.
func writeError(c echo.Context, logger *slog.Logger, err error) error {
	status, body := toErrorResponse(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.JSON(status, body)
}

func toErrorResponse(err error) (int, response.ErrorResponse) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		details := make(map[string]any, len(validationErr.Fields))
		for field, msg := range validationErr.Fields {
			details[field] = msg
		}
		return http.StatusUnprocessableEntity, response.ErrorResponse{
			Code:    "validation_error",
			Message: domain.ErrValidation.Error(),
			Details: details,
		}
	}

	var stateErr *domain.InvalidStateError
	if errors.As(err, &stateErr) {
		return http.StatusConflict, response.ErrorResponse{
			Code:    "invalid_state",
			Message: stateErr.Error(),
			Details: map[string]any{
				"current_status": stateErr.Current,
				"operation":      stateErr.Operation,
			},
		}
	}

	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return http.StatusConflict, response.ErrorResponse{Code: "concurrency_conflict", Message: "the record was modified concurrently, retry the request"}
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, response.ErrorResponse{Code: "already_exists", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, response.ErrorResponse{Code: "not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, response.ErrorResponse{Code: "unauthorized", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, response.ErrorResponse{Code: "forbidden", Message: err.Error()}
	}
	return http.StatusInternalServerError, response.ErrorResponse{Code: "internal_error", Message: "internal server error"}
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, response.ErrorResponse{Code: "bad_request", Message: message})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
