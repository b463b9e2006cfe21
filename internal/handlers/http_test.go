package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/abrezinsky/outletplay/internal/errors"
	"github.com/abrezinsky/outletplay/internal/handlers"
	"github.com/abrezinsky/outletplay/internal/services"
)

func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *handlers.APIError
		status int
		code   string
	}{
		{"BadRequest", handlers.BadRequest("bad"), http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"Unauthorized", handlers.Unauthorized("who"), http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"Forbidden", handlers.Forbidden("no"), http.StatusForbidden, handlers.ErrCodeForbidden},
		{"NotFound", handlers.NotFound("gone"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"Conflict", handlers.Conflict("clash"), http.StatusConflict, handlers.ErrCodeConflict},
		{"ErrBadRequest", handlers.ErrBadRequest, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"ErrUnauthorized", handlers.ErrUnauthorized, http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"ErrNotFound", handlers.ErrNotFound, http.StatusNotFound, handlers.ErrCodeNotFound},
		{"ErrInternalServer", handlers.ErrInternalServer, http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.Status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"attempts exhausted", services.ErrAttemptsExhausted, http.StatusBadRequest, handlers.ErrCodeAttemptsExhausted},
		{"already won", services.ErrAlreadyWon, http.StatusBadRequest, handlers.ErrCodeAlreadyWon},
		{"play in progress", services.ErrPlayInProgress, http.StatusConflict, handlers.ErrCodePlayInProgress},
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized, handlers.ErrCodeUnauthorized},
		{"wrapped sentinel", fmt.Errorf("play: %w", services.ErrAlreadyWon), http.StatusBadRequest, handlers.ErrCodeAlreadyWon},
		{"other service error", &services.ServiceError{Message: "nope"}, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"not found", errors.NotFound("reward not found"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"validation", errors.Validation("name is required"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"conflict", errors.Conflict("taken"), http.StatusConflict, handlers.ErrCodeConflict},
		{"kind forbidden", errors.Forbidden("admins only"), http.StatusForbidden, handlers.ErrCodeForbidden},
		{"kind internal", errors.Internal(fmt.Errorf("disk full")), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

func TestToAPIError_InternalMessageIsGeneric(t *testing.T) {
	apiErr := handlers.ToAPIError(fmt.Errorf("sqlite: database is locked"))
	if apiErr.Message != "Internal server error" {
		t.Errorf("expected storage detail to stay hidden, got %q", apiErr.Message)
	}
}
