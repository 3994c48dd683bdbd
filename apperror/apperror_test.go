package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"auth", NewAuthError("x", nil), http.StatusUnauthorized},
		{"expired", NewTokenExpiredError("x", nil), http.StatusUnauthorized},
		{"invalid token", NewInvalidTokenError("x", nil), http.StatusUnauthorized},
		{"not found", NewNotFoundError("x", nil), http.StatusNotFound},
		{"validation", NewValidationError("x", nil), http.StatusBadRequest},
		{"bad request", NewBadRequestError("x", nil), http.StatusBadRequest},
		{"conflict", NewConflictError("x", nil), http.StatusConflict},
		{"database", NewDatabaseError("x", nil), http.StatusInternalServerError},
		{"internal", NewInternalError("x", nil), http.StatusInternalServerError},
		{"method", NewMethodNotAllowedError("x"), http.StatusMethodNotAllowed},
		{"rate", NewRateLimitedError("x"), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestToResponse_HidesServerDetail(t *testing.T) {
	err := NewDatabaseError("failed to list combos", errors.New("connection reset"))

	quiet := err.ToResponse(false)
	assert.Equal(t, "Something went wrong!", quiet.Error)
	assert.Empty(t, quiet.Message)

	verbose := err.ToResponse(true)
	assert.Equal(t, "Something went wrong!", verbose.Error)
	assert.Contains(t, verbose.Message, "connection reset")
}

func TestToResponse_ClientErrorKeepsMessageAndCode(t *testing.T) {
	resp := NewTokenExpiredError("Token expired", nil).ToResponse(true)
	assert.Equal(t, "Token expired", resp.Error)
	assert.Equal(t, CodeTokenExpired, resp.Code)
	assert.Empty(t, resp.Message)
}

func TestFromError_LooksThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewConflictError("username already exists", nil))

	ae, ok := FromError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ConflictError, ae.Type)
	assert.True(t, IsConflictError(wrapped))

	_, ok = FromError(errors.New("plain"))
	assert.False(t, ok)
	_, ok = FromError(nil)
	assert.False(t, ok)
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(NewAuthError("a", nil)))
	assert.True(t, IsAuthError(NewTokenExpiredError("a", nil)))
	assert.True(t, IsAuthError(NewInvalidTokenError("a", nil)))
	assert.False(t, IsAuthError(NewNotFoundError("a", nil)))
	assert.True(t, IsTokenExpired(NewTokenExpiredError("a", nil)))
}
