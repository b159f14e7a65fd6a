package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrConflict, ErrInternal,
		ErrServiceUnavail, ErrBadGateway,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("redis down")}
	assert.Equal(t, "INTERNAL_ERROR: something broke: redis down", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "profile not found"}
	assert.Equal(t, "NOT_FOUND: profile not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("profile", "42"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("quantity must be positive"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("stale cart"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"bad gateway", BadGateway("catalog lookup failed", nil), "BAD_GATEWAY", http.StatusBadGateway, ErrBadGateway},
		{"unavailable", ServiceUnavailable("orders offline"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.True(t, errors.Is(tt.err, tt.sentinel))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("profile", "abc-123")
	assert.Contains(t, err.Message, "profile")
	assert.Contains(t, err.Message, "abc-123")
}

func TestBadGateway_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := BadGateway("catalog lookup failed", cause)

	assert.True(t, errors.Is(err, ErrBadGateway))
	assert.True(t, errors.Is(err, cause))
}

func TestInternal(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.True(t, errors.Is(err, cause))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load profile")
	assert.Equal(t, "load profile: resource not found", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("x"), http.StatusBadRequest},
		{"wrapped app error", fmt.Errorf("ctx: %w", NotFound("cart", "1")), http.StatusNotFound},
		{"sentinel not found", Wrap(ErrNotFound, "x"), http.StatusNotFound},
		{"sentinel invalid", ErrInvalidInput, http.StatusBadRequest},
		{"sentinel conflict", ErrConflict, http.StatusConflict},
		{"sentinel bad gateway", fmt.Errorf("lookup: %w", ErrBadGateway), http.StatusBadGateway},
		{"sentinel unavailable", ErrServiceUnavail, http.StatusServiceUnavailable},
		{"unknown", errors.New("random"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
