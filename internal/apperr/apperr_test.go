package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("question not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("load question: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestInternal_KeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("insert answer", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert answer: connection reset", err.Error())
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestValidationWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"content": "is required"})

	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Equal(t, map[string]string{"content": "is required"}, err.Details)
}
