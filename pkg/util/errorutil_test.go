package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(pgx.ErrNoRows))
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.False(t, IsNotFound(errors.New("connection refused")))
	assert.False(t, IsNotFound(nil))
}

func TestToDomainError(t *testing.T) {
	t.Run("maps missing rows to not found", func(t *testing.T) {
		domainErr := ToDomainError(pgx.ErrNoRows)
		assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
	})

	t.Run("passes domain errors through", func(t *testing.T) {
		original := NewValidationError("status required", nil)
		domainErr := ToDomainError(original)
		assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
		assert.Equal(t, "status required", domainErr.Message)
	})

	t.Run("wraps unknown errors as internal", func(t *testing.T) {
		domainErr := ToDomainError(errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
	})
}
