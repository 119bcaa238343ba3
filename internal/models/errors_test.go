package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewNotFoundError("Wishlist", 1), http.StatusNotFound},
		{NewPermissionDeniedError("locked"), http.StatusForbidden},
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewConflictError("taken"), http.StatusConflict},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", NewConflictError("taken")), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, StatusFor(tt.err))
		})
	}
}

func TestRespondWithError(t *testing.T) {
	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		err := NewValidationErrorWithDetails("Validation failed", map[string]string{"title": "is required"})
		return RespondWithError(c, StatusFor(err), err)
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		err := errors.New("pq: connection refused to 10.0.0.3")
		return RespondWithError(c, StatusFor(err), err)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "is required", body.Details["title"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "10.0.0.3")
	assert.Contains(t, string(raw), "Internal server error")
}

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(NewConflictError("x"), CodeConflict))
	assert.False(t, IsCode(NewConflictError("x"), CodeNotFound))
	assert.False(t, IsCode(errors.New("x"), CodeConflict))
}
