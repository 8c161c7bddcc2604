package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"author-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandlerMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperror.NotFound("ACTIVITY_NOT_FOUND", "missing"), fiber.StatusNotFound, "ACTIVITY_NOT_FOUND"},
		{"forbidden", apperror.Forbidden("REPOSITORY_MISMATCH", "scope"), fiber.StatusForbidden, "REPOSITORY_MISMATCH"},
		{"bad request", apperror.BadRequest("TYPE_NOT_ALLOWED", "type", nil), fiber.StatusBadRequest, "TYPE_NOT_ALLOWED"},
		{"validation", apperror.Validation("invalid", map[string]interface{}{"Type": "required"}), fiber.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"wrapped", errors.Join(errors.New("ctx"), apperror.NotFound("X", "y")), fiber.StatusNotFound, "X"},
		{"fiber error", fiber.ErrUnauthorized, fiber.StatusUnauthorized, ""},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{DisableStartupMessage: true})
			app.Use(ErrorHandlerMiddleware(nil))
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body Response[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestClaimInt64(t *testing.T) {
	claims := map[string]interface{}{"a": float64(7), "b": "12", "c": "x", "d": true}
	for key, want := range map[string]int64{"a": 7, "b": 12} {
		got, ok := ClaimInt64(claims, key)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	for _, key := range []string{"c", "d", "missing"} {
		_, ok := ClaimInt64(claims, key)
		assert.False(t, ok, key)
	}
}
