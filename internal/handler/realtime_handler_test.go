package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"author-be/internal/pkg/logger"
	internalWS "author-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeHandler_Handshake(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	sign := func(claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)
		return s
	}

	hub := internalWS.NewHub(nil, logger.NewNopLogger())
	go hub.Run()
	defer hub.Close()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	NewRealtimeHandler(hub, logger.NewNopLogger()).RegisterRoutes(app)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"missing token", "/repositories/1/ws", http.StatusUnauthorized},
		{"invalid token", "/repositories/1/ws?token=garbage", http.StatusUnauthorized},
		{"no user claim", "/repositories/1/ws?token=" + sign(jwt.MapClaims{"sub": "x"}), http.StatusUnauthorized},
		{"bound elsewhere", "/repositories/1/ws?token=" + sign(jwt.MapClaims{"user_id": 1, "repository_id": 2}), http.StatusForbidden},
		{"plain http request", "/repositories/1/ws?token=" + sign(jwt.MapClaims{"user_id": 1}), http.StatusUpgradeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/repositories/1/presence", nil)
	req.Header.Set("Authorization", "Bearer "+sign(jwt.MapClaims{"user_id": 1}))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
