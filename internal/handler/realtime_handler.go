package handler

import (
	"strconv"

	"author-be/internal/pkg/logger"
	"author-be/internal/pkg/serverutils"
	internalWS "author-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeHandler upgrades clients onto the event room of one repository.
type RealtimeHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *RealtimeHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake, so the query
	// param wins over Authorization.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Missing token (Query 'token' or Header 'Authorization')", "UNAUTHORIZED", nil))
	}

	claims, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("RealtimeHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Invalid token", "UNAUTHORIZED", nil))
	}

	userID, ok := serverutils.ClaimInt64(claims, "user_id")
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse("Token missing user_id", "UNAUTHORIZED", nil))
	}

	repositoryID, err := strconv.ParseInt(c.Params("repositoryId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid repository id", "BAD_REQUEST", nil))
	}
	if bound, ok := serverutils.ClaimInt64(claims, "repository_id"); ok && bound != repositoryID {
		return c.Status(fiber.StatusForbidden).JSON(serverutils.ErrorResponse("Token is bound to another repository", "REPOSITORY_MISMATCH", nil))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			details := map[string]interface{}{"user_id": userID, "repository_id": repositoryID}
			h.logger.Info("RealtimeHandler", "Starting WebSocket session", details)
			internalWS.ServeWs(h.hub, conn, userID, repositoryID)
			h.logger.Info("RealtimeHandler", "WebSocket session ended", details)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// Presence reports how many clients of this instance watch the repository.
func (h *RealtimeHandler) Presence(c *fiber.Ctx) error {
	repositoryID, err := strconv.ParseInt(c.Params("repositoryId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse("Invalid repository id", "BAD_REQUEST", nil))
	}
	return c.JSON(serverutils.SuccessResponse("Success get presence", fiber.Map{
		"repository_id": repositoryID,
		"clients":       h.hub.ClientCount(repositoryID),
	}))
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/repositories/:repositoryId/ws", h.ServeWs)
	router.Get("/repositories/:repositoryId/presence", serverutils.JwtMiddleware, h.Presence)
}
