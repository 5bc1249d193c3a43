package handler

import (
	"notebook-markdown-be/internal/pkg/logger"
	"notebook-markdown-be/internal/pkg/serverutils"
	internalWS "notebook-markdown-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RenderEventsHandler streams render notifications to the notebook owner
// over a websocket.
type RenderEventsHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewRenderEventsHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *RenderEventsHandler {
	return &RenderEventsHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *RenderEventsHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/v1/notebooks", h.ServeWs)
}

// ServeWs authenticates before upgrading. Browsers cannot set headers on
// a websocket handshake, so the token may come as a query parameter.
func (h *RenderEventsHandler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	userID, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("HUB", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("HUB", "Starting WebSocket session", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("HUB", "WebSocket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}
