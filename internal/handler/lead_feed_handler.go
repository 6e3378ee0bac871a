package handler

import (
	"os"

	"eirybot-assistant-be/internal/pkg/logger"
	internalWS "eirybot-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
)

// LeadFeedHandler upgrades operator dashboards onto the live lead feed.
type LeadFeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewLeadFeedHandler(hub *internalWS.Hub, log logger.ILogger) *LeadFeedHandler {
	return &LeadFeedHandler{hub: hub, logger: log}
}

// ServeWs authenticates the handshake and hands the connection to the hub.
// Browsers cannot set headers on websocket upgrades, so the token also
// travels as a query param.
func (h *LeadFeedHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("LeadFeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	if role, _ := claims["role"].(string); role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("LeadFeedHandler", "Lead feed session started", nil)
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("LeadFeedHandler", "Lead feed session ended", nil)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *LeadFeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/admin/leads/live", h.ServeWs)
}
