package websocket

import (
	"strings"

	"ai-answer-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ProgressHandler upgrades HTTP requests into progress-stream websockets.
type ProgressHandler struct {
	hub    *Hub
	logger logger.ILogger
}

func NewProgressHandler(hub *Hub, log logger.ILogger) *ProgressHandler {
	return &ProgressHandler{hub: hub, logger: log}
}

func (h *ProgressHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/progress/:session_id", h.Serve)
}

// Serve streams live pipeline events for one session over a websocket.
func (h *ProgressHandler) Serve(c *fiber.Ctx) error {
	sessionID := strings.TrimSpace(c.Params("session_id"))
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing session id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ProgressHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			ServeWs(h.hub, conn, sessionID)
			h.logger.Info("ProgressHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// ServeWs attaches a websocket connection to the hub for one session.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // Run readPump in current goroutine (handler)
}
