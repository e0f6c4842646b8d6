package server

import (
	"log/slog"

	"github.com/minasenanami/wonderful-editor/internal/featureflags"
	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ArticleFeedUpgrade gates the feed: 404 while the activity_feed flag is off
// for everyone, 426 for plain HTTP requests.
func (s *Server) ArticleFeedUpgrade(c *fiber.Ctx) error {
	if !s.featureFlags.Active(featureflags.ActivityFeed) {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Route", c.Path()))
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{Error: "WebSocket upgrade required"})
	}
	return c.Next()
}

// ArticleFeedHandler streams article events to the connection. The feed is
// public and read-only.
func (s *Server) ArticleFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client, err := s.hub.Register(0, conn)
		if err != nil {
			middleware.Logger.Warn("feed connection refused", slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}
