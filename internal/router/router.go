package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/bot"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/middleware"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/models"
	"github.com/bingwamtaa/Whatsapp-Data-Boy/internal/pkg/utils"
)

const statusPage = `<html>
  <head><title>FY'S ULTRA BOT</title></head>
  <body style="font-family: Arial; text-align: center;">
    <h1>Welcome to FY'S ULTRA BOT</h1>
    <p>The bot is online. Message the paired number on WhatsApp to get started.</p>
  </body>
</html>`

// Setup configures all routes for the Echo server.
func Setup(e *echo.Echo, b *bot.Bot, deduper middleware.MessageDeduper, logger *zap.Logger) {
	e.Use(echomw.Recover())

	started := time.Now()

	// Read-only status page.
	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, statusPage)
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		})
	})

	// Gateway webhook: parse, dedup, enqueue. Always 200 so the
	// gateway stops redelivering.
	e.POST("/webhook", func(c echo.Context) error {
		var msg models.InboundMessage
		if err := c.Bind(&msg); err != nil {
			logger.Warn("malformed webhook payload", zap.Error(err))
			return c.NoContent(http.StatusOK)
		}
		if msg.From == "" {
			return c.NoContent(http.StatusOK)
		}
		if msg.ID == "" {
			msg.ID = utils.GenerateUUID()
		}
		b.Enqueue(msg)
		return c.NoContent(http.StatusOK)
	}, middleware.MessageDedup(deduper))
}
