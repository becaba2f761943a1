package handler

import (
	"context"
	"net/http"

	"ussd-bridge/internal/chatbot"
	"ussd-bridge/internal/config"
	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/middleware"
	"ussd-bridge/internal/session"
	"ussd-bridge/internal/ussd"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TestSender posts diagnostic messages to the chatbot platform.
type TestSender interface {
	SendTest(ctx context.Context, sender, text string) (*chatbot.Ack, error)
}

type Handler struct {
	adapter  *ussd.Adapter
	sessions *session.Store
	mailbox  *session.Mailbox
	sender   TestSender
	backend  Pinger
	cfg      config.Config
}

func NewHandler(
	adapter *ussd.Adapter,
	sessions *session.Store,
	mailbox *session.Mailbox,
	sender TestSender,
	backend Pinger,
	cfg config.Config,
) *Handler {
	return &Handler{
		adapter:  adapter,
		sessions: sessions,
		mailbox:  mailbox,
		sender:   sender,
		backend:  backend,
		cfg:      cfg,
	}
}

// RegisterRoutes mounts the USSD, webhook and health routes. Diagnostics are
// mounted only when admin is enabled.
func (h *Handler) RegisterRoutes(r *gin.Engine, admin *middleware.AdminAuth) {
	r.POST("/session/:sessionId/start", h.start)
	r.PUT("/session/:sessionId/response", h.response)
	r.PUT("/session/:sessionId/end", h.end)

	r.POST("/chatbot/callback", h.callback)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if admin.Enabled() {
		diag := r.Group("/test", middleware.GinRequireAdmin(admin))
		diag.GET("/api-test", h.apiTest)
		diag.POST("/send-test", h.sendTest)
		diag.GET("/redis-health", h.backendHealth)
	} else {
		logger.Warn("diagnostics routes disabled: ADMIN_PASSWORD_HASH not set", nil)
	}

	r.NoRoute(h.noRoute)

	for _, route := range r.Routes() {
		logger.Debug("route registered", map[string]any{
			"method": route.Method,
			"path":   route.Path,
		})
	}
}

func (h *Handler) noRoute(c *gin.Context) {
	logger.Warn("route not found", map[string]any{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
		"ip":     c.ClientIP(),
	})

	if middleware.IsUSSDRoute(c.Request.URL.Path) {
		c.JSON(http.StatusNotFound, ussd.InvalidRequestEnvelope())
		return
	}

	c.JSON(http.StatusNotFound, gin.H{
		"status":  "ERROR",
		"message": "Resource not found",
	})
}
