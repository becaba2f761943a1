package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"ussd-bridge/internal/config"
	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/middleware"

	"github.com/gin-gonic/gin"
)

const notSet = "Not set"

func (h *Handler) apiTest(c *gin.Context) {
	apiKey := config.Mask(h.cfg.ChatbotAPIKey)
	if apiKey == "" {
		apiKey = notSet
	}
	destination := h.cfg.ChatbotDestination
	if destination == "" {
		destination = notSet
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"envCheck": gin.H{
			"apiKey":      apiKey,
			"baseUrl":     h.cfg.ChatbotBaseURL,
			"destination": destination,
		},
		"issues": h.cfg.Validate(),
	})
}

type sendTestRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

func (h *Handler) sendTest(c *gin.Context) {
	var req sendTestRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request"})
		return
	}

	admin, _ := middleware.AdminFromContext(c.Request.Context())
	logger.Info("sending test message to chatbot", map[string]any{
		"admin":  admin,
		"sender": req.Sender,
	})

	ack, err := h.sender.SendTest(c.Request.Context(), req.Sender, req.Message)
	if err != nil {
		logger.Error("error sending test message", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	var response any = json.RawMessage(ack.Body)
	if len(ack.Body) == 0 {
		response = nil
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"response": response,
	})
}

func (h *Handler) backendHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)

	if err := h.backend.Ping(ctx); err != nil {
		logger.Error("store health check failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"message":   "Store connection failed: " + err.Error(),
			"backend":   h.cfg.StoreBackend,
			"timestamp": now,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"message":   "Store connection successful",
		"backend":   h.cfg.StoreBackend,
		"timestamp": now,
	})
}
