package handler

import (
	"io"
	"net/http"

	"ussd-bridge/internal/chatbot"
	"ussd-bridge/internal/logger"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 1 << 20

func (h *Handler) callback(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		logger.Error("failed to read chatbot callback", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"status": "ERROR", "message": "invalid request"})
		return
	}

	logger.Debug("chatbot callback full payload", map[string]any{
		"body": string(raw),
	})

	cb, err := chatbot.Resolve(raw)
	if err != nil {
		logger.Warn("callback received without sessionId", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "ERROR",
			"message": "Missing sessionId in callbackData",
		})
		return
	}

	ctx := c.Request.Context()

	sess, err := h.sessions.Get(ctx, cb.SessionID)
	if err != nil {
		h.callbackError(c, cb.SessionID, err)
		return
	}
	if sess == nil {
		logger.Warn("callback received for unknown session", map[string]any{
			"session_id": cb.SessionID,
			"msisdn":     cb.MSISDN,
		})
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "ERROR",
			"message": "Session not found",
		})
		return
	}

	if cb.Defaulted() {
		logger.Warn("callback received without text content", map[string]any{
			"session_id": cb.SessionID,
		})
	}

	if err := h.mailbox.Put(ctx, cb.SessionID, cb.Text); err != nil {
		h.callbackError(c, cb.SessionID, err)
		return
	}

	logger.Info("chatbot response stored", map[string]any{
		"session_id": cb.SessionID,
		"msisdn":     cb.MSISDN,
		"source":     cb.Source,
	})

	c.JSON(http.StatusOK, gin.H{
		"status":  "SUCCESS",
		"message": "Response processed successfully",
	})
}

func (h *Handler) callbackError(c *gin.Context, sessionID string, err error) {
	logger.Error("error handling chatbot callback", map[string]any{
		"session_id": sessionID,
		"error":      err.Error(),
	})
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "ERROR",
		"message": "Internal server error",
	})
}
