package handler

import (
	"errors"
	"io"

	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/ussd"

	"github.com/gin-gonic/gin"
)

// bindOptional decodes a JSON body when there is one. USSD legs must be
// answered even when the gateway sends no body, so a missing body is not an error.
func bindOptional(c *gin.Context, dst any) {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		logger.Warn("ussd request body not understood", map[string]any{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
	}
}

func (h *Handler) start(c *gin.Context) {
	var req ussd.StartRequest
	bindOptional(c, &req)
	req.SessionID = c.Param("sessionId")

	res := h.adapter.Start(c.Request.Context(), req)
	c.JSON(res.Status, res.Envelope)
}

func (h *Handler) response(c *gin.Context) {
	var req ussd.ResponseRequest
	bindOptional(c, &req)
	req.SessionID = c.Param("sessionId")

	res := h.adapter.Respond(c.Request.Context(), req)
	c.JSON(res.Status, res.Envelope)
}

func (h *Handler) end(c *gin.Context) {
	var req ussd.EndRequest
	bindOptional(c, &req)
	req.SessionID = c.Param("sessionId")

	status, reply := h.adapter.End(c.Request.Context(), req)
	c.JSON(status, reply)
}
