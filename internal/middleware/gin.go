package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ussd-bridge/internal/logger"
	"ussd-bridge/internal/ussd"
)

// GinRequireAdmin adapts the net/http AdminAuth middleware to Gin.
func GinRequireAdmin(auth *AdminAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := auth.RequireAdmin(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If auth middleware already handled the response, stop Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// RequestLogger logs one line per request after it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("http request", fields)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("http request", fields)
		default:
			logger.Info("http request", fields)
		}
	}
}

// IsUSSDRoute reports whether path belongs to the USSD gateway's API, which
// must always be answered with a USSD envelope.
func IsUSSDRoute(path string) bool {
	return strings.HasPrefix(path, "/session/")
}

// Recovery turns a panic into a well-formed reply: a USSD envelope on USSD
// routes, a status object elsewhere.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("unhandled panic", map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  recovered,
		})

		if IsUSSDRoute(c.Request.URL.Path) {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				ussd.ErrorEnvelope(ussd.MenuError, "Internal server error"))
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"status":  "ERROR",
			"message": "Internal server error",
		})
	})
}
