package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDKey is where the per-request id is stored in the gin context.
const RequestIDKey = "request_id"

// RequestLogger assigns each request an id (honouring an incoming
// X-Request-ID) and logs method/path/status/latency at a level matching the
// status code.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		reqLogger := WithFields(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"ip":         c.ClientIP(),
			"status":     status,
			"latency":    latency.String(),
		})

		switch {
		case status >= 500:
			reqLogger.Error("http request failed")
		case status >= 400:
			reqLogger.Warn("http request rejected")
		default:
			reqLogger.Info("http request")
		}
	}
}

// Recovery logs panics with request context and returns 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Error("panic in http handler",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.Any("panic", recovered),
		)
		c.AbortWithStatus(500)
	})
}
