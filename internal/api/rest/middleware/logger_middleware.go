package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carisaa/customer-portal/pkg/logger"
)

// LoggerMiddleware logs every request with method, path, status, latency
// and client IP, at a level matching the response class.
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.RequestURI,
			"status", status,
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
		}

		switch {
		case status >= 500:
			log.Errorw("Request failed", fields...)
		case status >= 400:
			log.Warnw("Request rejected", fields...)
		default:
			log.Infow("Request served", fields...)
		}
	}
}
