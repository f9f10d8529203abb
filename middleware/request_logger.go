package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 访问日志中间件，超过 slowThreshold 的请求以 Warn 级别输出。
func Logger(logger *slog.Logger, slowThreshold ...time.Duration) gin.HandlerFunc {
	var slow time.Duration
	if len(slowThreshold) > 0 {
		slow = slowThreshold[0]
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		cost := time.Since(start)
		level := slog.LevelInfo
		if slow > 0 && cost > slow {
			level = slog.LevelWarn
		}
		if len(c.Errors) > 0 {
			level = slog.LevelError
		}

		logger.Log(c.Request.Context(), level, "HTTP Request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"ip", c.ClientIP(),
			"cost", cost,
			"user_agent", c.Request.UserAgent(),
			"errors", c.Errors.ByType(gin.ErrorTypeAny).String(),
		)
	}
}
