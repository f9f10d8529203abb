package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/response"
)

// Recovery 拦截定价与渲染路径上的 panic，返回 ErrPanicRecovered 信封。
// 查询串里带着复现所需的定价参数，一并写入日志。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					"error", err,
					"method", c.Request.Method,
					"route", c.FullPath(),
					"query", c.Request.URL.RawQuery,
					"stack", string(debug.Stack()),
				)

				response.Error(c, ErrPanicRecovered)
				c.Abort()
			}
		}()
		c.Next()
	}
}
