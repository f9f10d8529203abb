package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/response"
)

// TimeoutMiddleware 给请求上下文加上 server.http.write_timeout 时限。
// EvaluateRange 在超时后停止分派；损益图渲染由 cache.Loader 单独限时，
// 这里超时只让当前请求返回 504，渲染结果仍会写入缓存。
func TimeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if duration <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), duration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			response.ErrorWithStatus(c, http.StatusGatewayTimeout, "pricing request timed out", duration.String())
			c.Abort()
		}
	}
}
