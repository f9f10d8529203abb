package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/limiter"
	"github.com/wyfcoding/optionpricing/response"
	"golang.org/x/time/rate"
)

// idleBucketTTL 客户端令牌桶闲置多久后回收。
const idleBucketTTL = 10 * time.Minute

// RateLimitMiddleware 以客户端 IP 为键限流，超限返回 ErrRateLimited (429)。
// 限流器出错时放行。
func RateLimitMiddleware(l limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		allowed, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "rate limiter error, request let through", "client", key, "error", err)
			c.Next()
			return
		}
		if !allowed {
			slog.WarnContext(c.Request.Context(), "pricing request rate limited", "client", key, "route", c.FullPath())
			response.Error(c, ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

// NewLocalRateLimitMiddleware 按 [ratelimit] 配置为每个客户端 IP 建立令牌桶，
// limit 为每秒请求数，burst 为突发上限。
func NewLocalRateLimitMiddleware(limit int, burst int) gin.HandlerFunc {
	return RateLimitMiddleware(limiter.NewKeyedLimiter(rate.Limit(limit), burst, idleBucketTTL))
}
