// Package middleware 提供定价服务 gin 引擎上挂载的中间件，顺序见 pricingapi.NewRouter。
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/idgen"
	"github.com/wyfcoding/optionpricing/logging"
)

const (
	HeaderXRequestID = "X-Request-ID"

	// maxRequestIDLen 超过该长度的外部请求 ID 被丢弃并重新生成。
	maxRequestIDLen = 64
)

// RequestID 沿用网关传入的 X-Request-ID，缺失或过长时用 idgen 生成。
// ID 写入请求上下文，经 logging.ContextHandler 输出到该请求的所有日志。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = idgen.GenIDString()
		}

		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))
		c.Header(HeaderXRequestID, requestID)

		c.Next()
	}
}
