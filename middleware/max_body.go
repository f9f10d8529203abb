package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/response"
)

// MaxBodyBytes 限制定价请求 JSON 体的大小（server.http.max_body_bytes），limit <= 0 时不限制。
// 声明的 Content-Length 超限直接返回 413；分块上传由 MaxBytesReader 截断，
// 之后 ShouldBindJSON 失败并返回 ErrInvalidInput。
func MaxBodyBytes(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, "request body too large",
				"limit is "+strconv.FormatInt(limit, 10)+" bytes")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
