// Package response 提供了统一的 HTTP 响应封装，支持业务错误码映射。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// HTTPStatusProvider 定义了能够提供 HTTP 状态码的错误接口。
type HTTPStatusProvider interface {
	HTTPStatus() int // 返回对应的 HTTP 标准状态码
}

// Success 发送一个标准的成功响应。
// 默认：HTTP 200，业务码 0，消息 "success"。
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code": 0,
		"msg":  "success",
		"data": data,
	})
}

// SuccessWithRawData 发送原始数据的成功响应 (不包装 code 和 msg)。
// 用于健康检查等系统接口。
func SuccessWithRawData(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Error 发送错误响应。
// xerrors.Error 按其分类映射 HTTP 状态码并透出业务码与详情，其余错误兜底为 500。
func Error(c *gin.Context, err error) {
	if err == nil {
		Success(c, nil)
		return
	}

	if xe, ok := xerrors.FromError(err); ok {
		c.JSON(xe.HTTPStatus(), gin.H{
			"code":   xe.Code,
			"msg":    xe.Message,
			"detail": xe.Detail,
		})
		return
	}

	statusCode := http.StatusInternalServerError
	if e, ok := err.(HTTPStatusProvider); ok {
		statusCode = e.HTTPStatus()
	}
	c.JSON(statusCode, gin.H{
		"code":   statusCode,
		"msg":    err.Error(),
		"detail": "",
	})
}

// ErrorWithStatus 发送一个带有指定 HTTP 状态码、消息和详情的错误响应。
func ErrorWithStatus(c *gin.Context, status int, msg string, detail string) {
	c.JSON(status, gin.H{
		"code":   status,
		"msg":    msg,
		"detail": detail,
	})
}
