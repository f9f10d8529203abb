package server

import (
	"github.com/gin-gonic/gin"
)

// NewEngine 创建定价服务使用的 Gin 引擎，不挂载 gin 自带的 Logger/Recovery，
// 中间件由 pricingapi.NewRouter 按顺序传入。
// 开启 ContextWithFallback 后，*gin.Context 可直接作为 context.Context 传给 logging，
// 请求 ID 与超时随之生效。
func NewEngine(middlewares ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.ContextWithFallback = true
	engine.Use(middlewares...)
	return engine
}
