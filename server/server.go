package server

import "context"

// Server 由 app.App 托管的服务生命周期。目前只有 HTTP 定价服务一种实现。
type Server interface {
	// Start 阻塞运行，ctx 取消后返回 nil，监听失败时返回错误。
	Start(ctx context.Context) error
	// Stop 在关闭时限内等待处理中的定价与渲染请求结束。
	Stop(ctx context.Context) error
}

var _ Server = (*GinServer)(nil)
