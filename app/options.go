package app

import (
	"context"
	"time"

	"github.com/wyfcoding/optionpricing/server"
)

// Option 配置 App 的函数式选项。
type Option func(*options)

type options struct {
	servers         []server.Server
	hooks           []Hook
	shutdownTimeout time.Duration
}

// Hook 组件的启动与停止逻辑，停止按注册的逆序执行。
type Hook struct {
	Name    string
	OnStart func(ctx context.Context) error
	OnStop  func(ctx context.Context) error
}

// WithServer 注册随应用启停的服务器。
func WithServer(servers ...server.Server) Option {
	return func(o *options) {
		o.servers = append(o.servers, servers...)
	}
}

// WithHook 注册生命周期钩子。
func WithHook(hooks ...Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithCleanup 注册只在关闭时执行的清理函数，例如关闭缓存。
func WithCleanup(name string, cleanup func() error) Option {
	return WithHook(Hook{
		Name:   name,
		OnStop: func(context.Context) error { return cleanup() },
	})
}

// WithShutdownTimeout 设置清理阶段的总超时，默认 10 秒。
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}
