// Package app 管理服务进程的生命周期：启动组件与服务器，等待退出信号，按逆序清理。
package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/sourcegraph/conc/pool"
)

const defaultShutdownTimeout = 10 * time.Second

// App 应用程序容器。
type App struct {
	name   string
	logger *slog.Logger
	opts   options
}

// New 创建应用程序实例。
func New(name string, logger *slog.Logger, opts ...Option) *App {
	o := options{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{name: name, logger: logger, opts: o}
}

// Run 依次执行 OnStart 钩子并启动所有服务器，阻塞直到 ctx 取消或任一服务器出错。
// 任一服务器失败都会取消其余服务器；返回前执行已启动钩子的 OnStop。
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting", "name", a.name, "pid", os.Getpid())

	started, err := a.start(ctx)
	if err != nil {
		return errors.Join(err, a.stop(started))
	}

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for _, srv := range a.opts.servers {
		p.Go(func(ctx context.Context) error {
			return srv.Start(ctx)
		})
	}
	runErr := p.Wait()
	if runErr != nil {
		a.logger.Error("server exited with error", "name", a.name, "error", runErr)
	} else {
		a.logger.Info("shutting down application", "name", a.name)
	}

	if err := a.stop(started); err != nil {
		return errors.Join(runErr, err)
	}
	if runErr == nil {
		a.logger.Info("application shut down gracefully", "name", a.name)
	}
	return runErr
}

func (a *App) start(ctx context.Context) (int, error) {
	for i, hook := range a.opts.hooks {
		if hook.OnStart == nil {
			continue
		}
		a.logger.Info("starting component", "name", hook.Name)
		if err := hook.OnStart(ctx); err != nil {
			a.logger.Error("failed to start component", "name", hook.Name, "error", err)
			return i, err
		}
	}
	return len(a.opts.hooks), nil
}

// stop 逆序执行前 n 个钩子的 OnStop，返回第一个错误。
func (a *App) stop(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.shutdownTimeout)
	defer cancel()

	var firstErr error
	for i := n - 1; i >= 0; i-- {
		hook := a.opts.hooks[i]
		if hook.OnStop == nil {
			continue
		}
		if err := hook.OnStop(ctx); err != nil {
			a.logger.Error("failed to stop component", "name", hook.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
