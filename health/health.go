// Package health 汇总各组件的健康检查结果，供 /healthz 使用。
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wyfcoding/optionpricing/breaker"
	"github.com/wyfcoding/optionpricing/cache"
)

const (
	StatusUp   = "up"
	StatusDown = "down"

	defaultTimeout = 2 * time.Second
	probeKey       = "__health_probe__"
)

// Checker 定义健康检查函数原型。
type Checker func(ctx context.Context) error

// Report 一次检查的汇总结果。
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthy 是否所有检查都通过。
func (r Report) Healthy() bool {
	return r.Status == StatusUp
}

// Registry 按注册顺序保存具名检查项。
type Registry struct {
	mu       sync.RWMutex
	names    []string
	checkers map[string]Checker
	timeout  time.Duration
}

// NewRegistry 创建检查注册表，timeout <= 0 时每项检查限时 2 秒。
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Registry{checkers: make(map[string]Checker), timeout: timeout}
}

// Register 注册检查项，同名覆盖。
func (r *Registry) Register(name string, c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.checkers[name]; !ok {
		r.names = append(r.names, name)
	}
	r.checkers[name] = c
}

// Check 依次执行全部检查。nil 的 Registry 视为健康。
func (r *Registry) Check(ctx context.Context) Report {
	report := Report{Status: StatusUp}
	if r == nil {
		return report
	}
	r.mu.RLock()
	names := append([]string(nil), r.names...)
	checkers := make(map[string]Checker, len(r.checkers))
	for k, v := range r.checkers {
		checkers[k] = v
	}
	r.mu.RUnlock()

	report.Checks = make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := checkers[name](cctx)
		cancel()
		if err != nil {
			report.Status = StatusDown
			report.Checks[name] = err.Error()
			continue
		}
		report.Checks[name] = StatusUp
	}
	return report
}

// CacheChecker 写入并读回探测键。
func CacheChecker(c cache.Cache) Checker {
	return func(ctx context.Context) error {
		if c == nil {
			return errors.New("cache is nil")
		}
		want := []byte(time.Now().Format(time.RFC3339Nano))
		if err := c.Set(ctx, probeKey, want); err != nil {
			return fmt.Errorf("cache write: %w", err)
		}
		got, err := c.Get(ctx, probeKey)
		if err != nil {
			return fmt.Errorf("cache read: %w", err)
		}
		if string(got) != string(want) {
			return errors.New("cache returned stale probe value")
		}
		return nil
	}
}

// BreakerChecker 熔断器打开时视为不健康，半开视为可用。
func BreakerChecker(b *breaker.Breaker) Checker {
	return func(context.Context) error {
		if s := b.State(); s == gobreaker.StateOpen {
			return fmt.Errorf("circuit breaker %s", s)
		}
		return nil
	}
}
