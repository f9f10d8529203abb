// Package breaker 提供了基于 gobreaker 的熔断器封装，集成 Prometheus 状态指标与日志。
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/wyfcoding/optionpricing/metrics"
	"github.com/wyfcoding/optionpricing/xerrors"
)

// ErrServiceUnavailable 熔断器处于打开状态或半开探测名额已满。
var ErrServiceUnavailable = xerrors.New(xerrors.ErrUnavailable, 503001, "service unavailable", "circuit breaker is open", nil)

// Settings 定义了熔断器的初始化参数。
type Settings struct {
	Name         string
	Enabled      bool
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
	// IsFailure 判断错误是否计入失败，为 nil 时所有错误都计入。
	IsFailure func(error) bool
}

// Breaker 封装了 gobreaker 实例。零值与 nil 都表示不熔断。
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker 初始化熔断器。未启用时返回直通的 Breaker。
func NewBreaker(st Settings, m *metrics.Metrics) *Breaker {
	if !st.Enabled {
		return &Breaker{}
	}
	failureRatio := st.FailureRatio
	if failureRatio <= 0 {
		failureRatio = 0.5
	}
	minRequests := st.MinRequests
	if minRequests == 0 {
		minRequests = 5
	}

	gs := gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.MaxRequests,
		Interval:    st.Interval,
		Timeout:     st.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && ratio >= failureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			if m != nil {
				m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	}
	if st.IsFailure != nil {
		gs.IsSuccessful = func(err error) bool {
			return err == nil || !st.IsFailure(err)
		}
	}
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(st.Name).Set(float64(gobreaker.StateClosed))
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gs)}
}

// State 返回当前状态，未启用时恒为 closed。
func (b *Breaker) State() gobreaker.State {
	if b == nil || b.cb == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}

// Execute 执行受熔断保护的函数。
func Execute[T any](b *Breaker, fn func() (T, error)) (T, error) {
	if b == nil || b.cb == nil {
		return fn()
	}

	res, err := b.cb.Execute(func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, xerrors.Detailed(ErrServiceUnavailable, "%s: %v", b.cb.Name(), err)
		}
		return zero, err
	}
	return res.(T), nil
}

// CountsInfraErrors 只把非参数类错误计为失败，请求参数错误与调用方主动取消不会触发熔断。
func CountsInfraErrors(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if xe, ok := xerrors.FromError(err); ok {
		return xe.Type != xerrors.ErrInvalidArg
	}
	return true
}
