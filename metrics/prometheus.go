// Package metrics 封装了基于 Prometheus 的独立注册表及定价服务的标准指标。
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 封装了基于 Prometheus 的指标采集注册表及预定义的标准监控指标。
type Metrics struct {
	registry *prometheus.Registry // 内部独立的 Prometheus 注册中心

	HTTPRequestsTotal     *prometheus.CounterVec   // HTTP 请求总量 (维度: method, path, status)
	HTTPRequestDuration   *prometheus.HistogramVec // HTTP 请求耗时分布
	HTTPInFlight          *prometheus.GaugeVec     // 处理中的 HTTP 请求
	HTTPSlowRequestsTotal *prometheus.CounterVec   // 超过慢请求阈值的 HTTP 请求

	OptionEvaluations   *prometheus.CounterVec // 定价/希腊字母求值次数 (维度: type, kind)
	BoundaryEvaluations *prometheus.CounterVec // 落在 T=0 / σ=0 边界上的求值次数 (维度: type)
	DiagramsRendered    *prometheus.CounterVec // 渲染的损益图数量 (维度: format)
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CircuitBreakerState *prometheus.GaugeVec // 熔断器状态 0 关闭 / 1 半开 / 2 打开 (维度: name)

	BuildInfo *prometheus.GaugeVec
}

// NewMetrics 初始化并返回一个新的指标采集器。
// 它会自动注册 Go 运行时指标和进程指标。
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	m.HTTPRequestDuration = m.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_server_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	m.HTTPInFlight = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "http_server_requests_in_flight",
		Help: "HTTP requests currently being served",
	}, []string{"method", "path"})

	m.HTTPSlowRequestsTotal = m.NewCounterVec(prometheus.CounterOpts{
		Name: "http_server_slow_requests_total",
		Help: "HTTP requests slower than the configured threshold",
	}, []string{"method", "path"})

	m.OptionEvaluations = m.NewCounterVec(prometheus.CounterOpts{
		Name: "option_evaluations_total",
		Help: "Option price and Greek evaluations",
	}, []string{"type", "kind"})

	m.BoundaryEvaluations = m.NewCounterVec(prometheus.CounterOpts{
		Name: "option_boundary_evaluations_total",
		Help: "Evaluations resolved by the zero-expiry or zero-volatility boundary rule",
	}, []string{"type"})

	m.DiagramsRendered = m.NewCounterVec(prometheus.CounterOpts{
		Name: "payoff_diagrams_rendered_total",
		Help: "Payoff diagrams rendered",
	}, []string{"format"})

	m.CacheHits = m.NewCounter(prometheus.CounterOpts{
		Name: "payoff_diagram_cache_hits_total",
		Help: "Rendered diagrams served from cache",
	})
	m.CacheMisses = m.NewCounter(prometheus.CounterOpts{
		Name: "payoff_diagram_cache_misses_total",
		Help: "Diagram requests that required rendering",
	})

	m.CircuitBreakerState = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state (0: closed, 1: half-open, 2: open)",
	}, []string{"name"})

	slog.Info("unified metrics registry initialized", "service", serviceName)
	return m
}

// NewCounter 创建并注册一个无维度计数器。
func (m *Metrics) NewCounter(opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	m.registry.MustRegister(c)
	return c
}

// NewCounterVec 创建并注册一个新的计数器指标。
func (m *Metrics) NewCounterVec(opts prometheus.CounterOpts, labelNames []string) *prometheus.CounterVec {
	cv := prometheus.NewCounterVec(opts, labelNames)
	m.registry.MustRegister(cv)
	return cv
}

// NewGaugeVec 创建并注册一个新的仪表盘指标。
func (m *Metrics) NewGaugeVec(opts prometheus.GaugeOpts, labelNames []string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(opts, labelNames)
	m.registry.MustRegister(gv)
	return gv
}

// NewHistogramVec 创建并注册一个新的直方图指标。
func (m *Metrics) NewHistogramVec(opts prometheus.HistogramOpts, labelNames []string) *prometheus.HistogramVec {
	hv := prometheus.NewHistogramVec(opts, labelNames)
	m.registry.MustRegister(hv)
	return hv
}

// Registry 返回内部注册表，供测试或额外的 Collector 使用。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler 返回用于暴露指标的 HTTP 处理器。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
