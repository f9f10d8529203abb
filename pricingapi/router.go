package pricingapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/config"
	"github.com/wyfcoding/optionpricing/health"
	"github.com/wyfcoding/optionpricing/logging"
	"github.com/wyfcoding/optionpricing/metrics"
	"github.com/wyfcoding/optionpricing/middleware"
	"github.com/wyfcoding/optionpricing/response"
	"github.com/wyfcoding/optionpricing/server"
)

const slowRequestThreshold = 500 * time.Millisecond

// NewRouter 组装中间件、业务路由、健康检查与指标端点。checks 为 nil 时 /healthz 恒为健康。
func NewRouter(cfg *config.Config, h *Handler, m *metrics.Metrics, logger *logging.Logger, checks *health.Registry) (*gin.Engine, error) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	mws := []gin.HandlerFunc{
		middleware.Recovery(logger.Logger),
		middleware.RequestID(),
		middleware.Logger(logger.Logger, slowRequestThreshold),
	}
	if m != nil {
		mws = append(mws, middleware.HTTPMetricsMiddlewareWithOptions(m, middleware.MetricsOptions{
			SlowThreshold: slowRequestThreshold,
			SkipPaths:     []string{metricsPath, "/healthz"},
		}))
	}
	mws = append(mws, middleware.MaxBodyBytes(cfg.Server.HTTP.MaxBodyBytes))
	if cfg.RateLimit.Enabled && cfg.RateLimit.Rate > 0 {
		mws = append(mws, middleware.NewLocalRateLimitMiddleware(cfg.RateLimit.Rate, cfg.RateLimit.Burst))
	}
	mws = append(mws, middleware.TimeoutMiddleware(cfg.Server.HTTP.WriteTimeout))

	engine := server.NewEngine(mws...)
	if err := engine.SetTrustedProxies(cfg.Server.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.GET("/healthz", func(c *gin.Context) {
		report := checks.Check(c.Request.Context())
		body := gin.H{
			"status":  report.Status,
			"service": cfg.Server.Name,
			"version": cfg.Version,
			"checks":  report.Checks,
		}
		if !report.Healthy() {
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		response.SuccessWithRawData(c, body)
	})
	if m != nil && cfg.Metrics.Enabled {
		engine.GET(metricsPath, gin.WrapH(m.Handler()))
	}
	engine.NoRoute(func(c *gin.Context) {
		response.ErrorWithStatus(c, http.StatusNotFound, "not found", c.Request.URL.Path)
	})

	h.RegisterRoutes(engine)
	return engine, nil
}
