package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterBuildInfo 注册 optionpricer_build_info，携带服务名、-ldflags 注入的版本号与 Go 版本。
// 只有第一次调用生效，配置热更新不会改写版本。
func (m *Metrics) RegisterBuildInfo(serviceName, version string) {
	if m == nil || m.BuildInfo != nil {
		return
	}
	if serviceName == "" {
		serviceName = "unknown"
	}
	if version == "" {
		version = "dev"
	}

	m.BuildInfo = m.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optionpricer_build_info",
		Help: "Build information of the option pricing service",
	}, []string{"service", "version", "go_version"})

	m.BuildInfo.WithLabelValues(serviceName, version, runtime.Version()).Set(1)
}
