// Package bootstrap 负责进程级基础设施的初始化：配置、日志、ID 生成器与指标注册表。
package bootstrap

import (
	"fmt"

	"github.com/wyfcoding/optionpricing/config"
	"github.com/wyfcoding/optionpricing/idgen"
	"github.com/wyfcoding/optionpricing/logging"
	"github.com/wyfcoding/optionpricing/metrics"
)

// Bootstrapper 持有初始化完成的基础组件
type Bootstrapper struct {
	ServiceName string
	Version     string

	Config  *config.Config
	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// New 创建一个新的引导器实例
func New(serviceName, version string) *Bootstrapper {
	return &Bootstrapper{
		ServiceName: serviceName,
		Version:     version,
	}
}

// Initialize 加载配置文件（为空时只用默认值与环境变量），随后按配置初始化日志、ID 生成器与指标。
func (b *Bootstrapper) Initialize(configPath string) error {
	cfg := new(config.Config)
	if err := config.Load(configPath, cfg); err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if b.ServiceName == "" {
		b.ServiceName = cfg.Server.Name
	}
	if b.Version != "" {
		cfg.Version = b.Version
	}
	b.Config = cfg

	b.Logger = logging.InitLogger(LoggingConfig(b.ServiceName, cfg.Log))
	// InitLogger 只生效一次，级别总以本次配置为准
	logging.SetLevel(cfg.Log.Level)

	if err := idgen.Init(idgen.Config{
		Type:      cfg.IDGen.Type,
		MachineID: cfg.IDGen.MachineID,
		StartTime: cfg.IDGen.StartTime,
	}); err != nil {
		return fmt.Errorf("init id generator: %w", err)
	}

	b.Metrics = metrics.NewMetrics(b.ServiceName)
	b.Metrics.RegisterBuildInfo(b.ServiceName, cfg.Version)

	b.Logger.Info("bootstrap completed", "service", b.ServiceName, "version", cfg.Version, "env", cfg.Server.Environment)
	config.PrintWithMask(cfg)
	return nil
}

// LoggingConfig 将配置文件中的 log 段转换为 logging.Config。
func LoggingConfig(service string, lc config.LogConfig) logging.Config {
	return logging.Config{
		Service:    service,
		Module:     "main",
		Level:      lc.Level,
		File:       lc.File,
		Console:    lc.Console,
		MaxSize:    lc.MaxSize,
		MaxBackups: lc.MaxBackups,
		MaxAge:     lc.MaxAge,
		Compress:   lc.Compress,
	}
}
