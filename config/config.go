// Package config 提供了统一的配置加载与管理能力。
// 以 TOML 文件为基础，APP_ 前缀的环境变量覆盖同名键，文件变更后热更新并重新校验。
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/wyfcoding/optionpricing/logging"
	"github.com/wyfcoding/optionpricing/validator"
)

// Config 全局顶级配置结构.
type Config struct {
	Version   string          `mapstructure:"version"   toml:"version"`
	Server    ServerConfig    `mapstructure:"server"    toml:"server"`
	Log       LogConfig       `mapstructure:"log"       toml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   toml:"metrics"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" toml:"ratelimit"`
	Pricing   PricingConfig   `mapstructure:"pricing"   toml:"pricing"`
	Diagram   DiagramConfig   `mapstructure:"diagram"   toml:"diagram"`
	IDGen     IDGenConfig     `mapstructure:"idgen"     toml:"idgen"`
}

// ServerConfig 定义服务器运行时的基础网络与环境参数.
type ServerConfig struct {
	Name        string     `mapstructure:"name"        toml:"name"        validate:"required"`
	Environment string     `mapstructure:"environment" toml:"environment" validate:"oneof=dev test prod"`
	HTTP        HTTPConfig `mapstructure:"http"        toml:"http"`
}

// HTTPConfig HTTP 监听与超时参数.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"             toml:"addr"`
	Port            int           `mapstructure:"port"             toml:"port"             validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     toml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    toml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"     toml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   toml:"max_body_bytes"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"  toml:"trusted_proxies"`
}

// ListenAddr 返回 host:port 形式的监听地址。
func (h HTTPConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%d", h.Addr, h.Port)
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"       validate:"omitempty,oneof=debug info warn warning error"`
	File       string `mapstructure:"file"        toml:"file"`        // 日志文件路径，为空只写 stdout。
	Console    bool   `mapstructure:"console"     toml:"console"`     // 写文件时是否同时写 stdout。
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"`    // 单个文件最大大小 (MB)。
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"` // 最大备份数。
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"`     // 最大保留天数。
	Compress   bool   `mapstructure:"compress"    toml:"compress"`
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Path    string `mapstructure:"path"    toml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// RateLimitConfig 定义令牌桶限流参数（按客户端 IP）.
type RateLimitConfig struct {
	Rate    int  `mapstructure:"rate"    toml:"rate"  validate:"gte=0"`
	Burst   int  `mapstructure:"burst"   toml:"burst" validate:"gte=0"`
	Enabled bool `mapstructure:"enabled" toml:"enabled"`
}

// PricingConfig 定价默认参数，请求未携带利率或波动率时使用.
type PricingConfig struct {
	DefaultRate       float64 `mapstructure:"default_rate"       toml:"default_rate"`
	DefaultVolatility float64 `mapstructure:"default_volatility" toml:"default_volatility" validate:"gte=0"`
	Workers           int     `mapstructure:"workers"            toml:"workers"            validate:"gte=0"` // 0 表示 GOMAXPROCS
	MaxPoints         int     `mapstructure:"max_points"         toml:"max_points"         validate:"min=2"`
}

// DiagramConfig 损益图参数。价格区间以行权价的倍数表示。
type DiagramConfig struct {
	RangeLow      float64              `mapstructure:"range_low"      toml:"range_low"      validate:"gte=0"`
	RangeHigh     float64              `mapstructure:"range_high"     toml:"range_high"     validate:"gtfield=RangeLow"`
	Points        int                  `mapstructure:"points"         toml:"points"         validate:"min=2"`
	Width         float64              `mapstructure:"width"          toml:"width"          validate:"gt=0"` // 英寸
	Height        float64              `mapstructure:"height"         toml:"height"         validate:"gt=0"` // 英寸
	ShowBreakeven bool                 `mapstructure:"show_breakeven" toml:"show_breakeven"`
	OutputDir     string               `mapstructure:"output_dir"     toml:"output_dir"`
	RenderTimeout time.Duration        `mapstructure:"render_timeout" toml:"render_timeout"` // 单次渲染时限，与请求超时无关
	Scenario      ScenarioConfig       `mapstructure:"scenario"       toml:"scenario"`
	Cache         BigCacheConfig       `mapstructure:"cache"          toml:"cache"`
	Breaker       CircuitBreakerConfig `mapstructure:"breaker"        toml:"breaker"`
}

// ScenarioConfig 离线生成演示损益图时使用的市场参数与行权价.
type ScenarioConfig struct {
	Spot    float64        `mapstructure:"spot"    toml:"spot"    validate:"gt=0"`
	Expiry  float64        `mapstructure:"expiry"  toml:"expiry"  validate:"gte=0"`
	Strikes []StrikeConfig `mapstructure:"strikes" toml:"strikes" validate:"dive"`
}

// StrikeConfig 单个场景，Name 用于输出文件名。
type StrikeConfig struct {
	Name   string  `mapstructure:"name"   toml:"name"   validate:"required"`
	Strike float64 `mapstructure:"strike" toml:"strike" validate:"gt=0"`
}

// BigCacheConfig 渲染结果本地内存缓存参数.
type BigCacheConfig struct {
	Enabled          bool          `mapstructure:"enabled"             toml:"enabled"`
	LifeWindow       time.Duration `mapstructure:"life_window"         toml:"life_window"`
	CleanWindow      time.Duration `mapstructure:"clean_window"        toml:"clean_window"`
	Shards           int           `mapstructure:"shards"              toml:"shards"`
	MaxEntrySize     int           `mapstructure:"max_entry_size"      toml:"max_entry_size"`
	HardMaxCacheSize int           `mapstructure:"hard_max_cache_size" toml:"hard_max_cache_size"` // MB
}

// CircuitBreakerConfig 渲染链路熔断参数。
type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"       toml:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"  toml:"max_requests"` // 半开状态允许的探测请求数
	Interval     time.Duration `mapstructure:"interval"      toml:"interval"`     // 关闭状态下计数清零周期
	Timeout      time.Duration `mapstructure:"timeout"       toml:"timeout"`      // 打开后转入半开的等待时间
	FailureRatio float64       `mapstructure:"failure_ratio" toml:"failure_ratio" validate:"gte=0,lte=1"`
	MinRequests  uint32        `mapstructure:"min_requests"  toml:"min_requests"`
}

// IDGenConfig 请求 ID 与报价编号生成器参数.
type IDGenConfig struct {
	Type      string `mapstructure:"type"       toml:"type"       validate:"omitempty,oneof=snowflake sonyflake"`
	MachineID int64  `mapstructure:"machine_id" toml:"machine_id" validate:"gte=0,lte=1023"`
	StartTime string `mapstructure:"start_time" toml:"start_time"`
}

var (
	mu        sync.RWMutex
	vInstance = viper.New()
	onReload  []func(*Config)
	validate  = validator.Default()
)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	onReload = append(onReload, hook)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "dev")
	v.SetDefault("server.name", "optionpricer")
	v.SetDefault("server.environment", "dev")
	v.SetDefault("server.http.addr", "")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.read_timeout", 10*time.Second)
	v.SetDefault("server.http.write_timeout", 30*time.Second)
	v.SetDefault("server.http.idle_timeout", 60*time.Second)
	v.SetDefault("server.http.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.http.max_body_bytes", 1<<20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rate", 100)
	v.SetDefault("ratelimit.burst", 200)
	v.SetDefault("pricing.default_rate", 0.05)
	v.SetDefault("pricing.default_volatility", 0.2)
	v.SetDefault("pricing.workers", 0)
	v.SetDefault("pricing.max_points", 2000)
	v.SetDefault("diagram.range_low", 0.5)
	v.SetDefault("diagram.range_high", 1.5)
	v.SetDefault("diagram.points", 100)
	v.SetDefault("diagram.width", 10.0)
	v.SetDefault("diagram.height", 6.0)
	v.SetDefault("diagram.show_breakeven", true)
	v.SetDefault("diagram.output_dir", "plots")
	v.SetDefault("diagram.render_timeout", 15*time.Second)
	v.SetDefault("diagram.scenario.spot", 100.0)
	v.SetDefault("diagram.scenario.expiry", 1.0)
	v.SetDefault("diagram.scenario.strikes", []map[string]any{
		{"name": "ATM", "strike": 100.0},
		{"name": "ITM_Call", "strike": 80.0},
		{"name": "OTM_Call", "strike": 120.0},
	})
	v.SetDefault("diagram.cache.enabled", true)
	v.SetDefault("diagram.cache.life_window", 10*time.Minute)
	v.SetDefault("diagram.cache.clean_window", 5*time.Minute)
	v.SetDefault("diagram.cache.shards", 64)
	v.SetDefault("diagram.cache.max_entry_size", 256<<10)
	v.SetDefault("diagram.cache.hard_max_cache_size", 64)
	v.SetDefault("diagram.breaker.enabled", true)
	v.SetDefault("diagram.breaker.max_requests", 1)
	v.SetDefault("diagram.breaker.interval", time.Minute)
	v.SetDefault("diagram.breaker.timeout", 30*time.Second)
	v.SetDefault("diagram.breaker.failure_ratio", 0.5)
	v.SetDefault("diagram.breaker.min_requests", 5)
	v.SetDefault("idgen.type", "snowflake")
	v.SetDefault("idgen.machine_id", 1)
}

// Load 加载配置文件并开启热更新。path 为空时只使用默认值与环境变量。
func Load(path string, conf *Config) error {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config error: %w", err)
		}
	}

	if err := v.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	vInstance = v
	mu.Unlock()

	if path == "" {
		return nil
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		var next Config
		if err := v.Unmarshal(&next); err != nil {
			slog.Error("reload config unmarshal failed", "error", err)
			return
		}
		if err := validate.Struct(&next); err != nil {
			slog.Error("reload config validation failed, keeping previous config", "error", err)
			return
		}
		applyReload(conf, &next)
	})
	v.WatchConfig()

	return nil
}

// applyReload 将校验通过的新配置写回并触发回调，日志级别立即生效。
func applyReload(conf, next *Config) {
	mu.Lock()
	*conf = *next
	hooks := append([]func(*Config){}, onReload...)
	mu.Unlock()

	logging.SetLevel(conf.Log.Level)
	slog.Info("config hot-reloaded and validated successfully", "log_level", conf.Log.Level)
	for _, hook := range hooks {
		hook(conf)
	}
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		slog.Error("failed to marshal config for printing", "error", err)
		return
	}

	var configMap map[string]any
	if err := json.Unmarshal(data, &configMap); err != nil {
		slog.Error("failed to unmarshal config for masking", "error", err)
		return
	}

	mask(configMap)

	maskedJSON, err := json.Marshal(configMap)
	if err != nil {
		slog.Error("failed to marshal masked config", "error", err)
		return
	}

	slog.Info("current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)
			continue
		}
		if slice, ok := val.([]any); ok {
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					mask(itemMap)
				}
			}
			continue
		}
		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"
				break
			}
		}
	}
}

// GetViper 返回最近一次 Load 使用的 Viper 实例.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	return vInstance
}
