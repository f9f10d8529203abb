// Command optionpricer 提供 Black-Scholes 期权定价 HTTP 服务，并支持离线生成损益图与单次报价。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wyfcoding/optionpricing/algorithm/finance"
	"github.com/wyfcoding/optionpricing/algorithm/types"
	"github.com/wyfcoding/optionpricing/app"
	"github.com/wyfcoding/optionpricing/bootstrap"
	"github.com/wyfcoding/optionpricing/breaker"
	"github.com/wyfcoding/optionpricing/cache"
	"github.com/wyfcoding/optionpricing/config"
	"github.com/wyfcoding/optionpricing/health"
	"github.com/wyfcoding/optionpricing/payoff"
	"github.com/wyfcoding/optionpricing/pricingapi"
	"github.com/wyfcoding/optionpricing/server"
)

const serviceName = "optionpricer"

// version 构建时通过 -ldflags "-X main.version=..." 注入
var version = "dev"

type quoteFlags struct {
	typ    string
	spot   float64
	strike float64
	expiry float64
	rate   float64
	vol    float64
}

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file (defaults and APP_* env when empty)")
		mode       = flag.String("mode", "serve", "serve | diagrams | quote")
		outDir     = flag.String("out", "", "output directory for -mode diagrams (defaults to diagram.output_dir)")
		q          quoteFlags
	)
	flag.StringVar(&q.typ, "type", "call", "option type for -mode quote")
	flag.Float64Var(&q.spot, "spot", 100, "underlying price S")
	flag.Float64Var(&q.strike, "strike", 100, "strike price K")
	flag.Float64Var(&q.expiry, "expiry", 1, "time to expiry T in years")
	flag.Float64Var(&q.rate, "rate", 0.05, "risk-free rate r")
	flag.Float64Var(&q.vol, "vol", 0.2, "volatility sigma")
	flag.Parse()

	b := bootstrap.New(serviceName, version)
	if err := b.Initialize(*configPath); err != nil {
		slog.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch *mode {
	case "serve":
		err = serve(ctx, b)
	case "diagrams":
		err = diagrams(b.Config, *outDir)
	case "quote":
		err = quote(q)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		b.Logger.Error("optionpricer exited with error", "mode", *mode, "error", err)
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context, b *bootstrap.Bootstrapper) error {
	cfg := b.Config
	checks := health.NewRegistry(0)

	var diagramCache cache.Cache
	if cfg.Diagram.Cache.Enabled {
		cc := cfg.Diagram.Cache
		bc, err := cache.NewBigCache(ctx, cache.BigCacheOptions{
			LifeWindow:       cc.LifeWindow,
			CleanWindow:      cc.CleanWindow,
			Shards:           cc.Shards,
			MaxEntrySize:     cc.MaxEntrySize,
			HardMaxCacheSize: cc.HardMaxCacheSize,
		})
		if err != nil {
			return err
		}
		diagramCache = bc
		checks.Register("diagram_cache", health.CacheChecker(bc))
	}
	loader := cache.NewLoader(diagramCache)
	if cfg.Diagram.RenderTimeout > 0 {
		loader.Timeout = cfg.Diagram.RenderTimeout
	}

	bcfg := cfg.Diagram.Breaker
	renderBreaker := breaker.NewBreaker(breaker.Settings{
		Name:         "payoff_render",
		Enabled:      bcfg.Enabled,
		MaxRequests:  bcfg.MaxRequests,
		Interval:     bcfg.Interval,
		Timeout:      bcfg.Timeout,
		FailureRatio: bcfg.FailureRatio,
		MinRequests:  bcfg.MinRequests,
		IsFailure:    breaker.CountsInfraErrors,
	}, b.Metrics)
	checks.Register("payoff_render", health.BreakerChecker(renderBreaker))

	handler := pricingapi.NewHandler(pricingapi.OptionsFromConfig(cfg), b.Metrics, loader, b.Logger,
		pricingapi.WithRenderBreaker(renderBreaker))
	config.RegisterReloadHook(func(next *config.Config) {
		handler.SetOptions(pricingapi.OptionsFromConfig(next))
	})

	engine, err := pricingapi.NewRouter(cfg, handler, b.Metrics, b.Logger, checks)
	if err != nil {
		return err
	}
	httpCfg := cfg.Server.HTTP
	srv := server.NewGinServer(engine, httpCfg.ListenAddr(), b.Logger.Logger, server.Options{
		ReadTimeout:     httpCfg.ReadTimeout,
		WriteTimeout:    httpCfg.WriteTimeout,
		IdleTimeout:     httpCfg.IdleTimeout,
		ShutdownTimeout: httpCfg.ShutdownTimeout,
	})

	return app.New(cfg.Server.Name, b.Logger.Logger,
		app.WithServer(srv),
		app.WithCleanup("diagram-cache", loader.Close),
		app.WithShutdownTimeout(httpCfg.ShutdownTimeout),
	).Run(ctx)
}

// diagrams 按配置中的场景输出看涨、看跌与组合损益图。价格区间取标的价格的倍数。
func diagrams(cfg *config.Config, out string) error {
	if out == "" {
		out = cfg.Diagram.OutputDir
	}
	sc := cfg.Diagram.Scenario
	market := finance.NewParams(sc.Spot, sc.Spot, sc.Expiry, cfg.Pricing.DefaultRate, cfg.Pricing.DefaultVolatility)
	if err := market.Validate(); err != nil {
		return err
	}
	spots := payoff.Linspace(sc.Spot*cfg.Diagram.RangeLow, sc.Spot*cfg.Diagram.RangeHigh, cfg.Diagram.Points)

	scenarios := make([]payoff.Scenario, 0, len(sc.Strikes))
	for _, s := range sc.Strikes {
		scenarios = append(scenarios, payoff.Scenario{Name: s.Name, Strike: s.Strike})
	}
	written, err := payoff.Scenarios(out, market, spots, scenarios...)
	for _, path := range written {
		slog.Info("payoff diagram written", "path", path)
	}
	return err
}

type quoteOutput struct {
	Type   types.OptionType            `json:"type"`
	Params finance.Params              `json:"params"`
	Greeks finance.Greeks              `json:"greeks"`
	Desk   *finance.BlackScholesResult `json:"desk"`
}

func quote(q quoteFlags) error {
	typ, err := types.ParseOptionType(q.typ)
	if err != nil {
		return err
	}
	p := finance.NewParams(q.spot, q.strike, q.expiry, q.rate, q.vol)
	g, err := finance.EvaluateChecked(typ, p)
	if err != nil {
		return err
	}
	desk, err := finance.ToDeskConvention(g)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(quoteOutput{
		Type:   typ,
		Params: p,
		Greeks: g,
		Desk:   desk,
	})
}
