package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTOML = `
version = "1.2.0"

[server]
name = "optionpricer"
environment = "test"

[server.http]
port = 9090
read_timeout = "5s"

[log]
level = "debug"

[pricing]
default_rate = 0.03
workers = 4

[diagram]
points = 50

[[diagram.scenario.strikes]]
name = "ATM"
strike = 100.0

[[diagram.scenario.strikes]]
name = "Deep_OTM"
strike = 150.0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optionpricer.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	var cfg Config
	if err := Load(writeConfig(t, sampleTOML), &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Version != "1.2.0" || cfg.Server.Environment != "test" {
		t.Errorf("unexpected header %+v", cfg)
	}
	if cfg.Server.HTTP.Port != 9090 || cfg.Server.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("http %+v", cfg.Server.HTTP)
	}
	if cfg.Server.HTTP.WriteTimeout != 30*time.Second {
		t.Errorf("default write timeout not applied: %v", cfg.Server.HTTP.WriteTimeout)
	}
	if cfg.Pricing.DefaultRate != 0.03 || cfg.Pricing.DefaultVolatility != 0.2 || cfg.Pricing.Workers != 4 {
		t.Errorf("pricing %+v", cfg.Pricing)
	}
	if cfg.Diagram.Points != 50 || cfg.Diagram.RangeLow != 0.5 || cfg.Diagram.RangeHigh != 1.5 {
		t.Errorf("diagram %+v", cfg.Diagram)
	}
	if len(cfg.Diagram.Scenario.Strikes) != 2 || cfg.Diagram.Scenario.Strikes[1].Name != "Deep_OTM" {
		t.Errorf("strikes %+v", cfg.Diagram.Scenario.Strikes)
	}
	if GetViper().GetString("log.level") != "debug" {
		t.Errorf("viper instance not updated")
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_PRICING_DEFAULT_VOLATILITY", "0.35")
	t.Setenv("APP_SERVER_HTTP_PORT", "7070")

	var cfg Config
	if err := Load("", &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pricing.DefaultVolatility != 0.35 || cfg.Server.HTTP.Port != 7070 {
		t.Errorf("env override not applied: %+v %+v", cfg.Pricing, cfg.Server.HTTP)
	}
	if cfg.Server.Name != "optionpricer" || cfg.Diagram.Cache.Shards != 64 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if len(cfg.Diagram.Scenario.Strikes) != 3 || cfg.Diagram.Scenario.Strikes[0].Name != "ATM" {
		t.Errorf("default strikes %+v", cfg.Diagram.Scenario.Strikes)
	}
	if got := cfg.Server.HTTP.ListenAddr(); got != ":7070" {
		t.Errorf("listen addr %q", got)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"bad environment": "[server]\nenvironment = \"staging\"\n",
		"too few points":  "[diagram]\npoints = 1\n",
		"inverted range":  "[diagram]\nrange_low = 2.0\nrange_high = 1.0\n",
		"bad log level":   "[log]\nlevel = \"verbose\"\n",
	}
	for name, body := range cases {
		var cfg Config
		if err := Load(writeConfig(t, body), &cfg); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}

	var cfg Config
	if err := Load(filepath.Join(t.TempDir(), "missing.toml"), &cfg); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestApplyReloadRunsHooks(t *testing.T) {
	var cfg Config
	if err := Load("", &cfg); err != nil {
		t.Fatal(err)
	}

	var seen string
	RegisterReloadHook(func(c *Config) { seen = c.Log.Level })
	RegisterReloadHook(nil)

	next := cfg
	next.Log.Level = "warn"
	applyReload(&cfg, &next)

	if cfg.Log.Level != "warn" || seen != "warn" {
		t.Errorf("reload not applied: cfg=%q hook=%q", cfg.Log.Level, seen)
	}
}

func TestMask(t *testing.T) {
	m := map[string]any{
		"log":    map[string]any{"level": "info"},
		"tokens": []any{map[string]any{"api_key": "abc"}},
		"secret": "s3cr3t",
	}
	mask(m)
	if m["secret"] != "******" {
		t.Errorf("secret not masked")
	}
	if m["tokens"].([]any)[0].(map[string]any)["api_key"] != "******" {
		t.Errorf("nested key not masked")
	}
	if m["log"].(map[string]any)["level"] != "info" {
		t.Errorf("non-sensitive key masked")
	}
}

func TestShippedConfig(t *testing.T) {
	var conf Config
	if err := Load(filepath.Join("..", "configs", "optionpricer.toml"), &conf); err != nil {
		t.Fatalf("load shipped config: %v", err)
	}
	if conf.Server.HTTP.ListenAddr() != ":8080" || conf.Diagram.Cache.LifeWindow != 10*time.Minute ||
		conf.Diagram.RenderTimeout != 15*time.Second {
		t.Errorf("unexpected http %+v cache %+v", conf.Server.HTTP, conf.Diagram.Cache)
	}
	if len(conf.Diagram.Scenario.Strikes) != 3 || conf.Diagram.Scenario.Strikes[1].Name != "ITM_Call" {
		t.Errorf("unexpected scenarios %+v", conf.Diagram.Scenario.Strikes)
	}
}
