package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wyfcoding/optionpricing/config"
	"github.com/wyfcoding/optionpricing/idgen"
)

func TestInitialize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optionpricer.toml")
	content := `
[server]
name = "optionpricer-bootstrap"
environment = "test"

[log]
level = "warn"

[pricing]
default_volatility = 0.3
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	b := New("", "v1.2.3")
	if err := b.Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if b.ServiceName != "optionpricer-bootstrap" || b.Config.Version != "v1.2.3" {
		t.Errorf("service %q version %q", b.ServiceName, b.Config.Version)
	}
	if b.Config.Pricing.DefaultVolatility != 0.3 || b.Config.Pricing.DefaultRate != 0.05 {
		t.Errorf("pricing %+v", b.Config.Pricing)
	}
	if b.Logger == nil || b.Metrics == nil || b.Metrics.BuildInfo == nil {
		t.Fatal("components not initialized")
	}
	if idgen.GenID() == 0 {
		t.Error("id generator not usable")
	}
}

func TestInitializeMissingFile(t *testing.T) {
	b := New("optionpricer", "")
	if err := b.Initialize(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoggingConfig(t *testing.T) {
	lc := LoggingConfig("svc", config.LogConfig{Level: "debug", File: "/tmp/x.log", MaxSize: 10, Compress: true})
	if lc.Service != "svc" || lc.Module != "main" || lc.Level != "debug" || lc.File != "/tmp/x.log" || lc.MaxSize != 10 || !lc.Compress {
		t.Errorf("unexpected %+v", lc)
	}
}
