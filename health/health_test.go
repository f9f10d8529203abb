package health

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wyfcoding/optionpricing/breaker"
	"github.com/wyfcoding/optionpricing/cache"
	"github.com/wyfcoding/optionpricing/xerrors"
)

func TestRegistry(t *testing.T) {
	var nilRegistry *Registry
	if !nilRegistry.Check(context.Background()).Healthy() {
		t.Error("nil registry should be healthy")
	}

	r := NewRegistry(0)
	r.Register("ok", func(context.Context) error { return nil })
	r.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	r.timeout = 10 * time.Millisecond

	report := r.Check(context.Background())
	if report.Healthy() || report.Checks["ok"] != StatusUp || !strings.Contains(report.Checks["slow"], "deadline") {
		t.Errorf("unexpected report %+v", report)
	}

	r.Register("slow", func(context.Context) error { return nil })
	if report := r.Check(context.Background()); !report.Healthy() || len(report.Checks) != 2 {
		t.Errorf("re-registered check should replace the old one: %+v", report)
	}
}

func TestCacheChecker(t *testing.T) {
	bc, err := cache.NewBigCache(context.Background(), cache.BigCacheOptions{LifeWindow: time.Minute, Shards: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer bc.Close()

	if err := CacheChecker(bc)(context.Background()); err != nil {
		t.Errorf("cache check: %v", err)
	}
	if err := CacheChecker(nil)(context.Background()); err == nil {
		t.Error("nil cache should fail")
	}
}

func TestBreakerChecker(t *testing.T) {
	b := breaker.NewBreaker(breaker.Settings{Name: "render", Enabled: true, MinRequests: 1, FailureRatio: 1, Timeout: time.Minute}, nil)
	check := BreakerChecker(b)
	if err := check(context.Background()); err != nil {
		t.Fatalf("closed breaker: %v", err)
	}
	_, _ = breaker.Execute(b, func() (int, error) { return 0, xerrors.ErrRenderFailed })
	if err := check(context.Background()); err == nil || !strings.Contains(err.Error(), "open") {
		t.Errorf("open breaker should fail health check, got %v", err)
	}
	if err := BreakerChecker(nil)(context.Background()); err != nil {
		t.Errorf("nil breaker should be healthy, got %v", err)
	}
}
