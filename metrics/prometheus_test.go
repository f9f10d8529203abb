package metrics

import (
	"io"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestDomainCounters(t *testing.T) {
	m := NewMetrics("optionpricer-test")
	m.OptionEvaluations.WithLabelValues("call", "price").Inc()
	m.OptionEvaluations.WithLabelValues("call", "price").Inc()
	m.BoundaryEvaluations.WithLabelValues("put").Inc()
	m.CacheHits.Inc()

	if v := testutil.ToFloat64(m.OptionEvaluations.WithLabelValues("call", "price")); v != 2 {
		t.Errorf("evaluations = %v", v)
	}
	if v := testutil.ToFloat64(m.BoundaryEvaluations.WithLabelValues("put")); v != 1 {
		t.Errorf("boundary = %v", v)
	}
	if v := testutil.ToFloat64(m.CacheHits); v != 1 {
		t.Errorf("cache hits = %v", v)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics("optionpricer-test")
	m.RegisterBuildInfo("optionpricer", "1.0.0")
	m.RegisterBuildInfo("ignored", "2.0.0")
	m.DiagramsRendered.WithLabelValues("png").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		`payoff_diagrams_rendered_total{format="png"} 1`,
		`optionpricer_build_info{go_version="` + runtime.Version() + `",service="optionpricer",version="1.0.0"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
	if strings.Contains(string(body), `version="2.0.0"`) {
		t.Errorf("build info registered twice")
	}
}
