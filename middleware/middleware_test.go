package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/wyfcoding/optionpricing/logging"
	"github.com/wyfcoding/optionpricing/metrics"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(mw...)
	return e
}

func serve(e *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(Recovery(slog.New(slog.NewJSONHandler(&buf, nil))))
	e.GET("/panic", func(*gin.Context) { panic("boom") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "panic recovered") || !strings.Contains(buf.String(), `"route":"/panic"`) {
		t.Errorf("panic not logged: %s", buf.String())
	}
	if !strings.Contains(rec.Body.String(), `"code":500001`) {
		t.Errorf("unexpected envelope %s", rec.Body)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	var seen string
	e := newEngine(RequestID())
	e.GET("/", func(c *gin.Context) {
		seen = logging.RequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	rec := serve(e, req)
	if seen != "abc-123" || rec.Header().Get(HeaderXRequestID) != "abc-123" {
		t.Errorf("request id not propagated: ctx=%q header=%q", seen, rec.Header().Get(HeaderXRequestID))
	}

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/", nil))
	if generated := rec.Header().Get(HeaderXRequestID); generated == "" || generated != seen {
		t.Errorf("generated id mismatch: header=%q ctx=%q", generated, seen)
	}

	long := strings.Repeat("x", 65)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, long)
	rec = serve(e, req)
	if got := rec.Header().Get(HeaderXRequestID); got == long || got == "" || got != seen {
		t.Errorf("oversized request id should be replaced, got %q", got)
	}
}

func TestLoggerWritesAccessLog(t *testing.T) {
	var buf bytes.Buffer
	e := newEngine(Logger(slog.New(slog.NewJSONHandler(&buf, nil)), time.Nanosecond))
	e.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	serve(e, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	out := buf.String()
	if !strings.Contains(out, `"path":"/ping"`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Errorf("unexpected access log %s", out)
	}
}

func TestRateLimit(t *testing.T) {
	e := newEngine(NewLocalRateLimitMiddleware(1, 2))
	e.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(e, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/", nil)); !strings.Contains(rec.Body.String(), `"code":429001`) {
		t.Errorf("unexpected rate limit envelope %s", rec.Body)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	e := newEngine(MaxBodyBytes(8))
	e.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	if rec := serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))); rec.Code != http.StatusOK {
		t.Errorf("small body rejected: %d", rec.Code)
	}
	if rec := serve(e, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large"))); rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("large body accepted: %d", rec.Code)
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	e := newEngine(TimeoutMiddleware(10 * time.Millisecond))
	e.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	e.GET("/fast", func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); !ok {
			t.Error("deadline missing")
		}
		c.Status(http.StatusOK)
	})

	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/slow", nil)); rec.Code != http.StatusGatewayTimeout {
		t.Errorf("slow status %d", rec.Code)
	}
	if rec := serve(e, httptest.NewRequest(http.MethodGet, "/fast", nil)); rec.Code != http.StatusOK {
		t.Errorf("fast status %d", rec.Code)
	}
}

func TestHTTPMetrics(t *testing.T) {
	m := metrics.NewMetrics("test")
	e := newEngine(HTTPMetricsMiddlewareWithOptions(m, MetricsOptions{SkipPaths: []string{"/healthz"}}))
	e.GET("/api/v1/options/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/options/1", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/options/2", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if v := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/options/:id", "200")); v != 2 {
		t.Errorf("requests = %v", v)
	}
	if v := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200")); v != 0 {
		t.Errorf("skipped path counted: %v", v)
	}
}
