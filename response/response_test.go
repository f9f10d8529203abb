package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/xerrors"
)

func run(t *testing.T, handler gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, body
}

func TestSuccess(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { Success(c, gin.H{"price": 10.45}) })
	if code != http.StatusOK || body["code"].(float64) != 0 || body["msg"] != "success" {
		t.Errorf("unexpected envelope %d %v", code, body)
	}
	if body["data"].(map[string]any)["price"].(float64) != 10.45 {
		t.Errorf("data not propagated: %v", body)
	}
}

func TestErrorMapsBusinessErrors(t *testing.T) {
	err := xerrors.Detailed(xerrors.ErrInvalidInput, "spot must be positive")
	code, body := run(t, func(c *gin.Context) { Error(c, err) })
	if code != http.StatusBadRequest {
		t.Errorf("status %d", code)
	}
	if body["code"].(float64) != float64(xerrors.ErrInvalidInput.Code) || body["detail"] != "spot must be positive" {
		t.Errorf("unexpected body %v", body)
	}

	code, _ = run(t, func(c *gin.Context) { Error(c, xerrors.ErrRenderFailed) })
	if code != http.StatusInternalServerError {
		t.Errorf("render failure status %d", code)
	}
}

func TestErrorFallback(t *testing.T) {
	code, body := run(t, func(c *gin.Context) { Error(c, errors.New("boom")) })
	if code != http.StatusInternalServerError || body["msg"] != "boom" {
		t.Errorf("unexpected fallback %d %v", code, body)
	}
	code, _ = run(t, func(c *gin.Context) { ErrorWithStatus(c, http.StatusTooManyRequests, "too many requests", "") })
	if code != http.StatusTooManyRequests {
		t.Errorf("status %d", code)
	}
}
