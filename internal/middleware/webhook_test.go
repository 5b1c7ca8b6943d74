package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"support-logbook/internal/middleware"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Info(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (m *mockLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (m *mockLogger) Error(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (m *mockLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (m *mockLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (m *mockLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (m *mockLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

func newEngine(mw middleware.Middleware, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	route := append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	engine.POST("/webhook/telegram", route...)
	return engine
}

func doPost(engine *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestWebhookSecret(t *testing.T) {
	mw := middleware.New(&mockLogger{}, "s3cret", 60)
	engine := newEngine(mw, mw.WebhookSecret())

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid token", "s3cret", http.StatusOK},
		{"wrong token", "nope", http.StatusForbidden},
		{"missing token", "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers[middleware.HeaderSecretToken] = tt.header
			}
			if w := doPost(engine, headers); w.Code != tt.wantCode {
				t.Errorf("got %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestWebhookSecret_DisabledWhenUnset(t *testing.T) {
	mw := middleware.New(&mockLogger{}, "", 60)
	engine := newEngine(mw, mw.WebhookSecret())

	if w := doPost(engine, nil); w.Code != http.StatusOK {
		t.Errorf("blank secret must disable the check, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	// 10 per minute yields a burst of 1, so the second immediate hit is rejected.
	mw := middleware.New(&mockLogger{}, "", 10)
	engine := newEngine(mw, mw.RateLimit())

	if w := doPost(engine, nil); w.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", w.Code)
	}
	if w := doPost(engine, nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request should be throttled, got %d", w.Code)
	}

	// A different source has its own bucket.
	req, _ := http.NewRequest(http.MethodPost, "/webhook/telegram", nil)
	req.RemoteAddr = "10.0.0.2:4321"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other source should not share the bucket, got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	mw := middleware.New(&mockLogger{}, "", 60)
	engine := newEngine(mw, mw.RequestID())

	w := doPost(engine, nil)
	if w.Header().Get(middleware.HeaderRequestID) == "" {
		t.Error("expected a generated request ID header")
	}

	w = doPost(engine, map[string]string{middleware.HeaderRequestID: "upstream-42"})
	if got := w.Header().Get(middleware.HeaderRequestID); got != "upstream-42" {
		t.Errorf("expected upstream request ID to be kept, got %q", got)
	}
}
