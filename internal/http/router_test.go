package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/orgsync-backend/internal/http/handlers"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/services"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func TestRouterHealthcheck(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := NewRouter(RouterConfig{
		Log:           newTestLogger(t),
		HealthHandler: httpH.NewHealthHandler(),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	if got := rec.Body.String(); got != "ok" {
		t.Fatalf("body: want=ok got=%q", got)
	}
}

func TestRouterEchoesTraceHeaders(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := NewRouter(RouterConfig{
		Log:           newTestLogger(t),
		HealthHandler: httpH.NewHealthHandler(),
	})

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id not echoed: got=%q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id header missing")
	}
}

func TestRouterSkipsNilHandlers(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := NewRouter(RouterConfig{Log: newTestLogger(t)})

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/healthcheck"},
		{http.MethodPost, "/api/sessions"},
		{http.MethodPost, "/api/sync/run"},
	} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(route.method, route.path, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: want=404 got=%d", route.method, route.path, rec.Code)
		}
	}
}

func TestRouterSessionRoutes(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	log := newTestLogger(t)
	store := services.NewSessionStore(log, time.Hour)
	r := NewRouter(RouterConfig{
		Log:            log,
		SessionHandler: httpH.NewSessionHandler(store),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("create session: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if store.Len() != 1 {
		t.Fatalf("store size: want=1 got=%d", store.Len())
	}
}

func TestServerShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	s := NewServer(NewRouter(RouterConfig{Log: newTestLogger(t)}), "127.0.0.1:0")
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	// The listener never opens once the server is shut down.
	if err := s.Run(); err != nil {
		t.Fatalf("run after shutdown: want=nil got=%v", err)
	}
}
