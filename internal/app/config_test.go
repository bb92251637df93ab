package app

import (
	"testing"
	"time"

	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/services"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return log
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_TTL_MINUTES", "")
	t.Setenv("ORDER_TRAVERSAL", "")
	t.Setenv("METRICS_ADDR", "")

	cfg := LoadConfig(newTestLogger(t))
	if cfg.Port != "8080" {
		t.Fatalf("port: want=%q got=%q", "8080", cfg.Port)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("session ttl: want=%v got=%v", time.Hour, cfg.SessionTTL)
	}
	if cfg.OrderDirection != services.DirectionLeafFirst {
		t.Fatalf("direction: want=%q got=%q", services.DirectionLeafFirst, cfg.OrderDirection)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Fatalf("metrics addr: want=%q got=%q", ":9090", cfg.MetricsAddr)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("SESSION_TTL_MINUTES", "5")
	t.Setenv("ORDER_TRAVERSAL", "root_first")
	t.Setenv("METRICS_ADDR", ":9191")

	cfg := LoadConfig(newTestLogger(t))
	if cfg.Port != "9999" {
		t.Fatalf("port: want=%q got=%q", "9999", cfg.Port)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("session ttl: want=%v got=%v", 5*time.Minute, cfg.SessionTTL)
	}
	if cfg.OrderDirection != services.DirectionRootFirst {
		t.Fatalf("direction: want=%q got=%q", services.DirectionRootFirst, cfg.OrderDirection)
	}
	if cfg.MetricsAddr != ":9191" {
		t.Fatalf("metrics addr: want=%q got=%q", ":9191", cfg.MetricsAddr)
	}
}

func TestLoadConfigInvalidDirectionFallsBack(t *testing.T) {
	t.Setenv("ORDER_TRAVERSAL", "sideways")

	cfg := LoadConfig(newTestLogger(t))
	if cfg.OrderDirection != services.DirectionLeafFirst {
		t.Fatalf("direction: want=%q got=%q", services.DirectionLeafFirst, cfg.OrderDirection)
	}
}
