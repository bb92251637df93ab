package app

import (
	"time"

	"github.com/yungbote/orgsync-backend/internal/platform/envutil"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/services"
)

type Config struct {
	Port           string
	SessionTTL     time.Duration
	OrderDirection services.Direction
	MetricsAddr    string
}

func LoadConfig(log *logger.Logger) Config {
	direction, err := services.ParseDirection(envutil.String("ORDER_TRAVERSAL", ""))
	if err != nil {
		log.Warn("Invalid ORDER_TRAVERSAL, falling back to leaf_first", "error", err)
		direction = services.DirectionLeafFirst
	}
	sessionTTLMinutes := envutil.Int("SESSION_TTL_MINUTES", 60)
	return Config{
		Port:           envutil.String("PORT", "8080"),
		SessionTTL:     time.Duration(sessionTTLMinutes) * time.Minute,
		OrderDirection: direction,
		MetricsAddr:    envutil.String("METRICS_ADDR", ":9090"),
	}
}
