package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/orgsync-backend/internal/http/handlers"
	httpMW "github.com/yungbote/orgsync-backend/internal/http/middleware"
	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler  *httpH.HealthHandler
	SessionHandler *httpH.SessionHandler
	SyncHandler    *httpH.SyncHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())
	r.Use(httpMW.Metrics(observability.Current()))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Sessions
		if cfg.SessionHandler != nil {
			api.POST("/sessions", cfg.SessionHandler.Create)
			api.GET("/sessions/:id", cfg.SessionHandler.Get)
			api.DELETE("/sessions/:id", cfg.SessionHandler.Delete)
		}

		// Synchronization
		if cfg.SyncHandler != nil {
			api.POST("/sync/load", cfg.SyncHandler.Load)
			api.POST("/sync/order", cfg.SyncHandler.Order)
			api.POST("/sync/run", cfg.SyncHandler.Run)
			api.POST("/sync/upload", cfg.SyncHandler.Upload)
		}
	}

	return r
}
