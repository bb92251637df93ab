package app

import (
	"github.com/gin-gonic/gin"

	apihttp "github.com/yungbote/orgsync-backend/internal/http"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlers Handlers) *gin.Engine {
	return apihttp.NewRouter(apihttp.RouterConfig{
		Log:            log,
		HealthHandler:  handlers.Health,
		SessionHandler: handlers.Session,
		SyncHandler:    handlers.Sync,
	})
}
