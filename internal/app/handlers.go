package app

import (
	"github.com/yungbote/orgsync-backend/internal/http/handlers"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

type Handlers struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Sync    *handlers.SyncHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  handlers.NewHealthHandler(),
		Session: handlers.NewSessionHandler(services.Sessions),
		Sync:    handlers.NewSyncHandler(log, services.Sync, services.Sessions),
	}
}
