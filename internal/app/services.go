package app

import (
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/services"
)

type Services struct {
	Remote   services.RemoteOrgService
	Resolver services.IdentityResolver
	Orderer  services.OrderEnforcer
	Sync     services.SyncService
	Sessions services.SessionStore
}

func wireServices(log *logger.Logger, cfg Config, clients Clients) Services {
	log.Info("Wiring services...")

	remote := services.NewRemoteOrgService(clients.Sciforma)
	resolver := services.NewIdentityResolver(log, remote)
	orderer := services.NewOrderEnforcer(log, remote, cfg.OrderDirection)

	return Services{
		Remote:   remote,
		Resolver: resolver,
		Orderer:  orderer,
		Sync:     services.NewSyncService(log, resolver, orderer),
		Sessions: services.NewSessionStore(log, cfg.SessionTTL),
	}
}
