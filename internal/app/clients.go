package app

import (
	"fmt"

	"github.com/yungbote/orgsync-backend/internal/platform/logger"
	"github.com/yungbote/orgsync-backend/internal/platform/sciforma"
)

type Clients struct {
	Sciforma sciforma.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	client, err := sciforma.NewFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init sciforma client: %w", err)
	}

	return Clients{Sciforma: client}, nil
}
