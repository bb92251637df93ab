package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	apihttp "github.com/yungbote/orgsync-backend/internal/http"
	"github.com/yungbote/orgsync-backend/internal/observability"
	"github.com/yungbote/orgsync-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Services Services
	server   *apihttp.Server
	cancel   context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	observability.Init(log)

	clientset, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	serviceset := wireServices(log, cfg, clientset)
	handlerset := wireHandlers(log, serviceset)
	router := wireRouter(log, handlerset)

	return &App{
		Log:      log,
		Router:   router,
		Cfg:      cfg,
		Clients:  clientset,
		Services: serviceset,
		server:   apihttp.NewServer(router, ":"+cfg.Port),
	}, nil
}

func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	// Expire idle sessions in the background
	if a.Services.Sessions != nil {
		a.Services.Sessions.StartSweeper(ctx)
	}

	observability.Current().StartServer(ctx, a.Log, a.Cfg.MetricsAddr)
}

func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.server.Run()
}

// Shutdown stops the API listener, letting in-flight requests drain until
// ctx expires. Run then returns nil.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
