package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server runs the API engine with header-read timeouts and supports graceful
// shutdown, which gin's Engine.Run does not expose.
type Server struct {
	srv *http.Server
}

func NewServer(engine *gin.Engine, addr string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks serving requests until the listener fails or Shutdown is
// called. A shutdown-initiated stop is a clean return, not an error.
func (s *Server) Run() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires. Safe to call before Run; a later Run returns
// immediately without listening.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
