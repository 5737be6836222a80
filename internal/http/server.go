package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerManager wraps the HTTP server with graceful shutdown.
type ServerManager struct {
	srv *http.Server
}

// NewServerManager creates a server for the given router and port.
func NewServerManager(router *gin.Engine, port string) *ServerManager {
	return &ServerManager{
		srv: &http.Server{
			Addr:    ":" + port,
			Handler: router,
		},
	}
}

// Start begins serving and blocks until the server stops. A shutdown-
// initiated stop returns nil.
func (m *ServerManager) Start() error {
	err := m.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and waits up to ten seconds
// for in-flight requests. Callers must close the session registry first so
// open SSE streams end and their handlers return.
func (m *ServerManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}
