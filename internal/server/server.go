// Package server exposes the learning shell over HTTP and streams its
// signals over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/p-n-ai/pai-parametric/internal/app"
)

// Server is the HTTP front of one app.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
	detach func()
}

// New creates a server for a listening on addr.
func New(addr string, logger *slog.Logger, a *app.App) *Server {
	broker := NewBroker()
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           withLogging(logger, newMux(logger, a, broker)),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
		detach: broker.Attach(a.Bus),
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until Shutdown is called.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("server starting", "addr", ln.Addr().String())

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits up to 10s for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.detach()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
