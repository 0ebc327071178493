// internal/httpserver/server.go
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/staticsite/internal/httpserver/deps"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/mw"
	"github.com/MrSnakeDoc/staticsite/internal/httpserver/routes"
	"github.com/MrSnakeDoc/staticsite/internal/logger"
	"github.com/MrSnakeDoc/staticsite/internal/routing"
)

// Site is the host application: its route table and the handler serving it.
type Site struct {
	Routes  *routing.Registry
	Handler http.Handler
}

// NewSite declares every route and builds the router (middlewares, route
// mounting). d.Routes is filled in.
func NewSite(d deps.Deps) (*Site, error) {
	reg := routing.New()
	d.Routes = reg
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}

	routes.RegisterAll(reg.Root(), d)
	if err := reg.Err(); err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)          // X-Request-ID on each request
	r.Use(mw.Recover(d.Logger, d.Debug)) // pass-through inside render passes
	r.Use(mw.Log(d.Logger))              // structured access logs
	r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

	reg.Mount(r)
	r.NotFound(handlers.NotFound(d))

	return &Site{Routes: reg, Handler: r}, nil
}

// Server wraps the preview HTTP server.
type Server struct {
	http   *http.Server
	logger logger.Logger
}

// New builds the HTTP server around handler.
func New(addr string, handler http.Handler, loggerClient logger.Logger) *Server {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:   s,
		logger: loggerClient,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
