package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Store   *FileStore
	Mirror  *Mirror // may be nil
	Metrics *Metrics
	Logger  *slog.Logger

	ListenAddress   string
	ListenPort      int
	ShutdownTimeout time.Duration
}

// Server is the access-logging HTTP server. Every route, including the
// retrieval endpoint itself, passes through the AccessLogger middleware.
type Server struct {
	store  *FileStore
	logger *slog.Logger

	httpServer      *http.Server
	shutdownTimeout time.Duration
	serveErr        chan error
}

// NewServer creates a server with its routes and logging middleware wired.
func NewServer(cfg ServerConfig) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		store:           cfg.Store,
		logger:          cfg.Logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		serveErr:        make(chan error, 1),
	}

	router := chi.NewRouter()
	router.Use(AccessLogger(cfg.Store, cfg.Mirror, cfg.Metrics, cfg.Logger))
	router.Get("/", s.handleHealth)
	router.Get("/logs", s.handleLogs)

	s.httpServer = &http.Server{
		Handler:           router,
		Addr:              fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the server's root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address; after Start it reflects the actual
// bound address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.ReadAll()
	if err != nil {
		s.logger.Error("failed to read access log", "error", err)
		http.Error(w, "failed to read access log", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.logger.Error("failed to encode access log entries", "error", err)
	}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	listenConfig := &net.ListenConfig{}
	listener, err := listenConfig.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}

	// Update server address to reflect actual listening address
	s.httpServer.Addr = listener.Addr().String()

	go func() {
		s.serveErr <- s.httpServer.Serve(listener)
	}()

	s.logger.Info("server started", "address", s.httpServer.Addr)
	return nil
}

// Shutdown stops the server gracefully, letting in-flight responses
// complete.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Run serves until the context is canceled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-s.serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return ctx.Err()

	case err := <-s.serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
