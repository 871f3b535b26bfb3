// Package server provides the HTTP API for timeago entries.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/spetersoncode/timeago/internal/service"
)

// Config holds the server configuration.
type Config struct {
	// Port is the TCP port to listen on (default 18765).
	Port int

	// Host is the address to bind to (default "127.0.0.1").
	Host string

	// Board serves the entries.
	Board *service.Board

	// Logger for server events (optional).
	Logger logr.Logger
}

// Server is the HTTP server for the timeago API.
type Server struct {
	config     Config
	httpServer *http.Server
	router     *http.ServeMux
	logger     logr.Logger
	board      *service.Board
}

// New creates a new Server with the given configuration.
func New(config Config) (*Server, error) {
	if config.Board == nil {
		return nil, fmt.Errorf("board is required")
	}

	if config.Port == 0 {
		config.Port = 18765
	}
	if config.Host == "" {
		config.Host = "127.0.0.1"
	}

	logger := config.Logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	s := &Server{
		config: config,
		router: http.NewServeMux(),
		logger: logger.WithName("server"),
		board:  config.Board,
	}
	s.setupRoutes()

	return s, nil
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.router)
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Address(), err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "url", "http://"+listener.Addr().String())
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address (e.g., "127.0.0.1:18765").
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.V(1).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
