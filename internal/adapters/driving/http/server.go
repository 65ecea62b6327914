package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driven"
	"github.com/creatorsync-labs/creatorsync-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Services
	authService       driving.AuthService
	connectService    driving.ConnectService
	connectionService driving.ConnectionService
	contentService    driving.ContentService

	// Infrastructure
	taskQueue   driven.TaskQueue
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authService driving.AuthService,
	connectService driving.ConnectService,
	connectionService driving.ConnectionService,
	contentService driving.ContentService,
	taskQueue driven.TaskQueue,
	db Pinger,
	redisClient Pinger, // can be nil
) *Server {
	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		authService:       authService,
		connectService:    connectService,
		connectionService: connectionService,
		contentService:    contentService,
		taskQueue:         taskQueue,
		db:                db,
		redisClient:       redisClient,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	authMiddleware := NewAuthMiddleware(s.authService)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Auth endpoints (public)
	s.router.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.router.HandleFunc("POST /api/v1/auth/refresh", s.handleRefresh)

	// Auth endpoints (authenticated)
	s.router.Handle("POST /api/v1/auth/logout",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))

	// User endpoints
	s.router.Handle("GET /api/v1/me",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))

	// Platform connect flow. Both endpoints are reached by browser
	// navigation so they resolve identity themselves instead of going
	// through the bearer-only middleware.
	s.router.HandleFunc("GET /api/v1/connect/{platform}", s.handleConnectAuthorize)
	s.router.HandleFunc("GET /api/v1/connect/{platform}/callback", s.handleConnectCallback)

	// Connection management (authenticated)
	s.router.Handle("GET /api/v1/connections",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListConnections)))
	s.router.Handle("GET /api/v1/connections/{platform}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetConnection)))
	s.router.Handle("DELETE /api/v1/connections/{platform}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDisconnect)))
	s.router.Handle("POST /api/v1/connections/{platform}/refresh",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleRefreshConnection)))

	// Content endpoints (authenticated)
	s.router.Handle("POST /api/v1/content",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleCreateContent)))
	s.router.Handle("GET /api/v1/content",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleListContent)))
	s.router.Handle("GET /api/v1/content/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleGetContent)))
	s.router.Handle("POST /api/v1/content/{id}/schedule",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleScheduleContent)))
	s.router.Handle("DELETE /api/v1/content/{id}",
		authMiddleware.Authenticate(http.HandlerFunc(s.handleDeleteContent)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
