// Package server exposes the cleaning engine over HTTP
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/logger"
	"github.com/raaihank/clipboard-cleaner/internal/metrics"
	"github.com/raaihank/clipboard-cleaner/internal/web"
	"github.com/raaihank/clipboard-cleaner/internal/websocket"
)

const limiterIdle = time.Hour

// Server represents the HTTP API server
type Server struct {
	config    *config.Config
	logger    *logger.Logger
	cleaner   *cleaner.Cleaner
	router    *mux.Router
	handler   http.Handler
	server    *http.Server
	wsHub     *websocket.Hub
	limiter   *RateLimiter
	metrics   *metrics.Metrics
	version   string
	startedAt time.Time
}

// New creates a new server instance. hub may be nil when the event
// stream is disabled
func New(cfg *config.Config, c *cleaner.Cleaner, hub *websocket.Hub, log *logger.Logger, version string) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	s := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		cleaner:   c,
		router:    mux.NewRouter(),
		wsHub:     hub,
		limiter:   NewRateLimiter(cfg.Server),
		metrics:   metrics.New(),
		version:   version,
		startedAt: time.Now(),
	}

	c.Subscribe(s.metrics)
	if hub != nil {
		c.Subscribe(hub)
		hub.SetStatusProvider(s.systemStatus)
	}

	s.setupRoutes()

	s.handler = s.router
	if len(cfg.Server.CORSOrigins) > 0 {
		s.handler = cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		})(s.router)
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	// Dashboard
	s.router.HandleFunc("/", web.ServeDashboard).Methods(http.MethodGet)
	s.router.HandleFunc("/dashboard", web.ServeDashboard).Methods(http.MethodGet)

	if s.config.Server.Metrics.Enabled {
		s.router.Handle(s.config.Server.Metrics.Path, s.metrics.Handler()).Methods(http.MethodGet)
	}

	// Event stream, outside the API middleware so the connection can be hijacked
	if s.wsHub != nil && s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.Use(s.bodyLimitMiddleware)

	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{"/profiles", http.MethodGet, s.handleProfiles},
		{"/resolve", http.MethodGet, s.handleResolve},
		{"/clean", http.MethodPost, s.handleClean},
		{"/decode", http.MethodPost, s.handleDecode},
		{"/process", http.MethodPost, s.handleProcess},
	}
	for _, rt := range routes {
		api.HandleFunc(rt.path, rt.handler).Methods(rt.method)
	}
	// A later subrouter route clears mux's method mismatch, so wrong verbs
	// would fall through to 404 without these
	for _, rt := range routes {
		api.HandleFunc(rt.path, methodNotAllowed(rt.method))
	}
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting clipboard-cleaner server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("websocket", s.wsHub != nil && s.config.WebSocket.Enabled),
		zap.Bool("rate_limit", s.config.Server.RateLimit.Enabled),
		zap.Bool("metrics", s.config.Server.Metrics.Enabled),
		zap.Strings("cors_origins", s.config.Server.CORSOrigins),
		zap.String("default_profile", s.cleaner.Profiles().DefaultName()),
	)

	s.limiter.StartCleanupRoutine(limiterIdle / 2)

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping clipboard-cleaner server")
	s.limiter.Stop()
	return s.server.Shutdown(ctx)
}

// GetWebSocketHub returns the WebSocket hub for broadcasting events
func (s *Server) GetWebSocketHub() *websocket.Hub {
	return s.wsHub
}

func (s *Server) systemStatus() websocket.SystemStatusEvent {
	set := s.cleaner.Profiles()
	return websocket.SystemStatusEvent{
		Status:         "running",
		Version:        s.version,
		Uptime:         time.Since(s.startedAt).Round(time.Second).String(),
		Profiles:       set.Names(),
		DefaultProfile: set.DefaultName(),
	}
}
