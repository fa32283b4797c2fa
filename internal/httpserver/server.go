package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"userauth/backend/internal/config"
	authusecase "userauth/backend/internal/usecase/auth"
	userusecase "userauth/backend/internal/usecase/user"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer         *http.Server
	router             *http.ServeMux
	log                *slog.Logger
	authService        *authusecase.Service
	userService        *userusecase.Service
	registrationPolicy string
	addr               string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, log *slog.Logger, authService *authusecase.Service, userService *userusecase.Service) *Server {
	mux := http.NewServeMux()
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	handler := withRequestID(withLogging(log, withRecovery(log, withCORS(mux, cfg.AllowedOrigins))))

	srv := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		router:             mux,
		log:                log,
		authService:        authService,
		userService:        userService,
		registrationPolicy: cfg.RegistrationPolicy,
		addr:               addr,
	}
	srv.registerRoutes()
	return srv
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the fully wrapped handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
