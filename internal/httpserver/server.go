package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"lotusspa/backend/internal/config"
	authusecase "lotusspa/backend/internal/usecase/auth"
	userusecase "lotusspa/backend/internal/usecase/user"

	"github.com/go-chi/chi/v5"
)

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer    *http.Server
	router        chi.Router
	authService   *authusecase.Service
	userService   *userusecase.Service
	guard         *Guard
	secureCookies bool
	addr          string
}

// Options groups the dependencies for NewServer.
type Options struct {
	Config      config.Config
	AuthService *authusecase.Service
	UserService *userusecase.Service
	Resolver    *authusecase.Resolver
	Tokens      authusecase.TokenCodec
	Logger      *slog.Logger
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	secure := opts.Config.IsProduction()
	gate := NewGate(opts.Tokens, secure, logger)

	router.Use(withLogging(logger))
	router.Use(withRecover(logger))
	router.Use(withCORS(opts.Config.AllowedOrigins))
	router.Use(gate.Handler)

	srv := &Server{
		httpServer: &http.Server{
			Addr:         opts.Config.HTTPPort,
			Handler:      router,
			ReadTimeout:  opts.Config.ReadTimeout(),
			WriteTimeout: opts.Config.WriteTimeout(),
			IdleTimeout:  opts.Config.IdleTimeout(),
		},
		router:        router,
		authService:   opts.AuthService,
		userService:   opts.UserService,
		guard:         NewGuard(opts.Resolver, logger),
		secureCookies: secure,
		addr:          opts.Config.HTTPPort,
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

// Router exposes the underlying router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
