// Package server wires the HTTP server: router, middleware, routes, and
// graceful shutdown. All dependencies are assembled in New: handlers
// receive the service, the service receives the loader and cache, and
// nothing reaches around its layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/oppkey/leadboard/internal/auth"
	"github.com/oppkey/leadboard/internal/handler"
	"github.com/oppkey/leadboard/internal/loader"
	"github.com/oppkey/leadboard/internal/middleware"
	"github.com/oppkey/leadboard/internal/repository"
	sqliteRepo "github.com/oppkey/leadboard/internal/repository/sqlite"
	"github.com/oppkey/leadboard/internal/service"
)

// Config holds server configuration, loaded once at process start. The
// password and source locators are the "secret store" of the deployment:
// read here, never mutated.
type Config struct {
	Port           int
	Password       string   // plain dashboard password
	PasswordHash   string   // bcrypt hash; takes precedence over Password
	JWTSecret      string
	SourceLocators []string // the three export locators, in order
	AccessToken    string   // optional OAuth2 bearer token for private exports
	CachePath      string   // SQLite snapshot cache; empty disables it
	AssetDir       string   // directory holding sales-kit PDFs
	FetchTimeout   time.Duration
	SecureCookies  bool
}

// Server owns the router and the resources that need closing on
// shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	cache  *sqliteRepo.DB // nil when the cache is disabled
}

// New assembles the full dependency chain:
// provider → loader → service → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if len(cfg.SourceLocators) != 3 {
		return nil, fmt.Errorf("expected 3 source locators, got %d", len(cfg.SourceLocators))
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}

	var store repository.SnapshotStore
	if cfg.CachePath != "" {
		cache, err := sqliteRepo.New(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot cache: %w", err)
		}
		s.cache = cache
		store = cache
	}

	provider := loader.AutoProvider{
		HTTP: loader.NewHTTPProvider(cfg.FetchTimeout, cfg.AccessToken),
	}
	svc := service.NewDashboard(loader.New(provider, logger), store, cfg.SourceLocators, logger)

	gate, err := auth.NewGate(cfg.Password, cfg.PasswordHash)
	if err != nil {
		s.closeCache()
		return nil, err
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		s.closeCache()
		return nil, err
	}

	s.setupRoutes(svc, gate, tokens)
	return s, nil
}

func (s *Server) setupRoutes(svc *service.Dashboard, gate *auth.Gate, tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	sessionHandler := handler.NewSessionHandler(gate, tokens, s.config.SecureCookies, s.logger)
	dashboardHandler := handler.NewDashboardHandler(svc, s.logger)
	assetHandler := handler.NewAssetHandler(s.config.AssetDir, s.logger)

	// Public routes: the gate itself and liveness.
	s.router.Post("/api/login", sessionHandler.HandleLogin)
	s.router.Post("/api/logout", sessionHandler.HandleLogout)
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Everything with data sits behind the session.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireSession(tokens))
		r.Get("/overview", dashboardHandler.HandleOverview)
		r.Get("/map", dashboardHandler.HandleMap)
		r.Get("/trends", dashboardHandler.HandleTrends)
		r.Get("/engagement", dashboardHandler.HandleEngagement)
		r.Get("/geographic", dashboardHandler.HandleGeographic)
		r.Get("/patterns", dashboardHandler.HandlePatterns)
		r.Get("/timezones", dashboardHandler.HandleTimezones)
		r.Get("/leads", dashboardHandler.HandleLeads)
		r.Post("/refresh", dashboardHandler.HandleRefresh)
		r.Get("/assets/{name}", assetHandler.HandleGet)
	})
}

// Handler exposes the router, mainly so tests can drive the full route
// table through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) closeCache() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests for
// up to 30 seconds, close the cache.
func (s *Server) Start() error {
	defer s.closeCache()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // first render fetches three exports
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.Bool("cache", s.cache != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
