// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the "wiring" layer — the composition root where the whole
// dependency chain is assembled in one place:
//
//	sqlite.DB → ScoreService → ScoreHandler → routes
//
// Each layer only receives what it needs: the service gets the repository
// interface (not the concrete sqlite.DB), the handler gets the service
// interface (not the repository or DB). main.go stays minimal — it just
// builds a Config and calls New/Start.
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
	"github.com/go-chi/cors"

	"github.com/sakif/game-club-server/internal/handler"
	"github.com/sakif/game-club-server/internal/middleware"
	sqliteRepo "github.com/sakif/game-club-server/internal/repository/sqlite"
	"github.com/sakif/game-club-server/internal/service"
)

// requestTimeout bounds how long any single request may hold a handler.
// Storage calls inherit it through the request context, so a wedged query
// surfaces as a 500 instead of hanging the client forever.
const requestTimeout = 15 * time.Second

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed and the file lock
// released.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo to avoid confusion with the
// sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A cheap sanity read that also makes a nice startup breadcrumb when
	// debugging "why is the leaderboard empty" reports.
	if users, err := db.CountUsers(context.Background()); err == nil {
		logger.Info("database ready",
			slog.String("path", cfg.DBPath),
			slog.Int64("users", users),
		)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /health            → liveness probe
//	POST /score             → record one score event
//	GET  /leaderboard       → ranked players (?limit=N, default 10)
//	GET  /user/{uid}/stats  → one player's aggregates
//
// MIDDLEWARE ORDER MATTERS — it executes in the order added:
// RequestID first (so the logger can include it), Recoverer before handlers
// (panics become 500s, not crashes), Timeout last so the deadline covers
// only handler work.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The game client is served from a different origin (and the Unity
	// editor runs it from localhost), so the API answers CORS preflights
	// permissively.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(chimiddleware.Timeout(requestTimeout))

	scoreService := service.NewScoreService(s.db, s.logger)
	scoreHandler := handler.NewScoreHandler(scoreService, s.logger)

	s.router.Get("/health", handler.HandleHealth)
	s.router.Post("/score", scoreHandler.HandleRecordScore)
	s.router.Get("/leaderboard", scoreHandler.HandleLeaderboard)
	s.router.Get("/user/{uid}/stats", scoreHandler.HandleUserStats)

	// Unmatched routes and wrong methods still get the JSON error envelope —
	// the client never sees chi's plain-text defaults.
	s.router.NotFound(handler.HandleRouteNotFound)
	s.router.MethodNotAllowed(handler.HandleMethodNotAllowed)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// finish, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
