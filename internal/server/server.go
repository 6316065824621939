// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "load config and start")
//
// DEPENDENCY INJECTION FLOW:
// main.go reads config → Server.New() assembles the whole chain:
//
//	sqlite.DB → stores → services → handlers → routes
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
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

	"github.com/parthu1029/DevShowcase/internal/auth"
	"github.com/parthu1029/DevShowcase/internal/handler"
	"github.com/parthu1029/DevShowcase/internal/middleware"
	sqliteRepo "github.com/parthu1029/DevShowcase/internal/repository/sqlite"
	"github.com/parthu1029/DevShowcase/internal/service"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port               int
	StaticDir          string
	DBPath             string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection (db). When the server shuts down,
// we must close this connection to flush any pending writes and release the
// file lock. This is handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Open the database (sqlite.New runs migrations)
//  2. Build the auth utilities (tokens, passwords, GitHub provider)
//  3. Build the service layer from the per-entity stores
//  4. Build the handlers from the services
//  5. Wire handlers to routes
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /static/*                    → Static files (the SPA bundle)
//	GET    /auth/github/login           → Redirect to GitHub authorization
//	GET    /auth/github/callback        → OAuth callback, issues JWT cookie
//	POST   /auth/signup                 → Email+password registration
//	POST   /auth/login                  → Email+password login
//	POST   /auth/logout                 → Clear JWT cookie
//	GET    /api/me                      → Current account + profile   [auth]
//	PATCH  /api/me                      → Update own profile          [auth]
//	GET    /api/profiles/{username}     → Public profile page
//	GET    /api/projects                → Listing with viewer flags   [optional auth]
//	POST   /api/projects                → Submit a project            [auth]
//	GET    /api/projects/{id}           → Single project
//	DELETE /api/projects/{id}           → Delete own project          [auth]
//	POST   /api/projects/{id}/upvote    → Toggle upvote               [auth]
//	POST   /api/projects/{id}/star      → Toggle star                 [auth]
//	GET    /api/projects/{id}/comments  → List comments
//	POST   /api/projects/{id}/comments  → Post a comment              [auth]
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
func (s *Server) setupRoutes() error {
	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// Our custom logging middleware
	s.router.Use(middleware.Logger(s.logger))

	// === Auth utilities ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	github := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	// === Services ===
	// The sqlite.DB accessors return per-entity stores; each satisfies the
	// matching repository interface the services are written against.
	profileService := service.NewProfileService(s.db.Profiles(), s.logger)
	authService := service.NewAuthService(s.db.Principals(), tokens, passwords, s.logger)
	engagementService := service.NewEngagementService(s.db.Engagements(), s.db.Projects(), s.logger)
	projectService := service.NewProjectService(s.db.Projects(), s.db.Engagements(), profileService, s.logger)
	commentService := service.NewCommentService(s.db.Comments(), s.db.Projects(), profileService, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(github, authService, profileService, s.logger)
	profileHandler := handler.NewProfileHandler(profileService, s.logger)
	projectHandler := handler.NewProjectHandler(projectService, authService, s.logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, profileService, authService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, authService, s.logger)

	// === Static Files ===
	// http.FileServer serves files from the filesystem.
	// http.StripPrefix removes "/static/" from the URL path before looking up the file.
	// So GET /static/app.js → serves {StaticDir}/app.js
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Auth Routes ===
	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// === API Routes ===
	s.router.Route("/api", func(r chi.Router) {
		// Public reads. The listing uses OptionalAuth: anonymous callers
		// get it too, authenticated callers get their engagement flags.
		r.With(auth.OptionalAuth(tokens)).Get("/projects", projectHandler.HandleList)
		r.Get("/projects/{id}", projectHandler.HandleGet)
		r.Get("/projects/{id}/comments", commentHandler.HandleList)
		r.Get("/profiles/{username}", profileHandler.HandleGetByUsername)

		// Everything below requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)
			r.Patch("/me", profileHandler.HandleUpdateMe)

			r.Post("/projects", projectHandler.HandleCreate)
			r.Delete("/projects/{id}", projectHandler.HandleDelete)
			r.Post("/projects/{id}/upvote", engagementHandler.HandleUpvote)
			r.Post("/projects/{id}/star", engagementHandler.HandleStar)
			r.Post("/projects/{id}/comments", commentHandler.HandleCreate)
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 3, the database file might be left in an inconsistent state.
// The `defer s.db.Close()` ensures this happens even if something panics.
func (s *Server) Start() error {
	// Ensure the database is closed when the server stops.
	// This runs AFTER everything else in this function finishes.
	defer s.db.Close()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
