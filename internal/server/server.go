// Package server wires the application together and manages the HTTP server
// lifecycle.
//
// Initialization follows a fixed order: database pools, then auth providers,
// then repositories, services and handlers, then routes. Shutdown reverses
// it, draining in-flight requests before closing the pools.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/auth"
	"github.com/apsx/clinic-api/internal/config"
	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/handlers"
	"github.com/apsx/clinic-api/internal/repository"
	"github.com/apsx/clinic-api/internal/service"
	"github.com/apsx/clinic-api/migrations"
	"github.com/apsx/clinic-api/scripts"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	OrderHandler   *handlers.OrderHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler
}

// AuthProviders contains the authentication components shared between the
// guards and the services.
type AuthProviders struct {
	TokenService *auth.TokenService
	Middleware   *auth.Middleware
	PasswordCfg  *auth.PasswordConfig
	OTPVerifier  auth.OTPVerifier
}

// Server represents the API server.
type Server struct {
	Config        *config.AppConfig
	Pools         *database.Pools
	Handlers      *Handlers
	authProviders *AuthProviders
	router        chi.Router
	httpServer    *http.Server
}

// NewServer creates a fully wired server instance.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{Config: cfg}

	pools, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up database pools: %w", err)
	}
	s.Pools = pools

	if err := s.prepareDatabases(); err != nil {
		pools.Close()
		return nil, err
	}

	s.setupAuthProviders()
	s.setupHandlers()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// prepareDatabases runs schema migrations on both clusters and seeds the
// reference data.
func (s *Server) prepareDatabases() error {
	ctx := context.Background()

	migrator := migrations.NewMigrator(s.Pools.Main, migrations.GetMigrations())
	if err := migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	logMigrator := migrations.NewMigrator(s.Pools.Log, migrations.GetLogMigrations())
	if err := logMigrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run log database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(s.Pools.Main)
	if err := seeder.SeedDatabase(ctx); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

// setupAuthProviders initializes the token service and guards.
func (s *Server) setupAuthProviders() {
	tokenService := auth.NewTokenService(&s.Config.JWT)

	s.authProviders = &AuthProviders{
		TokenService: tokenService,
		Middleware:   auth.NewMiddleware(tokenService),
		PasswordCfg:  &auth.PasswordConfig{Cost: s.Config.PasswordHash.BcryptCost},
		OTPVerifier:  auth.NewTOTPVerifier(),
	}
}

// setupHandlers builds the repository, service and handler graph over the
// four pools.
func (s *Server) setupHandlers() {
	userRepo := repository.NewUserRepository(s.Pools.Main, s.Pools.Replica)
	orderRepo := repository.NewOrderRepository(s.Pools.Main, s.Pools.Replica)
	customerRepo := repository.NewCustomerRepository(s.Pools.Replica)
	shopRepo := repository.NewShopRepository(s.Pools.Replica)
	categoryRepo := repository.NewCategoryRepository(s.Pools.Replica)
	productRepo := repository.NewProductRepository(s.Pools.Replica)
	loginLogRepo := repository.NewLoginLogRepository(s.Pools.Log, s.Pools.LogReplica)

	authService := service.NewAuthService(
		userRepo,
		loginLogRepo,
		s.authProviders.TokenService,
		s.authProviders.PasswordCfg,
		s.authProviders.OTPVerifier,
	)
	userService := service.NewUserService(userRepo, loginLogRepo)
	orderService := service.NewOrderService(orderRepo, customerRepo)
	catalogService := service.NewCatalogService(shopRepo, categoryRepo, productRepo)

	s.Handlers = &Handlers{
		AuthHandler:    handlers.NewAuthHandler(authService),
		UserHandler:    handlers.NewUserHandler(userService),
		OrderHandler:   handlers.NewOrderHandler(orderService),
		CatalogHandler: handlers.NewCatalogHandler(catalogService),
		HealthHandler:  handlers.NewHealthHandler(s.Pools, s.Config.App.Version),
	}
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.httpServer.Addr).
			Str("environment", s.Config.App.Environment).
			Msg("Starting HTTP server")

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		s.Pools.Close()
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		return s.Shutdown()
	}
}

// Shutdown drains in-flight requests and closes the database pools.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Pools.Close()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Pools.Close()
	log.Info().Msg("Server stopped")

	return nil
}

// Router exposes the route tree, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}
