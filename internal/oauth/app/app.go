// Package app wires configuration, storage, the grant components, and the
// HTTP server into a runnable service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stillwater-io/grantd/internal/oauth/grant"
	httpapi "github.com/stillwater-io/grantd/internal/oauth/http"
	"github.com/stillwater-io/grantd/internal/oauth/registry"
	"github.com/stillwater-io/grantd/internal/oauth/signing"
	"github.com/stillwater-io/grantd/internal/oauth/store"
	"github.com/stillwater-io/grantd/internal/oauth/store/drivers/sqlite"
	"github.com/stillwater-io/grantd/pkg/jwtx"
	"github.com/stillwater-io/grantd/pkg/slogx"
)

const (
	// BuildVersion should be overridden at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the grant service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.Signer

	registry     *registry.Registry
	housekeeping *registry.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "grantd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Signing keys are in-process and ephemeral; tokens do not survive a
	// restart. Persistent key storage is a deployment concern.
	signer, err := jwtx.NewEphemeralSigner("grantd-" + BuildVersion)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing key: %w", err)
	}
	app.signer = signer

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("grantd starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down grantd...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("grantd stopped")
	return nil
}

// initDatabase opens the sqlite store and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initHTTP wires the grant components into the router and server.
func (app *Application) initHTTP() {
	app.registry = registry.New(app.db)
	app.registry.GrantTTL = app.cfg.GrantTTL

	app.housekeeping = registry.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	validator := grant.NewValidator(app.registry, grant.ResponseTypeCode, grant.ResponseTypeToken)
	handler := signing.NewHandler(app.signer, app.cfg.Issuer)

	router := httpapi.NewRouter(app.cfg.Issuer, BuildVersion, app.db, app.logger)
	router.CodeGrant = grant.NewAuthorizationCodeGrant(app.registry, handler, validator)
	router.ImplicitGrant = grant.NewImplicitGrant(app.registry, handler, validator)
	router.BootstrapToken = app.cfg.BootstrapToken
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
