package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/bookshelf-api/internal/api/middleware"
	"github.com/phrazzld/bookshelf-api/internal/config"
	"github.com/phrazzld/bookshelf-api/internal/domain"
	"github.com/phrazzld/bookshelf-api/internal/platform/metrics"
	"github.com/phrazzld/bookshelf-api/internal/platform/postgres"
	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"github.com/phrazzld/bookshelf-api/internal/service/catalog"
	"github.com/phrazzld/bookshelf-api/internal/store"
)

// limiterIdle is how long an address may stay silent before its login
// limiter is forgotten.
const limiterIdle = 3 * time.Minute

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics     *metrics.Provider
	httpMetrics *metrics.HTTPMetrics

	userStore store.UserStore
	bookStore store.BookStore

	codec         auth.TokenCodec
	authenticator *auth.Authenticator
	catalog       *catalog.Service

	loginLimiter *middleware.RateLimiter
}

// newApplication creates a new application instance with all dependencies initialized.
// Migrations and seeding run here, before the server accepts traffic.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	if err := app.seed(ctx); err != nil {
		return nil, err
	}

	var err error
	app.metrics, err = metrics.Setup(ctx, cfg.Metrics.Exporter, metrics.Options{Global: true})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	app.httpMetrics, err = metrics.NewHTTPMetrics(app.metrics.Meter())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP metrics: %w", err)
	}

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.bookStore = postgres.NewPostgresBookStore(db, logger)

	app.codec, err = auth.NewTokenCodec(cfg.Auth.JWTSecret, cfg.Auth.ClockSkew)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.authenticator, err = auth.NewAuthenticator(
		app.userStore,
		auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
		app.codec,
		cfg.Auth.TokenTTL,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}
	logger.Info("authentication initialized",
		slog.Duration("token_ttl", cfg.Auth.TokenTTL),
		slog.Duration("clock_skew", cfg.Auth.ClockSkew))

	app.catalog, err = catalog.NewService(app.bookStore, app.metrics.Meter(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}

	if cfg.Auth.LoginRatePerSecond > 0 {
		app.loginLimiter = middleware.NewRateLimiter(cfg.Auth.LoginRatePerSecond, cfg.Auth.LoginBurst, limiterIdle)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// seedUsers lists the bootstrap credentials for cfg.
func seedUsers(cfg config.SeedConfig) []postgres.SeedUser {
	return []postgres.SeedUser{
		{Username: "admin", Password: cfg.AdminPassword, Roles: []domain.Role{domain.RoleAdmin}},
		{Username: "user", Password: cfg.UserPassword, Roles: []domain.Role{domain.RoleUser}},
	}
}

func (app *application) seed(ctx context.Context) error {
	if !app.config.Seed.Enabled {
		return nil
	}

	seeder := postgres.NewSeeder(app.db, app.config.Auth.BcryptCost, app.logger)
	if err := seeder.SeedUsers(ctx, seedUsers(app.config.Seed)); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	if app.config.Seed.SampleBooks {
		if err := seeder.SeedBooks(ctx, postgres.SampleBooks); err != nil {
			return fmt.Errorf("failed to seed books: %w", err)
		}
	}
	app.logger.Info("seed data applied", slog.Bool("sample_books", app.config.Seed.SampleBooks))
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) setupRouter() http.Handler {
	return newRouter(routerDeps{
		logger:         app.logger,
		codec:          app.codec,
		users:          app.userStore,
		authenticator:  app.authenticator,
		catalog:        app.catalog,
		db:             app.db,
		httpMetrics:    app.httpMetrics,
		metricsHandler: app.metrics.Handler(),
		loginLimiter:   app.loginLimiter,
	})
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.metrics.Shutdown(ctx); err != nil {
			app.logger.Error("error shutting down metrics", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
