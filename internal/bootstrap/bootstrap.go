// Package bootstrap assembles the store, services and HTTP application from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/clinic-booking/internal/api/http"
	"github.com/spec-kit/clinic-booking/internal/api/http/handlers"
	"github.com/spec-kit/clinic-booking/internal/auth"
	"github.com/spec-kit/clinic-booking/internal/config"
	"github.com/spec-kit/clinic-booking/internal/events"
	"github.com/spec-kit/clinic-booking/internal/identity"
	"github.com/spec-kit/clinic-booking/internal/observability"
	"github.com/spec-kit/clinic-booking/internal/persistence"
	"github.com/spec-kit/clinic-booking/internal/repository"
	"github.com/spec-kit/clinic-booking/internal/repository/memory"
	"github.com/spec-kit/clinic-booking/internal/repository/mongostore"
	"github.com/spec-kit/clinic-booking/internal/service"
	"github.com/spec-kit/clinic-booking/internal/worker"
)

// App holds the wired services of one process.
type App struct {
	Config        config.Config
	Logger        *zap.Logger
	Metrics       *observability.Metrics
	Store         *repository.Store
	Dispatcher    events.Dispatcher
	Catalog       *service.CatalogService
	Sessions      *service.SessionProvider
	Identity      *service.IdentityService
	Booking       *service.BookingService
	Notifications *service.NotificationService

	checks  []handlers.HealthCheck
	closers []func()
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	Store    *repository.Store
	Provider identity.Provider
	Metrics  *observability.Metrics
}

// New connects the configured backends and builds every service.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger, Metrics: opts.Metrics}

	store := opts.Store
	if store == nil {
		var err error
		store, err = a.openStore(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	if store.Close != nil {
		a.closers = append(a.closers, store.Close)
	}
	if store.Health != nil {
		a.checks = append(a.checks, handlers.HealthCheck{Name: cfg.Store.Driver, Pinger: store.Health})
	}
	breaker := persistence.NewCircuitBreaker("store", cfg.Breaker, logger, repository.IsExpected)
	a.Store = repository.Guard(store, breaker)

	revocations := a.openRevocations(ctx)

	provider := opts.Provider
	if provider == nil {
		var err error
		provider, err = a.openProvider(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Dispatcher = events.NewInMemoryDispatcher(func(e events.Event, err error) {
		logger.Warn("event handler failed", zap.String("type", string(e.Type)), zap.Error(err))
	})
	a.Catalog = service.NewCatalogService(a.Store.Catalog)
	a.Sessions = service.NewSessionProvider(a.Store.Users, a.Dispatcher)
	a.Identity = service.NewIdentityService(cfg, service.IdentityDependencies{
		Provider:    provider,
		Users:       a.Store.Users,
		Sessions:    a.Sessions,
		Revocations: revocations,
		Logger:      logger,
		Metrics:     a.Metrics,
	})
	a.Booking = service.NewBookingService(cfg, service.BookingDependencies{
		Appointments: a.Store.Appointments,
		Catalog:      a.Catalog,
		Seeder:       service.NewSeeder(a.Store.Catalog, a.Dispatcher),
		Dispatcher:   a.Dispatcher,
		Logger:       logger,
		Metrics:      a.Metrics,
	})
	a.Notifications = service.NewNotificationService(a.Dispatcher, logger, cfg.Notification)
	a.closers = append(a.closers, worker.StartNotificationWorker(a.Notifications))

	logger.Info("services ready",
		zap.String("store", cfg.Store.Driver),
		zap.String("identity_provider", provider.Name()))
	return a, nil
}

func (a *App) openStore(ctx context.Context) (*repository.Store, error) {
	cfg := a.Config
	switch cfg.Store.Driver {
	case config.StoreDriverMongo:
		m, err := persistence.NewMongo(ctx, cfg.Mongo, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		store, err := mongostore.Open(ctx, m.DB, cfg.Mongo.Timeout())
		if err != nil {
			m.Close()
			return nil, err
		}
		store.Health = m
		store.Close = m.Close
		return store, nil

	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, cfg.Postgres.MigrationsDir, a.Logger); err != nil {
				pg.Close()
				return nil, err
			}
		}
		store := repository.NewPostgresStore(pg.Pool)
		store.Health = pg
		store.Close = pg.Close
		return store, nil

	case config.StoreDriverMemory:
		a.Logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore().Repositories(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func (a *App) openRevocations(ctx context.Context) auth.RevocationStore {
	r, err := persistence.NewRedis(ctx, a.Config.Redis)
	switch {
	case errors.Is(err, persistence.ErrRedisDisabled):
		a.Logger.Info("REDIS_ADDR not provided; session revocation kept in memory")
		return auth.NewMemoryRevocationStore()
	case err != nil:
		a.Logger.Warn("redis unreachable; session revocation kept in memory", zap.Error(err))
		return auth.NewMemoryRevocationStore()
	}
	a.Logger.Info("connected to redis", zap.String("addr", a.Config.Redis.Addr))
	a.closers = append(a.closers, r.Close)
	a.checks = append(a.checks, handlers.HealthCheck{Name: "redis", Pinger: r})
	return auth.NewRedisRevocationStore(r.Client)
}

func (a *App) openProvider(ctx context.Context) (identity.Provider, error) {
	switch a.Config.Identity.Provider {
	case config.IdentityProviderFirebase:
		p, err := identity.NewFirebaseProvider(ctx, a.Config.Firebase)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.IdentityProviderLocal:
		return identity.NewLocalProvider(a.Store.Users, a.Config.Auth.BcryptCost), nil
	}
	return nil, fmt.Errorf("unknown identity provider %q", a.Config.Identity.Provider)
}

// HTTP builds the fiber application with middlewares and routes.
func (a *App) HTTP() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               a.Config.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, a.Logger, a.Metrics, httptransport.MiddlewareConfig{
		Timeout:          a.Config.App.RequestTimeout(),
		CORSAllowOrigins: a.Config.App.CORSAllowOrigins,
	})
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(a.Config.App.Name, a.Config.App.Version, a.checks...),
		Auth:           handlers.NewAuthHandler(a.Identity),
		Catalog:        handlers.NewCatalogHandler(a.Catalog, a.Booking),
		Appointments:   handlers.NewAppointmentsHandler(a.Booking),
		AuthMiddleware: auth.NewAuthMiddleware(a.Identity),
		Metrics:        a.Metrics,
		AuthRateLimit:  httptransport.RateLimitMiddleware(a.Config.RateLimit.RequestsPerSecond, a.Config.RateLimit.Burst),
	})
	return app
}

// Close releases every backend in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
