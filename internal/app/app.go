// Package app assembles the service from configuration and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/api/handler"
	"github.com/99minutos/auth-service/internal/core/credential"
	"github.com/99minutos/auth-service/internal/core/ports"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/infrastructure/config"
	"github.com/99minutos/auth-service/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/auth-service/internal/infrastructure/db/mongo"
	"github.com/99minutos/auth-service/internal/infrastructure/db/postgres"
	redisstore "github.com/99minutos/auth-service/internal/infrastructure/db/redis"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
)

const shutdownTimeout = 10 * time.Second

// App holds the assembled HTTP server and the resources it must release.
type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	router  *echo.Echo
	closers []func(context.Context) error
}

// storage is an opened backend ready to serve requests.
type storage struct {
	provider ports.StoreProvider
	close    func(context.Context) error
}

// New opens storage (applying migrations), connects the optional login
// throttle and builds the router.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.close)
	health := map[string]handler.Pinger{cfg.DB.Driver: store.provider}

	var throttle ports.LoginThrottle
	if cfg.Throttle.Enabled {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })

		limiter := redisstore.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window)
		throttle = limiter
		health["redis"] = limiter
		log.Info().
			Int("max_failures", cfg.Throttle.MaxFailures).
			Dur("window", cfg.Throttle.Window).
			Msg("login throttling enabled")
	}

	passwords, err := credential.NewManager(cfg.Auth.BcryptCost)
	if err != nil {
		a.close()
		return nil, err
	}
	issuer, err := token.NewIssuer(cfg.Auth.SecretKey, cfg.Auth.Algorithm)
	if err != nil {
		a.close()
		return nil, err
	}
	authService := service.NewAuthService(passwords, issuer, throttle, cfg.Auth.AccessTokenTTL(), log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.router = api.NewRouter(api.Deps{
		Log:         log,
		Store:       store.provider,
		AuthService: authService,
		Registry:    reg,
		Health:      health,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	addr := ":" + a.cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Str("driver", a.cfg.DB.Driver).Msg("http server listening")
		if err := a.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Migrate prepares the configured backend's schema and returns.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	return store.close(ctx)
}

// openStorage connects the configured backend and brings its schema up to date.
func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage, error) {
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, postgres.Config{DSN: cfg.DB.URL})
		if err != nil {
			return storage{}, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return storage{}, err
		}
		log.Info().Msg("postgres migrations applied")
		return storage{
			provider: postgres.NewProvider(db),
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return storage{}, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return storage{}, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo indexes ensured")
		return storage{
			provider: mongostore.NewProvider(client, db),
			close:    client.Disconnect,
		}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory storage; users are lost on restart")
		return storage{
			provider: memory.NewStore(),
			close:    func(context.Context) error { return nil },
		}, nil

	default:
		return storage{}, fmt.Errorf("unknown storage driver %q", cfg.DB.Driver)
	}
}

// close releases resources in reverse order of acquisition.
func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("release resource")
		}
	}
	a.closers = nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler { return a.router }
