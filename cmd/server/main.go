package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/oblivions/storefront/internal/api"
	"github.com/oblivions/storefront/internal/api/handler"
	"github.com/oblivions/storefront/internal/api/middleware"
	"github.com/oblivions/storefront/internal/core/ports"
	"github.com/oblivions/storefront/internal/core/service"
	"github.com/oblivions/storefront/internal/infrastructure/config"
	"github.com/oblivions/storefront/internal/infrastructure/db"
	redisstore "github.com/oblivions/storefront/internal/infrastructure/db/redis"
	"github.com/oblivions/storefront/internal/infrastructure/session"
	"github.com/oblivions/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Storefront API
// @version 1.0
// @description Storefront backend with cookie sessions, CSRF protection and an admin dashboard API.
// @host localhost:3000
// @BasePath /api
// @schemes https http
// @securityDefinitions.apikey CSRFToken
// @in header
// @name CSRF-Token
// @description Token returned by GET /api/csrf-token, required on state-changing requests.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	store, err := db.Open(ctx, cfg.Store, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("credential store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing credential store")
		}
	}()
	log.Info().Str("driver", store.Driver).Msg("credential store ready")

	health := map[string]handler.Pinger{store.Driver: store}

	sessionStore, closeSessions, err := openSessionStore(ctx, cfg, log, health)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	defer closeSessions()

	sessions := service.NewSessionService(sessionStore, cfg.Session.TTL, logger.Component("session"))
	auth := service.NewAuthService(store.Users, sessions, logger.Component("auth"))
	admin := service.NewAdminService(store.Users, store.Orders, logger.Component("admin"))

	if cfg.Admin.Email != "" {
		user, created, err := auth.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if !created {
			log.Info().Str("email", user.Email).Msg("admin user already present")
		}
	}

	e := api.NewRouter(api.RouterConfig{
		StaticDir:         cfg.StaticDir,
		BodyLimit:         cfg.BodyLimit,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
	}, api.Deps{
		Log:      log,
		Auth:     auth,
		Sessions: sessions,
		Admin:    admin,
		Cookies:  middleware.NewCookieCodec(cfg.Session.Secret),
		Health:   health,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Bool("tls", cfg.TLS.Enabled()).Msg("server starting")
		if cfg.TLS.Enabled() {
			errCh <- e.StartTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		if !cfg.IsDevelopment() {
			log.Warn().Msg("serving without TLS; session cookies are Secure and need an HTTPS terminator in front")
		}
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openSessionStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, health map[string]handler.Pinger) (ports.SessionStore, func(), error) {
	if cfg.Session.Store == config.SessionsRedis {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, nil, err
		}
		health["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis session store ready")
		return redisstore.NewSessionStore(client), func() { _ = client.Close() }, nil
	}

	mem := session.NewMemoryStore()
	session.NewJanitor(mem, cfg.Session.SweepInterval, logger.Component("session-janitor")).Start(ctx)
	return mem, func() {}, nil
}
