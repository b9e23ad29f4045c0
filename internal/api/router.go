package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/oblivions/storefront/docs" // swagger docs

	"github.com/oblivions/storefront/internal/api/handler"
	"github.com/oblivions/storefront/internal/api/middleware"
	"github.com/oblivions/storefront/internal/core/domain"
	"github.com/oblivions/storefront/internal/core/ports"
)

const hstsMaxAge = 365 * 24 * 60 * 60

// RouterConfig holds the HTTP-level settings.
type RouterConfig struct {
	StaticDir         string
	BodyLimit         string
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Deps are the collaborators the routes are wired to.
type Deps struct {
	Log      zerolog.Logger
	Auth     ports.AuthService
	Sessions ports.SessionAuthority
	Admin    ports.AdminService
	Cookies  *middleware.CookieCodec
	Health   map[string]handler.Pinger
	// Registry receives the HTTP request metrics. A fresh registry is used
	// when nil so that several routers can coexist in one process.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		HSTSMaxAge:            hstsMaxAge,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'",
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: reg,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Cookies)
	sessionHandler := handler.NewSessionHandler(d.Sessions, d.Cookies)
	adminHandler := handler.NewAdminHandler(d.Admin)
	catalogHandler := handler.NewCatalogHandler()
	healthHandler := handler.NewHealthHandler(d.Health)

	// --- Operational routes ---
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are the stores up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{reg, prometheus.DefaultGatherer},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API ---
	api := e.Group("/api",
		middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow),
		middleware.LoadSession(d.Sessions, d.Cookies, d.Log),
		middleware.CSRF(),
	)
	api.GET("/csrf-token", sessionHandler.CSRFToken)
	api.GET("/auth/session", sessionHandler.Current)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/products", catalogHandler.Products)
	api.GET("/products/:id", catalogHandler.Product)

	admin := api.Group("/admin",
		middleware.RequireAuthenticated(),
		middleware.RequireRole(domain.RoleAdmin),
	)
	admin.GET("/users", adminHandler.ListUsers)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.GET("/orders/:id/items", adminHandler.ListOrderItems)

	// --- Frontend ---
	if cfg.StaticDir != "" {
		e.Static("/", cfg.StaticDir)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			switch {
			case v.Status >= 500:
				ev = log.Error().Err(v.Error)
			case v.Error != nil:
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
