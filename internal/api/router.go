package api

import (
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/plannr/event-planner/docs"
	"github.com/plannr/event-planner/internal/api/handler"
	"github.com/plannr/event-planner/internal/api/middleware"
	"github.com/plannr/event-planner/internal/core/ports"
	"github.com/plannr/event-planner/internal/infrastructure/config"
)

// MetricsRegistry is where HTTP metrics are registered and gathered from.
type MetricsRegistry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Config *config.Config
	Log    zerolog.Logger

	Auth   ports.AuthService
	Events ports.EventService

	Mongo handler.DatabaseProvider
	Redis *redis.Client // optional

	// Metrics defaults to the global Prometheus registry.
	Metrics MetricsRegistry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	cfg := d.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:          "planner",
		Subsystem:          "http",
		Registerer:         registerer,
		StatusCodeResolver: metricsStatus,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, handler.SessionCookie(cfg.Auth.CookieName, cfg.Auth.TokenTTL, cfg.IsProduction()))
	eventHandler := handler.NewEventHandler(d.Events)
	healthHandler := handler.NewHealthHandler(d.Mongo, d.Redis)
	requireAuth := middleware.Auth(d.Auth, cfg.Auth.CookieName)

	// --- Health, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/auth")
	if cfg.AuthRateLimit > 0 {
		auth.Use(authRateLimiter(cfg.AuthRateLimit))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/profile", authHandler.Profile, requireAuth)

	// --- Event routes; static segments before :id ---
	events := e.Group("/events", requireAuth)
	events.GET("", eventHandler.List)
	events.POST("", eventHandler.Save)
	events.GET("/current", eventHandler.Current)
	events.DELETE("/current", eventHandler.DeleteCurrent)
	events.POST("/new", eventHandler.CreateNew)
	events.PATCH("/step", eventHandler.PatchStep)
	events.PATCH("/category", eventHandler.PatchCategory)
	events.GET("/:id", eventHandler.Get)
	events.PUT("/:id", eventHandler.Update)
	events.DELETE("/:id", eventHandler.Delete)

	return e
}

// authRateLimiter limits requests per client IP, allowing short bursts of
// twice the steady rate.
func authRateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(math.Max(1, math.Ceil(perSecond*2)))
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perSecond),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})
}
