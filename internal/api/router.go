package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/connex/contact-manager/docs"
	"github.com/connex/contact-manager/internal/api/handler"
	"github.com/connex/contact-manager/internal/api/middleware"
	"github.com/connex/contact-manager/internal/core/ports"
)

// Deps groups what the router needs from the composition root.
type Deps struct {
	Contacts ports.ContactService
	// Checks are pinged by the readiness probe, keyed by dependency name.
	Checks  map[string]handler.Pinger
	Origins []string
	Logger  zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// HTTP metrics live in a per-router registry; /metrics serves them
	// together with the default registry holding the domain counters.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(middleware.CORS(deps.Origins))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "connex",
		Registerer: reg,
	}))

	// --- Health probes and tooling ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Contact routes ---
	contactHandler := handler.NewContactHandler(deps.Contacts)
	contacts := e.Group("/api/contacts")
	contacts.GET("", contactHandler.List)
	contacts.POST("", contactHandler.Create)
	contacts.GET("/:id", contactHandler.Get)
	contacts.PATCH("/:id", contactHandler.Update)
	contacts.DELETE("/:id", contactHandler.Delete)
	contacts.GET("/:id/events", contactHandler.History)

	return e
}
