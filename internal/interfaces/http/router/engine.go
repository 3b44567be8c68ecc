package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wecre8/oto/internal/infrastructure/logger"
	"github.com/wecre8/oto/internal/interfaces/http/handler"
	"github.com/wecre8/oto/internal/interfaces/http/middleware"
)

// Unauthenticated probe paths, also skipped by request logging
const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Config holds everything NewEngine wires into the HTTP surface
type Config struct {
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string

	Logger   *zap.Logger
	Registry *prometheus.Registry
	Tokens   middleware.TokenValidator
	Shipping handler.ShippingService
	Health   *handler.HealthHandler
}

// NewEngine builds the gin engine: global middleware, probes and the
// authenticated /api/v1 routes
func NewEngine(cfg Config) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(cfg.Logger),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(cfg.Logger, HealthPath, MetricsPath),
		middleware.NewHTTPMetrics(cfg.Registry).Middleware(),
		middleware.Secure(),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET(HealthPath, cfg.Health.Health)
	engine.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry})))

	auth := []gin.HandlerFunc{
		middleware.HookAuth(middleware.HookAuthConfig{Validator: cfg.Tokens, Logger: cfg.Logger}),
		middleware.SpanAttributeInjector(),
	}

	hooks := handler.NewFulfillmentHookHandler(cfg.Shipping)
	otoHandler := handler.NewOTOHandler(cfg.Shipping)

	groups := []*DomainGroup{
		NewDomainGroup("hooks", "/hooks/fulfillments").
			Use(auth...).
			POST("/:id/created", hooks.Created).
			POST("/:id/canceled", hooks.Canceled),
		NewDomainGroup("oto", "/oto").
			Use(auth...).
			POST("/dispatch", otoHandler.Dispatch).
			GET("/tasks/:id", otoHandler.GetTask),
	}

	r := NewRouter(engine)
	for _, g := range groups {
		r.Register(g)
		cfg.Logger.Debug("Routes mounted",
			zap.String("group", g.Name()),
			zap.String("base", r.BasePath()),
			zap.Strings("routes", g.Routes()),
		)
	}
	r.Setup()

	return engine, nil
}
