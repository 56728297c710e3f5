package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AdminRole is the JWT role allowed on the transfer routes
const AdminRole = "admin"

// Options carries everything the HTTP surface needs
type Options struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	MetricsEnabled bool
	Telemetry      *telemetry.Providers
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration
	System         *handler.SystemHandler
	Transfer       *handler.TransferHandler
}

// Engine is the assembled gin engine plus the resources it owns
type Engine struct {
	*gin.Engine
	limiter *middleware.RateLimiter
}

// Close stops background work started by the engine
func (e *Engine) Close() {
	if e.limiter != nil {
		e.limiter.Stop()
	}
}

// NewEngine builds the gin engine with the global middleware stack,
// the health route and the versioned transfer API.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(opts.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// GinMiddleware assigns the request id everything after it reads.
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: opts.ServiceName,
		Enabled:     opts.TracingEnabled,
		SkipPaths:   []string{"/health"},
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Telemetry: opts.Telemetry,
		Enabled:   opts.MetricsEnabled,
	}))
	engine.Use(middleware.Secure())

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSOrigins
	engine.Use(middleware.CORSWithConfig(cors))

	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}

	if opts.System != nil {
		engine.GET("/health", opts.System.Health)
	}

	out := &Engine{Engine: engine}

	api := NewAPI("v1").Use(
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			Validator: opts.Tokens,
			Logger:    log,
		}),
		middleware.TracingAttributeInjector(),
		middleware.RequireRole(AdminRole),
	)

	if opts.System != nil {
		api.Mount(NewGroup("system", "/system").GET("/info", opts.System.GetSystemInfo))
	}

	if opts.Transfer != nil {
		transfer := NewGroup("transfer", "")
		if opts.HTTP.RateLimit > 0 {
			out.limiter = middleware.NewRateLimiter(opts.HTTP.RateLimit, opts.HTTP.RateWindow)
			transfer.Use(middleware.RateLimit(out.limiter))
			log.Info("Rate limiting enabled",
				zap.Int("requests", opts.HTTP.RateLimit),
				zap.Duration("window", opts.HTTP.RateWindow),
			)
		}

		importHandlers := []gin.HandlerFunc{opts.Transfer.Import}
		if opts.Idempotency != nil {
			importHandlers = append([]gin.HandlerFunc{
				middleware.Idempotency(opts.Idempotency, opts.IdempotencyTTL, log),
			}, importHandlers...)
		}

		transfer.POST("/import", importHandlers...).
			POST("/export", opts.Transfer.Export)
		transfer.Child("registry", "/transfer").
			GET("/types", opts.Transfer.Types).
			GET("/history", opts.Transfer.History)
		api.Mount(transfer)

		for _, r := range transfer.Routes() {
			log.Debug("Transfer route", zap.String("method", r.Method), zap.String("path", api.Prefix()+r.Path))
		}
	}

	api.Install(engine)
	return out
}
