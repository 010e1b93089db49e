// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, caller identity and the per-address
// request ceiling.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/promptforge/promptforge-api/docs"
	"github.com/promptforge/promptforge-api/internal/config"
	"github.com/promptforge/promptforge-api/internal/http/handlers"
	"github.com/promptforge/promptforge-api/internal/http/middleware"
	"github.com/promptforge/promptforge-api/internal/repo"
	"github.com/promptforge/promptforge-api/internal/services"
)

// ServiceName is reported by GET /.
const ServiceName = "PromptForge API"

// healthTimeout bounds the database ping behind GET /health.
const healthTimeout = 2 * time.Second

// Deps are the collaborators the routes are bound to. Users may be nil, in
// which case identities are accepted without being recorded.
type Deps struct {
	DB      *gorm.DB
	Catalog handlers.ToolCatalog
	Prompts handlers.PromptService
	History handlers.HistoryService
	Usage   handlers.UsageService
	Users   *services.UserService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and the
// per-address ceiling, CORS and security headers, status, health, metrics and
// docs endpoints, and then mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before the ceiling to allow bypass on replay)
//  8. Per-address ceiling (bypass on replay)
//  9. Compression, CORS and Security headers
//  10. Identity (API group only)
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
			middleware.HeaderUserEmail,
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before the ceiling)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, toolID, key string, now time.Time) (bool, error) {
			if deps.DB == nil {
				return false, nil
			}
			rec, err := repo.GetIdempotency(ctx, deps.DB, userID, toolID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Per-address ceiling, independent of the per-user quota (nil when disabled)
	r.Use(middleware.NewWindowLimiter(cfg.Quota.IPLimit, cfg.Quota.IPWindow, middleware.KeyByIP()).Handler())

	// 9) Response compression, CORS posture (safe defaults: allow all if none configured)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
			middleware.HeaderUserID, middleware.HeaderUserEmail, middleware.HeaderUserName,
			middleware.HeaderIdempotencyKey,
		},
		ExposeHeaders: []string{
			"X-Request-ID", "Content-Length", "ETag", "Retry-After",
			"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset",
			middleware.HeaderIdempotencyReplayed,
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		corsCfg.AllowAllOrigins = true // AllowCredentials must remain false
		r.Use(cors.New(corsCfg))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
		r.Use(cors.New(corsCfg))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Status and liveness
	r.GET("/", statusHandler(deps.DB))
	r.GET("/health", healthHandler(deps.DB))

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Catalog, deps.Prompts, deps.History, deps.Usage)

	var ensure middleware.EnsureUserFunc
	if deps.Users != nil {
		ensure = deps.Users.Ensure
	}

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.Identity(ensure))
	{
		// Catalog
		api.GET("/tools", h.ListTools)
		api.GET("/tools/categories", h.ListCategories)
		api.GET("/tools/category/:category", h.ListByCategory)
		api.GET("/tools/search/:query", h.SearchTools)
		api.GET("/tools/:id", h.GetTool)

		// Invocation
		api.POST("/tools/:id/prompt", h.PostPrompt)

		// History
		api.GET("/tools/history", h.GetHistory)
		api.POST("/tools/history", h.PostHistory)

		// Usage
		api.GET("/stats", h.GetStats)
	}
}

// statusHandler reports the service name and database reachability. It always
// answers 200; /health is the probe that fails.
func statusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := "connected"
		if pingDB(c.Request.Context(), db) != nil {
			state = "disconnected"
		}
		c.JSON(http.StatusOK, gin.H{
			"service":   ServiceName,
			"message":   "Backend is running",
			"database":  state,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// healthHandler answers 200 when the database responds and 503 otherwise.
func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pingDB(c.Request.Context(), db); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "disconnected"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
