// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency and owner authentication.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Dashboard routes stay behind the CORS allowlist while the widget script
//     and public feed can be loaded from any customer page
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/testify-backend/docs"
	"github.com/tbourn/testify-backend/internal/auth"
	"github.com/tbourn/testify-backend/internal/config"
	"github.com/tbourn/testify-backend/internal/domain"
	"github.com/tbourn/testify-backend/internal/http/handlers"
	"github.com/tbourn/testify-backend/internal/http/middleware"
	"github.com/tbourn/testify-backend/internal/repo"
	"github.com/tbourn/testify-backend/internal/services"
	"github.com/tbourn/testify-backend/internal/share"
	"github.com/tbourn/testify-backend/internal/widget"
)

// testimonialRepoShim adapts the repository free functions to the
// services.TestimonialRepo interface. This keeps services decoupled from the
// concrete repo package while reusing existing functions.
type testimonialRepoShim struct{}

func (testimonialRepoShim) CreateTestimonial(ctx context.Context, db *gorm.DB, t *domain.Testimonial) error {
	return repo.CreateTestimonial(ctx, db, t)
}

func (testimonialRepoShim) GetTestimonial(ctx context.Context, db *gorm.DB, id string) (*domain.Testimonial, error) {
	return repo.GetTestimonial(ctx, db, id)
}

func (testimonialRepoShim) ListTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	return repo.ListTestimonialsByOwner(ctx, db, ownerID)
}

func (testimonialRepoShim) CountTestimonialsByOwner(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	return repo.CountTestimonialsByOwner(ctx, db, ownerID)
}

func (testimonialRepoShim) ListTestimonialsByOwnerPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.Testimonial, error) {
	return repo.ListTestimonialsByOwnerPage(ctx, db, ownerID, offset, limit)
}

func (testimonialRepoShim) ListApprovedByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Testimonial, error) {
	return repo.ListApprovedByOwner(ctx, db, ownerID)
}

func (testimonialRepoShim) UpdateTestimonialStatus(ctx context.Context, db *gorm.DB, id, ownerID string, status domain.Status) (time.Time, error) {
	return repo.UpdateTestimonialStatus(ctx, db, id, ownerID, status)
}

func (testimonialRepoShim) DeleteTestimonial(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	return repo.DeleteTestimonial(ctx, db, id, ownerID)
}

func (testimonialRepoShim) OwnerStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.OwnerStats(ctx, db, ownerID)
}

func (testimonialRepoShim) FeedStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, int64, *time.Time, error) {
	return repo.FeedStats(ctx, db, ownerID)
}

// accountRepoShim adapts the account functions to services.AccountRepo.
type accountRepoShim struct{}

func (accountRepoShim) UpsertAccount(ctx context.Context, db *gorm.DB, a *domain.Account) error {
	return repo.UpsertAccount(ctx, db, a)
}

func (accountRepoShim) GetAccount(ctx context.Context, db *gorm.DB, id string) (*domain.Account, error) {
	return repo.GetAccount(ctx, db, id)
}

func (accountRepoShim) AccountExists(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return repo.AccountExists(ctx, db, id)
}

// idemRepoShim adapts the idempotency functions to services.IdempotencyRepo.
type idemRepoShim struct{}

func (idemRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, ownerID, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, ownerID, key, now)
}

func (idemRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, ownerID, key, testimonialID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, ownerID, key, testimonialID, status, ttl)
}

// Deps carries optional collaborators built by main.
type Deps struct {
	// FeedCache backs the public feed. Leave nil to read the store directly.
	FeedCache services.FeedCache
	// Verifier overrides the token verifier built from cfg.Auth.
	Verifier middleware.TokenVerifier
}

// pinger is implemented by collaborators that can report readiness.
type pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, and then mounts the versioned API
// under cfg.APIBasePath and the widget script at /widget.js.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS (allowlist; skipped on public embed routes) and security headers
//
// Idempotency-Key validation runs on the submit route only; authentication
// runs on the dashboard group only.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, deps Deps) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Proxy-Authorization", "X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB; the largest testimonial is ~20 KiB)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture for the dashboard, public embed routes excluded
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	r.Use(skipPaths(dashboardCORS(cfg.CORS.AllowedOrigins), isPublicPath(apiBase)))

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

	// Liveness and readiness
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", readiness(db, deps.FeedCache))

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/cache
	tRepo := testimonialRepoShim{}
	subSvc := services.NewSubmissionService(db, tRepo, accountRepoShim{}, idemRepoShim{})
	subSvc.RequireKnownOwner = cfg.RequireKnownOwner
	subSvc.IdempotencyTTL = cfg.IdempotencyTTL
	modSvc := services.NewModerationService(db, tRepo)
	dispSvc := services.NewDisplayService(db, tRepo, deps.FeedCache)
	acctSvc := services.NewAccountService(db, accountRepoShim{})

	kit := share.NewKit(cfg.Share.PublicBaseURL, apiBase, cfg.Share.QRSize, cfg.Share.QRRecovery)
	script := widget.Render(joinURL(cfg.Share.PublicBaseURL, apiBase))
	h := handlers.New(subSvc, modSvc, dispSvc, acctSvc, kit, script)

	verifier := deps.Verifier
	if verifier == nil && cfg.Auth.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	}

	// Embeddable script, loadable from any origin
	compress := gzip.Gzip(gzip.DefaultCompression)
	r.GET("/widget.js", middleware.PublicEmbed(), compress, h.WidgetScript)
	r.OPTIONS("/widget.js", middleware.PublicEmbed())

	api := groupWithPrefix(r, apiBase)
	{
		// Anonymous submission
		api.POST("/submit/:ownerId",
			middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}),
			h.SubmitTestimonial,
		)

		// Public feed, loadable from any origin
		pub := api.Group("/public", middleware.PublicEmbed())
		pub.GET("/:ownerId/testimonials", compress, h.PublicFeed)
		pub.OPTIONS("/:ownerId/testimonials", func(*gin.Context) {})

		// Owner dashboard
		owner := api.Group("", middleware.Authenticate(verifier, middleware.AuthOptions{
			AllowDevHeader: cfg.Auth.AllowDevHeader,
		}))
		owner.GET("/me", h.Me)
		owner.GET("/me/qr.png", h.MeQRCode)

		owner.GET("/testimonials", h.ListTestimonials)
		owner.GET("/testimonials/:id", h.GetTestimonial)
		owner.POST("/testimonials/:id/approve", h.ApproveTestimonial)
		owner.POST("/testimonials/:id/reject", h.RejectTestimonial)
		owner.PUT("/testimonials/:id/status", h.SetTestimonialStatus)
		owner.DELETE("/testimonials/:id", h.DeleteTestimonial)
	}
}

// dashboardCORS builds the allowlist policy (allow all if none configured).
func dashboardCORS(origins []string) gin.HandlerFunc {
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
		middleware.HeaderDevUserID, middleware.HeaderIdempotencyKey,
	}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotentReplayed}
	methods := []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}

	if len(origins) == 0 {
		policy := cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		})
		// Force ACAO: * even for requests without an Origin header.
		return func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			policy(c)
		}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    exposeHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}

// skipPaths runs h unless skip matches the request path.
func skipPaths(h gin.HandlerFunc, skip func(string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}
		h(c)
	}
}

// isPublicPath matches the widget script and the public feed routes.
func isPublicPath(apiBase string) func(string) bool {
	prefix := strings.TrimRight(apiBase, "/") + "/public/"
	return func(p string) bool {
		return p == "/widget.js" || strings.HasPrefix(p, prefix)
	}
}

// readiness reports whether the record store (and the feed cache, when
// configured) answer a ping.
func readiness(db *gorm.DB, cache services.FeedCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{"store": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["store"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if p, ok := cache.(pinger); ok {
			status["cache"] = "ok"
			if err := p.Ping(ctx); err != nil {
				// The feed falls back to the store; report but stay ready.
				status["cache"] = "degraded"
			}
		}
		c.JSON(code, status)
	}
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

// joinURL appends a base path to an origin, treating "/" as empty.
func joinURL(origin, path string) string {
	if path == "" || path == "/" {
		return strings.TrimRight(origin, "/")
	}
	return strings.TrimRight(origin, "/") + path
}
