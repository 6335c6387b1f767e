package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/authz"
	"github.com/gfcbot/rulekeeper/internal/dbpool"
	"github.com/gfcbot/rulekeeper/internal/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Log         *logrus.Logger
	Pool        *dbpool.Pool
	Rules       RuleService
	Resolve     ResolveService
	Retention   RetentionService
	Audit       AuditService
	Sweeper     SweepRunner
	Clients     middleware.ClientLookup
	Authorizer  middleware.Authorizer
	CORSOrigins []string
	Version     string
	RateLimit   float64
	RateBurst   int
}

// Router-level limits.
const (
	maxBodySize      = 1 << 20 // 1 MB
	defaultRateLimit = 50      // requests per second per client
	defaultRateBurst = 100
)

func setupMiddleware(r *gin.Engine, deps *RouterDeps) {
	r.SetTrustedProxies(nil) //nolint:errcheck // nil always succeeds.
	r.Use(middleware.RequestID(deps.Log))
	r.Use(ginLogger(deps.Log))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.MaxBodySize(maxBodySize))
	// No configured origins means no cross-origin access at all.
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: deps.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type", "Authorization",
				middleware.ActorIDHeader, middleware.ActorRolesHeader,
			},
			MaxAge:           1 * time.Hour,
			AllowCredentials: false,
		}))
	}
	r.Use(middleware.PrometheusMiddleware())

	// Metrics endpoint (unauthenticated, like health).
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerRoutes(ctx context.Context, api *gin.RouterGroup, deps *RouterDeps) {
	log := deps.Log

	health := NewHealthHandler(deps.Pool, deps.Sweeper, log, deps.Version)
	rules := NewRuleHandler(deps.Rules, log)
	resolve := NewResolveHandler(deps.Resolve, log)
	retention := NewRetentionHandler(deps.Retention, log)
	audit := NewAuditHandler(deps.Audit, log)
	sweeps := NewSweepHandler(deps.Sweeper, log)

	// Health and readiness are unauthenticated.
	api.GET("/health", health.Liveness)
	api.GET("/ready", health.Readiness)

	rate, burst := deps.RateLimit, deps.RateBurst
	if rate <= 0 {
		rate = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultRateBurst
	}

	// All other API routes require authentication.
	api.Use(middleware.AuthMiddleware(deps.Clients, log, middleware.NewFailureGuard(ctx, log)))
	api.Use(middleware.NewRateLimiter(ctx, rate, burst).Handler())
	api.Use(middleware.Actor())

	can := func(object, action string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Authorizer, object, action, log)
	}

	// Audited mutations need an attributable actor.
	actor := middleware.RequireActor()

	srv := api.Group("/servers/:tenant")

	// Rules.
	srv.GET("/rules", can(authz.ObjectRules, authz.ActionRead), rules.List)
	srv.POST("/rules", actor, can(authz.ObjectRules, authz.ActionManage), rules.Create)
	srv.PUT("/rules/reorder", actor, can(authz.ObjectRules, authz.ActionManage), rules.Reorder)
	srv.PATCH("/rules/:id", actor, can(authz.ObjectRules, authz.ActionManage), rules.Update)
	srv.DELETE("/rules/:id", actor, can(authz.ObjectRules, authz.ActionDelete), rules.Delete)
	srv.GET("/resolve", can(authz.ObjectRules, authz.ActionRead), resolve.Resolve)

	// Retention.
	srv.GET("/retention", can(authz.ObjectRetention, authz.ActionRead), retention.List)
	srv.GET("/retention/:platform", can(authz.ObjectRetention, authz.ActionRead), retention.Get)
	srv.PUT("/retention/:platform", actor, can(authz.ObjectRetention, authz.ActionManage), retention.Put)

	// Audit.
	srv.GET("/audit", can(authz.ObjectAudit, authz.ActionRead), audit.Query)
	srv.GET("/audit/actions", can(authz.ObjectAudit, authz.ActionRead), audit.Actions)
	srv.DELETE("/audit", can(authz.ObjectAudit, authz.ActionDelete), audit.DeleteAll)
	srv.DELETE("/audit/:id", can(authz.ObjectAudit, authz.ActionDelete), audit.DeleteEntry)

	// Admin.
	api.POST("/admin/sweep", can(authz.ObjectSweep, authz.ActionManage), sweeps.Run)
}

// NewRouter creates and configures the Gin engine with all middleware and routes.
// Background goroutines started for rate limiting stop when ctx is cancelled.
func NewRouter(ctx context.Context, deps *RouterDeps) http.Handler {
	r := gin.New()
	setupMiddleware(r, deps)
	registerRoutes(ctx, r.Group("/api/v1"), deps)

	return r
}
