// Package router assembles the gin engine: middleware chain, OAuth and OIDC
// routes, health probes, and operational endpoints.
package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wangov/sso/internal/config"
	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/internal/infrastructure/monitoring"
	"github.com/wangov/sso/internal/interfaces/http/handlers"
	"github.com/wangov/sso/internal/interfaces/http/middleware"
	"github.com/wangov/sso/pkg/logger"
)

// Handlers aggregates the handler set the router mounts.
type Handlers struct {
	Authorize *handlers.AuthorizeHandler
	Token     *handlers.TokenHandler
	OIDC      *handlers.OIDCHandler
	Health    *handlers.HealthHandler
}

// New assembles the HTTP engine.
func New(
	cfg *config.Config,
	h Handlers,
	limiter domainsvc.RateLimitService,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	throttled := engine.Group("/")
	if cfg.RateLimit.Enabled {
		throttled.Use(middleware.RateLimit(limiter, metrics, log))
	}

	throttled.GET("/authorize", h.Authorize.Begin)
	throttled.POST("/authorize/complete", h.Authorize.Complete)
	throttled.POST("/token", h.Token.Exchange)

	engine.GET("/token/validate", h.Token.Validate)
	engine.POST("/token/revoke", h.Token.Revoke)
	engine.GET("/userinfo", h.OIDC.UserInfo)

	engine.GET("/.well-known/openid-configuration", h.OIDC.Discovery)
	engine.GET("/.well-known/jwks.json", h.OIDC.JWKS)

	engine.GET("/health/live", h.Health.Live)
	engine.GET("/health/ready", h.Health.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Server.PprofEnabled {
		pprof.Register(engine)
	}

	return engine
}
