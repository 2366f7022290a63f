// Command server runs the WanGov single sign-on authorization server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	appsvc "github.com/wangov/sso/internal/application/service"
	"github.com/wangov/sso/internal/config"
	"github.com/wangov/sso/internal/domain/repository"
	domainsvc "github.com/wangov/sso/internal/domain/service"
	"github.com/wangov/sso/internal/infrastructure/audit"
	"github.com/wangov/sso/internal/infrastructure/crypto"
	"github.com/wangov/sso/internal/infrastructure/monitoring"
	"github.com/wangov/sso/internal/infrastructure/persistence/postgres"
	"github.com/wangov/sso/internal/infrastructure/ratelimit"
	redisinfra "github.com/wangov/sso/internal/infrastructure/redis"
	"github.com/wangov/sso/internal/interfaces/http/handlers"
	"github.com/wangov/sso/internal/interfaces/http/router"
	"github.com/wangov/sso/pkg/logger"
)

// accessSweepInterval is how often expired service access records are purged.
const accessSweepInterval = 1 * time.Hour

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := monitoring.InitTracing(&cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn(shutdownCtx, "tracing shutdown failed", logger.Error(err))
		}
	}()

	pool, err := postgres.NewPool(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	redisClient, err := redisinfra.NewClient(&cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	keys, err := crypto.NewKeyManager(cfg.Issuer.KeyID, cfg.Issuer.SigningKeyPath)
	if err != nil {
		return fmt.Errorf("load signing key: %w", err)
	}

	// Repositories and stores.
	clientRepo := postgres.NewClientRepository(pool)
	subjectRepo := postgres.NewSubjectRepository(pool)
	accessRepo := postgres.NewServiceAccessRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	grantStore := redisinfra.NewGrantStore(redisClient)
	pendingStore := redisinfra.NewPendingAuthStore(redisClient)
	denylist := redisinfra.NewTokenDenylist(redisClient)

	var publisher audit.Publisher
	if cfg.Kafka.Enabled {
		publisher = audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	auditService := audit.NewAuditService(auditRepo, publisher, log)

	// Domain and application services.
	registry := domainsvc.NewClientRegistry(clientRepo, log)
	tokenService := domainsvc.NewTokenService(
		crypto.NewJWTManager(keys, log), denylist,
		cfg.Issuer.BaseURL, cfg.Issuer.AccessTokenTTL, cfg.Issuer.RefreshTokenTTL, log,
	)
	authorizeService := appsvc.NewAuthorizeAppService(
		registry, pendingStore, grantStore, subjectRepo, auditService,
		cfg.Issuer.LoginURL, cfg.Issuer.CodeTTL, log,
	)
	tokenAppService := appsvc.NewTokenAppService(
		registry, tokenService, grantStore, denylist,
		subjectRepo, accessRepo, auditService, log,
	)

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	limiter := ratelimit.NewRedisRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, log)

	engine := router.New(cfg, router.Handlers{
		Authorize: handlers.NewAuthorizeHandler(authorizeService, metrics, log),
		Token:     handlers.NewTokenHandler(tokenAppService, metrics, log),
		OIDC:      handlers.NewOIDCHandler(tokenAppService, keys, cfg.Issuer.BaseURL, log),
		Health:    handlers.NewHealthHandler(pool, redisClient),
	}, limiter, metrics, log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweepExpiredAccess(gctx, accessRepo, log)
		return nil
	})

	return g.Wait()
}

// sweepExpiredAccess periodically purges expired service access records.
// Correctness never depends on the sweep; it only bounds table growth.
func sweepExpiredAccess(ctx context.Context, repo repository.ServiceAccessRepository, log logger.Logger) {
	log = log.WithComponent("access_sweeper")
	ticker := time.NewTicker(accessSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpiredBefore(ctx, time.Now().UTC())
			if err != nil {
				log.Warn(ctx, "access sweep failed", logger.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info(ctx, "purged expired access records", logger.Int64("deleted", deleted))
			}
		}
	}
}
