package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"storefront-backend/internal/auth"
	"storefront-backend/internal/cache"
	"storefront-backend/internal/config"
	"storefront-backend/internal/httpapi"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
	"storefront-backend/internal/store"
	"storefront-backend/internal/store/memory"
	"storefront-backend/internal/store/mongo"
	"storefront-backend/internal/store/postgres"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second

	limiterCleanupInterval = time.Minute

	// Only the memory driver may start without JWT_SECRET.
	devSecret = "storefront-dev-secret"
)

var (
	// Serve flags
	migrateOnStart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API and block until SIGINT or SIGTERM.

Examples:
  storefront serve                     # Use DB_DRIVER from the environment
  storefront serve --migrate           # Apply PostgreSQL migrations first`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "Apply pending migrations before serving (postgres only)")
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	gin.SetMode(cfg.GinMode)

	st, err := openStore(ctx, cfg, migrateOnStart)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.WithError(err).Warn("closing store")
		}
	}()

	c, err := openCache(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer c.Close()
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set; sessions are not stored and logout does not revoke tokens")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopCleanup := limiter.StartCleanup(limiterCleanupInterval)
	defer stopCleanup()

	router := newRouter(cfg, log, st, c, limiter)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "driver": cfg.Driver}).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newRouter(cfg *config.Config, log *logrus.Logger, st store.Store, c cache.Cache, limiter *middleware.RateLimiter) *gin.Engine {
	secret := cfg.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET not set; using the development secret")
		secret = devSecret
	}
	issuer := auth.NewIssuer(secret, cfg.JWTExpiration)

	svc := service.New(service.Options{
		Store:      st,
		Issuer:     issuer,
		Cache:      c,
		Logger:     log,
		SessionTTL: cfg.SessionTTL,
	})
	return httpapi.NewRouter(httpapi.Options{
		Services:     svc,
		Health:       st,
		Auth:         middleware.NewAuthenticator(issuer, c, svc.Auth),
		RateLimiter:  limiter,
		Logger:       log,
		AllowOrigins: cfg.AllowOrigins(),
	})
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := postgres.MigrateUp(pg.DB()); err != nil {
				_ = pg.Close()
				return nil, err
			}
		}
		return pg, nil
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.MongoURL, cfg.MongoDatabase)
	case config.DriverMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
}

func openCache(ctx context.Context, url string) (cache.Cache, error) {
	if url == "" {
		return cache.Nop{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return cache.NewRedis(ctx, url)
}
