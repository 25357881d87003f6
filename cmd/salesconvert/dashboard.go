package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/spf13/cobra"

	"salesconvert.example/sales-convert/internal/cache"
	"salesconvert.example/sales-convert/internal/config"
	"salesconvert.example/sales-convert/internal/dashboard"
	"salesconvert.example/sales-convert/internal/health"
	"salesconvert.example/sales-convert/internal/metrics"
	"salesconvert.example/sales-convert/internal/ratelimit"
	"salesconvert.example/sales-convert/internal/repository"
	"salesconvert.example/sales-convert/internal/server"
	"salesconvert.example/sales-convert/internal/service"
	"salesconvert.example/sales-convert/internal/session"
	"salesconvert.example/sales-convert/pkg/database"
	"salesconvert.example/sales-convert/pkg/logger"
)

const sessionKeyPrefix = "salesconvert:"

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the sales dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()
		return runDashboard(cfg, log)
	},
}

func runDashboard(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signalContext()
	defer stop()

	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	store, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	secret := cfg.Session.Secret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		log.Warn(ctx, "session.secret not set, using a random secret; sessions will not survive a restart")
	}
	sessions, err := session.NewManager(store, secret, cfg.Session.CookieName, cfg.SessionTTL(), cfg.Session.CookieSecure)
	if err != nil {
		return err
	}

	userRepo := repository.NewGormUserRepository(db)
	salesRepo := repository.NewGormSalesRepository(db)
	authService := service.NewAuthService(userRepo, cfg.Database.BcryptCost, log)
	salesService := service.NewSalesService(salesRepo, userRepo, log)

	m := metrics.New("dashboard")
	h, err := dashboard.NewHandler(authService, salesService, sessions, m, log)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	checks := map[string]health.Pinger{"database": sqlDB}
	if rc, ok := store.(*cache.RedisCache); ok {
		checks["redis"] = rc
	}

	opts := dashboard.RouterOptions{
		Handler: h,
		Health:  health.NewHealthHandler("dashboard", checks, log),
		Metrics: m,
		Log:     log,
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewMemoryLimiter("auth", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		go limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)
		opts.AuthLimiter = limiter
		opts.TrustProxyHeaders = cfg.RateLimit.TrustProxyHeaders
	}

	srv := server.NewServer(cfg.Server.DashboardAddr, dashboard.NewRouter(opts), serverOptions(cfg), log)
	return srv.Run(ctx)
}

// newSessionStore 按配置选择内存或 redis 会话存储
func newSessionStore(ctx context.Context, cfg *config.Config, log logger.Logger) (cache.Cache, error) {
	if cfg.Session.Store == "redis" {
		rc, err := cache.NewRedisCache(ctx, cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB, sessionKeyPrefix)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "using redis session store", "addr", cfg.Session.RedisAddr)
		return rc, nil
	}
	mc := cache.NewMemoryCache()
	mc.StartCleanup(time.Minute)
	return mc, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
