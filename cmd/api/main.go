package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/cache"
	"github.com/Dan9191/ziptalk-calculator/internal/config"
	"github.com/Dan9191/ziptalk-calculator/internal/handler"
	"github.com/Dan9191/ziptalk-calculator/internal/integrations/applyhome"
	"github.com/Dan9191/ziptalk-calculator/internal/middleware"
	"github.com/Dan9191/ziptalk-calculator/internal/repository"
	"github.com/Dan9191/ziptalk-calculator/internal/scheduler"
	"github.com/Dan9191/ziptalk-calculator/internal/service"
	"github.com/Dan9191/ziptalk-calculator/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	// helpers without an injected logger use the standard one
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logLevel)

	ctx := context.Background()

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	repo := repository.NewRepository(db)
	if err := repo.CreateSchema(ctx); err != nil {
		logger.Fatalf("Failed to create schema: %v", err)
	}
	if cfg.SeedSampleData {
		seeded, err := repo.SeedSampleApartments(ctx)
		if err != nil {
			logger.Fatalf("Failed to seed sample apartments: %v", err)
		}
		if seeded {
			logger.Info("Seeded sample apartments")
		}
	}

	// Initialize cache
	var c cache.Cache
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, logger)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisCache.Close()
		c = redisCache
	} else {
		logger.Info("REDIS_ADDR is not set, using in-memory cache")
		c = cache.NewMemoryCache(cfg.CacheTTL)
	}

	// Optional integrations
	var notifier service.Notifier
	if cfg.MailEnabled() {
		notifier = email.NewSender(cfg, logger)
	}
	var feed service.FeedClient
	if cfg.FeedEnabled() {
		feed = applyhome.NewClient(cfg, logger)
	}

	// Initialize layers
	svc := service.NewService(repo, c, notifier, feed, logger, cfg)
	if err := svc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatalf("Failed to create admin user: %v", err)
	}
	h := handler.NewHandler(svc, logger)

	sched, err := scheduler.New(svc, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to configure scheduler: %v", err)
	}
	sched.Start()

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	h.Register(r, middleware.AuthMiddleware(cfg), middleware.RateLimit(limiter, cfg.TrustedProxy))

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      middleware.CORS(cfg.CORSOrigins)(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	sched.Stop(shutdownCtx)
}
