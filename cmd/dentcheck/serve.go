package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dentcheck/internal/access"
	"dentcheck/internal/checkup"
	"dentcheck/internal/config"
	"dentcheck/internal/database"
	"dentcheck/internal/handlers"
	"dentcheck/internal/middleware"
	"dentcheck/internal/repository"
	"dentcheck/internal/storage"
	"dentcheck/pkg/cache"
	"dentcheck/pkg/logger"
)

func runServe(cmd *cobra.Command, args []string) {
	cfg := config.AppConfig

	if cfg.App.StartMessage {
		printSignature(cfg.App)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect DB
	database.InitDB()
	defer database.Close(database.DB)

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.LogFatal("Blob store initialization failed: %v", err)
	}

	if cfg.Storage.Cleaner.Enabled {
		cleaner := storage.NewCleaner(blobs, repository.NewImageRepository(database.DB),
			config.Duration(cfg.Storage.Cleaner.GracePeriod, 30*time.Minute))
		go cleaner.Start(ctx, config.Duration(cfg.Storage.Cleaner.Interval, time.Hour))
	}

	appCache := cache.New(cache.Options{
		Enabled:       cfg.Cache.Enabled,
		MaxCapacityMB: cfg.Cache.MaxCapacity,
		TTL:           config.Duration(cfg.Cache.TTL, cache.DefaultTTL),
	})

	svc := checkup.NewService(repository.NewUnitOfWork(database.DB), blobs)
	api := handlers.NewAPI(svc, blobs, appCache, cfg.Storage)
	policy := access.NewPolicy(cfg.Security.JWTSecret, config.Duration(cfg.Security.TokenTTL, 24*time.Hour))

	limiter := middleware.NewRateLimiter(cfg.Security.RateLimit)
	go limiter.StartCleanup(ctx)

	finalHandler := limiter.Middleware(middleware.Cors(cfg.Security.CorsOrigins)(middleware.Logger(api.Routes(policy))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.LogServerStart(cfg.Server.Port, cfg.GetBaseUrl())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogFatal("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.LogInfo("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError("Graceful shutdown failed: %v", err)
	}
}

func runMigrate(cmd *cobra.Command, args []string) {
	// Open migrates the schema on connect
	database.InitDB()
	database.Close(database.DB)
	logger.LogSuccess("Schema is up to date (%s)", config.AppConfig.Database.Driver)
}
