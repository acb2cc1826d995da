package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"plumeai/internal/app"
	"plumeai/internal/config"
	"plumeai/internal/server"
	"plumeai/internal/store"
	"plumeai/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	// Persistence is optional: without both database values the service
	// runs degraded and the /test probe reports what is missing.
	var dataStore store.Store
	if cfg.DatabaseURL != "" && cfg.DatabaseName != "" {
		mongoStore, err := store.NewMongoStore(context.Background(), cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			logger.Warn("mongo store unavailable, continuing without persistence", "err", err)
		} else {
			dataStore = mongoStore
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mongoStore.Close(ctx)
			}()
		}
	} else {
		logger.Warn("database not configured, drafts will not be persisted")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
	}

	appCore := app.New(app.Config{
		Store:           dataStore,
		DatabaseURLSet:  cfg.DatabaseURL != "",
		DatabaseNameSet: cfg.DatabaseName != "",
	})

	httpServer, err := server.New(server.Config{
		App:                    appCore,
		RedisClient:            redisClient,
		ChatRateLimitPerMinute: cfg.ChatRateLimitPerMinute,
	})
	if err != nil {
		logger.Error("failed to init server", "err", err)
		os.Exit(1)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// Chat responses stream for several seconds; keep the write
		// timeout well above the longest script.
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
}
