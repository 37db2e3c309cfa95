package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/teamscore/internal/api"
	"github.com/mcoot/teamscore/internal/config"
	"github.com/mcoot/teamscore/internal/factory"
	"github.com/mcoot/teamscore/internal/seed"
	"github.com/mcoot/teamscore/internal/services/auth"
	redisstorage "github.com/mcoot/teamscore/internal/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.UsesDevSecret() {
		logger.Warn("signing tokens with the built-in development secret; set TEAMSCORE_JWT_SECRET")
	}

	factoryCfg := factory.Config{
		AuthConfig: auth.Config{
			Secret:   cfg.JWTSecret,
			TokenTTL: cfg.TokenTTL,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
		WriteRate:   cfg.WriteRatePerSecond,
		WriteBurst:  cfg.WriteBurst,
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedFile != "" {
		f, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := app.SeedLoader.Apply(ctx, f); err != nil {
			return err
		}
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Addr = cfg.Addr
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	server := api.NewServer(app.Handler(), serverConfig, logger)
	server.OnShutdown(app.HubManager.Shutdown)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	// Reclaim rooms nobody is listening to
	g.Go(func() error {
		ticker := time.NewTicker(cfg.HubCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				app.HubManager.CleanupEmptyHubs()
			}
		}
	})

	logger.Info("server started", slog.String("addr", server.Addr()))
	return g.Wait()
}
