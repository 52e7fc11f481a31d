package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/instatodoist/instant-todos-server/internal/api"
	"github.com/instatodoist/instant-todos-server/internal/auth"
	"github.com/instatodoist/instant-todos-server/internal/cache"
	"github.com/instatodoist/instant-todos-server/internal/config"
	"github.com/instatodoist/instant-todos-server/internal/handlers"
	"github.com/instatodoist/instant-todos-server/internal/repository"
	"github.com/instatodoist/instant-todos-server/internal/services"
	"github.com/instatodoist/instant-todos-server/internal/shared"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	logger, err := shared.NewLogger(cfg.App.Env)
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer logger.Sync()

	telemetry, err := shared.InitTelemetry(shared.TelemetryConfig{
		ServiceName:    "instant-todos",
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Env,
		MetricsPort:    cfg.Telemetry.MetricsPort,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		log.Fatal("Failed to initialize telemetry: ", err)
	}
	defer telemetry.Shutdown(ctx)

	metrics := shared.NewAppMetrics(telemetry.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	client, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("Failed to connect to the document store", zap.Error(err))
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.Mongo.Database)
	todoRepo := repository.NewTodoRepository(db, metrics)
	labelRepo := repository.NewLabelRepository(db, metrics)

	var listCache services.ListCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		listCache = cache.NewTodoCache(rdb, cfg.Redis.CacheTTL)
	}

	todoService := services.NewTodoService(todoRepo, nil, listCache, metrics, logger)
	labelService := services.NewLabelService(labelRepo, nil, metrics)

	jwt := &auth.JWT{Secret: cfg.Auth.JWTSecret}

	router := api.SetupRouter(api.HandlersConfig{
		TodoHandler:  handlers.NewTodoHandler(todoService, logger),
		LabelHandler: handlers.NewLabelHandler(labelService, logger),
	}, jwt, metrics, logger)

	server := api.NewServer(cfg.HTTP, router, logger)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}
