package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/stock_analyser/config"
	"github.com/KotFed0t/stock_analyser/data"
	"github.com/KotFed0t/stock_analyser/data/cache"
	"github.com/KotFed0t/stock_analyser/data/repository/postgres"
	"github.com/KotFed0t/stock_analyser/data/session"
	"github.com/KotFed0t/stock_analyser/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/stock_analyser/internal/externalApi/yahooApi"
	"github.com/KotFed0t/stock_analyser/internal/httpserver"
	"github.com/KotFed0t/stock_analyser/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/stock_analyser/internal/scheduler"
	"github.com/KotFed0t/stock_analyser/internal/service/analyserService"
	"github.com/KotFed0t/stock_analyser/internal/transport/rest"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	yahooApiClient := yahooApi.New(cfg)

	reportGenerator := xslsxGenerator.New()

	var cloudStorage analyserService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.Enabled {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	analyserSrv := analyserService.New(cfg, pgRepo, redisCache, yahooApiClient, reportGenerator, cloudStorage)

	sched := scheduler.New()
	sched.NewIntervalJob("warm quotes cache", analyserSrv.WarmQuotesCache, cfg.Jobs.WarmQuotesCacheInterval, true)
	if driveApi != nil {
		sched.NewCrontabJob("drive cleanup", driveApi.DeleteOldFiles, cfg.Jobs.DriveCleanupCrontab, false)
	}
	sched.Start()
	defer sched.Stop()

	restController := rest.NewController(analyserSrv, redisSession)

	server := httpserver.New(cfg, restController, redisSession)
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
