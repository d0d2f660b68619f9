package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/database"
	delivery "golang-stock-tracker/internal/api/delivery/http"
	_ "golang-stock-tracker/internal/api/docs"
	"golang-stock-tracker/internal/api/repository"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/logger"
	"golang-stock-tracker/pkg/redis"
	"golang-stock-tracker/pkg/telegram"
	"golang-stock-tracker/pkg/utils"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the stock tracker API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Stock Tracker API",
		logger.Field("name", cfg.App.Name),
		logger.StringField("env", cfg.App.Env),
		logger.StringField("database", cfg.Database.Driver),
	)

	if cfg.Auth.JWTSecret == "" {
		appLogger.Fatal("auth.jwt_secret must be set")
	}

	// Initialize database
	db, err := database.Open(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis, falling back to an in-process quote cache
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
		}
		defer client.Close()
		redisClient = client.Client
	}

	notifier := telegram.NewNoopNotifier()
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			appLogger.Error("Failed to initialize Telegram notifier, notifications disabled", logger.ErrorField(err))
		} else {
			notifier = tg
		}
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	predictionRepo := repository.NewPredictionRepository(db.DB)
	stockRepo := repository.NewStockRepository(db.DB)

	marketData := repository.NewMarketDataRepository(cfg.MarketData, appLogger)
	if ttl := cfg.MarketData.QuoteCacheTTL; ttl > 0 {
		var quotes repository.QuoteCacheRepository
		if redisClient != nil {
			quotes = repository.NewRedisQuoteCacheRepository(redisClient, ttl, appLogger)
		} else {
			quotes = repository.NewInMemoryQuoteCacheRepository(ttl)
		}
		marketData = repository.NewCachedMarketDataRepository(marketData, quotes)
	}

	symbolIndex, err := repository.NewSymbolIndexRepository(repository.DefaultSymbols)
	if err != nil {
		appLogger.Fatal("Failed to build symbol index", logger.ErrorField(err))
	}
	defer symbolIndex.Close()

	mlRepo := repository.NewMLRepository(cfg.ML, appLogger)
	newsRepo := repository.NewNewsRepository(cfg.News, appLogger)

	// Initialize services
	tokens := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	services := delivery.Services{
		Auth:  service.NewAuthService(accountRepo, tokens, notifier, cfg.Auth.BcryptCost, appLogger),
		User:  service.NewUserService(accountRepo, watchlistRepo, predictionRepo, marketData, appLogger),
		Stock: service.NewStockService(marketData, symbolIndex, mlRepo, newsRepo, predictionRepo, watchlistRepo, cfg.News.Limit, appLogger),
		Admin: service.NewAdminService(accountRepo, watchlistRepo, predictionRepo, stockRepo, notifier, appLogger),
	}

	if cfg.Snapshot.Cron != "" {
		snapshotSvc := service.NewSnapshotService(watchlistRepo, stockRepo, marketData, newsRepo, cfg.Snapshot.Cron, appLogger)
		utils.GoSafe(func() {
			if err := snapshotSvc.Start(ctx); err != nil {
				appLogger.Error("Snapshot refresher stopped", logger.ErrorField(err))
			}
		})
	}

	// Initialize Echo server
	health := delivery.NewHealthHandler(db.DB, redisClient, appLogger)
	e := delivery.NewRouter(delivery.RouterConfig{
		AllowedOrigins:   cfg.API.AllowedOrigins,
		ExposeErrorCause: cfg.App.IsDevelopment(),
	}, services, health, appLogger)
	e.GET("/swagger/*", swagger.WrapHandler)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownTimeout := 10 * time.Second
	if d, err := time.ParseDuration(cfg.API.ShutdownTimeout); err == nil && d > 0 {
		shutdownTimeout = d
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

// @title Stock Tracker API
// @version 1.0
// @description Stock quotes, watchlists, predictions and an admin dashboard.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	rootCmd := &cobra.Command{Use: "api-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing api-service CLI: %s\n", err)
		os.Exit(1)
	}
}
