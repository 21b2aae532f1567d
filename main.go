// Package main provides the main entry point for the Buzzreel discovery API
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buzzreel/buzzreel-api/app/handlers"
	"github.com/buzzreel/buzzreel-api/app/middleware"
	"github.com/buzzreel/buzzreel-api/app/router"
	"github.com/buzzreel/buzzreel-api/app/scheduler"
	"github.com/buzzreel/buzzreel-api/app/services"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Buzzreel API...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	configureLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// configureLogging routes the standard logger through a size-rotated
// file when configured, keeping stdout for container log collection
func configureLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}
	rotated := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		return
	}
	log.SetOutput(rotated)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// startMetricsServer serves the Prometheus registry on a plain net/http
// listener beside the main API server
func startMetricsServer(cfg config.MetricsConfig, port int) func() {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	var redisClient redis.UniversalClient
	if rc != nil {
		redisClient = rc
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.PingInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	payloadRepo := repository.NewPayloadCacheRepository(db)
	eventRepo := repository.NewInteractionEventRepository(db)
	scoreRepo := repository.NewBuzzScoreRepository(db)
	counterRepo := repository.NewViewCounterRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)
	followRepo := repository.NewPodcastFollowRepository(db)
	catalogRepo := repository.NewPodcastCatalogRepository(db)

	// Initialize upstream clients
	tmdbClient := services.NewTMDBClient(&cfg.TMDB)
	podcastClient := services.NewPodcastIndexClient(&cfg.PodcastIndex)

	// Initialize the response cache with the metrics sink attached
	responseCache := businessflow.NewResponseCache(payloadRepo, cfg.Freshness).
		WithObserver(middleware.RecordCacheLookup)

	// Initialize flows
	trendingFlow := businessflow.NewTrendingFlow(responseCache, tmdbClient)
	titleFlow := businessflow.NewTitleFlow(responseCache, tmdbClient, counterRepo)
	buzzFlow := businessflow.NewBuzzFlow(eventRepo, scoreRepo)
	eventFlow := businessflow.NewEventFlow(eventRepo)
	podcastFlow := businessflow.NewPodcastFlow(responseCache, podcastClient, buzzFlow, catalogRepo, followRepo)
	watchlistFlow := businessflow.NewWatchlistFlow(watchlistRepo)

	// Background maintenance job
	var kicker handlers.MaintenanceKicker
	if cfg.Retention.Enabled {
		job := scheduler.NewRetentionJob(eventRepo, payloadRepo, buzzFlow, redisClient, cfg.Retention, cfg.Cache.RedisPrefix)
		stopJob := job.Start(context.Background())
		stopFuncs = append(stopFuncs, stopJob, job.Close)
		kicker = job
	}

	// Initialize handlers
	discoveryHandler := handlers.NewDiscoveryHandler(trendingFlow)
	titleHandler := handlers.NewTitleHandler(titleFlow)
	podcastHandler := handlers.NewPodcastHandler(podcastFlow, eventFlow)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistFlow)
	adminHandler := handlers.NewAdminHandler(kicker, db, redisClient)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		discoveryHandler,
		titleHandler,
		podcastHandler,
		watchlistHandler,
		adminHandler,
	)

	// Metrics endpoint on a sidecar listener
	if cfg.Metrics.Enabled {
		stopMetrics := startMetricsServer(cfg.Metrics, cfg.Server.Port+1)
		stopFuncs = append(stopFuncs, stopMetrics)
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
