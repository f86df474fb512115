package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/aidline/internal/api"
	"github.com/Ayash-Bera/aidline/internal/api/handlers"
	"github.com/Ayash-Bera/aidline/internal/config"
	"github.com/Ayash-Bera/aidline/internal/database"
	"github.com/Ayash-Bera/aidline/internal/health"
	"github.com/Ayash-Bera/aidline/internal/middleware"
	"github.com/Ayash-Bera/aidline/internal/migration"
	"github.com/Ayash-Bera/aidline/internal/repository"
	"github.com/Ayash-Bera/aidline/internal/services"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	migrate        = flag.Bool("migrate", true, "Run database migrations on startup")
	migrationsPath = flag.String("migrations", "./migrations", "Directory with SQL migrations")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting aidline evidence server...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	gin.SetMode(cfg.Server.Mode)

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if *migrate {
		runner := migration.NewRunner(dbManager.DB, dbManager, logger)
		if err := runner.RunMigrations(*migrationsPath); err != nil {
			logger.WithError(err).Fatal("Database migrations failed")
		}
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)

	stack, err := services.BuildStack(cfg, dbManager.DB, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build evidence pipeline")
	}
	if cfg.Cache.Enabled && dbManager.Redis != nil {
		stack.Service.WithCache(database.NewEvidenceCache(dbManager.Redis, cfg.Cache.TTL, logger))
	}

	probes := []health.Probe{
		{Name: "postgresql", Critical: true, Ping: dbManager.PingDatabase},
		{Name: "docindex", Ping: stack.DocIndex.Ping},
		{Name: "literature", Ping: stack.Literature.Ping},
	}
	if dbManager.Redis != nil {
		probes = append(probes, health.Probe{Name: "redis", Critical: true, Ping: dbManager.PingRedis})
	}
	if stack.Vector.Configured() {
		probes = append(probes, health.Probe{Name: "vectorstore", Ping: stack.Vector.Ping})
	}
	checker := health.NewHealthChecker(probes, repoManager.SystemHealth, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go checker.PeriodicHealthCheck(ctx, time.Minute)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	go limiter.RunCleanup(time.Minute, ctx.Done())

	router := api.NewRouter(api.Handlers{
		Evidence: handlers.NewEvidenceHandler(stack.Service, repoManager.SearchQuery, logger),
		Feedback: handlers.NewFeedbackHandler(repoManager.SearchQuery, repoManager.UserFeedback, logger),
		Health:   handlers.NewHealthHandler(checker),
	}, limiter, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shut down")
	}

	logger.Info("Server stopped")
}
