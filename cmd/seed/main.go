package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ayash-Bera/aidline/internal/alchemyst"
	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/config"
	"github.com/Ayash-Bera/aidline/internal/database"
	"github.com/Ayash-Bera/aidline/internal/migration"
	"github.com/Ayash-Bera/aidline/internal/repository"
	"github.com/Ayash-Bera/aidline/internal/seeder"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	dryRun         = flag.Bool("dry-run", false, "Crawl and chunk pages without writing anything")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	pageLimit      = flag.Int("limit", 0, "Limit number of pages to process (0 = all)")
	concurrent     = flag.Int("concurrent", 2, "Number of pages processed at once")
	delay          = flag.Duration("delay", 2*time.Second, "Delay between requests to the same site")
	vector         = flag.Bool("vector", false, "Also upload chunks to the similarity store")
	migrationsPath = flag.String("migrations", "./migrations", "Directory with SQL migrations")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting first-aid guide seeder...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	processor := seeder.NewContentProcessor(classifier.New(logger))
	opts := seeder.Options{
		DryRun:     *dryRun,
		Limit:      *pageLimit,
		Concurrent: *concurrent,
		Delay:      *delay,
		Collection: cfg.DocIndex.Collection,
	}

	var s *seeder.Seeder
	if *dryRun {
		s = seeder.NewSeeder(processor, nil, nil, opts, logger)
	} else {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := migration.NewRunner(dbManager.DB, dbManager, logger).RunMigrations(*migrationsPath); err != nil {
			logger.WithError(err).Fatal("Database migrations failed")
		}

		repoManager := repository.NewRepositoryManager(dbManager.DB)
		s = seeder.NewSeeder(processor, repoManager.CrawledPage, repoManager.DocumentChunk, opts, logger)

		if *vector {
			client := alchemyst.NewClient(cfg.VectorStore.BaseURL, cfg.VectorStore.APIKey, cfg.VectorStore.Timeout, logger)
			if !client.Configured() {
				logger.Fatal("ALCHEMYST_API_KEY and ALCHEMYST_BASE_URL are required with -vector")
			}
			s.WithVectorWriter(alchemyst.NewService(client, logger))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report := s.Seed(ctx, seeder.DefaultPages)
	for _, err := range report.Errors {
		logger.WithError(err).Warn("Processing error")
	}

	logger.WithFields(logrus.Fields{
		"processed": report.Processed,
		"chunks":    report.Chunks,
		"failed":    len(report.Errors),
	}).Info("Content seeding finished")
}
