package main

import (
	"log"
	"os"

	"github.com/Ayash-Bera/aidline/internal/config"
	"github.com/Ayash-Bera/aidline/internal/database"
	"github.com/Ayash-Bera/aidline/internal/mcptools"
	"github.com/Ayash-Bera/aidline/internal/services"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// stdout carries the protocol; logrus writes to stderr.
	logger := utils.GetLogger()
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var db *gorm.DB
	if cfg.DocIndex.Provider == config.ProviderPostgres {
		dbManager, err := database.NewManager(&database.Config{
			DatabaseURL: cfg.Database.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()
		db = dbManager.DB
	}

	stack, err := services.BuildStack(cfg, db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build evidence pipeline")
	}

	tools := mcptools.New(stack.Service, logger)
	logger.Info("Serving MCP tools on stdio")
	if err := server.ServeStdio(tools.NewServer()); err != nil {
		logger.WithError(err).Error("MCP server stopped")
	}
}
