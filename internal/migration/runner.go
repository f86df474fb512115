package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrator is the schema owner, normally *database.Manager.
type Migrator interface {
	Migrate() error
}

type Runner struct {
	db       *gorm.DB
	migrator Migrator
	logger   *logrus.Logger
}

func NewRunner(db *gorm.DB, migrator Migrator, logger *logrus.Logger) *Runner {
	return &Runner{
		db:       db,
		migrator: migrator,
		logger:   logger,
	}
}

// RunMigrations runs gorm auto-migrations, then every .sql file in migrationsPath in
// lexical order. A missing directory only skips the SQL step.
func (r *Runner) RunMigrations(migrationsPath string) error {
	r.logger.Info("Starting database migrations...")

	if err := r.migrator.Migrate(); err != nil {
		return fmt.Errorf("GORM auto-migration failed: %w", err)
	}

	if err := r.runSQLMigrations(migrationsPath); err != nil {
		return fmt.Errorf("SQL migrations failed: %w", err)
	}

	r.logger.Info("Database migrations completed successfully")
	return nil
}

// SQLFiles lists the .sql files of a directory in execution order.
func SQLFiles(migrationsPath string) ([]string, error) {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return nil, err
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

func (r *Runner) runSQLMigrations(migrationsPath string) error {
	sqlFiles, err := SQLFiles(migrationsPath)
	if os.IsNotExist(err) {
		r.logger.WithField("path", migrationsPath).Warn("Migrations directory not found, skipping SQL migrations")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, fileName := range sqlFiles {
		if err := r.runSQLFile(filepath.Join(migrationsPath, fileName)); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", fileName, err)
		}
		r.logger.WithField("file", fileName).Info("Migration executed successfully")
	}

	return nil
}

func (r *Runner) runSQLFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	for i, stmt := range Statements(string(content)) {
		r.logger.WithFields(logrus.Fields{
			"file":      filepath.Base(filePath),
			"statement": i + 1,
		}).Debug("Executing SQL statement")

		if err := r.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to execute statement %d in %s: %w", i+1, filepath.Base(filePath), err)
		}
	}
	return nil
}

// Statements splits a SQL script into executable statements. Scripts with
// dollar-quoted bodies run as a single statement.
func Statements(sql string) []string {
	if strings.Contains(sql, "$$") {
		cleaned := strings.TrimSpace(removeComments(sql))
		if cleaned == "" {
			return nil
		}
		return []string{cleaned}
	}
	return splitSQLStatements(sql)
}

// removeComments drops whole-line comments and keeps everything else intact.
func removeComments(sql string) string {
	lines := strings.Split(sql, "\n")
	var result []string

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

func splitSQLStatements(sql string) []string {
	lines := strings.Split(sql, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			cleanedLines = append(cleanedLines, line)
		}
	}

	cleanedSQL := strings.Join(cleanedLines, " ")
	var result []string
	for _, stmt := range strings.Split(cleanedSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}
