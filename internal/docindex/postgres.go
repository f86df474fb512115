package docindex

import (
	"context"
	"fmt"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// filterColumns are the metadata keys a filter may reference.
var filterColumns = map[string]string{
	"source_type": "source_type",
	"condition":   "condition",
}

// PostgresIndex searches the document_chunks table with pg_trgm. Distance is
// 1 - word_similarity(query, content).
type PostgresIndex struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewPostgresIndex(db *gorm.DB, logger *logrus.Logger) *PostgresIndex {
	return &PostgresIndex{db: db, logger: logger}
}

type chunkRow struct {
	ID         uint
	Content    string
	Title      string
	URL        string
	Page       int
	SourceType string
	Condition  string
	Distance   float64
}

func (p *PostgresIndex) Query(ctx context.Context, collection, query string, k int, filter map[string]interface{}) ([]Result, error) {
	tx := p.db.WithContext(ctx).
		Model(&models.DocumentChunk{}).
		Select("id, content, title, url, page, source_type, condition, 1 - word_similarity(?, content) AS distance", query).
		Where("collection = ?", collection)

	for key, value := range filter {
		column, ok := filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("unsupported filter key %q", key)
		}
		tx = tx.Where(column+" = ?", value)
	}

	var rows []chunkRow
	if err := tx.Order("distance ASC").Limit(k).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, r := range rows {
		results = append(results, Result{
			ID:   fmt.Sprintf("%d", r.ID),
			Text: r.Content,
			Metadata: map[string]interface{}{
				"title":       r.Title,
				"url":         r.URL,
				"page":        r.Page,
				"source_type": r.SourceType,
				"condition":   r.Condition,
			},
			Distance: r.Distance,
		})
	}

	p.logger.WithFields(logrus.Fields{
		"collection": collection,
		"results":    len(results),
	}).Debug("Postgres chunk search completed")

	return results, nil
}

func (p *PostgresIndex) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
