package repository

import (
	"fmt"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchQueryRepositoryImpl implements SearchQueryRepository
type SearchQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchQueryRepository(db *gorm.DB) models.SearchQueryRepository {
	return &SearchQueryRepositoryImpl{db: db}
}

func (r *SearchQueryRepositoryImpl) Create(query *models.SearchQuery) error {
	return r.db.Create(query).Error
}

func (r *SearchQueryRepositoryImpl) GetByID(id uint) (*models.SearchQuery, error) {
	var query models.SearchQuery
	err := r.db.Preload("Feedback").First(&query, id).Error
	if err != nil {
		return nil, err
	}
	return &query, nil
}

func (r *SearchQueryRepositoryImpl) GetRecentSearches(limit int) ([]models.SearchQuery, error) {
	var queries []models.SearchQuery
	err := r.db.Order("search_timestamp DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

// CountByCondition returns how often each condition was asked about since the given time.
func (r *SearchQueryRepositoryImpl) CountByCondition(since time.Time) (map[string]int64, error) {
	var rows []struct {
		Condition string
		Total     int64
	}
	err := r.db.Model(&models.SearchQuery{}).
		Select("condition, COUNT(*) AS total").
		Where("search_timestamp >= ?", since).
		Group("condition").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Condition] = row.Total
	}
	return counts, nil
}

// UserFeedbackRepositoryImpl implements UserFeedbackRepository
type UserFeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewUserFeedbackRepository(db *gorm.DB) models.UserFeedbackRepository {
	return &UserFeedbackRepositoryImpl{db: db}
}

func (r *UserFeedbackRepositoryImpl) Create(feedback *models.UserFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *UserFeedbackRepositoryImpl) GetByQueryID(queryID uint) ([]models.UserFeedback, error) {
	var feedback []models.UserFeedback
	err := r.db.Where("query_id = ?", queryID).
		Find(&feedback).Error
	return feedback, err
}

// CrawledPageRepositoryImpl implements CrawledPageRepository
type CrawledPageRepositoryImpl struct {
	db *gorm.DB
}

func NewCrawledPageRepository(db *gorm.DB) models.CrawledPageRepository {
	return &CrawledPageRepositoryImpl{db: db}
}

func (r *CrawledPageRepositoryImpl) GetByTitle(title string) (*models.CrawledPage, error) {
	var page models.CrawledPage
	err := r.db.Where("title = ?", title).First(&page).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Upsert inserts the page or updates the existing row with the same title. page.ID is
// set in both cases.
func (r *CrawledPageRepositoryImpl) Upsert(page *models.CrawledPage) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "title"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"page_url", "content_hash", "conditions", "chunk_count", "last_crawled", "crawl_status", "updated_at",
		}),
	}).Create(page).Error
}

func (r *CrawledPageRepositoryImpl) UpdateCrawlStatus(id uint, status string) error {
	return r.db.Model(&models.CrawledPage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"crawl_status": status,
			"last_crawled": time.Now(),
		}).Error
}

// DocumentChunkRepositoryImpl implements DocumentChunkRepository
type DocumentChunkRepositoryImpl struct {
	db *gorm.DB
}

func NewDocumentChunkRepository(db *gorm.DB) models.DocumentChunkRepository {
	return &DocumentChunkRepositoryImpl{db: db}
}

// ReplaceForPage swaps all chunks of a page in one transaction.
func (r *DocumentChunkRepositoryImpl) ReplaceForPage(pageID uint, chunks []models.DocumentChunk) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_id = ?", pageID).Delete(&models.DocumentChunk{}).Error; err != nil {
			return fmt.Errorf("failed to delete old chunks: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		for i := range chunks {
			chunks[i].PageID = pageID
		}
		if err := tx.CreateInBatches(chunks, 100).Error; err != nil {
			return fmt.Errorf("failed to insert chunks: %w", err)
		}
		return nil
	})
}

func (r *DocumentChunkRepositoryImpl) CountByCollection(collection string) (int64, error) {
	var count int64
	err := r.db.Model(&models.DocumentChunk{}).
		Where("collection = ?", collection).
		Count(&count).Error
	return count, err
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Exec(`
		INSERT INTO system_health (service_name, status, response_time_ms, error_message, checked_at)
		VALUES (?, ?, ?, ?, NOW())
	`, serviceName, status, responseTime, errorMsg).Error
}

func (r *SystemHealthRepositoryImpl) GetAllServicesHealth() ([]models.SystemHealth, error) {
	var health []models.SystemHealth
	err := r.db.Raw(`
		SELECT DISTINCT ON (service_name) *
		FROM system_health
		ORDER BY service_name, checked_at DESC
	`).Scan(&health).Error
	return health, err
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	SearchQuery   models.SearchQueryRepository
	UserFeedback  models.UserFeedbackRepository
	CrawledPage   models.CrawledPageRepository
	DocumentChunk models.DocumentChunkRepository
	SystemHealth  models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		SearchQuery:   NewSearchQueryRepository(db),
		UserFeedback:  NewUserFeedbackRepository(db),
		CrawledPage:   NewCrawledPageRepository(db),
		DocumentChunk: NewDocumentChunkRepository(db),
		SystemHealth:  NewSystemHealthRepository(db),
	}
}
