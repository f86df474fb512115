package models

// GORM models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray for PostgreSQL array support
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ",")), nil
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SearchQuery is one logged evidence request
type SearchQuery struct {
	BaseModel
	QueryText       string    `json:"query_text" gorm:"not null"`
	Condition       string    `json:"condition" gorm:"index"`
	Emergency       bool      `json:"emergency"`
	UserSession     string    `json:"user_session"`
	PassagesCount   int       `json:"passages_count" gorm:"default:0"`
	SourcesCount    int       `json:"sources_count" gorm:"default:0"`
	GuideSource     string    `json:"guide_source"`
	CacheHit        bool      `json:"cache_hit"`
	SearchTimestamp time.Time `json:"search_timestamp" gorm:"default:NOW()"`
	ResponseTimeMs  int       `json:"response_time_ms"`
	UserAgent       string    `json:"user_agent"`
	IPAddress       string    `json:"ip_address"`

	// Associations
	Feedback []UserFeedback `json:"feedback" gorm:"foreignKey:QueryID"`
}

// UserFeedback represents user feedback on an evidence response
type UserFeedback struct {
	BaseModel
	QueryID      uint   `json:"query_id" gorm:"not null"`
	FeedbackType string `json:"feedback_type" gorm:"not null;check:feedback_type IN ('helpful','not_helpful','partially_helpful')"`
	FeedbackText string `json:"feedback_text"`
	UserSession  string `json:"user_session"`
}

// CrawledPage tracks a guide page ingested by the seeder
type CrawledPage struct {
	BaseModel
	Title       string      `json:"title" gorm:"unique;not null"`
	PageURL     string      `json:"page_url"`
	ContentHash string      `json:"content_hash"`
	Conditions  StringArray `json:"conditions" gorm:"type:text[]"`
	ChunkCount  int         `json:"chunk_count"`
	LastCrawled *time.Time  `json:"last_crawled"`
	CrawlStatus string      `json:"crawl_status" gorm:"default:'pending';check:crawl_status IN ('pending','crawling','completed','failed')"`
}

// DocumentChunk is one row of the document index
type DocumentChunk struct {
	BaseModel
	Collection string `json:"collection" gorm:"index;not null"`
	Content    string `json:"content" gorm:"not null"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Page       int    `json:"page"`
	SourceType string `json:"source_type" gorm:"index;default:'document'"`
	Condition  string `json:"condition" gorm:"index"`
	ChunkIndex int    `json:"chunk_index"`
	PageID     uint   `json:"page_id" gorm:"index"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;check:status IN ('healthy','degraded','unhealthy')"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at" gorm:"default:NOW()"`
}

// Database interfaces for repository pattern
type SearchQueryRepository interface {
	Create(query *SearchQuery) error
	GetByID(id uint) (*SearchQuery, error)
	GetRecentSearches(limit int) ([]SearchQuery, error)
	CountByCondition(since time.Time) (map[string]int64, error)
}

type UserFeedbackRepository interface {
	Create(feedback *UserFeedback) error
	GetByQueryID(queryID uint) ([]UserFeedback, error)
}

type CrawledPageRepository interface {
	GetByTitle(title string) (*CrawledPage, error)
	Upsert(page *CrawledPage) error
	UpdateCrawlStatus(id uint, status string) error
}

type DocumentChunkRepository interface {
	ReplaceForPage(pageID uint, chunks []DocumentChunk) error
	CountByCollection(collection string) (int64, error)
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
	GetAllServicesHealth() ([]SystemHealth, error)
}

// TableName methods for custom table names
func (SearchQuery) TableName() string   { return "search_queries" }
func (UserFeedback) TableName() string  { return "user_feedback" }
func (CrawledPage) TableName() string   { return "crawled_pages" }
func (DocumentChunk) TableName() string { return "document_chunks" }
func (SystemHealth) TableName() string  { return "system_health" }

// Model validation methods
func (sq *SearchQuery) Validate() error {
	if sq.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if sq.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	return nil
}

var validFeedbackTypes = map[string]bool{
	"helpful":           true,
	"not_helpful":       true,
	"partially_helpful": true,
}

// IsValidFeedbackType reports whether t is an accepted feedback type.
func IsValidFeedbackType(t string) bool {
	return validFeedbackTypes[t]
}

func (uf *UserFeedback) Validate() error {
	if uf.QueryID == 0 {
		return fmt.Errorf("query ID is required")
	}
	if !IsValidFeedbackType(uf.FeedbackType) {
		return fmt.Errorf("invalid feedback type: %s", uf.FeedbackType)
	}
	return nil
}

func (cp *CrawledPage) Validate() error {
	if cp.Title == "" {
		return fmt.Errorf("page title is required")
	}
	validStatuses := map[string]bool{
		"pending":   true,
		"crawling":  true,
		"completed": true,
		"failed":    true,
	}
	if !validStatuses[cp.CrawlStatus] {
		return fmt.Errorf("invalid crawl status: %s", cp.CrawlStatus)
	}
	return nil
}

func (dc *DocumentChunk) Validate() error {
	if dc.Collection == "" {
		return fmt.Errorf("collection is required")
	}
	if strings.TrimSpace(dc.Content) == "" {
		return fmt.Errorf("chunk content is required")
	}
	return nil
}

// GORM hooks
func (sq *SearchQuery) BeforeCreate(tx *gorm.DB) error {
	return sq.Validate()
}

func (uf *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	return uf.Validate()
}

func (cp *CrawledPage) BeforeSave(tx *gorm.DB) error {
	return cp.Validate()
}

func (dc *DocumentChunk) BeforeCreate(tx *gorm.DB) error {
	return dc.Validate()
}
