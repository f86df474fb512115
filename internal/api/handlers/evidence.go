package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/services"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const maxQueryLength = 2000

// EvidenceBuilder is the pipeline surface the handlers need.
type EvidenceBuilder interface {
	Classify(query string) models.ConditionTag
	Build(ctx context.Context, query string) (models.EvidenceContext, services.BuildStats)
}

type EvidenceHandler struct {
	service EvidenceBuilder
	queries models.SearchQueryRepository
	timeout time.Duration
	logger  *logrus.Logger
}

// NewEvidenceHandler wires the pipeline. queries may be nil to disable the query log.
func NewEvidenceHandler(service EvidenceBuilder, queries models.SearchQueryRepository, logger *logrus.Logger) *EvidenceHandler {
	return &EvidenceHandler{
		service: service,
		queries: queries,
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

func bindQuery(c *gin.Context, dst interface{}, query func() string) (string, bool) {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.AppErrorResponse(c, models.NewValidationError("Invalid request format: query is required"))
		return "", false
	}
	q := strings.TrimSpace(query())
	if q == "" {
		utils.AppErrorResponse(c, models.NewValidationError("Query cannot be empty"))
		return "", false
	}
	if len(q) > maxQueryLength {
		utils.AppErrorResponse(c, models.NewValidationError("Query too long (max 2000 characters)"))
		return "", false
	}
	return q, true
}

// HandleClassify maps a query to its condition tag.
func (h *EvidenceHandler) HandleClassify(c *gin.Context) {
	var req models.ClassifyRequest
	query, ok := bindQuery(c, &req, func() string { return req.Query })
	if !ok {
		return
	}

	condition := h.service.Classify(query)
	utils.SuccessResponse(c, http.StatusOK, "Query classified", models.ClassifyResponse{
		Condition:   condition,
		DisplayName: condition.DisplayName(),
		Emergency:   condition.IsEmergency(),
	})
}

// HandleEvidence builds the evidence context for a query.
func (h *EvidenceHandler) HandleEvidence(c *gin.Context) {
	startTime := time.Now()

	var req models.EvidenceRequest
	query, ok := bindQuery(c, &req, func() string { return req.Query })
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	ec, stats := h.service.Build(ctx, query)
	responseTime := time.Since(startTime)

	record := &models.SearchQuery{
		QueryText:       query,
		Condition:       string(ec.Condition),
		Emergency:       ec.Emergency,
		UserSession:     getUserSession(c),
		PassagesCount:   len(ec.Passages),
		SourcesCount:    len(ec.Sources),
		CacheHit:        stats.CacheHit,
		SearchTimestamp: time.Now(),
		ResponseTimeMs:  int(responseTime.Milliseconds()),
		UserAgent:       c.GetHeader("User-Agent"),
		IPAddress:       c.ClientIP(),
	}
	if ec.Guide != nil {
		record.GuideSource = ec.Guide.Source
	}
	go h.trackSearchQuery(record)

	h.logger.WithFields(logrus.Fields{
		"request_id":    c.GetString(utils.RequestIDKey),
		"condition":     ec.Condition,
		"passages":      len(ec.Passages),
		"failed":        len(stats.Failed),
		"cache_hit":     stats.CacheHit,
		"response_time": responseTime.Milliseconds(),
	}).Info("Evidence request completed")

	utils.SuccessResponse(c, http.StatusOK, "Evidence context built", models.EvidenceResponse{
		EvidenceContext: ec,
		ResponseTime:    int(responseTime.Milliseconds()),
	})
}

// HandleConditions lists every condition tag.
func (h *EvidenceHandler) HandleConditions(c *gin.Context) {
	conditions := make([]models.ConditionInfo, 0, len(models.AllConditions))
	for _, tag := range models.AllConditions {
		conditions = append(conditions, models.ConditionInfo{
			Condition:   tag,
			DisplayName: tag.DisplayName(),
			Emergency:   tag.IsEmergency(),
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "Conditions retrieved", conditions)
}

func (h *EvidenceHandler) trackSearchQuery(record *models.SearchQuery) {
	if h.queries == nil {
		return
	}
	if err := h.queries.Create(record); err != nil {
		h.logger.WithError(err).Error("Failed to track search query")
	}
}

func getUserSession(c *gin.Context) string {
	if session := c.GetHeader("X-Session-ID"); session != "" {
		return session
	}
	return utils.GenerateSessionID(c.ClientIP() + c.GetHeader("User-Agent"))
}
