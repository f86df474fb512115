package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// FeedbackHandler serves feedback and query-log endpoints.
type FeedbackHandler struct {
	queries  models.SearchQueryRepository
	feedback models.UserFeedbackRepository
	logger   *logrus.Logger
}

func NewFeedbackHandler(queries models.SearchQueryRepository, feedback models.UserFeedbackRepository, logger *logrus.Logger) *FeedbackHandler {
	return &FeedbackHandler{queries: queries, feedback: feedback, logger: logger}
}

// HandleFeedback records user feedback on an evidence response
func (h *FeedbackHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AppErrorResponse(c, models.NewValidationError("Invalid feedback format"))
		return
	}

	if !models.IsValidFeedbackType(req.FeedbackType) {
		utils.AppErrorResponse(c, models.NewValidationError("Invalid feedback type"))
		return
	}

	if _, err := h.queries.GetByID(req.QueryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ErrorResponse(c, http.StatusNotFound, "Query not found", nil)
			return
		}
		utils.AppErrorResponse(c, models.NewBackendError("Failed to look up query", err))
		return
	}

	feedback := &models.UserFeedback{
		QueryID:      req.QueryID,
		FeedbackType: req.FeedbackType,
		FeedbackText: req.FeedbackText,
		UserSession:  getUserSession(c),
	}

	if err := h.feedback.Create(feedback); err != nil {
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.AppErrorResponse(c, models.NewBackendError("Failed to save feedback", err))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query_id":      req.QueryID,
		"feedback_type": req.FeedbackType,
		"user_session":  feedback.UserSession,
	}).Info("Feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

// HandleRecentQueries lists the latest logged queries.
func (h *FeedbackHandler) HandleRecentQueries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	queries, err := h.queries.GetRecentSearches(limit)
	if err != nil {
		utils.AppErrorResponse(c, models.NewBackendError("Failed to get recent queries", err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Recent queries retrieved", queries)
}

// HandleQueryFeedback returns the feedback left on one query.
func (h *FeedbackHandler) HandleQueryFeedback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.AppErrorResponse(c, models.NewValidationError("Invalid query id"))
		return
	}

	feedback, err := h.feedback.GetByQueryID(uint(id))
	if err != nil {
		utils.AppErrorResponse(c, models.NewBackendError("Failed to get feedback", err))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Feedback retrieved", feedback)
}

// HandleConditionStats counts queries per condition over the last `hours` hours.
func (h *FeedbackHandler) HandleConditionStats(c *gin.Context) {
	hours, _ := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if hours <= 0 || hours > 24*30 {
		hours = 24
	}

	counts, err := h.queries.CountByCondition(time.Now().Add(-time.Duration(hours) * time.Hour))
	if err != nil {
		utils.AppErrorResponse(c, models.NewBackendError("Failed to get condition stats", err))
		return
	}

	stats := make([]models.ConditionCount, 0, len(counts))
	for condition, n := range counts {
		stats = append(stats, models.ConditionCount{Condition: models.ConditionTag(condition), Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Condition < stats[j].Condition
	})
	utils.SuccessResponse(c, http.StatusOK, "Condition stats retrieved", stats)
}
