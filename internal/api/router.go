package api

import (
	"github.com/Ayash-Bera/aidline/internal/api/handlers"
	"github.com/Ayash-Bera/aidline/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers groups everything the router mounts. Feedback may be nil when no database
// is available.
type Handlers struct {
	Evidence *handlers.EvidenceHandler
	Feedback *handlers.FeedbackHandler
	Health   *handlers.HealthHandler
}

// NewRouter builds the HTTP surface. limiter may be nil.
func NewRouter(h Handlers, limiter *middleware.RateLimiter, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.SecurityHeaders(),
		middleware.RequestLogger(logger),
	)

	router.GET("/health", h.Health.HandleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	if limiter != nil {
		v1.Use(limiter.RateLimit())
	}
	v1.POST("/classify", h.Evidence.HandleClassify)
	v1.POST("/evidence", h.Evidence.HandleEvidence)
	v1.GET("/conditions", h.Evidence.HandleConditions)

	if h.Feedback != nil {
		v1.POST("/feedback", h.Feedback.HandleFeedback)
		v1.GET("/queries/recent", h.Feedback.HandleRecentQueries)
		v1.GET("/queries/:id/feedback", h.Feedback.HandleQueryFeedback)
		v1.GET("/stats/conditions", h.Feedback.HandleConditionStats)
	}

	return router
}
