package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ayash-Bera/aidline/internal/health"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBuilder struct{}

func (fakeBuilder) Classify(query string) models.ConditionTag {
	if strings.Contains(query, "choking") {
		return models.ConditionChoking
	}
	return models.ConditionUnclassified
}

func (f fakeBuilder) Build(ctx context.Context, query string) (models.EvidenceContext, services.BuildStats) {
	c := f.Classify(query)
	return models.EvidenceContext{
			Query:     query,
			Condition: c,
			Emergency: c.IsEmergency(),
			Passages:  []models.RetrievalPassage{{Text: "Give five back blows", BackendID: models.BackendDocument}},
			Sources:   []models.SourceReference{{Type: models.SourceCurated, Title: "Curated First Aid Guide: Choking"}},
			Guide:     &models.StructuredGuide{Condition: c, Source: models.GuideSourceCurated},
		}, services.BuildStats{
			CacheHit: true,
		}
}

type fakeQueries struct {
	mu      sync.Mutex
	created []models.SearchQuery
	counts  map[string]int64
}

func (f *fakeQueries) Create(q *models.SearchQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *q)
	return nil
}

func (f *fakeQueries) GetByID(id uint) (*models.SearchQuery, error) {
	if id == 42 {
		return &models.SearchQuery{BaseModel: models.BaseModel{ID: 42}}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeQueries) GetRecentSearches(limit int) ([]models.SearchQuery, error) {
	return []models.SearchQuery{{QueryText: "dog bite"}}, nil
}

func (f *fakeQueries) CountByCondition(since time.Time) (map[string]int64, error) {
	return f.counts, nil
}

func (f *fakeQueries) logged() []models.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SearchQuery(nil), f.created...)
}

type fakeFeedback struct {
	created []models.UserFeedback
	err     error
}

func (f *fakeFeedback) Create(fb *models.UserFeedback) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *fb)
	return nil
}

func (f *fakeFeedback) GetByQueryID(queryID uint) ([]models.UserFeedback, error) {
	return f.created, nil
}

type envelope struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message"`
	Data     json.RawMessage `json:"data"`
	Category string          `json:"category"`
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup() (*gin.Engine, *fakeQueries, *fakeFeedback) {
	gin.SetMode(gin.TestMode)
	queries := &fakeQueries{counts: map[string]int64{"burn": 2, "choking": 5}}
	feedback := &fakeFeedback{}
	logger := quietLogger()

	eh := NewEvidenceHandler(fakeBuilder{}, queries, logger)
	fh := NewFeedbackHandler(queries, feedback, logger)

	r := gin.New()
	r.POST("/classify", eh.HandleClassify)
	r.POST("/evidence", eh.HandleEvidence)
	r.GET("/conditions", eh.HandleConditions)
	r.POST("/feedback", fh.HandleFeedback)
	r.GET("/queries/recent", fh.HandleRecentQueries)
	r.GET("/queries/:id/feedback", fh.HandleQueryFeedback)
	r.GET("/stats/conditions", fh.HandleConditionStats)
	return r, queries, feedback
}

func do(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHandleClassify(t *testing.T) {
	r, _, _ := setup()

	w, env := do(r, http.MethodPost, "/classify", `{"query":"my son is choking"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ClassifyResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, models.ConditionChoking, resp.Condition)
	assert.True(t, resp.Emergency)
	assert.Equal(t, "Choking", resp.DisplayName)
}

func TestHandleClassify_Validation(t *testing.T) {
	r, _, _ := setup()

	for _, body := range []string{`{}`, `{"query":"   "}`, `not json`, `{"query":"` + strings.Repeat("a", 2001) + `"}`} {
		w, env := do(r, http.MethodPost, "/classify", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "validation", env.Category, body)
	}
}

func TestHandleEvidence_LogsQuery(t *testing.T) {
	r, queries, _ := setup()

	w, env := do(r, http.MethodPost, "/evidence", `{"query":"choking"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.EvidenceResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, models.ConditionChoking, resp.Condition)
	assert.True(t, resp.Emergency)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, models.SourceCurated, resp.Sources[0].Type)

	assert.Eventually(t, func() bool { return len(queries.logged()) == 1 }, time.Second, 10*time.Millisecond)
	logged := queries.logged()[0]
	assert.Equal(t, "choking", logged.QueryText)
	assert.Equal(t, "choking", logged.Condition)
	assert.Equal(t, 1, logged.PassagesCount)
	assert.Equal(t, models.GuideSourceCurated, logged.GuideSource)
	assert.True(t, logged.CacheHit)
	assert.Len(t, logged.UserSession, 16)
}

func TestHandleConditions(t *testing.T) {
	r, _, _ := setup()

	w, env := do(r, http.MethodGet, "/conditions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.ConditionInfo
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, len(models.AllConditions))
}

func TestHandleFeedback(t *testing.T) {
	r, _, feedback := setup()

	w, _ := do(r, http.MethodPost, "/feedback", `{"query_id":42,"feedback_type":"helpful","feedback_text":"clear steps"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, feedback.created, 1)
	assert.Equal(t, uint(42), feedback.created[0].QueryID)

	w, env := do(r, http.MethodPost, "/feedback", `{"query_id":42,"feedback_type":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", env.Category)

	w, _ = do(r, http.MethodPost, "/feedback", `{"query_id":7,"feedback_type":"helpful"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	feedback.err = errors.New("db down")
	w, env = do(r, http.MethodPost, "/feedback", `{"query_id":42,"feedback_type":"helpful"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "backend", env.Category)
}

func TestQueryLogEndpoints(t *testing.T) {
	r, _, _ := setup()

	w, _ := do(r, http.MethodGet, "/queries/recent?limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/queries/abc/feedback", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := do(r, http.MethodGet, "/stats/conditions?hours=48", "")
	require.Equal(t, http.StatusOK, w.Code)
	var stats []models.ConditionCount
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, models.ConditionChoking, stats[0].Condition)
	assert.EqualValues(t, 5, stats[0].Count)
}

func TestHandleHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checker := health.NewHealthChecker([]health.Probe{
		{Name: "postgresql", Critical: true, Ping: func(context.Context) error { return nil }},
		{Name: "literature", Ping: func(context.Context) error { return errors.New("timeout") }},
	}, nil, quietLogger())

	r := gin.New()
	r.GET("/health", NewHealthHandler(checker).HandleHealth)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, health.StatusDegraded, resp.Status)
	assert.Equal(t, "healthy", resp.Services["postgresql"])
	assert.Equal(t, "unhealthy", resp.Services["literature"])

	down := health.NewHealthChecker([]health.Probe{
		{Name: "postgresql", Critical: true, Ping: func(context.Context) error { return errors.New("refused") }},
	}, nil, quietLogger())
	r = gin.New()
	r.GET("/health", NewHealthHandler(down).HandleHealth)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
