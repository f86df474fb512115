package services

import (
	"context"
	"strings"
	"time"

	"github.com/Ayash-Bera/aidline/internal/assembler"
	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/expander"
	"github.com/Ayash-Bera/aidline/internal/fusion"
	"github.com/Ayash-Bera/aidline/internal/guide"
	"github.com/Ayash-Bera/aidline/internal/metrics"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/relevance"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
	"github.com/sirupsen/logrus"
)

// EvidenceCache stores assembled contexts keyed by normalized query.
type EvidenceCache interface {
	GetEvidence(ctx context.Context, normalizedQuery string) (*models.EvidenceContext, error)
	SetEvidence(ctx context.Context, normalizedQuery string, ec *models.EvidenceContext) error
}

// BuildStats describes how a context was produced.
type BuildStats struct {
	Rule     string
	CacheHit bool
	Tiers    map[models.BackendID]int
	Failed   []models.BackendID
	Duration time.Duration
}

// EvidenceService runs the classify, expand, retrieve, filter, fuse, synthesize and
// assemble pipeline. Its public operations never fail.
type EvidenceService struct {
	classifier  *classifier.Classifier
	expander    *expander.Expander
	fanout      *retrieval.FanOut
	filter      *relevance.Filter
	synthesizer *guide.Synthesizer
	assembler   *assembler.Assembler
	cache       EvidenceCache
	logger      *logrus.Logger
}

func NewEvidenceService(
	c *classifier.Classifier,
	e *expander.Expander,
	f *retrieval.FanOut,
	filter *relevance.Filter,
	s *guide.Synthesizer,
	a *assembler.Assembler,
	logger *logrus.Logger,
) *EvidenceService {
	return &EvidenceService{
		classifier:  c,
		expander:    e,
		fanout:      f,
		filter:      filter,
		synthesizer: s,
		assembler:   a,
		logger:      logger,
	}
}

// WithCache enables the evidence cache. A nil cache disables it.
func (s *EvidenceService) WithCache(cache EvidenceCache) *EvidenceService {
	s.cache = cache
	return s
}

// Classify maps the query to exactly one condition tag.
func (s *EvidenceService) Classify(query string) models.ConditionTag {
	m := s.classifier.Explain(query)
	metrics.RecordClassification(string(m.Condition), m.Rule)
	return m.Condition
}

// BuildEvidenceContext returns the evidence context for a query.
func (s *EvidenceService) BuildEvidenceContext(ctx context.Context, query string) models.EvidenceContext {
	ec, _ := s.Build(ctx, query)
	return ec
}

// Build is BuildEvidenceContext with statistics for request logging.
func (s *EvidenceService) Build(ctx context.Context, query string) (ec models.EvidenceContext, stats BuildStats) {
	start := time.Now()
	q := models.NewQuery(query)
	match := s.classifier.Explain(query)
	condition := match.Condition
	stats.Rule = match.Rule
	metrics.RecordClassification(string(condition), match.Rule)

	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"condition": condition,
				"panic":     r,
			}).Error("Evidence pipeline panicked, returning fallback context")
			ec = s.degraded(q, condition)
		}
		stats.Duration = time.Since(start)
		metrics.ObserveBuild(stats.Duration)
	}()

	if cached := s.lookup(ctx, q.Normalized); cached != nil {
		stats.CacheHit = true
		return *cached, stats
	}

	expanded := s.expander.Expand(condition, q.Raw)
	keywords := s.expander.Keywords(condition, q.Raw)

	results := s.fanout.Run(ctx, retrieval.Request{
		Query:     expanded,
		RawQuery:  q.Raw,
		Condition: condition,
	})

	stats.Tiers = make(map[models.BackendID]int, len(results))
	groups := make([][]models.RetrievalPassage, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			stats.Failed = append(stats.Failed, r.BackendID)
		}
		outcome := s.filter.Apply(r.BackendID, r.Passages, condition, keywords)
		stats.Tiers[r.BackendID] = outcome.Tier
		groups = append(groups, outcome.Accepted)
	}

	fused := fusion.Fuse(groups...)
	admitted := assembler.Admit(condition, fused.Passages)

	g := s.synthesizer.Synthesize(condition, guideText(admitted), assembler.PolicyFor(condition).Allows(models.SourceCurated))

	ec = s.assembler.Assemble(assembler.Input{
		Query:     q.Raw,
		Condition: condition,
		Passages:  admitted,
		Guide:     &g,
	})

	// A context built while a backend was down is served once and never cached, so the
	// backend's results come back as soon as it recovers.
	if len(stats.Failed) == 0 {
		s.store(ctx, q.Normalized, &ec)
	}

	s.logger.WithFields(logrus.Fields{
		"condition":    condition,
		"rule":         match.Rule,
		"passages":     len(ec.Passages),
		"sources":      len(ec.Sources),
		"guide_source": g.Source,
		"failed":       len(stats.Failed),
		"duration_ms":  time.Since(start).Milliseconds(),
	}).Info("Evidence context built")

	return ec, stats
}

// guideText joins the procedural text of admitted passages. Literature records are
// bibliographic and never become guide steps.
func guideText(passages []models.RetrievalPassage) string {
	var parts []string
	for _, p := range passages {
		if p.BackendID == models.BackendLiterature {
			continue
		}
		if t := fusion.StripCitations(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

func (s *EvidenceService) degraded(q models.Query, condition models.ConditionTag) models.EvidenceContext {
	g := s.synthesizer.Synthesize(condition, "", false)
	return s.assembler.Assemble(assembler.Input{Query: q.Raw, Condition: condition, Guide: &g})
}

func (s *EvidenceService) lookup(ctx context.Context, key string) *models.EvidenceContext {
	if s.cache == nil || key == "" {
		return nil
	}
	ec, err := s.cache.GetEvidence(ctx, key)
	if err != nil {
		metrics.RecordCacheLookup("error")
		s.logger.WithError(err).Warn("Evidence cache lookup failed")
		return nil
	}
	if ec == nil {
		metrics.RecordCacheLookup("miss")
		return nil
	}
	metrics.RecordCacheLookup("hit")
	s.logger.WithField("query", key).Debug("Evidence cache hit")
	return ec
}

func (s *EvidenceService) store(ctx context.Context, key string, ec *models.EvidenceContext) {
	if s.cache == nil || key == "" {
		return
	}
	if err := s.cache.SetEvidence(ctx, key, ec); err != nil {
		s.logger.WithError(err).Warn("Failed to cache evidence context")
	}
}
