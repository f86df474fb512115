package docindex

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
	"github.com/sirupsen/logrus"
)

// Result is one chunk returned by an index. Distance is lower-is-better.
type Result struct {
	ID       string
	Text     string
	Metadata map[string]interface{}
	Distance float64
}

// Index is a filtered chunk index.
type Index interface {
	Query(ctx context.Context, collection, query string, k int, filter map[string]interface{}) ([]Result, error)
	Ping(ctx context.Context) error
}

// DocumentFilter restricts results to chunks ingested from the guide documents.
var DocumentFilter = map[string]interface{}{"source_type": string(models.SourceDocument)}

// Backend adapts an Index to the document retrieval backend.
type Backend struct {
	index      Index
	collection string
	logger     *logrus.Logger
}

func NewBackend(index Index, collection string, logger *logrus.Logger) *Backend {
	return &Backend{index: index, collection: collection, logger: logger}
}

func (b *Backend) ID() models.BackendID {
	return models.BackendDocument
}

func (b *Backend) Search(ctx context.Context, req retrieval.Request, k int) ([]models.RetrievalPassage, error) {
	var filter map[string]interface{}
	if req.Condition.IsFirstAid() {
		filter = DocumentFilter
	}

	results, err := b.index.Query(ctx, b.collection, req.Query, k, filter)
	if err != nil {
		return nil, fmt.Errorf("document index query: %w", err)
	}

	passages := make([]models.RetrievalPassage, 0, len(results))
	for _, r := range results {
		if r.Text == "" {
			continue
		}
		passages = append(passages, models.RetrievalPassage{
			Text:           r.Text,
			BackendID:      models.BackendDocument,
			RelevanceScore: r.Distance,
			SourceMetadata: sourceMetadata(r.Metadata),
		})
	}

	b.logger.WithFields(logrus.Fields{
		"collection": b.collection,
		"filtered":   filter != nil,
		"results":    len(passages),
	}).Debug("Document index queried")

	return passages, nil
}

func sourceMetadata(md map[string]interface{}) models.SourceMetadata {
	out := models.SourceMetadata{
		Title: stringField(md, "title"),
		URL:   stringField(md, "url"),
		Page:  intField(md, "page"),
	}
	if out.Title == "" {
		out.Title = stringField(md, "source")
	}
	return out
}

func stringField(md map[string]interface{}, key string) string {
	if v, ok := md[key].(string); ok {
		return v
	}
	return ""
}

func intField(md map[string]interface{}, key string) int {
	switch v := md[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}
