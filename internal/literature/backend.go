package literature

import (
	"context"
	"math"
	"strings"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
)

// RankScore is the similarity assigned to the article at a 0-based rank. The API
// returns no score, only relevance order.
func RankScore(rank int) float64 {
	return math.Max(0.5, 1-0.05*float64(rank))
}

// Backend exposes literature search as a retrieval backend.
type Backend struct {
	client *Client
}

func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) ID() models.BackendID {
	return models.BackendLiterature
}

// Search uses the raw query: the expanded first-aid boilerplate only adds noise to
// a bibliographic search.
func (b *Backend) Search(ctx context.Context, req retrieval.Request, k int) ([]models.RetrievalPassage, error) {
	query := req.RawQuery
	if strings.TrimSpace(query) == "" {
		query = req.Query
	}

	articles, err := b.client.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	passages := make([]models.RetrievalPassage, 0, len(articles))
	for i, a := range articles {
		passages = append(passages, models.RetrievalPassage{
			Text:           articleText(a),
			BackendID:      models.BackendLiterature,
			RelevanceScore: RankScore(i),
			SourceMetadata: models.SourceMetadata{
				Title: a.Title,
				URL:   a.URL(),
			},
		})
	}
	return passages, nil
}

func articleText(a Article) string {
	parts := []string{a.Title}
	if a.Description != "" {
		parts = append(parts, a.Description)
	}
	if a.Abstract != "" {
		parts = append(parts, a.Abstract)
	}
	return strings.Join(parts, "\n")
}
