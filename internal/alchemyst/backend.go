package alchemyst

import (
	"context"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
	"github.com/sirupsen/logrus"
)

// Backend exposes the similarity store as the vector retrieval backend. Scores are
// similarities, higher is better.
type Backend struct {
	client       *Client
	minThreshold float64
	logger       *logrus.Logger
}

func NewBackend(client *Client, minThreshold float64, logger *logrus.Logger) *Backend {
	return &Backend{client: client, minThreshold: minThreshold, logger: logger}
}

func (b *Backend) ID() models.BackendID {
	return models.BackendVector
}

func (b *Backend) Search(ctx context.Context, req retrieval.Request, k int) ([]models.RetrievalPassage, error) {
	if !b.client.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := b.client.SearchContextWithRetry(ctx, SearchRequest{
		Query:                      req.Query,
		SimilarityThreshold:        0.8,
		MinimumSimilarityThreshold: b.minThreshold,
		TopK:                       k,
		Scope:                      "internal",
	})
	if err != nil {
		return nil, err
	}

	passages := make([]models.RetrievalPassage, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Text == "" {
			continue
		}
		title := r.Metadata.Title
		if title == "" && r.Metadata.FileName != "" {
			title = PageNameFromFilename(r.Metadata.FileName)
		}
		passages = append(passages, models.RetrievalPassage{
			Text:           r.Text,
			BackendID:      models.BackendVector,
			RelevanceScore: r.Score,
			SourceMetadata: models.SourceMetadata{
				Title: title,
				URL:   r.Metadata.URL,
				Page:  r.Metadata.Page,
			},
		})
		if len(passages) == k {
			break
		}
	}

	b.logger.WithFields(logrus.Fields{
		"raw_results": len(resp.Results),
		"passages":    len(passages),
	}).Debug("Similarity store search converted")

	return passages, nil
}
