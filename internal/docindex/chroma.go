package docindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ChromaIndex queries a Chroma server over its HTTP API.
type ChromaIndex struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger

	mu  sync.RWMutex
	ids map[string]string
}

func NewChromaIndex(baseURL string, timeout time.Duration, logger *logrus.Logger) *ChromaIndex {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ChromaIndex{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		ids:        make(map[string]string),
	}
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type chromaQueryRequest struct {
	QueryTexts []string               `json:"query_texts"`
	NResults   int                    `json:"n_results"`
	Where      map[string]interface{} `json:"where,omitempty"`
	Include    []string               `json:"include"`
}

type chromaQueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Documents [][]string                 `json:"documents"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
	Distances [][]float64                `json:"distances"`
}

func (c *ChromaIndex) Query(ctx context.Context, collection, query string, k int, filter map[string]interface{}) ([]Result, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("chroma base url not configured")
	}
	id, err := c.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	req := chromaQueryRequest{
		QueryTexts: []string{query},
		NResults:   k,
		Where:      filter,
		Include:    []string{"documents", "metadatas", "distances"},
	}
	var resp chromaQueryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections/"+url.PathEscape(id)+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("chroma query: %w", err)
	}

	if len(resp.Documents) == 0 {
		return nil, nil
	}
	docs := resp.Documents[0]
	results := make([]Result, 0, len(docs))
	for i, text := range docs {
		r := Result{Text: text}
		if len(resp.IDs) > 0 && i < len(resp.IDs[0]) {
			r.ID = resp.IDs[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			r.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			r.Distance = resp.Distances[0][i]
		}
		results = append(results, r)
	}
	return results, nil
}

func (c *ChromaIndex) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return fmt.Errorf("chroma base url not configured")
	}
	return c.do(ctx, http.MethodGet, "/api/v1/heartbeat", nil, nil)
}

func (c *ChromaIndex) collectionID(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	id, ok := c.ids[name]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	var col chromaCollection
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(name), nil, &col); err != nil {
		return "", fmt.Errorf("resolve collection %q: %w", name, err)
	}
	if col.ID == "" {
		return "", fmt.Errorf("collection %q has no id", name)
	}

	c.mu.Lock()
	c.ids[name] = col.ID
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"collection":    name,
		"collection_id": col.ID,
	}).Debug("Resolved chroma collection")
	return col.ID, nil
}

func (c *ChromaIndex) do(ctx context.Context, method, path string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chroma returned status %d: %s", resp.StatusCode, string(data))
	}
	if result != nil && len(data) > 0 {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}
