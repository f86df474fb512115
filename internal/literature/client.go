package literature

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	toolName       = "aidline"
)

// Article is one literature search hit.
type Article struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Abstract    string `json:"abstract,omitempty"`
}

// URL is the public landing page of the article.
func (a Article) URL() string {
	return fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", a.ExternalID)
}

type Config struct {
	BaseURL  string
	APIKey   string
	Email    string
	Timeout  time.Duration
	Attempts uint
	Delay    time.Duration
}

// Client talks to the PubMed E-utilities: esearch for ids, esummary for titles.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(cfg Config, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 300 * time.Millisecond
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type esearchResponse struct {
	ESearchResult struct {
		Count  string   `json:"count"`
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type summaryDoc struct {
	UID     string `json:"uid"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	PubDate string `json:"pubdate"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// Search returns up to limit articles for the query in relevance order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	params := c.params()
	params.Set("term", query)
	params.Set("retmax", strconv.Itoa(limit))
	params.Set("sort", "relevance")

	var search esearchResponse
	if err := c.getJSON(ctx, "/esearch.fcgi", params, &search); err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, nil
	}

	params = c.params()
	params.Set("id", strings.Join(ids, ","))

	var summary struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := c.getJSON(ctx, "/esummary.fcgi", params, &summary); err != nil {
		return nil, fmt.Errorf("esummary: %w", err)
	}

	articles := make([]Article, 0, len(ids))
	for _, id := range ids {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		var doc summaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			c.logger.WithError(err).WithField("id", id).Debug("Skipping malformed summary")
			continue
		}
		if doc.Title == "" {
			continue
		}
		articles = append(articles, Article{
			ExternalID:  id,
			Title:       strings.TrimSpace(doc.Title),
			Description: describe(doc),
		})
	}

	c.logger.WithFields(logrus.Fields{
		"query":    query,
		"ids":      len(ids),
		"articles": len(articles),
	}).Debug("Literature search completed")

	return articles, nil
}

// Ping issues a minimal query to check reachability.
func (c *Client) Ping(ctx context.Context) error {
	params := c.params()
	params.Set("term", "first aid")
	params.Set("retmax", "1")
	var search esearchResponse
	return c.getJSON(ctx, "/esearch.fcgi", params, &search)
}

func describe(doc summaryDoc) string {
	var parts []string
	if doc.Source != "" {
		parts = append(parts, doc.Source)
	}
	if doc.PubDate != "" {
		parts = append(parts, doc.PubDate)
	}
	if len(doc.Authors) > 0 {
		author := doc.Authors[0].Name
		if len(doc.Authors) > 1 {
			author += " et al."
		}
		parts = append(parts, author)
	}
	return strings.Join(parts, ", ")
}

func (c *Client) params() url.Values {
	v := url.Values{}
	v.Set("db", "pubmed")
	v.Set("retmode", "json")
	v.Set("tool", toolName)
	if c.cfg.APIKey != "" {
		v.Set("api_key", c.cfg.APIKey)
	}
	if c.cfg.Email != "" {
		v.Set("email", c.cfg.Email)
	}
	return v
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("literature API returned status %d: %s", e.code, e.body)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.cfg.BaseURL + path + "?" + params.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				serr := &statusError{code: resp.StatusCode, body: string(body)}
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return serr
				}
				return retry.Unrecoverable(serr)
			}
			if err := json.Unmarshal(body, out); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return retry.IsRecoverable(err) &&
				!errors.Is(err, context.Canceled) &&
				!errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WithFields(logrus.Fields{
				"attempt": n + 1,
				"path":    path,
				"error":   err.Error(),
			}).Warn("Retrying literature request")
		}),
	)
}
