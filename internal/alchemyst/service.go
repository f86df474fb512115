package alchemyst

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const sourcePrefix = "first-aid"

var (
	timestampPattern  = regexp.MustCompile(`-\d{8}-\d{6}-\d+$`)
	simplePattern     = regexp.MustCompile(`-\d+-\d+$`)
	retrySuffix       = regexp.MustCompile(`-retry\d+-\d+$`)
	digitsOnlyPattern = regexp.MustCompile(`^\d+$`)
)

// Service writes guide pages into the similarity store and removes them again.
type Service struct {
	client *Client
	logger *logrus.Logger
}

func NewService(client *Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

func (s *Service) Enabled() bool {
	return s.client.Configured()
}

// AddGuideContent stores one chunk of a crawled guide page.
func (s *Service) AddGuideContent(ctx context.Context, title, content, url string, chunkIndex int) error {
	req := AddContextRequest{
		Documents: []Document{{
			Content:  content,
			FileName: fmt.Sprintf("%s-%d.txt", strings.ReplaceAll(title, " ", "_"), chunkIndex),
			FileType: "text/plain",
		}},
		Source:      fmt.Sprintf("%s/%s", sourcePrefix, title),
		ContextType: "resource",
		Scope:       "internal",
		Metadata: map[string]interface{}{
			"title": title,
			"url":   url,
			"chunk": chunkIndex,
		},
	}

	return s.client.AddContextWithRetry(ctx, req)
}

func (s *Service) DeleteGuideContent(ctx context.Context, title string) error {
	req := DeleteContextRequest{
		Source: fmt.Sprintf("%s/%s", sourcePrefix, title),
		ByDoc:  true,
	}
	return s.client.DeleteContext(ctx, req)
}

// PageNameFromFilename recovers the page name from a stored file name.
// Format: "Page_Name-timestamp-random.txt" -> "Page Name"
func PageNameFromFilename(filename string) string {
	original := strings.TrimSuffix(filename, ".txt")
	name := retrySuffix.ReplaceAllString(original, "")

	if stripped := timestampPattern.ReplaceAllString(name, ""); stripped != name {
		name = stripped
	} else if stripped := simplePattern.ReplaceAllString(name, ""); stripped != name {
		name = stripped
	} else {
		parts := strings.Split(name, "-")
		for len(parts) > 1 && digitsOnlyPattern.MatchString(parts[len(parts)-1]) {
			parts = parts[:len(parts)-1]
		}
		name = strings.Join(parts, "-")
	}

	if name == "" {
		name = original
	}
	return strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
}
