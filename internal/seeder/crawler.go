package seeder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/pkg/utils"
	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const userAgent = "Aidline-Seeder/1.0"

// GuidePage is one first-aid page to ingest. Condition is the fallback tag for chunks
// the classifier cannot place.
type GuidePage struct {
	Title     string
	URL       string
	Priority  int
	Condition models.ConditionTag
}

// VectorWriter mirrors chunks into the similarity store. A page's previous chunks are
// deleted before the new ones are added.
type VectorWriter interface {
	Enabled() bool
	AddGuideContent(ctx context.Context, title, content, url string, chunkIndex int) error
	DeleteGuideContent(ctx context.Context, title string) error
}

type Options struct {
	DryRun     bool
	Limit      int
	Concurrent int
	Delay      time.Duration
	Collection string
	Timeout    time.Duration
}

// Report summarizes a seeding run.
type Report struct {
	Processed int
	Chunks    int
	Errors    []error
}

// Seeder crawls guide pages and writes them into the document index.
type Seeder struct {
	processor *ContentProcessor
	pages     models.CrawledPageRepository
	chunks    models.DocumentChunkRepository
	vector    VectorWriter
	opts      Options
	logger    *logrus.Logger
}

func NewSeeder(processor *ContentProcessor, pages models.CrawledPageRepository, chunks models.DocumentChunkRepository, opts Options, logger *logrus.Logger) *Seeder {
	if opts.Concurrent <= 0 {
		opts.Concurrent = 1
	}
	if opts.Collection == "" {
		opts.Collection = "first_aid"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Seeder{
		processor: processor,
		pages:     pages,
		chunks:    chunks,
		opts:      opts,
		logger:    logger,
	}
}

// WithVectorWriter also uploads every chunk to the similarity store.
func (s *Seeder) WithVectorWriter(w VectorWriter) *Seeder {
	s.vector = w
	return s
}

// SortPages orders pages by priority, highest first, and applies the limit.
func SortPages(pages []GuidePage, limit int) []GuidePage {
	sorted := make([]GuidePage, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// Seed processes the pages. A failing page is recorded in the report and does not
// stop the run.
func (s *Seeder) Seed(ctx context.Context, pages []GuidePage) Report {
	pages = SortPages(pages, s.opts.Limit)
	s.logger.WithFields(logrus.Fields{
		"total_pages": len(pages),
		"dry_run":     s.opts.DryRun,
		"concurrent":  s.opts.Concurrent,
	}).Info("Processing guide pages")

	var (
		mu     sync.Mutex
		report Report
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrent)

	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.WithFields(logrus.Fields{
				"page":     page.Title,
				"priority": page.Priority,
				"progress": fmt.Sprintf("%d/%d", i+1, len(pages)),
			}).Info("Processing page")

			n, err := s.processPage(ctx, page)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WithError(err).WithField("page", page.Title).Error("Failed to process page")
				report.Errors = append(report.Errors, fmt.Errorf("failed to process %s: %w", page.Title, err))
				return nil
			}
			report.Processed++
			report.Chunks += n
			return nil
		})
	}
	_ = g.Wait()

	s.logger.WithFields(logrus.Fields{
		"processed": report.Processed,
		"chunks":    report.Chunks,
		"errors":    len(report.Errors),
	}).Info("Content seeding completed")

	return report
}

func (s *Seeder) processPage(ctx context.Context, page GuidePage) (int, error) {
	raw, err := s.Fetch(page)
	if err != nil {
		return 0, err
	}

	content := s.processor.CleanContent(raw)
	if content == "" {
		return 0, fmt.Errorf("no content extracted from page")
	}

	rows := s.processor.BuildChunks(page, content, s.opts.Collection)
	if len(rows) == 0 {
		return 0, fmt.Errorf("page produced no chunks")
	}

	if s.opts.DryRun {
		s.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"content_length": len(content),
			"chunks":         len(rows),
			"words":          s.processor.CountWords(content),
		}).Info("DRY RUN: Would index content")
		return len(rows), nil
	}

	if err := s.store(page, content, rows); err != nil {
		return 0, err
	}

	if s.vector != nil && s.vector.Enabled() {
		if err := s.vector.DeleteGuideContent(ctx, page.Title); err != nil {
			s.logger.WithError(err).WithField("page", page.Title).Debug("No previous similarity store content removed")
		}
		for _, row := range rows {
			if err := s.vector.AddGuideContent(ctx, page.Title, row.Content, page.URL, row.ChunkIndex); err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"page":  page.Title,
					"chunk": row.ChunkIndex,
				}).Warn("Failed to upload chunk to similarity store")
			}
		}
	}

	return len(rows), nil
}

func (s *Seeder) store(page GuidePage, content string, rows []models.DocumentChunk) error {
	var conditions models.StringArray
	texts := make([]string, 0, len(rows))
	for _, row := range rows {
		texts = append(texts, row.Content)
	}
	for _, c := range s.processor.DetectConditions(texts) {
		conditions = append(conditions, string(c))
	}

	now := time.Now()
	record := &models.CrawledPage{
		Title:       page.Title,
		PageURL:     page.URL,
		ContentHash: utils.MD5Hash(content),
		Conditions:  conditions,
		ChunkCount:  len(rows),
		LastCrawled: &now,
		CrawlStatus: "completed",
	}
	if err := s.pages.Upsert(record); err != nil {
		return fmt.Errorf("failed to record page: %w", err)
	}
	if err := s.chunks.ReplaceForPage(record.ID, rows); err != nil {
		if statusErr := s.pages.UpdateCrawlStatus(record.ID, "failed"); statusErr != nil {
			s.logger.WithError(statusErr).Warn("Failed to mark page as failed")
		}
		return fmt.Errorf("failed to store chunks: %w", err)
	}
	return nil
}

// Fetch downloads a page and returns its main text, one block element per line.
func (s *Seeder) Fetch(page GuidePage) (string, error) {
	c := colly.NewCollector(colly.UserAgent(userAgent))
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       s.opts.Delay,
	}); err != nil {
		return "", fmt.Errorf("failed to configure collector: %w", err)
	}
	c.SetRequestTimeout(s.opts.Timeout)

	var (
		content         string
		processingError error
	)

	c.OnHTML("body", func(e *colly.HTMLElement) {
		content = ExtractText(e.DOM)
		s.logger.WithFields(logrus.Fields{
			"page":           page.Title,
			"content_length": len(content),
		}).Debug("Content extracted")
	})

	c.OnError(func(r *colly.Response, err error) {
		processingError = err
	})

	if err := c.Visit(page.URL); err != nil {
		return "", fmt.Errorf("failed to visit page: %w", err)
	}
	if processingError != nil {
		return "", fmt.Errorf("processing error: %w", processingError)
	}
	return content, nil
}

// ExtractText pulls readable text from the page's main content. Ordered list items
// are numbered so step structure survives.
func ExtractText(body *goquery.Selection) string {
	body.Find("script, style, nav, header, footer, aside, form, noscript, .advertisement, .breadcrumb").Remove()

	root := body.Find("main, article, #main-content").First()
	if root.Length() == 0 {
		root = body
	}

	var b strings.Builder
	root.Find("h1, h2, h3, h4, p, li").Each(func(_ int, sel *goquery.Selection) {
		if sel.Is("p") && sel.ParentsFiltered("li").Length() > 0 {
			return
		}
		text := strings.Join(strings.Fields(sel.Text()), " ")
		if text == "" {
			return
		}
		switch {
		case sel.Is("h1, h2, h3, h4"):
			b.WriteString("\n" + text + "\n")
		case sel.Is("li") && sel.Parent().Is("ol"):
			fmt.Fprintf(&b, "%d. %s\n", sel.Index()+1, text)
		case sel.Is("li"):
			b.WriteString("- " + text + "\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})
	return b.String()
}
