package seeder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/fusion"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newProcessor() *ContentProcessor {
	return NewContentProcessor(classifier.New(quietLogger()))
}

func TestCleanContent(t *testing.T) {
	cp := newProcessor()
	raw := "<b>Burns</b>[1]\r\n\n\n  1.   Cool the   burn\t under water  \n\n\n\n2. Cover it loosely\n"
	assert.Equal(t, "Burns\n\n1. Cool the burn under water\n\n2. Cover it loosely", cp.CleanContent(raw))
	assert.Equal(t, "", cp.CleanContent(" \n\t\n"))
}

func TestSplitIntoChunks_Short(t *testing.T) {
	cp := newProcessor()
	assert.Equal(t, []string{"short text"}, cp.SplitIntoChunks("  short text ", 100, 10))
	assert.Nil(t, cp.SplitIntoChunks("   ", 100, 10))
}

func TestSplitIntoChunks_Overlap(t *testing.T) {
	cp := newProcessor()
	var paragraphs []string
	for i := 0; i < 6; i++ {
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Repeat(fmt.Sprintf("p%dword ", i), 14)))
	}

	chunks := cp.SplitIntoChunks(strings.Join(paragraphs, "\n\n"), 250, 40)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 250)
	}

	head := strings.SplitN(chunks[1], "\n\n", 2)[0]
	assert.NotEmpty(t, head)
	assert.True(t, strings.HasSuffix(chunks[0], head), "second chunk should start with the tail of the first")
}

func TestSplitIntoChunks_LongSentence(t *testing.T) {
	cp := newProcessor()
	text := strings.TrimSpace(strings.Repeat("pressure ", 60))

	chunks := cp.SplitIntoChunks(text, 200, 0)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 200)
		assert.False(t, strings.HasPrefix(c, " "))
	}
	assert.Equal(t, text, strings.Join(chunks, " "))
}

func TestWithCitation_IsExtractable(t *testing.T) {
	chunk := WithCitation("Cool the burn.", "Burns: First aid", "https://example.org/burns")
	ref, ok := fusion.ExtractCitation(chunk)
	require.True(t, ok)
	assert.Equal(t, "Burns: First aid", ref.Title)
	assert.Equal(t, "https://example.org/burns", ref.URL)

	assert.Equal(t, "text", WithCitation("text", "", "https://example.org"))
}

func TestDetectConditions(t *testing.T) {
	cp := newProcessor()
	got := cp.DetectConditions([]string{
		"Cool the burn under running water.",
		"Scalds are burns too.",
		"Weather report for tomorrow.",
		"If the person fainted, lay them down.",
	})
	assert.Equal(t, []models.ConditionTag{models.ConditionBurn, models.ConditionFainting}, got)
}

func TestSortPages(t *testing.T) {
	pages := []GuidePage{{Title: "a", Priority: 1}, {Title: "b", Priority: 9}, {Title: "c", Priority: 5}}
	sorted := SortPages(pages, 2)
	require.Len(t, sorted, 2)
	assert.Equal(t, "b", sorted[0].Title)
	assert.Equal(t, "c", sorted[1].Title)
	assert.Equal(t, "a", pages[0].Title)
}

type fakePages struct {
	mu     sync.Mutex
	pages  map[string]*models.CrawledPage
	status map[uint]string
	nextID uint
}

func newFakePages() *fakePages {
	return &fakePages{pages: map[string]*models.CrawledPage{}, status: map[uint]string{}}
}

func (f *fakePages) GetByTitle(title string) (*models.CrawledPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[title]
	if !ok {
		return nil, errors.New("record not found")
	}
	return p, nil
}

func (f *fakePages) Upsert(page *models.CrawledPage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.pages[page.Title]; ok {
		page.ID = existing.ID
	} else {
		f.nextID++
		page.ID = f.nextID
	}
	f.pages[page.Title] = page
	return nil
}

func (f *fakePages) UpdateCrawlStatus(id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[id] = status
	return nil
}

type fakeChunks struct {
	mu     sync.Mutex
	byPage map[uint][]models.DocumentChunk
	err    error
}

func (f *fakeChunks) ReplaceForPage(pageID uint, chunks []models.DocumentChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.byPage[pageID] = chunks
	return nil
}

func (f *fakeChunks) CountByCollection(collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, rows := range f.byPage {
		for _, r := range rows {
			if r.Collection == collection {
				n++
			}
		}
	}
	return n, nil
}

type fakeVector struct {
	mu      sync.Mutex
	uploads int
	deleted []string
}

func (f *fakeVector) Enabled() bool { return true }

func (f *fakeVector) DeleteGuideContent(ctx context.Context, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, title)
	return nil
}

func (f *fakeVector) AddGuideContent(ctx context.Context, title, content, url string, chunkIndex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	return nil
}

const burnsHTML = `<html><body>
<nav>Home | Menu</nav>
<main>
<h1>Burns: First aid</h1>
<p>For minor burns, follow these steps to ease the pain and prevent infection.</p>
<ol>
<li>Cool the burn under cool running water for about 10 minutes.</li>
<li>Remove rings or other tight items from the burned area.</li>
<li>Do not break small blisters.</li>
</ol>
<p>Call emergency services for major burns.</p>
</main>
<footer>Copyright notice</footer>
</body></html>`

func guideServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/burns", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, burnsHTML)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch_ExtractsNumberedSteps(t *testing.T) {
	server := guideServer(t)
	s := NewSeeder(newProcessor(), newFakePages(), &fakeChunks{byPage: map[uint][]models.DocumentChunk{}}, Options{}, quietLogger())

	text, err := s.Fetch(GuidePage{Title: "Burns", URL: server.URL + "/burns"})
	require.NoError(t, err)
	assert.Contains(t, text, "1. Cool the burn under cool running water for about 10 minutes.")
	assert.Contains(t, text, "3. Do not break small blisters.")
	assert.NotContains(t, text, "Menu")
	assert.NotContains(t, text, "Copyright")
}

func TestSeed_StoresChunks(t *testing.T) {
	server := guideServer(t)
	pages := newFakePages()
	chunks := &fakeChunks{byPage: map[uint][]models.DocumentChunk{}}
	vector := &fakeVector{}
	s := NewSeeder(newProcessor(), pages, chunks, Options{Concurrent: 2}, quietLogger()).WithVectorWriter(vector)

	report := s.Seed(context.Background(), []GuidePage{
		{Title: "Burns: First aid", URL: server.URL + "/burns", Priority: 5},
		{Title: "Missing", URL: server.URL + "/missing", Priority: 1},
	})

	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error(), "Missing")

	page, err := pages.GetByTitle("Burns: First aid")
	require.NoError(t, err)
	assert.Equal(t, "completed", page.CrawlStatus)
	assert.Contains(t, []string(page.Conditions), "burn")
	assert.Len(t, page.ContentHash, 32)

	rows := chunks.byPage[page.ID]
	require.NotEmpty(t, rows)
	assert.Equal(t, report.Chunks, len(rows))
	for _, row := range rows {
		assert.Equal(t, "first_aid", row.Collection)
		assert.Equal(t, "document", row.SourceType)
		assert.Equal(t, "burn", row.Condition)
		ref, ok := fusion.ExtractCitation(row.Content)
		require.True(t, ok)
		assert.Equal(t, "Burns: First aid", ref.Title)
	}
	assert.Equal(t, len(rows), vector.uploads)
	assert.Equal(t, []string{"Burns: First aid"}, vector.deleted)

	count, err := chunks.CountByCollection("first_aid")
	require.NoError(t, err)
	assert.EqualValues(t, len(rows), count)
}

func TestSeed_DryRunWritesNothing(t *testing.T) {
	server := guideServer(t)
	pages := newFakePages()
	chunks := &fakeChunks{byPage: map[uint][]models.DocumentChunk{}}
	s := NewSeeder(newProcessor(), pages, chunks, Options{DryRun: true}, quietLogger())

	report := s.Seed(context.Background(), []GuidePage{{Title: "Burns: First aid", URL: server.URL + "/burns"}})
	assert.Equal(t, 1, report.Processed)
	assert.Greater(t, report.Chunks, 0)
	assert.Empty(t, pages.pages)
	assert.Empty(t, chunks.byPage)
}

func TestSeed_ChunkStoreFailureMarksPage(t *testing.T) {
	server := guideServer(t)
	pages := newFakePages()
	chunks := &fakeChunks{byPage: map[uint][]models.DocumentChunk{}, err: errors.New("disk full")}
	s := NewSeeder(newProcessor(), pages, chunks, Options{}, quietLogger())

	report := s.Seed(context.Background(), []GuidePage{{Title: "Burns: First aid", URL: server.URL + "/burns"}})
	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "failed", pages.status[1])
}
