package docindex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/Ayash-Bera/aidline/internal/retrieval"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newChromaServer(t *testing.T, lookups *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/collections/first_aid":
			atomic.AddInt32(lookups, 1)
			w.Write([]byte(`{"id":"col-1","name":"first_aid"}`))
		case "/api/v1/collections/col-1/query":
			var req chromaQueryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{"dog bite"}, req.QueryTexts)
			assert.Equal(t, 3, req.NResults)
			assert.Equal(t, "document", req.Where["source_type"])
			assert.ElementsMatch(t, []string{"documents", "metadatas", "distances"}, req.Include)
			w.Write([]byte(`{
				"ids":[["a","b"]],
				"documents":[["Wash the bite with soap and water.","Seek care."]],
				"metadatas":[[{"title":"Dog Bites","url":"https://example.org/dog","page":3},{"source":"Guide"}]],
				"distances":[[0.21,0.44]]
			}`))
		case "/api/v1/heartbeat":
			w.Write([]byte(`{"nanosecond heartbeat":1}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestChromaIndex_Query(t *testing.T) {
	var lookups int32
	server := newChromaServer(t, &lookups)
	defer server.Close()

	idx := NewChromaIndex(server.URL, time.Second, quietLogger())

	results, err := idx.Query(context.Background(), "first_aid", "dog bite", 3, DocumentFilter)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.InDelta(t, 0.21, results[0].Distance, 1e-9)
	assert.Equal(t, "Dog Bites", results[0].Metadata["title"])

	_, err = idx.Query(context.Background(), "first_aid", "dog bite", 3, DocumentFilter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&lookups), "collection id is cached")

	assert.NoError(t, idx.Ping(context.Background()))
}

func TestChromaIndex_UnknownCollection(t *testing.T) {
	var lookups int32
	server := newChromaServer(t, &lookups)
	defer server.Close()

	idx := NewChromaIndex(server.URL, time.Second, quietLogger())
	_, err := idx.Query(context.Background(), "missing", "q", 3, nil)
	assert.ErrorContains(t, err, "404")
}

type fakeIndex struct {
	gotFilter map[string]interface{}
	results   []Result
	err       error
}

func (f *fakeIndex) Query(ctx context.Context, collection, query string, k int, filter map[string]interface{}) ([]Result, error) {
	f.gotFilter = filter
	return f.results, f.err
}

func (f *fakeIndex) Ping(ctx context.Context) error { return nil }

func TestBackend_FilterByCondition(t *testing.T) {
	idx := &fakeIndex{results: []Result{
		{Text: "Wash the wound", Distance: 0.2, Metadata: map[string]interface{}{"title": "Dog Bites", "page": float64(3)}},
		{Text: "", Distance: 0.1},
	}}
	b := NewBackend(idx, "first_aid", quietLogger())
	assert.Equal(t, models.BackendDocument, b.ID())

	passages, err := b.Search(context.Background(), retrieval.Request{Query: "dog bite", Condition: models.ConditionDogBite}, 5)
	require.NoError(t, err)
	assert.Equal(t, DocumentFilter, idx.gotFilter)
	require.Len(t, passages, 1)
	assert.Equal(t, "Dog Bites", passages[0].SourceMetadata.Title)
	assert.Equal(t, 3, passages[0].SourceMetadata.Page)
	assert.InDelta(t, 0.2, passages[0].RelevanceScore, 1e-9)

	_, err = b.Search(context.Background(), retrieval.Request{Query: "breakfast", Condition: models.ConditionUnclassified}, 5)
	require.NoError(t, err)
	assert.Nil(t, idx.gotFilter)
}

func TestBackend_Error(t *testing.T) {
	b := NewBackend(&fakeIndex{err: errors.New("down")}, "first_aid", quietLogger())
	_, err := b.Search(context.Background(), retrieval.Request{Query: "x"}, 5)
	assert.ErrorContains(t, err, "down")
}

func TestSourceMetadata_FallsBackToSource(t *testing.T) {
	md := sourceMetadata(map[string]interface{}{"source": "Guide", "page": "7"})
	assert.Equal(t, "Guide", md.Title)
	assert.Equal(t, 7, md.Page)
}
