package alchemyst

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

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestClient_AddContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/add", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, quietLogger())

	err := client.AddContext(context.Background(), AddContextRequest{
		Documents:   []Document{{Content: "Test content"}},
		Source:      "test",
		ContextType: "resource",
	})
	require.NoError(t, err)
}

func TestClient_SearchContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/search", r.URL.Path)

		var req SearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dog bite", req.Query)
		assert.Equal(t, 7, req.TopK)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"_id":{"$oid":"ctx-123"},"text":"Wash the wound","score":0.82,"metadata":{"file_name":"Dog_Bites-20240101-120000-42.txt"}}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, quietLogger())

	response, err := client.SearchContext(context.Background(), SearchRequest{Query: "dog bite", TopK: 7})
	require.NoError(t, err)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "ctx-123", response.Results[0].ID.OID)
	assert.InDelta(t, 0.82, response.Results[0].Score, 1e-9)
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second, quietLogger())

	err := client.AddContext(context.Background(), AddContextRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_NotConfigured(t *testing.T) {
	client := NewClient("http://localhost:1", "", time.Second, quietLogger())

	_, err := client.SearchContext(context.Background(), SearchRequest{Query: "x"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second, quietLogger()).WithRetry(fastRetry())

	resp, err := client.SearchContextWithRetry(context.Background(), SearchRequest{Query: "x"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_StopsAfterMaxRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second, quietLogger()).WithRetry(fastRetry())

	_, err := client.SearchContextWithRetry(context.Background(), SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_RetryHonorsCancellation(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second, quietLogger()).
		WithRetry(RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.SearchContextWithRetry(ctx, SearchRequest{Query: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second, quietLogger()).WithRetry(fastRetry())

	_, err := client.SearchContextWithRetry(context.Background(), SearchRequest{Query: "x"})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestBackend_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"text":"Wash the wound with soap","score":0.9,"metadata":{"file_name":"Dog_Bites-20240101-120000-42.txt"}},
			{"text":"","score":0.8,"metadata":{}},
			{"text":"Apply pressure","score":0.7,"metadata":{"title":"Bleeding","url":"https://example.org/bleeding"}},
			{"text":"Extra","score":0.6,"metadata":{}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "k", time.Second, quietLogger())
	backend := NewBackend(client, 0.3, quietLogger())

	assert.Equal(t, models.BackendVector, backend.ID())

	passages, err := backend.Search(context.Background(), retrieval.Request{Query: "dog bite"}, 2)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "Dog Bites", passages[0].SourceMetadata.Title)
	assert.InDelta(t, 0.9, passages[0].RelevanceScore, 1e-9)
	assert.Equal(t, "Bleeding", passages[1].SourceMetadata.Title)
	assert.Equal(t, "https://example.org/bleeding", passages[1].SourceMetadata.URL)
}

func TestBackend_NotConfigured(t *testing.T) {
	backend := NewBackend(NewClient("", "", time.Second, quietLogger()), 0.3, quietLogger())

	_, err := backend.Search(context.Background(), retrieval.Request{Query: "x"}, 5)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPageNameFromFilename(t *testing.T) {
	tests := map[string]string{
		"Dog_Bites-20240101-120000-42.txt": "Dog Bites",
		"Burns-12-34.txt":                  "Burns",
		"Snake_Bite-3.txt":                 "Snake Bite",
		"Choking-retry1-101112.txt":        "Choking",
		"Sprains.txt":                      "Sprains",
	}
	for in, want := range tests {
		assert.Equal(t, want, PageNameFromFilename(in), in)
	}
}
