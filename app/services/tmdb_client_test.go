package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buzzreel/buzzreel-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTMDBClient(baseURL string) *TMDBClient {
	return NewTMDBClient(&config.TMDBConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		RetryCount: 3,
	})
}

func TestTMDBClientTrending(t *testing.T) {
	var gotPath, gotKey, gotRegion string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotRegion = r.URL.Query().Get("region")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"page":1,"results":[{"id":603}]}`))
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	body, err := client.Trending(context.Background(), "movie", "day", "US")
	require.NoError(t, err)

	assert.JSONEq(t, `{"page":1,"results":[{"id":603}]}`, string(body))
	assert.Equal(t, "/trending/movie/day", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "US", gotRegion)
}

func TestTMDBClientNotFoundFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	_, err := client.TitleDetails(context.Background(), "movie", 999999)
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.Status)
	assert.Equal(t, "tmdb", upErr.Provider)
	// 4xx must not be retried
	assert.Equal(t, int32(1), calls.Load())
}

func TestTMDBClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	body, err := client.UpcomingMovies(context.Background(), "US", 1)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestTMDBClientRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	_, err := client.Trending(context.Background(), "tv", "week", "US")
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTMDBClientDetailsAppendsExtras(t *testing.T) {
	var gotAppend string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAppend = r.URL.Query().Get("append_to_response")
		w.Write([]byte(`{"id":1399}`))
	}))
	defer server.Close()

	client := newTestTMDBClient(server.URL)
	_, err := client.TitleDetails(context.Background(), "tv", 1399)
	require.NoError(t, err)
	assert.Equal(t, "videos,credits", gotAppend)
}
