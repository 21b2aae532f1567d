package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buzzreel/buzzreel-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHeaders(t *testing.T) {
	at := time.Unix(1700000000, 0)
	headers := AuthHeaders("testkey", "testsecret", at)

	assert.Equal(t, "testkey", headers["X-Auth-Key"])
	assert.Equal(t, "1700000000", headers["X-Auth-Date"])
	assert.Equal(t, "90b6255b079ed6e48084f571b76958438661e91b", headers["Authorization"])
}

func TestAuthHeadersVaryWithTime(t *testing.T) {
	a := AuthHeaders("k", "s", time.Unix(1700000000, 0))
	b := AuthHeaders("k", "s", time.Unix(1700000001, 0))
	assert.NotEqual(t, a["Authorization"], b["Authorization"])
}

func newTestPodcastClient(baseURL string) *PodcastIndexClient {
	client := NewPodcastIndexClient(&config.PodcastIndexConfig{
		BaseURL:    baseURL,
		APIKey:     "testkey",
		APISecret:  "testsecret",
		UserAgent:  "buzzreel-test/1.0",
		Timeout:    2 * time.Second,
		RetryCount: 2,
	})
	client.now = func() time.Time { return time.Unix(1700000000, 0) }
	return client
}

func TestPodcastIndexClientSendsAuth(t *testing.T) {
	var gotHeaders http.Header
	var gotPath, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotPath = r.URL.Path
		gotLang = r.URL.Query().Get("lang")
		w.Write([]byte(`{"status":"true","feeds":[]}`))
	}))
	defer server.Close()

	client := newTestPodcastClient(server.URL)
	body, err := client.TrendingFeeds(context.Background(), "en", 40)
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"true","feeds":[]}`, string(body))
	assert.Equal(t, "/podcasts/trending", gotPath)
	assert.Equal(t, "en", gotLang)
	assert.Equal(t, "testkey", gotHeaders.Get("X-Auth-Key"))
	assert.Equal(t, "1700000000", gotHeaders.Get("X-Auth-Date"))
	assert.Equal(t, "90b6255b079ed6e48084f571b76958438661e91b", gotHeaders.Get("Authorization"))
	assert.Equal(t, "buzzreel-test/1.0", gotHeaders.Get("User-Agent"))
}

func TestPodcastIndexClientQueryShapes(t *testing.T) {
	type call struct {
		path  string
		query map[string]string
	}
	var last call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last = call{path: r.URL.Path, query: map[string]string{}}
		for k := range r.URL.Query() {
			last.query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"status":"true"}`))
	}))
	defer server.Close()

	client := newTestPodcastClient(server.URL)
	ctx := context.Background()

	_, err := client.ShowByFeedID(ctx, 920666)
	require.NoError(t, err)
	assert.Equal(t, "/podcasts/byfeedid", last.path)
	assert.Equal(t, "920666", last.query["id"])

	_, err = client.EpisodesByFeedID(ctx, 920666, 50)
	require.NoError(t, err)
	assert.Equal(t, "/episodes/byfeedid", last.path)
	assert.Equal(t, "50", last.query["max"])

	_, err = client.EpisodeByID(ctx, 16795088)
	require.NoError(t, err)
	assert.Equal(t, "/episodes/byid", last.path)

	_, err = client.SearchByTerm(ctx, "go time", 20)
	require.NoError(t, err)
	assert.Equal(t, "/search/byterm", last.path)
	assert.Equal(t, "go time", last.query["q"])
}

func TestPodcastIndexClientUnauthorizedFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestPodcastClient(server.URL)
	_, err := client.RecentEpisodes(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
