package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePayloadRepo struct {
	rows    map[string]*models.CachedPayload
	getErr  error
	putErr  error
	puts    int
	deleted int64
}

func newFakePayloadRepo() *fakePayloadRepo {
	return &fakePayloadRepo{rows: make(map[string]*models.CachedPayload)}
}

func (f *fakePayloadRepo) Get(ctx context.Context, key string) (*models.CachedPayload, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.rows[key], nil
}

func (f *fakePayloadRepo) Put(ctx context.Context, key, category string, payload json.RawMessage) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.rows[key] = &models.CachedPayload{
		CacheKey:    key,
		Category:    category,
		Payload:     payload,
		RefreshedAt: time.Now().UTC(),
	}
	return nil
}

func (f *fakePayloadRepo) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return f.deleted, nil
}

// refreshingPayloadRepo serves a stale row on the first Get and a fresh
// one afterwards, the shape a caller sees when another request refreshed
// the key in between
type refreshingPayloadRepo struct {
	stale *models.CachedPayload
	fresh *models.CachedPayload
	gets  int
}

func (f *refreshingPayloadRepo) Get(ctx context.Context, key string) (*models.CachedPayload, error) {
	f.gets++
	if f.gets == 1 {
		return f.stale, nil
	}
	return f.fresh, nil
}

func (f *refreshingPayloadRepo) Put(ctx context.Context, key, category string, payload json.RawMessage) error {
	return nil
}

func (f *refreshingPayloadRepo) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func testFreshness() config.FreshnessConfig {
	return config.FreshnessConfig{
		TrendingTTL:  6 * time.Hour,
		TitleTTL:     24 * time.Hour,
		ProvidersTTL: 12 * time.Hour,
		PodcastTTL:   6 * time.Hour,
	}
}

func TestResponseCacheFreshness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResponseCache(newFakePayloadRepo(), testFreshness())
	cache.now = func() time.Time { return now }

	t.Run("TTLPerCategory", func(t *testing.T) {
		assert.Equal(t, 6*time.Hour, cache.TTLFor(models.CacheCategoryTrending))
		assert.Equal(t, 24*time.Hour, cache.TTLFor(models.CacheCategoryTitle))
		assert.Equal(t, 12*time.Hour, cache.TTLFor(models.CacheCategoryProviders))
		assert.Equal(t, 6*time.Hour, cache.TTLFor(models.CacheCategoryPodcasts))
		assert.Equal(t, 24*time.Hour, cache.TTLFor("unknown"))
	})

	t.Run("FreshInsideTTL", func(t *testing.T) {
		assert.True(t, cache.IsFresh(models.CacheCategoryTrending, now.Add(-6*time.Hour+time.Second)))
	})

	t.Run("StaleAtExactlyTTL", func(t *testing.T) {
		assert.False(t, cache.IsFresh(models.CacheCategoryTrending, now.Add(-6*time.Hour)))
	})
}

func TestCachedJSON(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := json.RawMessage(`{"results":[1,2,3]}`)

	t.Run("MissFetchesAndStores", func(t *testing.T) {
		repo := newFakePayloadRepo()
		cache := NewResponseCache(repo, testFreshness())
		cache.now = func() time.Time { return now }

		fetches := 0
		payload, cached, err := cache.CachedJSON(context.Background(), models.CacheCategoryTrending, "trending:US:movie:day", func(ctx context.Context) (json.RawMessage, error) {
			fetches++
			return fresh, nil
		})
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, fresh, payload)
		assert.Equal(t, 1, fetches)
		assert.Equal(t, 1, repo.puts)
	})

	t.Run("FreshRowIsAHit", func(t *testing.T) {
		repo := newFakePayloadRepo()
		repo.rows["trending:US:movie:day"] = &models.CachedPayload{
			CacheKey:    "trending:US:movie:day",
			Category:    models.CacheCategoryTrending,
			Payload:     fresh,
			RefreshedAt: now.Add(-time.Hour),
		}
		cache := NewResponseCache(repo, testFreshness())
		cache.now = func() time.Time { return now }

		payload, cached, err := cache.CachedJSON(context.Background(), models.CacheCategoryTrending, "trending:US:movie:day", func(ctx context.Context) (json.RawMessage, error) {
			t.Fatal("fetch must not run on a hit")
			return nil, nil
		})
		require.NoError(t, err)
		assert.True(t, cached)
		assert.Equal(t, fresh, payload)
	})

	t.Run("StaleRowRefetches", func(t *testing.T) {
		repo := newFakePayloadRepo()
		repo.rows["trending:US:movie:day"] = &models.CachedPayload{
			CacheKey:    "trending:US:movie:day",
			Category:    models.CacheCategoryTrending,
			Payload:     json.RawMessage(`{"old":true}`),
			RefreshedAt: now.Add(-7 * time.Hour),
		}
		cache := NewResponseCache(repo, testFreshness())
		cache.now = func() time.Time { return now }

		payload, cached, err := cache.CachedJSON(context.Background(), models.CacheCategoryTrending, "trending:US:movie:day", func(ctx context.Context) (json.RawMessage, error) {
			return fresh, nil
		})
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, fresh, payload)
	})

	t.Run("RecheckSkipsFetchWhenRowTurnedFresh", func(t *testing.T) {
		// A caller that saw a stale row but queues behind a leader's
		// refresh must reuse the leader's Put instead of fetching again
		repo := &refreshingPayloadRepo{
			stale: &models.CachedPayload{
				CacheKey:    "trending:US:movie:day",
				Category:    models.CacheCategoryTrending,
				Payload:     json.RawMessage(`{"old":true}`),
				RefreshedAt: now.Add(-7 * time.Hour),
			},
			fresh: &models.CachedPayload{
				CacheKey:    "trending:US:movie:day",
				Category:    models.CacheCategoryTrending,
				Payload:     fresh,
				RefreshedAt: now,
			},
		}
		cache := NewResponseCache(repo, testFreshness())
		cache.now = func() time.Time { return now }

		payload, cached, err := cache.CachedJSON(context.Background(), models.CacheCategoryTrending, "trending:US:movie:day", func(ctx context.Context) (json.RawMessage, error) {
			t.Fatal("fetch must not run when the row turned fresh")
			return nil, nil
		})
		require.NoError(t, err)
		assert.False(t, cached)
		assert.Equal(t, fresh, payload)
	})

	t.Run("FetchFailurePropagatesWithoutStore", func(t *testing.T) {
		repo := newFakePayloadRepo()
		cache := NewResponseCache(repo, testFreshness())
		cache.now = func() time.Time { return now }

		fetchErr := errors.New("upstream down")
		_, _, err := cache.CachedJSON(context.Background(), models.CacheCategoryTitle, "title:movie:1", func(ctx context.Context) (json.RawMessage, error) {
			return nil, fetchErr
		})
		assert.ErrorIs(t, err, fetchErr)
		assert.Zero(t, repo.puts)
	})

	t.Run("ObserverSeesOutcome", func(t *testing.T) {
		repo := newFakePayloadRepo()
		var outcomes []bool
		cache := NewResponseCache(repo, testFreshness()).WithObserver(func(category string, hit bool) {
			outcomes = append(outcomes, hit)
		})
		cache.now = func() time.Time { return now }

		_, _, err := cache.CachedJSON(context.Background(), models.CacheCategoryTitle, "title:movie:2", func(ctx context.Context) (json.RawMessage, error) {
			return fresh, nil
		})
		require.NoError(t, err)
		repo.rows["title:movie:2"].RefreshedAt = now
		_, _, err = cache.CachedJSON(context.Background(), models.CacheCategoryTitle, "title:movie:2", nil)
		require.NoError(t, err)

		assert.Equal(t, []bool{false, true}, outcomes)
	})
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "trending:US:movie:day", TrendingKey("US", "movie", "day"))
	assert.Equal(t, "upcoming:DE:2", UpcomingKey("DE", 2))
	assert.Equal(t, "search:US:dune:1", SearchKey("US", "dune", 1))
	assert.Equal(t, "title:tv:1399", TitleKey("tv", 1399))
	assert.Equal(t, "providers:movie:603", ProvidersKey("movie", 603))
	assert.Equal(t, "podcasts:trending:US", PodcastTrendingKey("US"))
	assert.Equal(t, "podcasts:new:US", PodcastNewKey("US"))
	assert.Equal(t, "podcasts:show:920666", PodcastShowKey(920666))
	assert.Equal(t, "podcasts:episodes:920666", PodcastEpisodesKey(920666))
	assert.Equal(t, "podcasts:episode:16795088", PodcastEpisodeKey(16795088))
	assert.Equal(t, "podcasts:search:go time", PodcastSearchKey("go time"))
}
