package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/buzzreel/buzzreel-api/utils"
	"golang.org/x/sync/singleflight"
)

// PayloadFetcher produces a fresh upstream payload for a cache key
type PayloadFetcher func(ctx context.Context) (json.RawMessage, error)

// ResponseCache is the read-through cache over upstream JSON payloads.
// Rows live in Postgres keyed by a composite string; freshness is judged
// per category against the configured thresholds. Concurrent misses on
// the same key are collapsed into a single upstream fetch.
type ResponseCache struct {
	payloads  repository.PayloadCacheRepository
	freshness config.FreshnessConfig
	group     singleflight.Group

	// observe, when set, is called with the outcome of every lookup
	observe func(category string, hit bool)

	// now is swappable in tests
	now func() time.Time
}

func NewResponseCache(payloads repository.PayloadCacheRepository, freshness config.FreshnessConfig) *ResponseCache {
	return &ResponseCache{
		payloads:  payloads,
		freshness: freshness,
		now:       utils.UTCNow,
	}
}

// WithObserver registers a lookup outcome callback, typically a metrics sink
func (c *ResponseCache) WithObserver(observe func(category string, hit bool)) *ResponseCache {
	c.observe = observe
	return c
}

// TTLFor maps a cache category to its staleness threshold
func (c *ResponseCache) TTLFor(category string) time.Duration {
	switch category {
	case models.CacheCategoryTrending:
		return c.freshness.TrendingTTL
	case models.CacheCategoryTitle:
		return c.freshness.TitleTTL
	case models.CacheCategoryProviders:
		return c.freshness.ProvidersTTL
	case models.CacheCategoryPodcasts:
		return c.freshness.PodcastTTL
	default:
		return c.freshness.TitleTTL
	}
}

// IsFresh reports whether a row refreshed at the given time still serves
// for its category. A row refreshed exactly TTL ago is stale.
func (c *ResponseCache) IsFresh(category string, refreshedAt time.Time) bool {
	return c.now().Sub(refreshedAt) < c.TTLFor(category)
}

// CachedJSON returns the cached payload for key when fresh, otherwise
// fetches, stores and returns the upstream payload. The bool reports a
// cache hit. A fetch failure is returned as-is; stale rows are never
// served in its place.
func (c *ResponseCache) CachedJSON(ctx context.Context, category, key string, fetch PayloadFetcher) (json.RawMessage, bool, error) {
	row, err := c.payloads.Get(ctx, key)
	if err != nil {
		return nil, false, NewBusinessError("CACHE_LOOKUP_FAILED", "Failed to read response cache", err)
	}
	if row != nil && c.IsFresh(category, row.RefreshedAt) {
		if c.observe != nil {
			c.observe(category, true)
		}
		return row.Payload, true, nil
	}
	if c.observe != nil {
		c.observe(category, false)
	}

	// Collapse concurrent misses for the same key into one fetch
	result, err, _ := c.group.Do(key, func() (any, error) {
		// A caller queued behind a leader may find the row already
		// refreshed; re-check before paying for another fetch
		row, err := c.payloads.Get(ctx, key)
		if err == nil && row != nil && c.IsFresh(category, row.RefreshedAt) {
			return row.Payload, nil
		}
		payload, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.payloads.Put(ctx, key, category, payload); err != nil {
			return nil, NewBusinessError("CACHE_WRITE_FAILED", "Failed to store response cache entry", err)
		}
		return payload, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.(json.RawMessage), false, nil
}

// Cache key builders. Keys are colon-joined so a category prefix scan
// stays possible in SQL.

func TrendingKey(region, mediaType, window string) string {
	return fmt.Sprintf("trending:%s:%s:%s", region, mediaType, window)
}

func UpcomingKey(region string, page int) string {
	return fmt.Sprintf("upcoming:%s:%d", region, page)
}

func SearchKey(region, query string, page int) string {
	return fmt.Sprintf("search:%s:%s:%d", region, query, page)
}

func TitleKey(mediaType string, id int64) string {
	return fmt.Sprintf("title:%s:%d", mediaType, id)
}

func ProvidersKey(mediaType string, id int64) string {
	return fmt.Sprintf("providers:%s:%d", mediaType, id)
}

func PodcastTrendingKey(region string) string {
	return fmt.Sprintf("podcasts:trending:%s", region)
}

func PodcastNewKey(region string) string {
	return fmt.Sprintf("podcasts:new:%s", region)
}

func PodcastShowKey(showID int64) string {
	return fmt.Sprintf("podcasts:show:%d", showID)
}

func PodcastEpisodesKey(showID int64) string {
	return fmt.Sprintf("podcasts:episodes:%d", showID)
}

func PodcastEpisodeKey(episodeID int64) string {
	return fmt.Sprintf("podcasts:episode:%d", episodeID)
}

func PodcastSearchKey(query string) string {
	return fmt.Sprintf("podcasts:search:%s", query)
}
