// Package services contains clients for the upstream catalog providers
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/buzzreel/buzzreel-api/config"
)

// TMDBClient talks to The Movie Database v3 API
type TMDBClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	RetryCount int
}

func NewTMDBClient(cfg *config.TMDBConfig) *TMDBClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.RetryCount
	if retries <= 0 {
		retries = 3
	}
	return &TMDBClient{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     cfg.APIKey,
		HTTPClient: &http.Client{Timeout: timeout},
		RetryCount: retries,
	}
}

func (c *TMDBClient) Name() string { return "tmdb" }

// UpstreamError reports a non-2xx answer from a provider so callers can
// distinguish provider failures from transport failures.
type UpstreamError struct {
	Provider string
	Status   int
	Path     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d for %s", e.Provider, e.Status, e.Path)
}

// Trending fetches the trending list for a media type over a time window.
// mediaType is "movie", "tv" or "all"; window is "day" or "week".
func (c *TMDBClient) Trending(ctx context.Context, mediaType, window, region string) (json.RawMessage, error) {
	path := fmt.Sprintf("/trending/%s/%s", mediaType, window)
	params := url.Values{}
	if region != "" {
		params.Set("region", region)
	}
	return c.getJSON(ctx, path, params)
}

// UpcomingMovies fetches movies releasing soon for the region
func (c *TMDBClient) UpcomingMovies(ctx context.Context, region string, page int) (json.RawMessage, error) {
	params := url.Values{}
	if region != "" {
		params.Set("region", region)
	}
	if page > 1 {
		params.Set("page", fmt.Sprint(page))
	}
	return c.getJSON(ctx, "/movie/upcoming", params)
}

// TitleDetails fetches the full detail record for a movie or tv show,
// with videos and credits appended in the same round trip.
func (c *TMDBClient) TitleDetails(ctx context.Context, mediaType string, id int64) (json.RawMessage, error) {
	path := fmt.Sprintf("/%s/%d", mediaType, id)
	params := url.Values{}
	params.Set("append_to_response", "videos,credits")
	return c.getJSON(ctx, path, params)
}

// WatchProviders fetches the streaming availability map for a title
func (c *TMDBClient) WatchProviders(ctx context.Context, mediaType string, id int64) (json.RawMessage, error) {
	path := fmt.Sprintf("/%s/%d/watch/providers", mediaType, id)
	return c.getJSON(ctx, path, nil)
}

// SearchMulti runs a mixed search across movies, tv and people
func (c *TMDBClient) SearchMulti(ctx context.Context, query, region string, page int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("query", query)
	if region != "" {
		params.Set("region", region)
	}
	if page > 1 {
		params.Set("page", fmt.Sprint(page))
	}
	return c.getJSON(ctx, "/search/multi", params)
}

// getJSON performs an authenticated GET and returns the raw body. The
// body is kept opaque so responses pass through the cache unmodified.
// Transient failures (transport errors, 5xx, 429) are retried with
// backoff; 4xx answers fail immediately.
func (c *TMDBClient) getJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.APIKey)
	fullURL := c.BaseURL + path + "?" + params.Encode()

	var payload json.RawMessage
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Accept", "application/json")
			resp, err := c.HTTPClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				upErr := &UpstreamError{Provider: "tmdb", Status: resp.StatusCode, Path: path}
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return upErr
				}
				return retry.Unrecoverable(upErr)
			}
			var body json.RawMessage
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return retry.Unrecoverable(fmt.Errorf("tmdb: decode %s: %w", path, err))
			}
			payload = body
			return nil
		},
		retry.Attempts(uint(c.RetryCount)),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return payload, nil
}
