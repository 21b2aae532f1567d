package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/buzzreel/buzzreel-api/config"
)

// PodcastIndexClient talks to the PodcastIndex.org API.
// Every request carries the key/date/hash auth header triple the API
// requires; the hash is sha1(key + secret + unix time).
type PodcastIndexClient struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	UserAgent  string
	HTTPClient *http.Client
	RetryCount int

	// now is swappable in tests so auth headers are deterministic
	now func() time.Time
}

func NewPodcastIndexClient(cfg *config.PodcastIndexConfig) *PodcastIndexClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.RetryCount
	if retries <= 0 {
		retries = 3
	}
	return &PodcastIndexClient{
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		UserAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{Timeout: timeout},
		RetryCount: retries,
		now:        time.Now,
	}
}

func (c *PodcastIndexClient) Name() string { return "podcastindex" }

// AuthHeaders builds the X-Auth-Key / X-Auth-Date / Authorization triple
// for the given moment
func AuthHeaders(apiKey, apiSecret string, at time.Time) map[string]string {
	authDate := fmt.Sprint(at.Unix())
	sum := sha1.Sum([]byte(apiKey + apiSecret + authDate))
	return map[string]string{
		"X-Auth-Key":    apiKey,
		"X-Auth-Date":   authDate,
		"Authorization": hex.EncodeToString(sum[:]),
	}
}

// TrendingFeeds fetches currently trending shows, optionally scoped to a language
func (c *PodcastIndexClient) TrendingFeeds(ctx context.Context, lang string, max int) (json.RawMessage, error) {
	params := url.Values{}
	if lang != "" {
		params.Set("lang", lang)
	}
	if max > 0 {
		params.Set("max", fmt.Sprint(max))
	}
	return c.getJSON(ctx, "/podcasts/trending", params)
}

// RecentEpisodes fetches the most recently published episodes across the index
func (c *PodcastIndexClient) RecentEpisodes(ctx context.Context, max int) (json.RawMessage, error) {
	params := url.Values{}
	if max > 0 {
		params.Set("max", fmt.Sprint(max))
	}
	return c.getJSON(ctx, "/recent/episodes", params)
}

// ShowByFeedID fetches a single show record
func (c *PodcastIndexClient) ShowByFeedID(ctx context.Context, feedID int64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("id", fmt.Sprint(feedID))
	return c.getJSON(ctx, "/podcasts/byfeedid", params)
}

// EpisodesByFeedID fetches the episode list for a show
func (c *PodcastIndexClient) EpisodesByFeedID(ctx context.Context, feedID int64, max int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("id", fmt.Sprint(feedID))
	if max > 0 {
		params.Set("max", fmt.Sprint(max))
	}
	return c.getJSON(ctx, "/episodes/byfeedid", params)
}

// EpisodeByID fetches a single episode record
func (c *PodcastIndexClient) EpisodeByID(ctx context.Context, episodeID int64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("id", fmt.Sprint(episodeID))
	return c.getJSON(ctx, "/episodes/byid", params)
}

// SearchByTerm runs a term search across show titles, authors and owners
func (c *PodcastIndexClient) SearchByTerm(ctx context.Context, query string, max int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("q", query)
	if max > 0 {
		params.Set("max", fmt.Sprint(max))
	}
	return c.getJSON(ctx, "/search/byterm", params)
}

func (c *PodcastIndexClient) getJSON(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	fullURL := c.BaseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	var payload json.RawMessage
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			for k, v := range AuthHeaders(c.APIKey, c.APISecret, c.now()) {
				req.Header.Set(k, v)
			}
			req.Header.Set("User-Agent", c.UserAgent)
			req.Header.Set("Accept", "application/json")
			resp, err := c.HTTPClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				upErr := &UpstreamError{Provider: "podcastindex", Status: resp.StatusCode, Path: path}
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return upErr
				}
				return retry.Unrecoverable(upErr)
			}
			var body json.RawMessage
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return retry.Unrecoverable(fmt.Errorf("podcastindex: decode %s: %w", path, err))
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
