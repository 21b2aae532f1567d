package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/buzzreel/buzzreel-api/app/services"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/sourcegraph/conc/pool"
)

// TrendingFlow serves the discovery lists backed by the response cache.
// Public flow, no authentication required
type TrendingFlow interface {
	Trending(ctx context.Context, region, mediaType, window string) (*CachedResult, error)
	Upcoming(ctx context.Context, region string, page int) (*CachedResult, error)
	Search(ctx context.Context, region, query string, page int) (*CachedResult, error)
}

// CachedResult pairs a passthrough payload with its cache disposition
type CachedResult struct {
	Payload json.RawMessage `json:"payload"`
	Cached  bool            `json:"cached"`
}

type TrendingFlowImpl struct {
	cache *ResponseCache
	tmdb  *services.TMDBClient
}

func NewTrendingFlow(cache *ResponseCache, tmdb *services.TMDBClient) TrendingFlow {
	return &TrendingFlowImpl{cache: cache, tmdb: tmdb}
}

func (f *TrendingFlowImpl) Trending(ctx context.Context, region, mediaType, window string) (*CachedResult, error) {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	window = strings.ToLower(strings.TrimSpace(window))
	if region == "" {
		return nil, ErrInvalidRegion
	}
	switch mediaType {
	case models.MediaTypeMovie, models.MediaTypeTV, models.MediaTypeAll, models.MediaTypeUpcoming:
	default:
		return nil, ErrInvalidMediaType
	}
	if window != "day" && window != "week" {
		return nil, ErrInvalidTimeWindow
	}

	if mediaType == models.MediaTypeUpcoming {
		return f.Upcoming(ctx, region, 1)
	}

	key := TrendingKey(region, mediaType, window)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryTrending, key, func(ctx context.Context) (json.RawMessage, error) {
		if mediaType == models.MediaTypeAll {
			return f.fetchCombined(ctx, region, window)
		}
		body, err := f.tmdb.Trending(ctx, mediaType, window, region)
		if err != nil {
			return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to fetch trending titles", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

// fetchCombined fetches movie and tv trending concurrently and merges
// them into a single envelope keyed by media type
func (f *TrendingFlowImpl) fetchCombined(ctx context.Context, region, window string) (json.RawMessage, error) {
	var movies, shows json.RawMessage
	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		body, err := f.tmdb.Trending(ctx, models.MediaTypeMovie, window, region)
		if err != nil {
			return err
		}
		movies = body
		return nil
	})
	p.Go(func(ctx context.Context) error {
		body, err := f.tmdb.Trending(ctx, models.MediaTypeTV, window, region)
		if err != nil {
			return err
		}
		shows = body
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to fetch trending titles", err)
	}
	combined, err := json.Marshal(map[string]json.RawMessage{
		"movie": movies,
		"tv":    shows,
	})
	if err != nil {
		return nil, err
	}
	return combined, nil
}

func (f *TrendingFlowImpl) Upcoming(ctx context.Context, region string, page int) (*CachedResult, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	if page < 1 {
		page = 1
	}
	key := UpcomingKey(region, page)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryTrending, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.tmdb.UpcomingMovies(ctx, region, page)
		if err != nil {
			return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to fetch upcoming titles", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

// Search is an uncached passthrough; queries are too varied for the
// response cache to pay off
func (f *TrendingFlowImpl) Search(ctx context.Context, region, query string, page int) (*CachedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if page < 1 {
		page = 1
	}
	body, err := f.tmdb.SearchMulti(ctx, query, region, page)
	if err != nil {
		return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to search titles", err)
	}
	return &CachedResult{Payload: body, Cached: false}, nil
}
