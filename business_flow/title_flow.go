package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/buzzreel/buzzreel-api/app/services"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/buzzreel/buzzreel-api/utils"
)

// TitleFlow serves per-title detail, availability and popularity counters.
// Public flow, no authentication required
type TitleFlow interface {
	Details(ctx context.Context, mediaType string, id int64) (*CachedResult, error)
	Providers(ctx context.Context, mediaType string, id int64) (*CachedResult, error)
	RecordView(ctx context.Context, region, mediaType string, id int64) (int64, error)
	ViewCount(ctx context.Context, region, mediaType string, id int64) (int64, error)
	TopViewed(ctx context.Context, region string, limit int) ([]*models.ViewCounter, error)
}

type TitleFlowImpl struct {
	cache    *ResponseCache
	tmdb     *services.TMDBClient
	counters repository.ViewCounterRepository
}

func NewTitleFlow(cache *ResponseCache, tmdb *services.TMDBClient, counters repository.ViewCounterRepository) TitleFlow {
	return &TitleFlowImpl{cache: cache, tmdb: tmdb, counters: counters}
}

func validTitleMediaType(mediaType string) (string, error) {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		return "", ErrInvalidMediaType
	}
	return mediaType, nil
}

func (f *TitleFlowImpl) Details(ctx context.Context, mediaType string, id int64) (*CachedResult, error) {
	mediaType, err := validTitleMediaType(mediaType)
	if err != nil {
		return nil, err
	}
	key := TitleKey(mediaType, id)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryTitle, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.tmdb.TitleDetails(ctx, mediaType, id)
		if err != nil {
			if upstreamStatus(err) == 404 {
				return nil, ErrTitleNotFound
			}
			return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to fetch title details", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

func (f *TitleFlowImpl) Providers(ctx context.Context, mediaType string, id int64) (*CachedResult, error) {
	mediaType, err := validTitleMediaType(mediaType)
	if err != nil {
		return nil, err
	}
	key := ProvidersKey(mediaType, id)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryProviders, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.tmdb.WatchProviders(ctx, mediaType, id)
		if err != nil {
			if upstreamStatus(err) == 404 {
				return nil, ErrTitleNotFound
			}
			return nil, NewBusinessError("TMDB_FETCH_FAILED", "Failed to fetch watch providers", err)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

// RecordView bumps the view counter and returns the post-increment count
func (f *TitleFlowImpl) RecordView(ctx context.Context, region, mediaType string, id int64) (int64, error) {
	mediaType, err := validTitleMediaType(mediaType)
	if err != nil {
		return 0, err
	}
	if region == "" {
		return 0, ErrInvalidRegion
	}
	count, err := f.counters.Increment(ctx, region, mediaType, id)
	if err != nil {
		return 0, NewBusinessError("VIEW_COUNT_FAILED", "Failed to record title view", err)
	}
	return count, nil
}

func (f *TitleFlowImpl) ViewCount(ctx context.Context, region, mediaType string, id int64) (int64, error) {
	mediaType, err := validTitleMediaType(mediaType)
	if err != nil {
		return 0, err
	}
	if region == "" {
		return 0, ErrInvalidRegion
	}
	count, err := f.counters.Count(ctx, region, mediaType, id)
	if err != nil {
		return 0, NewBusinessError("VIEW_COUNT_FAILED", "Failed to read title view count", err)
	}
	return count, nil
}

func (f *TitleFlowImpl) TopViewed(ctx context.Context, region string, limit int) ([]*models.ViewCounter, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	if limit <= 0 {
		limit = utils.DefaultBuzzLimit
	}
	if limit > 100 {
		return nil, ErrInvalidLimit
	}
	rows, err := f.counters.TopN(ctx, region, limit)
	if err != nil {
		return nil, NewBusinessError("VIEW_COUNT_FAILED", "Failed to rank viewed titles", err)
	}
	return rows, nil
}

// upstreamStatus extracts the HTTP status from a provider error chain,
// or 0 when the failure was not an upstream answer
func upstreamStatus(err error) int {
	var upErr *services.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.Status
	}
	return 0
}
