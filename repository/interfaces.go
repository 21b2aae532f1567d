// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/buzzreel/buzzreel-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// PayloadCacheRepository defines storage operations for the response cache.
// Get never blocks on network; a miss returns (nil, nil).
type PayloadCacheRepository interface {
	Get(ctx context.Context, key string) (*models.CachedPayload, error)
	Put(ctx context.Context, key, category string, payload json.RawMessage) error
	DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// InteractionEventRepository defines operations for the append-only event log
type InteractionEventRepository interface {
	Save(ctx context.Context, event *models.InteractionEvent) error
	ByRegionWindow(ctx context.Context, region string, from, to time.Time) ([]*models.InteractionEvent, error)
	ByFilter(ctx context.Context, filter models.InteractionEventFilter, orderBy string, limit, offset int) ([]*models.InteractionEvent, error)
	Count(ctx context.Context, filter models.InteractionEventFilter) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// BuzzScoreRepository defines operations for computed buzz scores
type BuzzScoreRepository interface {
	UpsertBatch(ctx context.Context, scores []*models.BuzzScore) error
	TopByRegion(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error)
}

// ViewCounterRepository defines operations for the title-level view counters
type ViewCounterRepository interface {
	Increment(ctx context.Context, region, mediaType string, contentID int64) (int64, error)
	Count(ctx context.Context, region, mediaType string, contentID int64) (int64, error)
	TopN(ctx context.Context, region string, n int) ([]*models.ViewCounter, error)
}

// WatchlistRepository defines operations for guest watchlists
type WatchlistRepository interface {
	ByGuest(ctx context.Context, guestID string) ([]*models.WatchlistItem, error)
	Add(ctx context.Context, item *models.WatchlistItem) error
	Remove(ctx context.Context, guestID string, contentID int64, mediaType string) (bool, error)
}

// PodcastFollowRepository defines operations for show follows
type PodcastFollowRepository interface {
	ByGuest(ctx context.Context, guestID string) ([]*models.PodcastFollow, error)
	Add(ctx context.Context, follow *models.PodcastFollow) error
	Remove(ctx context.Context, guestID string, showID int64) (bool, error)
}

// PodcastCatalogRepository persists normalized show/episode metadata
// mirrored from the upstream index
type PodcastCatalogRepository interface {
	UpsertShows(ctx context.Context, shows []*models.PodcastShow) error
	UpsertEpisodes(ctx context.Context, episodes []*models.PodcastEpisode) error
	ShowsByIDs(ctx context.Context, ids []int64) ([]*models.PodcastShow, error)
	EpisodesByIDs(ctx context.Context, ids []int64) ([]*models.PodcastEpisode, error)
}
