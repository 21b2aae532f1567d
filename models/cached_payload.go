package models

import (
	"encoding/json"
	"time"
)

// Cache key categories. The composite key encodes the category plus its
// category-specific dimensions, colon-separated.
const (
	CacheCategoryTrending  = "trending"
	CacheCategoryTitle     = "title"
	CacheCategoryProviders = "providers"
	CacheCategoryPodcasts  = "podcasts"
)

// CachedPayload memoizes a previously fetched or derived response.
// At most one live row exists per cache key; refreshes overwrite in place.
type CachedPayload struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CacheKey    string          `gorm:"size:200;not null;uniqueIndex:idx_cached_payloads_key" json:"cache_key"`
	Category    string          `gorm:"size:30;not null;index:idx_cached_payloads_category" json:"category"`
	Payload     json.RawMessage `gorm:"type:jsonb;not null" json:"payload"`
	RefreshedAt time.Time       `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"refreshed_at"`
}

// TableName returns the table name for CachedPayload
func (CachedPayload) TableName() string { return "cached_payloads" }
