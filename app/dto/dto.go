// Package dto contains request and response structures for the API endpoints
package dto

import "encoding/json"

// APIResponse represents the standard API response structure
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty" validate:"omitempty"`
	Error   any    `json:"error,omitempty" validate:"omitempty"`
}

// ErrorDetail represents error details in API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty" validate:"omitempty"`
}

// CachedPayloadResponse wraps an upstream passthrough payload with its
// cache disposition
type CachedPayloadResponse struct {
	Cached  bool            `json:"cached"`
	Payload json.RawMessage `json:"payload"`
}

// RecordEventRequest records one interaction event.
// EventType accepts the canonical kinds plus the save/follow aliases.
type RecordEventRequest struct {
	GuestID   *string `json:"guest_id,omitempty" validate:"omitempty,max=36"`
	Region    string  `json:"region" validate:"required,len=2"`
	EventType string  `json:"event_type" validate:"required,oneof=view save follow episode_save show_follow"`
	ShowID    *int64  `json:"show_id,omitempty" validate:"omitempty,gt=0"`
	EpisodeID *int64  `json:"episode_id,omitempty" validate:"omitempty,gt=0"`
}

// RecordViewResponse returns the post-increment view count
type RecordViewResponse struct {
	Region    string `json:"region"`
	MediaType string `json:"media_type"`
	ContentID int64  `json:"content_id"`
	ViewCount int64  `json:"view_count"`
}

// FollowRequest follows or unfollows a show for a guest
type FollowRequest struct {
	GuestID string `json:"guest_id" validate:"required,max=36"`
	ShowID  int64  `json:"show_id" validate:"required,gt=0"`
	Region  string `json:"region" validate:"omitempty,len=2"`
}

// AddWatchlistRequest saves a title to a guest's watchlist
type AddWatchlistRequest struct {
	GuestID    string  `json:"guest_id" validate:"required,max=36"`
	ContentID  int64   `json:"content_id" validate:"required,gt=0"`
	MediaType  string  `json:"media_type" validate:"required,oneof=movie tv"`
	Title      string  `json:"title" validate:"required,max=500"`
	PosterPath *string `json:"poster_path,omitempty" validate:"omitempty,max=1000"`
}

// RemoveWatchlistRequest removes a title from a guest's watchlist
type RemoveWatchlistRequest struct {
	GuestID   string `json:"guest_id" validate:"required,max=36"`
	ContentID int64  `json:"content_id" validate:"required,gt=0"`
	MediaType string `json:"media_type" validate:"required,oneof=movie tv"`
}

// BuzzScoreItem is one ranked entity in a buzz response
type BuzzScoreItem struct {
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Score      int    `json:"score"`
}

// TopBuzzResponse lists ranked entities for a region
type TopBuzzResponse struct {
	Region string          `json:"region"`
	Items  []BuzzScoreItem `json:"items"`
}

// AdminRefreshResponse acknowledges a queued maintenance run
type AdminRefreshResponse struct {
	Queued bool `json:"queued"`
}

// HealthResponse reports component health
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
