package models

import "time"

// Media types accepted by the title-level endpoints
const (
	MediaTypeMovie    = "movie"
	MediaTypeTV       = "tv"
	MediaTypeAll      = "all"
	MediaTypeUpcoming = "upcoming"
)

// ViewCounter is the simple counting primitive for title-level buzz.
// Exactly one row exists per (region, media type, content id);
// increments are atomic at the database level.
type ViewCounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Region    string    `gorm:"size:5;not null;uniqueIndex:idx_view_counters_key,priority:1" json:"region"`
	MediaType string    `gorm:"size:10;not null;uniqueIndex:idx_view_counters_key,priority:2" json:"media_type"`
	ContentID int64     `gorm:"not null;uniqueIndex:idx_view_counters_key,priority:3" json:"content_id"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for ViewCounter
func (ViewCounter) TableName() string { return "view_counters" }
