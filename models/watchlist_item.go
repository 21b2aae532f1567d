package models

import "time"

// WatchlistItem is a saved title for a guest. Identity is the opaque
// client-generated guest token; there is no server-side account.
type WatchlistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	GuestID    string    `gorm:"size:36;not null;uniqueIndex:idx_watchlist_items_key,priority:1;index:idx_watchlist_items_guest" json:"guest_id"`
	ContentID  int64     `gorm:"not null;uniqueIndex:idx_watchlist_items_key,priority:2" json:"content_id"`
	MediaType  string    `gorm:"size:10;not null;uniqueIndex:idx_watchlist_items_key,priority:3" json:"media_type"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	PosterPath *string   `gorm:"size:255" json:"poster_path,omitempty"`
	AddedAt    time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"added_at"`
}

// TableName returns the table name for WatchlistItem
func (WatchlistItem) TableName() string { return "watchlist_items" }
