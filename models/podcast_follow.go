package models

import "time"

// PodcastFollow records that a guest follows a show. Unlike the
// interaction event log this is mutable user state: unfollow deletes
// the row, while the corresponding show_follow event stays in the log.
type PodcastFollow struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	GuestID string    `gorm:"size:36;not null;uniqueIndex:idx_podcast_follows_key,priority:1;index:idx_podcast_follows_guest" json:"guest_id"`
	ShowID  int64     `gorm:"not null;uniqueIndex:idx_podcast_follows_key,priority:2" json:"show_id"`
	Region  string    `gorm:"size:5;not null" json:"region"`
	AddedAt time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"added_at"`
}

// TableName returns the table name for PodcastFollow
func (PodcastFollow) TableName() string { return "podcast_follows" }
