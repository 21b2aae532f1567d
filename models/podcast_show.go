package models

import "time"

// PodcastShow mirrors a PodcastIndex feed record. Rows are upserted
// whenever the show is fetched so buzz rankings can be hydrated
// without another upstream call.
type PodcastShow struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:500;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Image        string    `gorm:"size:1000" json:"image"`
	Language     string    `gorm:"size:10" json:"language"`
	Author       string    `gorm:"size:500" json:"author"`
	FeedURL      string    `gorm:"size:1000" json:"feed_url"`
	EpisodeCount int       `gorm:"not null;default:0" json:"episode_count"`
	UpdatedAt    time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for PodcastShow
func (PodcastShow) TableName() string { return "podcast_shows" }
