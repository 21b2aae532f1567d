package models

import "time"

// PodcastEpisode mirrors a PodcastIndex episode record, upserted on fetch.
type PodcastEpisode struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	ShowID        int64     `gorm:"not null;index:idx_podcast_episodes_show" json:"show_id"`
	Title         string    `gorm:"size:500;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	Image         string    `gorm:"size:1000" json:"image"`
	DatePublished int64     `gorm:"index:idx_podcast_episodes_date,sort:desc" json:"date_published"`
	AudioURL      string    `gorm:"size:1000" json:"audio_url"`
	Duration      int       `gorm:"not null;default:0" json:"duration"`
	UpdatedAt     time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

// TableName returns the table name for PodcastEpisode
func (PodcastEpisode) TableName() string { return "podcast_episodes" }
