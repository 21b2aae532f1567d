package models

import "time"

// Buzz entity types
const (
	EntityTypeShow    = "show"
	EntityTypeEpisode = "episode"
)

// BuzzScore is one computed popularity score for an entity within a
// scoring window. Recomputing the same window overwrites the row;
// later windows supersede earlier ones without deleting them.
type BuzzScore struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Region      string    `gorm:"size:5;not null;uniqueIndex:idx_buzz_scores_window,priority:1;index:idx_buzz_scores_rank,priority:1" json:"region"`
	EntityType  string    `gorm:"size:10;not null;uniqueIndex:idx_buzz_scores_window,priority:2;index:idx_buzz_scores_rank,priority:2" json:"entity_type"`
	EntityID    int64     `gorm:"not null;uniqueIndex:idx_buzz_scores_window,priority:3" json:"entity_id"`
	Score       int       `gorm:"not null;default:0;index:idx_buzz_scores_rank,priority:3,sort:desc" json:"score"`
	WindowStart time.Time `gorm:"not null;uniqueIndex:idx_buzz_scores_window,priority:4" json:"window_start"`
	WindowEnd   time.Time `gorm:"not null" json:"window_end"`
	ComputedAt  time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"computed_at"`
}

// TableName returns the table name for BuzzScore
func (BuzzScore) TableName() string { return "buzz_scores" }
