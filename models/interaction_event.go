package models

import "time"

// Canonical interaction event kinds. The write API also accepts the
// short aliases "save" and "follow".
const (
	EventTypeView        = "view"
	EventTypeEpisodeSave = "episode_save"
	EventTypeShowFollow  = "show_follow"
)

// InteractionEvent is one row of the append-only interaction log.
// Rows are immutable once written; the buzz scorer reads them in bulk.
// GuestID is nullable since anonymous events are expected.
type InteractionEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GuestID   *string   `gorm:"size:36;index:idx_interaction_events_guest" json:"guest_id,omitempty"`
	Region    string    `gorm:"size:5;not null;index:idx_interaction_events_region_created,priority:1" json:"region"`
	EventType string    `gorm:"size:20;not null;index:idx_interaction_events_type" json:"event_type"`
	ShowID    *int64    `json:"show_id,omitempty"`
	EpisodeID *int64    `json:"episode_id,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_interaction_events_region_created,priority:2" json:"created_at"`
}

// TableName returns the table name for InteractionEvent
func (InteractionEvent) TableName() string { return "interaction_events" }

// InteractionEventFilter narrows event queries
type InteractionEventFilter struct {
	Region        *string
	EventType     *string
	GuestID       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
