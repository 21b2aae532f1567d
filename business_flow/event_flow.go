package businessflow

import (
	"context"
	"strings"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
)

// EventFlow appends interaction events to the log. Writes are
// fire-and-forget from the client's perspective; the scorer picks them
// up on its next pass.
type EventFlow interface {
	Record(ctx context.Context, input RecordEventInput) error
}

// RecordEventInput carries one interaction from the API boundary
type RecordEventInput struct {
	GuestID   *string
	Region    string
	EventType string
	ShowID    *int64
	EpisodeID *int64
}

type EventFlowImpl struct {
	events repository.InteractionEventRepository
}

func NewEventFlow(events repository.InteractionEventRepository) EventFlow {
	return &EventFlowImpl{events: events}
}

// NormalizeEventType maps the short client aliases onto the canonical
// event kinds. Returns false for unknown kinds.
func NormalizeEventType(eventType string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case models.EventTypeView:
		return models.EventTypeView, true
	case "save", models.EventTypeEpisodeSave:
		return models.EventTypeEpisodeSave, true
	case "follow", models.EventTypeShowFollow:
		return models.EventTypeShowFollow, true
	default:
		return "", false
	}
}

func (f *EventFlowImpl) Record(ctx context.Context, input RecordEventInput) error {
	if input.Region == "" {
		return ErrInvalidRegion
	}
	eventType, ok := NormalizeEventType(input.EventType)
	if !ok {
		return ErrInvalidEventType
	}

	// Events without a show or episode id are accepted; the scorer
	// skips them rather than the write path rejecting them
	event := &models.InteractionEvent{
		GuestID:   input.GuestID,
		Region:    strings.ToUpper(input.Region),
		EventType: eventType,
		ShowID:    input.ShowID,
		EpisodeID: input.EpisodeID,
	}
	if err := f.events.Save(ctx, event); err != nil {
		return NewBusinessError("EVENT_SAVE_FAILED", "Failed to record interaction event", err)
	}
	return nil
}
