package businessflow

import (
	"context"
	"math"
	"time"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/buzzreel/buzzreel-api/utils"
)

// BuzzFlow computes and serves decayed interaction scores per region.
// Scores are recomputed on demand from the raw event log; the stored
// rows are a materialization, not the source of truth.
type BuzzFlow interface {
	ComputeBuzz(ctx context.Context, region string) (int, error)
	TopBuzz(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error)
}

type BuzzFlowImpl struct {
	events repository.InteractionEventRepository
	scores repository.BuzzScoreRepository

	// now is swappable in tests
	now func() time.Time
}

func NewBuzzFlow(events repository.InteractionEventRepository, scores repository.BuzzScoreRepository) BuzzFlow {
	return &BuzzFlowImpl{events: events, scores: scores, now: utils.UTCNow}
}

// EntityKey identifies one scored entity inside a window
type EntityKey struct {
	EntityType string
	EntityID   int64
}

// eventWeight maps an event kind to its base weight. Unknown kinds
// contribute nothing.
func eventWeight(eventType string) float64 {
	switch eventType {
	case models.EventTypeView:
		return utils.BuzzWeightView
	case models.EventTypeEpisodeSave:
		return utils.BuzzWeightSave
	case models.EventTypeShowFollow:
		return utils.BuzzWeightFollow
	default:
		return 0
	}
}

// eventEntity resolves which entity an event counts toward. Saves score
// the episode, follows score the show, views score whichever id is set
// (episode preferred). Events without a resolvable entity are skipped.
func eventEntity(event *models.InteractionEvent) (EntityKey, bool) {
	switch event.EventType {
	case models.EventTypeEpisodeSave:
		if event.EpisodeID != nil {
			return EntityKey{EntityType: models.EntityTypeEpisode, EntityID: *event.EpisodeID}, true
		}
	case models.EventTypeShowFollow:
		if event.ShowID != nil {
			return EntityKey{EntityType: models.EntityTypeShow, EntityID: *event.ShowID}, true
		}
	case models.EventTypeView:
		if event.EpisodeID != nil {
			return EntityKey{EntityType: models.EntityTypeEpisode, EntityID: *event.EpisodeID}, true
		}
		if event.ShowID != nil {
			return EntityKey{EntityType: models.EntityTypeShow, EntityID: *event.ShowID}, true
		}
	}
	return EntityKey{}, false
}

// ScoreEvents aggregates raw events into decayed scores. Events inside
// the recent sub-window count at full weight, older events at half.
// Pure function over its inputs.
func ScoreEvents(events []*models.InteractionEvent, now time.Time) map[EntityKey]float64 {
	recentCutoff := now.Add(-utils.BuzzRecentWindow)
	scores := make(map[EntityKey]float64)
	for _, event := range events {
		if event == nil {
			continue
		}
		weight := eventWeight(event.EventType)
		if weight == 0 {
			continue
		}
		key, ok := eventEntity(event)
		if !ok {
			continue
		}
		multiplier := utils.BuzzDecayMultiplier
		if !event.CreatedAt.Before(recentCutoff) {
			multiplier = 1.0
		}
		scores[key] += weight * multiplier
	}
	return scores
}

// ComputeBuzz scores the last 24h of events for the region and upserts
// the result. Returns how many entities were scored. A region with no
// events yields zero rows and no error.
func (f *BuzzFlowImpl) ComputeBuzz(ctx context.Context, region string) (int, error) {
	if region == "" {
		return 0, ErrInvalidRegion
	}
	now := f.now()
	windowEnd := now
	windowStart := now.Add(-utils.BuzzWindow)

	events, err := f.events.ByRegionWindow(ctx, region, windowStart, windowEnd)
	if err != nil {
		return 0, NewBusinessError("BUZZ_EVENTS_FAILED", "Failed to load interaction events", err)
	}
	scored := ScoreEvents(events, now)
	if len(scored) == 0 {
		return 0, nil
	}

	// Hour-truncated window identity so recomputes within the hour
	// overwrite rather than accumulate rows
	windowID := windowStart.Truncate(time.Hour)
	rows := make([]*models.BuzzScore, 0, len(scored))
	for key, score := range scored {
		rows = append(rows, &models.BuzzScore{
			Region:      region,
			EntityType:  key.EntityType,
			EntityID:    key.EntityID,
			Score:       int(math.Round(score)),
			WindowStart: windowID,
			WindowEnd:   windowEnd,
			ComputedAt:  now,
		})
	}
	if err := f.scores.UpsertBatch(ctx, rows); err != nil {
		return 0, NewBusinessError("BUZZ_STORE_FAILED", "Failed to store buzz scores", err)
	}
	return len(rows), nil
}

func (f *BuzzFlowImpl) TopBuzz(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	if entityType != models.EntityTypeShow && entityType != models.EntityTypeEpisode {
		return nil, ErrInvalidEventType
	}
	if limit <= 0 {
		limit = utils.DefaultBuzzLimit
	}
	if limit > 100 {
		return nil, ErrInvalidLimit
	}
	rows, err := f.scores.TopByRegion(ctx, region, entityType, limit)
	if err != nil {
		return nil, NewBusinessError("BUZZ_RANK_FAILED", "Failed to rank buzz scores", err)
	}
	return rows, nil
}
