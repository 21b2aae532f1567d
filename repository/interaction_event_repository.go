package repository

import (
	"context"
	"time"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"gorm.io/gorm"
)

// InteractionEventRepositoryImpl implements InteractionEventRepository
type InteractionEventRepositoryImpl struct {
	*BaseRepository
}

func NewInteractionEventRepository(db *gorm.DB) InteractionEventRepository {
	return &InteractionEventRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

// Save appends one event to the log. Events are never updated.
func (r *InteractionEventRepositoryImpl) Save(ctx context.Context, event *models.InteractionEvent) error {
	db := r.getDB(ctx)
	if event.CreatedAt.IsZero() {
		event.CreatedAt = utils.UTCNow()
	}
	return db.Create(event).Error
}

// ByRegionWindow returns all events for a region within [from, to),
// the bulk read the buzz scorer runs on
func (r *InteractionEventRepositoryImpl) ByRegionWindow(ctx context.Context, region string, from, to time.Time) ([]*models.InteractionEvent, error) {
	db := r.getDB(ctx)
	var rows []*models.InteractionEvent
	err := db.Model(&models.InteractionEvent{}).
		Where("region = ? AND created_at >= ? AND created_at < ?", region, from, to).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InteractionEventRepositoryImpl) applyFilter(db *gorm.DB, f models.InteractionEventFilter) *gorm.DB {
	if f.Region != nil {
		db = db.Where("region = ?", *f.Region)
	}
	if f.EventType != nil {
		db = db.Where("event_type = ?", *f.EventType)
	}
	if f.GuestID != nil {
		db = db.Where("guest_id = ?", *f.GuestID)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *InteractionEventRepositoryImpl) ByFilter(ctx context.Context, filter models.InteractionEventFilter, orderBy string, limit, offset int) ([]*models.InteractionEvent, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.InteractionEvent{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.InteractionEvent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *InteractionEventRepositoryImpl) Count(ctx context.Context, filter models.InteractionEventFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.InteractionEvent{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteBefore prunes events older than the cutoff. Retention-job only;
// the log is append-only on the request path.
func (r *InteractionEventRepositoryImpl) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("created_at < ?", cutoff).Delete(&models.InteractionEvent{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
