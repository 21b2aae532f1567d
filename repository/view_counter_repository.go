package repository

import (
	"context"
	"errors"

	"github.com/buzzreel/buzzreel-api/models"
	"gorm.io/gorm"
)

// ViewCounterRepositoryImpl implements ViewCounterRepository
type ViewCounterRepositoryImpl struct {
	*BaseRepository
}

func NewViewCounterRepository(db *gorm.DB) ViewCounterRepository {
	return &ViewCounterRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

// Increment bumps the counter for the key and returns the post-increment
// value. The whole operation is a single statement so concurrent
// increments never lose updates.
func (r *ViewCounterRepositoryImpl) Increment(ctx context.Context, region, mediaType string, contentID int64) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Raw(`
		INSERT INTO view_counters (region, media_type, content_id, view_count, created_at, updated_at)
		VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP AT TIME ZONE 'UTC', CURRENT_TIMESTAMP AT TIME ZONE 'UTC')
		ON CONFLICT (region, media_type, content_id)
		DO UPDATE SET view_count = view_counters.view_count + 1,
		              updated_at = CURRENT_TIMESTAMP AT TIME ZONE 'UTC'
		RETURNING view_count`,
		region, mediaType, contentID).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Count returns the current counter value, 0 when no row exists
func (r *ViewCounterRepositoryImpl) Count(ctx context.Context, region, mediaType string, contentID int64) (int64, error) {
	db := r.getDB(ctx)
	var row models.ViewCounter
	err := db.Where("region = ? AND media_type = ? AND content_id = ?", region, mediaType, contentID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.ViewCount, nil
}

// TopN returns the region's counters ordered by count descending,
// content id ascending on ties
func (r *ViewCounterRepositoryImpl) TopN(ctx context.Context, region string, n int) ([]*models.ViewCounter, error) {
	db := r.getDB(ctx)
	var rows []*models.ViewCounter
	query := db.Model(&models.ViewCounter{}).
		Where("region = ?", region).
		Order("view_count DESC, content_id ASC")
	if n > 0 {
		query = query.Limit(n)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
