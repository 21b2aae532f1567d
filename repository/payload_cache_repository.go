package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayloadCacheRepositoryImpl implements PayloadCacheRepository
type PayloadCacheRepositoryImpl struct {
	*BaseRepository
}

func NewPayloadCacheRepository(db *gorm.DB) PayloadCacheRepository {
	return &PayloadCacheRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

// Get returns the cached payload for the key, or nil on a miss.
// A miss is normal control flow, not an error.
func (r *PayloadCacheRepositoryImpl) Get(ctx context.Context, key string) (*models.CachedPayload, error) {
	db := r.getDB(ctx)
	var row models.CachedPayload
	if err := db.Where("cache_key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Put inserts the payload or overwrites the existing row for the key,
// resetting the refresh timestamp. Readers see the old or the new row,
// never a partial write.
func (r *PayloadCacheRepositoryImpl) Put(ctx context.Context, key, category string, payload json.RawMessage) error {
	db := r.getDB(ctx)
	row := models.CachedPayload{
		CacheKey:    key,
		Category:    category,
		Payload:     payload,
		RefreshedAt: utils.UTCNow(),
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"payload":      clause.Expr{SQL: "EXCLUDED.payload"},
			"refreshed_at": clause.Expr{SQL: "EXCLUDED.refreshed_at"},
		}),
	}).Create(&row).Error
}

// DeleteStaleBefore removes rows whose last refresh predates the cutoff.
// Only the retention job calls this; the request path never deletes.
func (r *PayloadCacheRepositoryImpl) DeleteStaleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("refreshed_at < ?", cutoff).Delete(&models.CachedPayload{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
