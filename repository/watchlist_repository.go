package repository

import (
	"context"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepositoryImpl implements WatchlistRepository
type WatchlistRepositoryImpl struct {
	*BaseRepository
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &WatchlistRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

func (r *WatchlistRepositoryImpl) ByGuest(ctx context.Context, guestID string) ([]*models.WatchlistItem, error) {
	db := r.getDB(ctx)
	var rows []*models.WatchlistItem
	err := db.Model(&models.WatchlistItem{}).
		Where("guest_id = ?", guestID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add saves the item, refreshing title/poster if the guest already has it
func (r *WatchlistRepositoryImpl) Add(ctx context.Context, item *models.WatchlistItem) error {
	db := r.getDB(ctx)
	if item.AddedAt.IsZero() {
		item.AddedAt = utils.UTCNow()
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guest_id"}, {Name: "content_id"}, {Name: "media_type"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":       clause.Expr{SQL: "EXCLUDED.title"},
			"poster_path": clause.Expr{SQL: "EXCLUDED.poster_path"},
		}),
	}).Create(item).Error
}

// Remove deletes the item and reports whether a row existed
func (r *WatchlistRepositoryImpl) Remove(ctx context.Context, guestID string, contentID int64, mediaType string) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where("guest_id = ? AND content_id = ? AND media_type = ?", guestID, contentID, mediaType).
		Delete(&models.WatchlistItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
