package repository

import (
	"context"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PodcastFollowRepositoryImpl implements PodcastFollowRepository
type PodcastFollowRepositoryImpl struct {
	*BaseRepository
}

func NewPodcastFollowRepository(db *gorm.DB) PodcastFollowRepository {
	return &PodcastFollowRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

func (r *PodcastFollowRepositoryImpl) ByGuest(ctx context.Context, guestID string) ([]*models.PodcastFollow, error) {
	db := r.getDB(ctx)
	var rows []*models.PodcastFollow
	err := db.Model(&models.PodcastFollow{}).
		Where("guest_id = ?", guestID).
		Order("added_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Add records the follow; re-following an already followed show is a no-op
func (r *PodcastFollowRepositoryImpl) Add(ctx context.Context, follow *models.PodcastFollow) error {
	db := r.getDB(ctx)
	if follow.AddedAt.IsZero() {
		follow.AddedAt = utils.UTCNow()
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guest_id"}, {Name: "show_id"}},
		DoNothing: true,
	}).Create(follow).Error
}

func (r *PodcastFollowRepositoryImpl) Remove(ctx context.Context, guestID string, showID int64) (bool, error) {
	db := r.getDB(ctx)
	res := db.Where("guest_id = ? AND show_id = ?", guestID, showID).Delete(&models.PodcastFollow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
