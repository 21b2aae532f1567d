package repository

import (
	"context"

	"github.com/buzzreel/buzzreel-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuzzScoreRepositoryImpl implements BuzzScoreRepository
type BuzzScoreRepositoryImpl struct {
	*BaseRepository
}

func NewBuzzScoreRepository(db *gorm.DB) BuzzScoreRepository {
	return &BuzzScoreRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

// UpsertBatch writes one window's scores, overwriting rows that share
// (region, entity_type, entity_id, window_start)
func (r *BuzzScoreRepositoryImpl) UpsertBatch(ctx context.Context, scores []*models.BuzzScore) error {
	if len(scores) == 0 {
		return nil
	}

	// Deduplicate by conflict key to avoid ON CONFLICT hitting same row twice in one statement
	type aggKey struct {
		region     string
		entityType string
		entityID   int64
		windowUnix int64
	}
	seen := make(map[aggKey]struct{}, len(scores))
	deduped := make([]*models.BuzzScore, 0, len(scores))
	for _, row := range scores {
		if row == nil {
			continue
		}
		key := aggKey{region: row.Region, entityType: row.EntityType, entityID: row.EntityID, windowUnix: row.WindowStart.Unix()}
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, row)
	}
	if len(deduped) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "region"}, {Name: "entity_type"}, {Name: "entity_id"}, {Name: "window_start"}},
		DoUpdates: clause.Assignments(map[string]any{
			"score":       clause.Expr{SQL: "EXCLUDED.score"},
			"window_end":  clause.Expr{SQL: "EXCLUDED.window_end"},
			"computed_at": clause.Expr{SQL: "EXCLUDED.computed_at"},
		}),
	}).Create(&deduped).Error
}

// TopByRegion returns the highest-scoring entities for a region.
// Ties are broken by entity id ascending so the order is deterministic.
func (r *BuzzScoreRepositoryImpl) TopByRegion(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error) {
	db := r.getDB(ctx)
	var rows []*models.BuzzScore
	query := db.Model(&models.BuzzScore{}).
		Where("region = ? AND entity_type = ?", region, entityType).
		Where("window_start = (SELECT MAX(window_start) FROM buzz_scores WHERE region = ? AND entity_type = ?)", region, entityType).
		Order("score DESC, entity_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
