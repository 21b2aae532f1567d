package repository

import (
	"context"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PodcastCatalogRepositoryImpl implements PodcastCatalogRepository
type PodcastCatalogRepositoryImpl struct {
	*BaseRepository
}

func NewPodcastCatalogRepository(db *gorm.DB) PodcastCatalogRepository {
	return &PodcastCatalogRepositoryImpl{BaseRepository: NewBaseRepository(db)}
}

// UpsertShows refreshes the local mirror of show metadata
func (r *PodcastCatalogRepositoryImpl) UpsertShows(ctx context.Context, shows []*models.PodcastShow) error {
	if len(shows) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(shows))
	deduped := make([]*models.PodcastShow, 0, len(shows))
	for _, show := range shows {
		if show == nil || show.ID == 0 {
			continue
		}
		if _, exists := seen[show.ID]; exists {
			continue
		}
		seen[show.ID] = struct{}{}
		show.UpdatedAt = utils.UTCNow()
		deduped = append(deduped, show)
	}
	if len(deduped) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"title":         clause.Expr{SQL: "EXCLUDED.title"},
			"description":   clause.Expr{SQL: "EXCLUDED.description"},
			"image":         clause.Expr{SQL: "EXCLUDED.image"},
			"language":      clause.Expr{SQL: "EXCLUDED.language"},
			"author":        clause.Expr{SQL: "EXCLUDED.author"},
			"feed_url":      clause.Expr{SQL: "EXCLUDED.feed_url"},
			"episode_count": clause.Expr{SQL: "EXCLUDED.episode_count"},
			"updated_at":    clause.Expr{SQL: "EXCLUDED.updated_at"},
		}),
	}).Create(&deduped).Error
}

// UpsertEpisodes refreshes the local mirror of episode metadata
func (r *PodcastCatalogRepositoryImpl) UpsertEpisodes(ctx context.Context, episodes []*models.PodcastEpisode) error {
	if len(episodes) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(episodes))
	deduped := make([]*models.PodcastEpisode, 0, len(episodes))
	for _, episode := range episodes {
		if episode == nil || episode.ID == 0 {
			continue
		}
		if _, exists := seen[episode.ID]; exists {
			continue
		}
		seen[episode.ID] = struct{}{}
		episode.UpdatedAt = utils.UTCNow()
		deduped = append(deduped, episode)
	}
	if len(deduped) == 0 {
		return nil
	}

	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"show_id":        clause.Expr{SQL: "EXCLUDED.show_id"},
			"title":          clause.Expr{SQL: "EXCLUDED.title"},
			"description":    clause.Expr{SQL: "EXCLUDED.description"},
			"image":          clause.Expr{SQL: "EXCLUDED.image"},
			"date_published": clause.Expr{SQL: "EXCLUDED.date_published"},
			"audio_url":      clause.Expr{SQL: "EXCLUDED.audio_url"},
			"duration":       clause.Expr{SQL: "EXCLUDED.duration"},
			"updated_at":     clause.Expr{SQL: "EXCLUDED.updated_at"},
		}),
	}).Create(&deduped).Error
}

func (r *PodcastCatalogRepositoryImpl) ShowsByIDs(ctx context.Context, ids []int64) ([]*models.PodcastShow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.PodcastShow
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *PodcastCatalogRepositoryImpl) EpisodesByIDs(ctx context.Context, ids []int64) ([]*models.PodcastEpisode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.PodcastEpisode
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
