package businessflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/buzzreel/buzzreel-api/app/services"
	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
	"github.com/buzzreel/buzzreel-api/utils"
)

// PodcastFlow serves podcast discovery, buzz rankings and follow state.
// Buzz rankings come from the scorer and are hydrated with the local
// catalog mirror; the other aggregates are cached upstream passthroughs.
type PodcastFlow interface {
	Buzz(ctx context.Context, region string, limit int) (*PodcastBuzzResult, error)
	New(ctx context.Context, region string) (*CachedResult, error)
	Top(ctx context.Context, region string) (*CachedResult, error)
	Show(ctx context.Context, showID int64) (*CachedResult, error)
	Episode(ctx context.Context, episodeID int64) (*CachedResult, error)
	Episodes(ctx context.Context, showID int64) (*CachedResult, error)
	Search(ctx context.Context, query string) (*CachedResult, error)
	Follow(ctx context.Context, guestID, region string, showID int64) error
	Unfollow(ctx context.Context, guestID string, showID int64) error
	Follows(ctx context.Context, guestID string) ([]*models.PodcastFollow, error)
}

// PodcastBuzzItem is one ranked entry, carrying whichever metadata kind
// matches the entity type
type PodcastBuzzItem struct {
	EntityType string                 `json:"entity_type"`
	EntityID   int64                  `json:"entity_id"`
	Score      int                    `json:"score"`
	Show       *models.PodcastShow    `json:"show,omitempty"`
	Episode    *models.PodcastEpisode `json:"episode,omitempty"`
}

// PodcastBuzzResult is the ranked list; Fallback marks that the region
// had no scored events and upstream trending was served instead
type PodcastBuzzResult struct {
	Region   string            `json:"region"`
	Items    []PodcastBuzzItem `json:"items"`
	Fallback bool              `json:"fallback"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
}

type PodcastFlowImpl struct {
	cache   *ResponseCache
	index   *services.PodcastIndexClient
	buzz    BuzzFlow
	catalog repository.PodcastCatalogRepository
	follows repository.PodcastFollowRepository
}

func NewPodcastFlow(
	cache *ResponseCache,
	index *services.PodcastIndexClient,
	buzz BuzzFlow,
	catalog repository.PodcastCatalogRepository,
	follows repository.PodcastFollowRepository,
) PodcastFlow {
	return &PodcastFlowImpl{cache: cache, index: index, buzz: buzz, catalog: catalog, follows: follows}
}

// Buzz recomputes scores for the region and returns the ranked entities
// hydrated from the catalog mirror. A region with no scored events falls
// back to upstream trending.
func (f *PodcastFlowImpl) Buzz(ctx context.Context, region string, limit int) (*PodcastBuzzResult, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	if limit <= 0 {
		limit = utils.DefaultBuzzLimit
	}
	if _, err := f.buzz.ComputeBuzz(ctx, region); err != nil {
		return nil, err
	}

	shows, err := f.buzz.TopBuzz(ctx, region, models.EntityTypeShow, limit)
	if err != nil {
		return nil, err
	}
	episodes, err := f.buzz.TopBuzz(ctx, region, models.EntityTypeEpisode, limit)
	if err != nil {
		return nil, err
	}
	if len(shows) == 0 && len(episodes) == 0 {
		trending, err := f.Top(ctx, region)
		if err != nil {
			return nil, err
		}
		return &PodcastBuzzResult{Region: region, Fallback: true, Payload: trending.Payload}, nil
	}

	items, err := f.hydrate(ctx, shows, episodes)
	if err != nil {
		return nil, err
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return &PodcastBuzzResult{Region: region, Items: items}, nil
}

// hydrate attaches catalog metadata to ranked rows. Entities missing
// from the mirror still appear, with ids and scores only. Rankings are
// merged show-first on equal scores.
func (f *PodcastFlowImpl) hydrate(ctx context.Context, shows, episodes []*models.BuzzScore) ([]PodcastBuzzItem, error) {
	showIDs := make([]int64, 0, len(shows))
	for _, row := range shows {
		showIDs = append(showIDs, row.EntityID)
	}
	episodeIDs := make([]int64, 0, len(episodes))
	for _, row := range episodes {
		episodeIDs = append(episodeIDs, row.EntityID)
	}

	showRows, err := f.catalog.ShowsByIDs(ctx, showIDs)
	if err != nil {
		return nil, NewBusinessError("PODCAST_HYDRATE_FAILED", "Failed to load show metadata", err)
	}
	episodeRows, err := f.catalog.EpisodesByIDs(ctx, episodeIDs)
	if err != nil {
		return nil, NewBusinessError("PODCAST_HYDRATE_FAILED", "Failed to load episode metadata", err)
	}
	showsByID := make(map[int64]*models.PodcastShow, len(showRows))
	for _, row := range showRows {
		showsByID[row.ID] = row
	}
	episodesByID := make(map[int64]*models.PodcastEpisode, len(episodeRows))
	for _, row := range episodeRows {
		episodesByID[row.ID] = row
	}

	items := make([]PodcastBuzzItem, 0, len(shows)+len(episodes))
	i, j := 0, 0
	for i < len(shows) || j < len(episodes) {
		takeShow := j >= len(episodes) || (i < len(shows) && shows[i].Score >= episodes[j].Score)
		if takeShow {
			row := shows[i]
			items = append(items, PodcastBuzzItem{
				EntityType: models.EntityTypeShow,
				EntityID:   row.EntityID,
				Score:      row.Score,
				Show:       showsByID[row.EntityID],
			})
			i++
		} else {
			row := episodes[j]
			items = append(items, PodcastBuzzItem{
				EntityType: models.EntityTypeEpisode,
				EntityID:   row.EntityID,
				Score:      row.Score,
				Episode:    episodesByID[row.EntityID],
			})
			j++
		}
	}
	return items, nil
}

// New serves recently published episodes, cached
func (f *PodcastFlowImpl) New(ctx context.Context, region string) (*CachedResult, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	key := PodcastNewKey(region)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryPodcasts, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.index.RecentEpisodes(ctx, 40)
		if err != nil {
			return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to fetch recent episodes", err)
		}
		f.mirrorEpisodes(ctx, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

// Top serves upstream trending shows, cached
func (f *PodcastFlowImpl) Top(ctx context.Context, region string) (*CachedResult, error) {
	if region == "" {
		return nil, ErrInvalidRegion
	}
	key := PodcastTrendingKey(region)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryPodcasts, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.index.TrendingFeeds(ctx, "en", 40)
		if err != nil {
			return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to fetch trending shows", err)
		}
		f.mirrorFeeds(ctx, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

func (f *PodcastFlowImpl) Show(ctx context.Context, showID int64) (*CachedResult, error) {
	key := PodcastShowKey(showID)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryPodcasts, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.index.ShowByFeedID(ctx, showID)
		if err != nil {
			if upstreamStatus(err) == 404 {
				return nil, ErrShowNotFound
			}
			return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to fetch show", err)
		}
		f.mirrorFeed(ctx, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

func (f *PodcastFlowImpl) Episode(ctx context.Context, episodeID int64) (*CachedResult, error) {
	key := PodcastEpisodeKey(episodeID)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryPodcasts, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.index.EpisodeByID(ctx, episodeID)
		if err != nil {
			if upstreamStatus(err) == 404 {
				return nil, ErrEpisodeNotFound
			}
			return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to fetch episode", err)
		}
		f.mirrorEpisode(ctx, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

func (f *PodcastFlowImpl) Episodes(ctx context.Context, showID int64) (*CachedResult, error) {
	key := PodcastEpisodesKey(showID)
	payload, cached, err := f.cache.CachedJSON(ctx, models.CacheCategoryPodcasts, key, func(ctx context.Context) (json.RawMessage, error) {
		body, err := f.index.EpisodesByFeedID(ctx, showID, 50)
		if err != nil {
			if upstreamStatus(err) == 404 {
				return nil, ErrShowNotFound
			}
			return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to fetch episodes", err)
		}
		f.mirrorEpisodes(ctx, body)
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return &CachedResult{Payload: payload, Cached: cached}, nil
}

// Search is an uncached passthrough, mirroring any returned feeds
func (f *PodcastFlowImpl) Search(ctx context.Context, query string) (*CachedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	body, err := f.index.SearchByTerm(ctx, query, 25)
	if err != nil {
		return nil, NewBusinessError("PODCAST_FETCH_FAILED", "Failed to search shows", err)
	}
	f.mirrorFeeds(ctx, body)
	return &CachedResult{Payload: body, Cached: false}, nil
}

func (f *PodcastFlowImpl) Follow(ctx context.Context, guestID, region string, showID int64) error {
	if guestID == "" {
		return ErrGuestIDRequired
	}
	if showID == 0 {
		return ErrShowNotFound
	}
	follow := &models.PodcastFollow{
		GuestID: guestID,
		ShowID:  showID,
		Region:  strings.ToUpper(region),
	}
	if err := f.follows.Add(ctx, follow); err != nil {
		return NewBusinessError("FOLLOW_SAVE_FAILED", "Failed to save follow", err)
	}
	return nil
}

func (f *PodcastFlowImpl) Unfollow(ctx context.Context, guestID string, showID int64) error {
	if guestID == "" {
		return ErrGuestIDRequired
	}
	removed, err := f.follows.Remove(ctx, guestID, showID)
	if err != nil {
		return NewBusinessError("FOLLOW_REMOVE_FAILED", "Failed to remove follow", err)
	}
	if !removed {
		return ErrFollowNotFound
	}
	return nil
}

func (f *PodcastFlowImpl) Follows(ctx context.Context, guestID string) ([]*models.PodcastFollow, error) {
	if guestID == "" {
		return nil, ErrGuestIDRequired
	}
	rows, err := f.follows.ByGuest(ctx, guestID)
	if err != nil {
		return nil, NewBusinessError("FOLLOW_LIST_FAILED", "Failed to list follows", err)
	}
	return rows, nil
}

// Upstream record shapes, kept to the fields the catalog mirror stores

type indexFeed struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Artwork      string `json:"artwork"`
	Language     string `json:"language"`
	Author       string `json:"author"`
	URL          string `json:"url"`
	EpisodeCount int    `json:"episodeCount"`
}

type indexEpisode struct {
	ID            int64  `json:"id"`
	FeedID        int64  `json:"feedId"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	FeedImage     string `json:"feedImage"`
	DatePublished int64  `json:"datePublished"`
	EnclosureURL  string `json:"enclosureUrl"`
	Duration      int    `json:"duration"`
}

func (rec indexFeed) toModel() *models.PodcastShow {
	image := rec.Image
	if image == "" {
		image = rec.Artwork
	}
	return &models.PodcastShow{
		ID:           rec.ID,
		Title:        rec.Title,
		Description:  rec.Description,
		Image:        image,
		Language:     rec.Language,
		Author:       rec.Author,
		FeedURL:      rec.URL,
		EpisodeCount: rec.EpisodeCount,
	}
}

func (rec indexEpisode) toModel() *models.PodcastEpisode {
	image := rec.Image
	if image == "" {
		image = rec.FeedImage
	}
	return &models.PodcastEpisode{
		ID:            rec.ID,
		ShowID:        rec.FeedID,
		Title:         rec.Title,
		Description:   rec.Description,
		Image:         image,
		DatePublished: rec.DatePublished,
		AudioURL:      rec.EnclosureURL,
		Duration:      rec.Duration,
	}
}

// Mirror helpers keep the local catalog warm for buzz hydration.
// Parse failures are swallowed: the passthrough payload is still served
// and the mirror just stays cold for those rows.

func (f *PodcastFlowImpl) mirrorFeeds(ctx context.Context, body json.RawMessage) {
	var env struct {
		Feeds []indexFeed `json:"feeds"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Feeds) == 0 {
		return
	}
	shows := make([]*models.PodcastShow, 0, len(env.Feeds))
	for _, rec := range env.Feeds {
		shows = append(shows, rec.toModel())
	}
	_ = f.catalog.UpsertShows(ctx, shows)
}

func (f *PodcastFlowImpl) mirrorFeed(ctx context.Context, body json.RawMessage) {
	var env struct {
		Feed indexFeed `json:"feed"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Feed.ID == 0 {
		return
	}
	_ = f.catalog.UpsertShows(ctx, []*models.PodcastShow{env.Feed.toModel()})
}

func (f *PodcastFlowImpl) mirrorEpisodes(ctx context.Context, body json.RawMessage) {
	var env struct {
		Items []indexEpisode `json:"items"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Items) == 0 {
		return
	}
	episodes := make([]*models.PodcastEpisode, 0, len(env.Items))
	for _, rec := range env.Items {
		episodes = append(episodes, rec.toModel())
	}
	_ = f.catalog.UpsertEpisodes(ctx, episodes)
}

func (f *PodcastFlowImpl) mirrorEpisode(ctx context.Context, body json.RawMessage) {
	var env struct {
		Episode indexEpisode `json:"episode"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Episode.ID == 0 {
		return
	}
	_ = f.catalog.UpsertEpisodes(ctx, []*models.PodcastEpisode{env.Episode.toModel()})
}
