package businessflow

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBuzzFlow struct {
	shows    []*models.BuzzScore
	episodes []*models.BuzzScore
	computed int
}

func (f *fakeBuzzFlow) ComputeBuzz(ctx context.Context, region string) (int, error) {
	f.computed++
	return len(f.shows) + len(f.episodes), nil
}

func (f *fakeBuzzFlow) TopBuzz(ctx context.Context, region, entityType string, limit int) ([]*models.BuzzScore, error) {
	if entityType == models.EntityTypeShow {
		return f.shows, nil
	}
	return f.episodes, nil
}

type fakeCatalogRepo struct {
	shows    map[int64]*models.PodcastShow
	episodes map[int64]*models.PodcastEpisode
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		shows:    make(map[int64]*models.PodcastShow),
		episodes: make(map[int64]*models.PodcastEpisode),
	}
}

func (f *fakeCatalogRepo) UpsertShows(ctx context.Context, shows []*models.PodcastShow) error {
	for _, s := range shows {
		f.shows[s.ID] = s
	}
	return nil
}

func (f *fakeCatalogRepo) UpsertEpisodes(ctx context.Context, episodes []*models.PodcastEpisode) error {
	for _, e := range episodes {
		f.episodes[e.ID] = e
	}
	return nil
}

func (f *fakeCatalogRepo) ShowsByIDs(ctx context.Context, ids []int64) ([]*models.PodcastShow, error) {
	var out []*models.PodcastShow
	for _, id := range ids {
		if s, ok := f.shows[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) EpisodesByIDs(ctx context.Context, ids []int64) ([]*models.PodcastEpisode, error) {
	var out []*models.PodcastEpisode
	for _, id := range ids {
		if e, ok := f.episodes[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeFollowRepo struct {
	rows map[string][]*models.PodcastFollow
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{rows: make(map[string][]*models.PodcastFollow)}
}

func (f *fakeFollowRepo) ByGuest(ctx context.Context, guestID string) ([]*models.PodcastFollow, error) {
	return f.rows[guestID], nil
}

func (f *fakeFollowRepo) Add(ctx context.Context, follow *models.PodcastFollow) error {
	for _, row := range f.rows[follow.GuestID] {
		if row.ShowID == follow.ShowID {
			return nil
		}
	}
	f.rows[follow.GuestID] = append(f.rows[follow.GuestID], follow)
	return nil
}

func (f *fakeFollowRepo) Remove(ctx context.Context, guestID string, showID int64) (bool, error) {
	rows := f.rows[guestID]
	for i, row := range rows {
		if row.ShowID == showID {
			f.rows[guestID] = append(rows[:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func buzzRow(entityType string, entityID int64, score int) *models.BuzzScore {
	return &models.BuzzScore{Region: "US", EntityType: entityType, EntityID: entityID, Score: score}
}

func TestPodcastBuzz(t *testing.T) {
	t.Run("RequiresRegion", func(t *testing.T) {
		flow := NewPodcastFlow(nil, nil, &fakeBuzzFlow{}, newFakeCatalogRepo(), newFakeFollowRepo())
		_, err := flow.Buzz(context.Background(), "", 10)
		assert.True(t, IsInvalidRegion(err))
	})

	t.Run("MergesShowFirstOnTies", func(t *testing.T) {
		buzz := &fakeBuzzFlow{
			shows: []*models.BuzzScore{
				buzzRow(models.EntityTypeShow, 10, 8),
				buzzRow(models.EntityTypeShow, 11, 3),
			},
			episodes: []*models.BuzzScore{
				buzzRow(models.EntityTypeEpisode, 20, 8),
				buzzRow(models.EntityTypeEpisode, 21, 5),
			},
		}
		flow := NewPodcastFlow(nil, nil, buzz, newFakeCatalogRepo(), newFakeFollowRepo())

		result, err := flow.Buzz(context.Background(), "US", 10)
		require.NoError(t, err)
		assert.False(t, result.Fallback)
		assert.Equal(t, 1, buzz.computed)

		require.Len(t, result.Items, 4)
		assert.Equal(t, int64(10), result.Items[0].EntityID)
		assert.Equal(t, models.EntityTypeShow, result.Items[0].EntityType)
		assert.Equal(t, int64(20), result.Items[1].EntityID)
		assert.Equal(t, int64(21), result.Items[2].EntityID)
		assert.Equal(t, int64(11), result.Items[3].EntityID)
	})

	t.Run("HydratesFromCatalogMirror", func(t *testing.T) {
		buzz := &fakeBuzzFlow{
			shows: []*models.BuzzScore{
				buzzRow(models.EntityTypeShow, 920666, 12),
				buzzRow(models.EntityTypeShow, 555, 4),
			},
		}
		catalog := newFakeCatalogRepo()
		catalog.shows[920666] = &models.PodcastShow{ID: 920666, Title: "Go Time"}
		flow := NewPodcastFlow(nil, nil, buzz, catalog, newFakeFollowRepo())

		result, err := flow.Buzz(context.Background(), "US", 10)
		require.NoError(t, err)
		require.Len(t, result.Items, 2)
		require.NotNil(t, result.Items[0].Show)
		assert.Equal(t, "Go Time", result.Items[0].Show.Title)
		// Entity missing from the mirror still ranks, metadata-free
		assert.Nil(t, result.Items[1].Show)
		assert.Equal(t, 4, result.Items[1].Score)
	})

	t.Run("TruncatesToLimit", func(t *testing.T) {
		buzz := &fakeBuzzFlow{
			shows: []*models.BuzzScore{
				buzzRow(models.EntityTypeShow, 1, 9),
				buzzRow(models.EntityTypeShow, 2, 7),
				buzzRow(models.EntityTypeShow, 3, 5),
			},
		}
		flow := NewPodcastFlow(nil, nil, buzz, newFakeCatalogRepo(), newFakeFollowRepo())

		result, err := flow.Buzz(context.Background(), "US", 2)
		require.NoError(t, err)
		assert.Len(t, result.Items, 2)
	})

	t.Run("FallsBackToCachedTrending", func(t *testing.T) {
		trending := json.RawMessage(`{"status":"true","feeds":[{"id":1}]}`)
		repo := newFakePayloadRepo()
		repo.rows[PodcastTrendingKey("US")] = &models.CachedPayload{
			CacheKey:    PodcastTrendingKey("US"),
			Category:    models.CacheCategoryPodcasts,
			Payload:     trending,
			RefreshedAt: time.Now().UTC(),
		}
		cache := NewResponseCache(repo, testFreshness())
		flow := NewPodcastFlow(cache, nil, &fakeBuzzFlow{}, newFakeCatalogRepo(), newFakeFollowRepo())

		result, err := flow.Buzz(context.Background(), "US", 10)
		require.NoError(t, err)
		assert.True(t, result.Fallback)
		assert.Empty(t, result.Items)
		assert.JSONEq(t, string(trending), string(result.Payload))
	})
}

func TestPodcastFollowLifecycle(t *testing.T) {
	follows := newFakeFollowRepo()
	flow := NewPodcastFlow(nil, nil, &fakeBuzzFlow{}, newFakeCatalogRepo(), follows)
	ctx := context.Background()

	t.Run("FollowRequiresGuest", func(t *testing.T) {
		err := flow.Follow(ctx, "", "US", 920666)
		assert.True(t, IsGuestIDRequired(err))
	})

	t.Run("FollowRequiresShow", func(t *testing.T) {
		err := flow.Follow(ctx, "guest-1", "US", 0)
		assert.True(t, IsShowNotFound(err))
	})

	t.Run("FollowUppercasesRegion", func(t *testing.T) {
		require.NoError(t, flow.Follow(ctx, "guest-1", "us", 920666))
		rows, err := flow.Follows(ctx, "guest-1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "US", rows[0].Region)
	})

	t.Run("UnfollowMissingIsNotFound", func(t *testing.T) {
		require.NoError(t, flow.Unfollow(ctx, "guest-1", 920666))
		err := flow.Unfollow(ctx, "guest-1", 920666)
		assert.True(t, IsFollowNotFound(err))
	})
}

func TestMirrorParsing(t *testing.T) {
	catalog := newFakeCatalogRepo()
	flow := &PodcastFlowImpl{catalog: catalog}
	ctx := context.Background()

	t.Run("FeedsEnvelope", func(t *testing.T) {
		flow.mirrorFeeds(ctx, json.RawMessage(`{"feeds":[{"id":920666,"title":"Go Time","artwork":"https://cdn/art.jpg","url":"https://feed.xml","episodeCount":300}]}`))
		show := catalog.shows[920666]
		require.NotNil(t, show)
		assert.Equal(t, "Go Time", show.Title)
		// image falls back to artwork when absent
		assert.Equal(t, "https://cdn/art.jpg", show.Image)
		assert.Equal(t, 300, show.EpisodeCount)
	})

	t.Run("EpisodeEnvelope", func(t *testing.T) {
		flow.mirrorEpisode(ctx, json.RawMessage(`{"episode":{"id":16795088,"feedId":920666,"title":"Observability","feedImage":"https://cdn/feed.jpg","datePublished":1756300000,"enclosureUrl":"https://cdn/audio.mp3","duration":1800}}`))
		episode := catalog.episodes[16795088]
		require.NotNil(t, episode)
		assert.Equal(t, int64(920666), episode.ShowID)
		assert.Equal(t, "https://cdn/feed.jpg", episode.Image)
		assert.Equal(t, "https://cdn/audio.mp3", episode.AudioURL)
	})

	t.Run("MalformedBodyIsIgnored", func(t *testing.T) {
		before := len(catalog.shows)
		flow.mirrorFeeds(ctx, json.RawMessage(`not json`))
		flow.mirrorFeed(ctx, json.RawMessage(`{"feed":{"id":0}}`))
		assert.Len(t, catalog.shows, before)
	})
}

func TestPodcastSearchValidation(t *testing.T) {
	flow := NewPodcastFlow(nil, nil, &fakeBuzzFlow{}, newFakeCatalogRepo(), newFakeFollowRepo())
	_, err := flow.Search(context.Background(), "  ")
	assert.True(t, IsQueryRequired(err))
}
