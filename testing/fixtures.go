package testing

import (
	"time"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/utils"
	"github.com/google/uuid"
)

// NewGuestID returns a fresh opaque guest identifier
func NewGuestID() string {
	return uuid.NewString()
}

// NewTestEvent builds an interaction event with sensible defaults.
// Mutate the returned value for scenario-specific fields.
func NewTestEvent(region, eventType string, showID, episodeID *int64, age time.Duration) *models.InteractionEvent {
	guestID := NewGuestID()
	return &models.InteractionEvent{
		GuestID:   &guestID,
		Region:    region,
		EventType: eventType,
		ShowID:    showID,
		EpisodeID: episodeID,
		CreatedAt: utils.UTCNow().Add(-age),
	}
}

// NewTestShow builds a podcast show mirror row
func NewTestShow(id int64, title string) *models.PodcastShow {
	return &models.PodcastShow{
		ID:           id,
		Title:        title,
		Description:  "A show used in tests",
		Image:        "https://example.com/show.jpg",
		Language:     "en",
		Author:       "Test Author",
		FeedURL:      "https://example.com/feed.xml",
		EpisodeCount: 10,
		UpdatedAt:    utils.UTCNow(),
	}
}

// NewTestEpisode builds a podcast episode mirror row
func NewTestEpisode(id, showID int64, title string) *models.PodcastEpisode {
	return &models.PodcastEpisode{
		ID:            id,
		ShowID:        showID,
		Title:         title,
		Description:   "An episode used in tests",
		Image:         "https://example.com/episode.jpg",
		DatePublished: utils.UTCNow().Add(-24 * time.Hour).Unix(),
		AudioURL:      "https://example.com/audio.mp3",
		Duration:      1800,
		UpdatedAt:     utils.UTCNow(),
	}
}

// NewTestWatchlistItem builds a watchlist row for a guest
func NewTestWatchlistItem(guestID string, contentID int64, mediaType string) *models.WatchlistItem {
	poster := "/poster.jpg"
	return &models.WatchlistItem{
		GuestID:    guestID,
		ContentID:  contentID,
		MediaType:  mediaType,
		Title:      "Test Title",
		PosterPath: &poster,
		AddedAt:    utils.UTCNow(),
	}
}
