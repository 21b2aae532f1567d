package businessflow

import (
	"context"
	"strings"

	"github.com/buzzreel/buzzreel-api/models"
	"github.com/buzzreel/buzzreel-api/repository"
)

// WatchlistFlow manages per-guest saved titles.
// Public flow, guests are identified by an opaque client-generated id
type WatchlistFlow interface {
	List(ctx context.Context, guestID string) ([]*models.WatchlistItem, error)
	Add(ctx context.Context, input AddWatchlistInput) error
	Remove(ctx context.Context, guestID string, contentID int64, mediaType string) error
}

// AddWatchlistInput carries one watchlist entry from the API boundary
type AddWatchlistInput struct {
	GuestID    string
	ContentID  int64
	MediaType  string
	Title      string
	PosterPath *string
}

type WatchlistFlowImpl struct {
	repo repository.WatchlistRepository
}

func NewWatchlistFlow(repo repository.WatchlistRepository) WatchlistFlow {
	return &WatchlistFlowImpl{repo: repo}
}

func (f *WatchlistFlowImpl) List(ctx context.Context, guestID string) ([]*models.WatchlistItem, error) {
	if guestID == "" {
		return nil, ErrGuestIDRequired
	}
	rows, err := f.repo.ByGuest(ctx, guestID)
	if err != nil {
		return nil, NewBusinessError("WATCHLIST_LIST_FAILED", "Failed to list watchlist", err)
	}
	return rows, nil
}

func (f *WatchlistFlowImpl) Add(ctx context.Context, input AddWatchlistInput) error {
	if input.GuestID == "" {
		return ErrGuestIDRequired
	}
	mediaType := strings.ToLower(strings.TrimSpace(input.MediaType))
	if mediaType != models.MediaTypeMovie && mediaType != models.MediaTypeTV {
		return ErrInvalidMediaType
	}
	item := &models.WatchlistItem{
		GuestID:    input.GuestID,
		ContentID:  input.ContentID,
		MediaType:  mediaType,
		Title:      input.Title,
		PosterPath: input.PosterPath,
	}
	if err := f.repo.Add(ctx, item); err != nil {
		return NewBusinessError("WATCHLIST_SAVE_FAILED", "Failed to save watchlist item", err)
	}
	return nil
}

func (f *WatchlistFlowImpl) Remove(ctx context.Context, guestID string, contentID int64, mediaType string) error {
	if guestID == "" {
		return ErrGuestIDRequired
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	removed, err := f.repo.Remove(ctx, guestID, contentID, mediaType)
	if err != nil {
		return NewBusinessError("WATCHLIST_REMOVE_FAILED", "Failed to remove watchlist item", err)
	}
	if !removed {
		return ErrWatchlistItemNotFound
	}
	return nil
}
