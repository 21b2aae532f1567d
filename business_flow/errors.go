// Package businessflow contains the core business logic and use cases for discovery, buzz scoring and caching workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Catalog errors
	ErrInvalidMediaType  = errors.New("media type must be movie, tv or all")
	ErrInvalidTimeWindow = errors.New("time window must be day or week")
	ErrTitleNotFound     = errors.New("title not found")
	ErrQueryRequired     = errors.New("search query is required")
	ErrUpstreamFailure   = errors.New("upstream provider request failed")

	// Podcast errors
	ErrShowNotFound    = errors.New("show not found")
	ErrEpisodeNotFound = errors.New("episode not found")

	// Event errors
	ErrInvalidEventType = errors.New("event type must be view, save or follow")
	ErrGuestIDRequired  = errors.New("guest id is required")

	// Watchlist errors
	ErrWatchlistItemNotFound = errors.New("watchlist item not found")
	ErrFollowNotFound        = errors.New("follow not found")

	// Filter errors
	ErrInvalidLimit  = errors.New("limit must be between 1 and 100")
	ErrInvalidRegion = errors.New("region is required")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidMediaType(err error) bool {
	return errors.Is(err, ErrInvalidMediaType)
}

func IsInvalidTimeWindow(err error) bool {
	return errors.Is(err, ErrInvalidTimeWindow)
}

func IsTitleNotFound(err error) bool {
	return errors.Is(err, ErrTitleNotFound)
}

func IsQueryRequired(err error) bool {
	return errors.Is(err, ErrQueryRequired)
}

func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamFailure)
}

func IsShowNotFound(err error) bool {
	return errors.Is(err, ErrShowNotFound)
}

func IsEpisodeNotFound(err error) bool {
	return errors.Is(err, ErrEpisodeNotFound)
}

func IsInvalidEventType(err error) bool {
	return errors.Is(err, ErrInvalidEventType)
}

func IsGuestIDRequired(err error) bool {
	return errors.Is(err, ErrGuestIDRequired)
}

func IsWatchlistItemNotFound(err error) bool {
	return errors.Is(err, ErrWatchlistItemNotFound)
}

func IsFollowNotFound(err error) bool {
	return errors.Is(err, ErrFollowNotFound)
}

func IsInvalidLimit(err error) bool {
	return errors.Is(err, ErrInvalidLimit)
}

func IsInvalidRegion(err error) bool {
	return errors.Is(err, ErrInvalidRegion)
}
