package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type PodcastHandlerInterface interface {
	Buzz(c fiber.Ctx) error
	New(c fiber.Ctx) error
	Top(c fiber.Ctx) error
	Show(c fiber.Ctx) error
	Episode(c fiber.Ctx) error
	Episodes(c fiber.Ctx) error
	Search(c fiber.Ctx) error
	RecordEvent(c fiber.Ctx) error
	Follow(c fiber.Ctx) error
	Unfollow(c fiber.Ctx) error
	Follows(c fiber.Ctx) error
}

type PodcastHandler struct {
	flow      businessflow.PodcastFlow
	events    businessflow.EventFlow
	validator *validator.Validate
}

func NewPodcastHandler(flow businessflow.PodcastFlow, events businessflow.EventFlow) PodcastHandlerInterface {
	return &PodcastHandler{
		flow:      flow,
		events:    events,
		validator: validator.New(),
	}
}

func (h *PodcastHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *PodcastHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Buzz returns the scorer-ranked shows and episodes for a region,
// falling back to upstream trending when the region has no events
func (h *PodcastHandler) Buzz(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/buzz")
	region := queryRegion(c)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	res, err := h.flow.Buzz(ctx, region, limit)
	if err != nil {
		if businessflow.IsInvalidRegion(err) || businessflow.IsInvalidLimit(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Podcast buzz failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to rank podcast buzz", "PODCAST_BUZZ_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Podcast buzz retrieved", res)
}

// New returns recently published episodes, cached
func (h *PodcastHandler) New(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/new")
	res, err := h.flow.New(ctx, queryRegion(c))
	if err != nil {
		log.Println("Podcast new failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch new episodes", "PODCAST_NEW_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "New episodes retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// Top returns upstream trending shows, cached
func (h *PodcastHandler) Top(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/top")
	res, err := h.flow.Top(ctx, queryRegion(c))
	if err != nil {
		log.Println("Podcast top failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch top shows", "PODCAST_TOP_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Top shows retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

func (h *PodcastHandler) Show(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/show")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Show id must be a positive integer", "INVALID_SHOW_ID", nil)
	}
	res, err := h.flow.Show(ctx, id)
	if err != nil {
		if businessflow.IsShowNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "SHOW_NOT_FOUND", nil)
		}
		log.Println("Podcast show failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch show", "PODCAST_SHOW_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Show retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

func (h *PodcastHandler) Episode(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/episode")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Episode id must be a positive integer", "INVALID_EPISODE_ID", nil)
	}
	res, err := h.flow.Episode(ctx, id)
	if err != nil {
		if businessflow.IsEpisodeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "EPISODE_NOT_FOUND", nil)
		}
		log.Println("Podcast episode failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch episode", "PODCAST_EPISODE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Episode retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

func (h *PodcastHandler) Episodes(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/show/episodes")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Show id must be a positive integer", "INVALID_SHOW_ID", nil)
	}
	res, err := h.flow.Episodes(ctx, id)
	if err != nil {
		if businessflow.IsShowNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "SHOW_NOT_FOUND", nil)
		}
		log.Println("Podcast episodes failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch episodes", "PODCAST_EPISODES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Episodes retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// Search runs an uncached term search against the index
func (h *PodcastHandler) Search(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/search")
	res, err := h.flow.Search(ctx, c.Query("q"))
	if err != nil {
		if businessflow.IsQueryRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Podcast search failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to search shows", "PODCAST_SEARCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Search results retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// RecordEvent appends one interaction event to the log
func (h *PodcastHandler) RecordEvent(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/events")

	var req dto.RecordEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		var details []string
		for _, err := range err.(validator.ValidationErrors) {
			details = append(details, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", details)
	}

	err := h.events.Record(ctx, businessflow.RecordEventInput{
		GuestID:   req.GuestID,
		Region:    req.Region,
		EventType: req.EventType,
		ShowID:    req.ShowID,
		EpisodeID: req.EpisodeID,
	})
	if err != nil {
		switch {
		case businessflow.IsInvalidEventType(err), businessflow.IsInvalidRegion(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_EVENT", nil)
		}
		log.Println("Record event failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record event", "RECORD_EVENT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusAccepted, "Event recorded", nil)
}

// Follow records a show follow for a guest
func (h *PodcastHandler) Follow(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/follow")

	var req dto.FollowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		var details []string
		for _, err := range err.(validator.ValidationErrors) {
			details = append(details, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", details)
	}

	if err := h.flow.Follow(ctx, req.GuestID, req.Region, req.ShowID); err != nil {
		if businessflow.IsGuestIDRequired(err) || businessflow.IsShowNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_FOLLOW", nil)
		}
		log.Println("Follow failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save follow", "FOLLOW_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Show followed", nil)
}

// Unfollow removes a show follow for a guest
func (h *PodcastHandler) Unfollow(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/unfollow")

	var req dto.FollowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request format", "INVALID_REQUEST_FORMAT", nil)
	}
	if err := h.validator.Struct(&req); err != nil {
		var details []string
		for _, err := range err.(validator.ValidationErrors) {
			details = append(details, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", details)
	}

	if err := h.flow.Unfollow(ctx, req.GuestID, req.ShowID); err != nil {
		switch {
		case businessflow.IsGuestIDRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_FOLLOW", nil)
		case businessflow.IsFollowNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "FOLLOW_NOT_FOUND", nil)
		}
		log.Println("Unfollow failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove follow", "UNFOLLOW_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Show unfollowed", nil)
}

// Follows lists a guest's followed shows
func (h *PodcastHandler) Follows(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/podcasts/follows")
	guestID := c.Query("guest_id")

	rows, err := h.flow.Follows(ctx, guestID)
	if err != nil {
		if businessflow.IsGuestIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_GUEST_ID", nil)
		}
		log.Println("List follows failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list follows", "LIST_FOLLOWS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Follows retrieved", rows)
}

func (h *PodcastHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
