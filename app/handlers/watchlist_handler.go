package handlers

import (
	"context"
	"log"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type WatchlistHandlerInterface interface {
	List(c fiber.Ctx) error
	Add(c fiber.Ctx) error
	Remove(c fiber.Ctx) error
}

type WatchlistHandler struct {
	flow      businessflow.WatchlistFlow
	validator *validator.Validate
}

func NewWatchlistHandler(flow businessflow.WatchlistFlow) WatchlistHandlerInterface {
	return &WatchlistHandler{flow: flow, validator: validator.New()}
}

func (h *WatchlistHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *WatchlistHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// List returns a guest's watchlist, newest first
func (h *WatchlistHandler) List(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/watchlist")
	guestID := c.Query("guest_id")

	rows, err := h.flow.List(ctx, guestID)
	if err != nil {
		if businessflow.IsGuestIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_GUEST_ID", nil)
		}
		log.Println("List watchlist failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list watchlist", "LIST_WATCHLIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Watchlist retrieved", rows)
}

// Add saves a title to a guest's watchlist; re-adding refreshes metadata
func (h *WatchlistHandler) Add(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/watchlist/add")

	var req dto.AddWatchlistRequest
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

	err := h.flow.Add(ctx, businessflow.AddWatchlistInput{
		GuestID:    req.GuestID,
		ContentID:  req.ContentID,
		MediaType:  req.MediaType,
		Title:      req.Title,
		PosterPath: req.PosterPath,
	})
	if err != nil {
		switch {
		case businessflow.IsGuestIDRequired(err), businessflow.IsInvalidMediaType(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_WATCHLIST_ITEM", nil)
		}
		log.Println("Add watchlist item failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save watchlist item", "ADD_WATCHLIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Watchlist item saved", nil)
}

// Remove deletes a title from a guest's watchlist
func (h *WatchlistHandler) Remove(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/watchlist/remove")

	var req dto.RemoveWatchlistRequest
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

	if err := h.flow.Remove(ctx, req.GuestID, req.ContentID, req.MediaType); err != nil {
		switch {
		case businessflow.IsGuestIDRequired(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_GUEST_ID", nil)
		case businessflow.IsWatchlistItemNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "WATCHLIST_ITEM_NOT_FOUND", nil)
		}
		log.Println("Remove watchlist item failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove watchlist item", "REMOVE_WATCHLIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Watchlist item removed", nil)
}

func (h *WatchlistHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
