package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/gofiber/fiber/v3"
)

type TitleHandlerInterface interface {
	Details(c fiber.Ctx) error
	Providers(c fiber.Ctx) error
	RecordView(c fiber.Ctx) error
	ViewCount(c fiber.Ctx) error
	TopViewed(c fiber.Ctx) error
}

type TitleHandler struct {
	flow businessflow.TitleFlow
}

func NewTitleHandler(flow businessflow.TitleFlow) TitleHandlerInterface {
	return &TitleHandler{flow: flow}
}

func (h *TitleHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *TitleHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func titleParams(c fiber.Ctx) (string, int64, error) {
	mediaType := c.Params("mediaType")
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return "", 0, businessflow.ErrTitleNotFound
	}
	return mediaType, id, nil
}

// Details returns the cached detail record for a title
func (h *TitleHandler) Details(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/title")
	mediaType, id, err := titleParams(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Title id must be a positive integer", "INVALID_TITLE_ID", nil)
	}

	res, err := h.flow.Details(ctx, mediaType, id)
	if err != nil {
		switch {
		case businessflow.IsInvalidMediaType(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_MEDIA_TYPE", nil)
		case businessflow.IsTitleNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "TITLE_NOT_FOUND", nil)
		}
		log.Println("Title details failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch title details", "TITLE_DETAILS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Title details retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// Providers returns the cached streaming availability for a title
func (h *TitleHandler) Providers(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/title/providers")
	mediaType, id, err := titleParams(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Title id must be a positive integer", "INVALID_TITLE_ID", nil)
	}

	res, err := h.flow.Providers(ctx, mediaType, id)
	if err != nil {
		switch {
		case businessflow.IsInvalidMediaType(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_MEDIA_TYPE", nil)
		case businessflow.IsTitleNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, err.Error(), "TITLE_NOT_FOUND", nil)
		}
		log.Println("Watch providers failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch watch providers", "PROVIDERS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Watch providers retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// RecordView bumps the view counter for a title and returns the new count
func (h *TitleHandler) RecordView(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/title/view")
	mediaType, id, err := titleParams(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Title id must be a positive integer", "INVALID_TITLE_ID", nil)
	}
	region := queryRegion(c)

	count, err := h.flow.RecordView(ctx, region, mediaType, id)
	if err != nil {
		switch {
		case businessflow.IsInvalidMediaType(err), businessflow.IsInvalidRegion(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Record view failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record view", "RECORD_VIEW_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "View recorded", dto.RecordViewResponse{
		Region:    region,
		MediaType: mediaType,
		ContentID: id,
		ViewCount: count,
	})
}

// ViewCount returns the current view count for a title
func (h *TitleHandler) ViewCount(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/title/buzz")
	mediaType, id, err := titleParams(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Title id must be a positive integer", "INVALID_TITLE_ID", nil)
	}
	region := queryRegion(c)

	count, err := h.flow.ViewCount(ctx, region, mediaType, id)
	if err != nil {
		switch {
		case businessflow.IsInvalidMediaType(err), businessflow.IsInvalidRegion(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("View count failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read view count", "VIEW_COUNT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "View count retrieved", dto.RecordViewResponse{
		Region:    region,
		MediaType: mediaType,
		ContentID: id,
		ViewCount: count,
	})
}

// TopViewed ranks titles by view count for a region
func (h *TitleHandler) TopViewed(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/buzz/top")
	region := queryRegion(c)
	limit, _ := strconv.Atoi(c.Query("limit", "0"))

	rows, err := h.flow.TopViewed(ctx, region, limit)
	if err != nil {
		switch {
		case businessflow.IsInvalidRegion(err), businessflow.IsInvalidLimit(err):
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Top viewed failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to rank viewed titles", "TOP_VIEWED_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Top viewed titles retrieved", rows)
}

func (h *TitleHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
