package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	businessflow "github.com/buzzreel/buzzreel-api/business_flow"
	"github.com/buzzreel/buzzreel-api/utils"
	"github.com/gofiber/fiber/v3"
)

type DiscoveryHandlerInterface interface {
	Trending(c fiber.Ctx) error
	Upcoming(c fiber.Ctx) error
	Search(c fiber.Ctx) error
}

type DiscoveryHandler struct {
	flow businessflow.TrendingFlow
}

func NewDiscoveryHandler(flow businessflow.TrendingFlow) DiscoveryHandlerInterface {
	return &DiscoveryHandler{flow: flow}
}

func (h *DiscoveryHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *DiscoveryHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Trending returns the cached trending list for a region
func (h *DiscoveryHandler) Trending(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/trending")
	region := queryRegion(c)
	mediaType := c.Query("media_type", "all")
	window := c.Query("window", "day")

	res, err := h.flow.Trending(ctx, region, mediaType, window)
	if err != nil {
		if businessflow.IsInvalidMediaType(err) || businessflow.IsInvalidTimeWindow(err) || businessflow.IsInvalidRegion(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Trending lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch trending titles", "TRENDING_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Trending titles retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// Upcoming returns the cached upcoming movie list for a region
func (h *DiscoveryHandler) Upcoming(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/upcoming")
	region := queryRegion(c)
	page, _ := strconv.Atoi(c.Query("page", "1"))

	res, err := h.flow.Upcoming(ctx, region, page)
	if err != nil {
		if businessflow.IsInvalidRegion(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Upcoming lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch upcoming titles", "UPCOMING_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Upcoming titles retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

// Search runs an uncached multi search against the catalog
func (h *DiscoveryHandler) Search(c fiber.Ctx) error {
	ctx := h.createRequestContext(c, "/api/v1/search")
	region := queryRegion(c)
	query := c.Query("q")
	page, _ := strconv.Atoi(c.Query("page", "1"))

	res, err := h.flow.Search(ctx, region, query, page)
	if err != nil {
		if businessflow.IsQueryRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_QUERY", nil)
		}
		log.Println("Search failed", err)
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to search titles", "SEARCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Search results retrieved", dto.CachedPayloadResponse{Cached: res.Cached, Payload: res.Payload})
}

func (h *DiscoveryHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// queryRegion reads the region query param, defaulting to US
func queryRegion(c fiber.Ctx) string {
	return c.Query("region", "US")
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
