package handlers

import (
	"context"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// MaintenanceKicker triggers one out-of-band maintenance run.
// Kick reports false when a run is already queued.
type MaintenanceKicker interface {
	Kick() bool
}

type AdminHandlerInterface interface {
	Refresh(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

type AdminHandler struct {
	kicker MaintenanceKicker
	db     *gorm.DB
	redis  redis.UniversalClient
}

func NewAdminHandler(kicker MaintenanceKicker, db *gorm.DB, redisClient redis.UniversalClient) AdminHandlerInterface {
	return &AdminHandler{kicker: kicker, db: db, redis: redisClient}
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error:   dto.ErrorDetail{Code: errorCode, Details: details},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Refresh queues one maintenance run (buzz recompute + retention sweep)
func (h *AdminHandler) Refresh(c fiber.Ctx) error {
	if h.kicker == nil {
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Maintenance job is not running", "MAINTENANCE_DISABLED", nil)
	}
	queued := h.kicker.Kick()
	return h.SuccessResponse(c, fiber.StatusAccepted, "Maintenance run queued", dto.AdminRefreshResponse{Queued: queued})
}

// Health reports component status; degraded components turn the overall
// status to degraded but the endpoint still answers 200
func (h *AdminHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	components := map[string]string{}
	status := "ok"

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		components["database"] = "down"
		status = "degraded"
	} else {
		components["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			components["redis"] = "down"
			status = "degraded"
		} else {
			components["redis"] = "ok"
		}
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Health status", dto.HealthResponse{Status: status, Components: components})
}
