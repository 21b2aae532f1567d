// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/buzzreel/buzzreel-api/app/dto"
	"github.com/buzzreel/buzzreel-api/app/handlers"
	"github.com/buzzreel/buzzreel-api/app/middleware"
	"github.com/buzzreel/buzzreel-api/config"
	"github.com/buzzreel/buzzreel-api/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.ProductionConfig
	discoveryHandler handlers.DiscoveryHandlerInterface
	titleHandler     handlers.TitleHandlerInterface
	podcastHandler   handlers.PodcastHandlerInterface
	watchlistHandler handlers.WatchlistHandlerInterface
	adminHandler     handlers.AdminHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	discoveryHandler handlers.DiscoveryHandlerInterface,
	titleHandler handlers.TitleHandlerInterface,
	podcastHandler handlers.PodcastHandlerInterface,
	watchlistHandler handlers.WatchlistHandlerInterface,
	adminHandler handlers.AdminHandlerInterface,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Buzzreel API",
		ServerHeader: "Buzzreel",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		discoveryHandler: discoveryHandler,
		titleHandler:     titleHandler,
		podcastHandler:   podcastHandler,
		watchlistHandler: watchlistHandler,
		adminHandler:     adminHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.adminHandler.Health)

	// Apply general rate limiting to all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Discovery endpoints
	api.Get("/trending", r.discoveryHandler.Trending)
	api.Get("/upcoming", r.discoveryHandler.Upcoming)
	api.Get("/search", r.discoveryHandler.Search)

	// Title endpoints
	api.Get("/title/:mediaType/:id", r.titleHandler.Details)
	api.Get("/title/:mediaType/:id/providers", r.titleHandler.Providers)
	api.Get("/title/:mediaType/:id/buzz", r.titleHandler.ViewCount)
	api.Get("/buzz/top", r.titleHandler.TopViewed)

	// Podcast read endpoints
	podcasts := api.Group("/podcasts")
	podcasts.Get("/buzz", r.podcastHandler.Buzz)
	podcasts.Get("/new", r.podcastHandler.New)
	podcasts.Get("/top", r.podcastHandler.Top)
	podcasts.Get("/search", r.podcastHandler.Search)
	podcasts.Get("/show/:id", r.podcastHandler.Show)
	podcasts.Get("/show/:id/episodes", r.podcastHandler.Episodes)
	podcasts.Get("/episode/:id", r.podcastHandler.Episode)
	podcasts.Get("/follows", r.podcastHandler.Follows)

	// Watchlist read endpoint
	api.Get("/watchlist", r.watchlistHandler.List)

	// Write endpoints with stricter rate limiting
	writes := api.Group("")
	writes.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.WriteRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: rateLimitReached,
	}))
	writes.Post("/title/:mediaType/:id/view", r.titleHandler.RecordView)
	writes.Post("/podcasts/events", r.podcastHandler.RecordEvent)
	writes.Post("/podcasts/follow", r.podcastHandler.Follow)
	writes.Post("/podcasts/unfollow", r.podcastHandler.Unfollow)
	writes.Post("/watchlist/add", r.watchlistHandler.Add)
	writes.Post("/watchlist/remove", r.watchlistHandler.Remove)
	writes.Post("/admin/refresh", r.adminHandler.Refresh)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Security.AllowedOrigins,
		AllowMethods: r.cfg.Security.AllowedMethods,
		AllowHeaders: r.cfg.Security.AllowedHeaders,
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
		},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for certain content types
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "video/") ||
				contains(contentType, "audio/")
		},
	}))

	// Prometheus request metrics
	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}

	// Advanced logging middleware
	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				// Skip logging for health checks in production
				return c.Path() == "/api/v1/health"
			},
		}))
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}
