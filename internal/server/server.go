// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "giftshare/docs" // swagger docs
	"giftshare/internal/bootstrap"
	"giftshare/internal/config"
	"giftshare/internal/featureflags"
	"giftshare/internal/middleware"
	"giftshare/internal/models"
	"giftshare/internal/notifications"
	"giftshare/internal/repository"
	"giftshare/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	serviceName    = "giftshare-api"
	serviceVersion = "1.0.0"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	readDB         *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	wishlistRepo   repository.WishlistRepository
	giftRepo       repository.GiftRepository
	savedRepo      repository.SavedWishlistRepository
	wishlists      *service.WishlistService
	gifts          *service.GiftService
	saved          *service.SavedService
}

// NewServer connects to the database and Redis and creates a server.
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedDemo})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, rt.DB, rt.ReadDB, rt.Redis)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// readDB and redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, readDB *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database handle is required")
	}

	var repoOpts []repository.Option
	if readDB != nil {
		repoOpts = append(repoOpts, repository.WithReadDB(readDB))
	}

	s := &Server{
		config:         cfg,
		db:             db,
		readDB:         readDB,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		notifier:       notifications.NewNotifier(redisClient),
		wishlistRepo:   repository.NewWishlistRepository(db, repoOpts...),
		giftRepo:       repository.NewGiftRepository(db, repoOpts...),
		savedRepo:      repository.NewSavedWishlistRepository(db, repoOpts...),
	}

	s.wishlists = service.NewWishlistService(s.wishlistRepo, s.giftRepo, service.WishlistConfig{
		PublicBaseURL:  cfg.PublicBaseURL,
		PublicCacheTTL: time.Duration(cfg.PublicCacheTTLSeconds) * time.Second,
	})
	s.gifts = service.NewGiftService(s.wishlistRepo, s.giftRepo)
	s.saved = service.NewSavedService(s.savedRepo, s.wishlistRepo)

	return s, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "GiftShare API",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := models.CodeInternal
		switch fe.Code {
		case fiber.StatusNotFound:
			code = models.CodeNotFound
		case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest:
			code = models.CodeValidation
		}
		if fe.Code < fiber.StatusInternalServerError {
			return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message, Code: code})
		}
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected responses still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api.Get("/swagger/*", swagger.HandlerDefault)
	if s.config.Env != "production" {
		app.Get("/monitor", monitor.New(monitor.Config{Title: "GiftShare Monitor"}))
	}

	reserveLimit := s.config.ReserveRateLimit
	if reserveLimit <= 0 {
		reserveLimit = 10
	}
	limitPolicy := middleware.FailOpen
	if s.config.RateLimitFailClosed {
		limitPolicy = middleware.FailClosed
	}

	wishlists := api.Group("/wishlists")
	wishlists.Post("/", s.CreateWishlist)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	wishlists.Post("/:id/publish", s.PublishWishlist)
	wishlists.Post("/:id/gifts", s.AddGift)
	wishlists.Get("/:id/gifts", s.ListGifts)
	wishlists.Get("/:id", s.GetWishlist)
	wishlists.Put("/:id", s.UpdateWishlist)
	wishlists.Delete("/:id", s.DeleteWishlist)

	gifts := api.Group("/gifts")
	gifts.Get("/random", s.FeatureRequired(featureflags.RandomGift), s.RandomGift)
	gifts.Put("/:id", s.UpdateGift)
	gifts.Delete("/:id", s.DeleteGift)

	public := api.Group("/public")
	public.Get("/:token", s.GetPublicWishlist)
	public.Post("/:token/gifts/:giftId/reserve", middleware.RateLimitWithPolicy(
		s.redis, reserveLimit, time.Minute, limitPolicy, "reserve"), s.ReserveGift)

	savedFlag := s.FeatureRequired(featureflags.SavedWishlists)
	saved := api.Group("/saved")
	saved.Get("/:browserId", savedFlag, s.ListSaved)
	saved.Post("/", savedFlag, middleware.RateLimitWithPolicy(
		s.redis, reserveLimit, time.Minute, limitPolicy, "save"), s.SaveWishlist)
	saved.Delete("/:browserId/:wishlistId", savedFlag, s.RemoveSaved)
}

// FeatureRequired answers 404 when the named flag is off for this client.
// The rollout subject is the browser id when the route carries one, otherwise
// the client IP.
func (s *Server) FeatureRequired(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subject := c.Params("browserId")
		if subject == "" {
			subject = c.IP()
		}
		if !s.featureFlags.Enabled(flag, subject) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundMessage("Not found"))
		}
		return c.Next()
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: when
// it is not configured the service is still ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := pingDB(ctx, s.db)

	checks := fiber.Map{"database": dbStatus}
	if s.readDB != nil {
		checks["read_replica"] = pingDB(ctx, s.readDB)
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}
	checks["redis"] = redisStatus

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"service":  serviceName,
		"version":  serviceVersion,
		"status":   overallStatus,
		"checks":   checks,
		"features": s.featureFlags.Raw(),
		"time":     time.Now(),
	})
}

func pingDB(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil {
		return "unhealthy"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and releases the database and
// Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	for _, db := range []*gorm.DB{s.readDB, s.db} {
		if db == nil {
			continue
		}
		if sqlDB, err := db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
