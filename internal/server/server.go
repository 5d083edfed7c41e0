// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	_ "github.com/abdanbarkaath/marketlink/docs" // swagger docs
	"github.com/abdanbarkaath/marketlink/internal/cache"
	"github.com/abdanbarkaath/marketlink/internal/config"
	"github.com/abdanbarkaath/marketlink/internal/database"
	"github.com/abdanbarkaath/marketlink/internal/featureflags"
	"github.com/abdanbarkaath/marketlink/internal/middleware"
	"github.com/abdanbarkaath/marketlink/internal/models"
	"github.com/abdanbarkaath/marketlink/internal/repository"
	"github.com/abdanbarkaath/marketlink/internal/service"

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

// Server holds all dependencies and provides handlers
type Server struct {
	config            *config.Config
	db                *gorm.DB
	redis             *redis.Client
	app               *fiber.App
	promMiddleware    *fiberprometheus.FiberPrometheus
	shutdownCtx       context.Context
	shutdownFn        context.CancelFunc
	userRepo          repository.UserRepository
	providerRepo      repository.ProviderRepository
	sessionRepo       repository.SessionRepository
	inquiryRepo       repository.InquiryRepository
	adminActionRepo   repository.AdminActionRepository
	featureFlags      *featureflags.Manager
	providerService   *service.ProviderService
	moderationService *service.ModerationService
	inquiryService    *service.InquiryService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	inquiryRepo := repository.NewInquiryRepository(db)
	adminActionRepo := repository.NewAdminActionRepository(db)

	prom := middleware.InitMetrics("marketlink-api")

	server := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  prom,
		userRepo:        userRepo,
		providerRepo:    providerRepo,
		sessionRepo:     sessionRepo,
		inquiryRepo:     inquiryRepo,
		adminActionRepo: adminActionRepo,
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}
	server.providerService = service.NewProviderService(providerRepo)
	server.moderationService = service.NewModerationService(db)
	server.inquiryService = service.NewInquiryService(inquiryRepo, providerRepo)
	server.shutdownCtx, server.shutdownFn = context.WithCancel(context.Background())

	return server, nil
}

// SessionSweepInterval is how often expired session rows are purged. The
// auth middleware only deletes an expired session when someone presents it;
// the sweeper catches the abandoned ones.
const SessionSweepInterval = time.Hour

// StartSessionSweeper launches a background loop that removes expired
// session rows until the server shuts down.
func (s *Server) StartSessionSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.shutdownCtx.Done():
				return
			case <-ticker.C:
				removed, err := s.sessionRepo.DeleteExpired(s.shutdownCtx, time.Now())
				if err != nil {
					slog.Warn("Session sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("Expired sessions removed", "count", removed)
				}
			}
		}
	}()
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and user ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "MarketLink Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Post("/magic-link", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "magic_link"), s.RequestMagicLink)
	auth.Post("/magic-link/redeem", s.RedeemMagicLink)

	// Public provider routes
	providers := api.Group("/providers")
	providers.Get("/", s.ListProviders)

	// Protected owner routes; declared before /:slug so "me" never parses as
	// a slug.
	providers.Post("/", s.AuthRequired(), s.OnboardProvider)
	providers.Get("/me", s.AuthRequired(), s.GetMyProvider)
	providers.Put("/me", s.AuthRequired(), s.UpdateMyProvider)
	providers.Get("/me/inquiries", s.AuthRequired(), s.GetMyInquiries)

	providers.Get("/:slug", s.GetProviderBySlug)
	providers.Post("/:slug/inquiries", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "inquiry"), s.CreateInquiry)

	// Inquiry status updates by the provider owner
	inquiries := api.Group("/inquiries", s.AuthRequired())
	inquiries.Patch("/:id", s.UpdateInquiryStatus)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/actions", s.GetAdminActions)
	adminProviders := admin.Group("/providers")
	adminProviders.Get("/", s.AdminListProviders)
	adminProviders.Get("/:id/actions", s.GetProviderActions)
	adminProviders.Post("/:id/approve", s.ApproveProvider)
	adminProviders.Post("/:id/disable", s.DisableProvider)
	adminProviders.Post("/:id/enable", s.EnableProvider)
	adminProviders.Post("/:id/pending", s.SetProviderPending)
	adminProviders.Post("/:id/verify", s.SetProviderVerified)
	adminProviders.Put("/:id", s.AdminEditProvider)
	adminProviders.Get("/:id", s.AdminGetProvider)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API degrades without Redis (no cache, fail-open limits) but
		// stays functional, so missing Redis does not fail readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	if s.shutdownCtx == nil {
		s.shutdownCtx, s.shutdownFn = context.WithCancel(context.Background())
	}
	s.StartSessionSweeper(SessionSweepInterval)

	app := fiber.New(fiber.Config{
		AppName: "MarketLink API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
