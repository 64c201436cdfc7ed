// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"capstonehub/internal/cache"
	"capstonehub/internal/config"
	"capstonehub/internal/cronjob"
	"capstonehub/internal/database"
	"capstonehub/internal/featureflags"
	"capstonehub/internal/middleware"
	"capstonehub/internal/models"
	"capstonehub/internal/notifications"
	"capstonehub/internal/repository"
	"capstonehub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	groupRepo        repository.GroupRepository
	capstoneRepo     repository.CapstoneRepository
	requestRepo      repository.RequestRepository
	notificationRepo repository.NotificationRepository

	notifier     *notifications.Notifier
	dispatcher   *notifications.Dispatcher
	featureFlags *featureflags.Manager
	cron         *cronjob.Manager

	matchingService *service.MatchingService
	cleanupService  *service.CleanupService
	capstoneService *service.CapstoneService
	groupService    *service.GroupService
	userService     *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	capstoneRepo := repository.NewCapstoneRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	prom := middleware.InitMetrics("capstonehub-api")

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   prom,
		userRepo:         userRepo,
		groupRepo:        groupRepo,
		capstoneRepo:     capstoneRepo,
		requestRepo:      requestRepo,
		notificationRepo: notificationRepo,
		featureFlags:     featureflags.NewManager(cfg.FeatureFlags),
		cron:             cronjob.NewManager(),
	}

	// NewNotifier tolerates a nil Redis client; publishes become no-ops.
	server.notifier = notifications.NewNotifier(redisClient)

	// email_notifications acts as a kill switch: email stays on unless the
	// flag is configured and evaluates to off.
	mailer := notifications.NewMailer(cfg)
	if _, configured := server.featureFlags.Raw()["email_notifications"]; configured {
		if !server.featureFlags.Enabled("email_notifications", 0) {
			mailer = notifications.NoopMailer()
		}
	}
	server.dispatcher = notifications.NewDispatcher(notificationRepo, userRepo, server.notifier, mailer)

	server.matchingService = service.NewMatchingService(
		requestRepo, capstoneRepo, groupRepo, server.dispatcher, service.DefaultMatchingPolicy())
	server.cleanupService = service.NewCleanupService(
		requestRepo, server.matchingService, server.dispatcher,
		time.Duration(cfg.RequestExpiryHours)*time.Hour)
	server.capstoneService = service.NewCapstoneService(
		capstoneRepo, requestRepo, groupRepo, userRepo, service.NoopFileStorage{})
	server.groupService = service.NewGroupService(groupRepo, requestRepo, userRepo)
	server.userService = service.NewUserService(userRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry span per request (no-op tracer unless tracing is enabled)
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
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
		Title: "CapstoneHub Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Public capstone catalog (proposal links are stripped for anonymous viewers)
	publicCapstones := api.Group("/capstones")
	publicCapstones.Get("/", s.GetCapstones)
	publicCapstones.Get("/stats", s.GetCapstoneStats)
	publicCapstones.Get("/:id", s.GetCapstone)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// Capstone management
	capstones := protected.Group("/capstones")
	capstones.Post("/", s.CreateCapstone)
	capstones.Put("/:id", s.UpdateCapstone)
	capstones.Delete("/:id", s.DeleteCapstone)

	// Group routes
	groups := protected.Group("/groups")
	groups.Post("/", s.CreateGroup)
	groups.Get("/", s.GetGroups)
	groups.Get("/me", s.GetMyGroup)
	groups.Put("/:id", s.UpdateGroup)
	groups.Delete("/:id", s.DeleteGroup)
	groups.Get("/:id", s.GetGroup)

	// Request lifecycle
	requests := protected.Group("/requests")
	requests.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "submit_request"), s.SubmitRequest)
	requests.Get("/me", s.GetMyRequests)
	requests.Get("/owner", s.GetOwnerRequests)
	requests.Post("/:id/review", s.ReviewRequest)
	requests.Get("/:id", s.GetRequest)

	// Notification inbox
	inbox := protected.Group("/notifications")
	inbox.Get("/", s.GetNotifications)
	inbox.Get("/unread-count", s.GetUnreadCount)
	inbox.Post("/:id/read", s.MarkNotificationRead)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/users", s.GetAllUsers)
	admin.Get("/users/stats", s.GetUserStats)
	admin.Post("/users", s.PrecreateUser)
	admin.Put("/users/:id/role", s.UpdateUserRole)
	admin.Delete("/users/:id", s.DeleteUser)
	admin.Post("/requests/sweep", s.AdminSweep)

	// Machine-to-machine sweep trigger for external schedulers
	api.Post("/internal/cron/sweep",
		middleware.APIKeyRequired(s.config.CronAPIKey), s.CronSweep)
}

// SetupJobs registers recurring background jobs on the cron manager.
func (s *Server) SetupJobs() error {
	return s.cron.Register("request-expiry-sweep", s.config.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.cleanupService.AutoRejectExpired(ctx, "cron"); err != nil {
			log.Printf("scheduled sweep failed: %v", err)
		}
	})
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
		// Redis is considered required for full readiness in this app
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that role is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return s.RoleRequired(models.RoleAdmin)
}

// RoleRequired returns middleware that rejects users whose role is not in the
// allowed set. Must be placed after AuthRequired.
func (s *Server) RoleRequired(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := currentRole(c)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Insufficient role for this operation"))
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		role, _ := claims["role"].(string)
		if !models.Role(role).Valid() {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid role claim"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), cache.TokenBlacklistKey(jti)).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Store identity in context
		c.Locals("userID", uint(userID))
		c.Locals("role", models.Role(role))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalViewer attempts to extract a viewer from the Authorization header
// but does not enforce it. Public catalog endpoints use this so authenticated
// callers get decorated responses while anonymous ones still get the list.
func (s *Server) optionalViewer(c *fiber.Ctx) service.Viewer {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return service.Viewer{}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return service.Viewer{}
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return service.Viewer{}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return service.Viewer{}
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return service.Viewer{}
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return service.Viewer{}
	}
	role, _ := claims["role"].(string)
	return service.Viewer{ID: uint(userID), Role: models.Role(role)}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "CapstoneHub API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.SetupJobs(); err != nil {
		return fmt.Errorf("cron registration failed: %w", err)
	}
	s.cron.Start()

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.cron != nil {
		s.cron.Stop()
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
