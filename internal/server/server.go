// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "pulseboard/docs" // swagger docs
	"pulseboard/internal/cache"
	"pulseboard/internal/config"
	"pulseboard/internal/database"
	"pulseboard/internal/middleware"
	"pulseboard/internal/models"
	"pulseboard/internal/repository"
	"pulseboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	db              *gorm.DB
	redis           *redis.Client
	app             *fiber.App
	promMiddleware  *fiberprometheus.FiberPrometheus
	userRepo        repository.UserRepository
	boardRepo       repository.BoardRepository
	feedbackRepo    repository.FeedbackRepository
	commentRepo     repository.CommentRepository
	tagRepo         repository.TagRepository
	userService     *service.UserService
	boardService    *service.BoardService
	feedbackService *service.FeedbackService
	commentService  *service.CommentService
	tagService      *service.TagService
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
	boardRepo := repository.NewBoardRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	prom := middleware.InitMetrics("pulseboard-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		boardRepo:      boardRepo,
		feedbackRepo:   feedbackRepo,
		commentRepo:    commentRepo,
		tagRepo:        tagRepo,
	}
	server.userService = service.NewUserService(userRepo)
	server.boardService = service.NewBoardService(boardRepo, userRepo)
	server.feedbackService = service.NewFeedbackService(feedbackRepo, boardRepo, tagRepo)
	server.commentService = service.NewCommentService(commentRepo, feedbackRepo, boardRepo)
	server.tagService = service.NewTagService(tagRepo)

	return server, nil
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

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests.
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
		Title: "Pulseboard Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public feedback browsing: anonymous actors see public boards only.
	publicFeedback := api.Group("/feedback")
	publicFeedback.Get("/", s.ListFeedback)

	// Public comment browsing
	publicComments := api.Group("/comments")
	publicComments.Get("/", s.ListComments)
	publicComments.Get("/:id", s.GetComment)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Put("/:id/role", s.UpdateUserRole)

	// Board routes
	boards := protected.Group("/boards")
	boards.Get("/", s.GetBoards)
	boards.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_board"), s.CreateBoard)
	// Specific /:id/:resource routes BEFORE generic /:id route
	boards.Post("/:id/join", s.JoinBoard)
	boards.Post("/:id/leave", s.LeaveBoard)
	boards.Post("/:id/members", s.AddBoardMember)
	boards.Get("/:id/members", s.GetBoardMembers)
	boards.Get("/:id", s.GetBoard)
	boards.Patch("/:id", s.UpdateBoard)
	boards.Delete("/:id", s.DeleteBoard)

	// Protected feedback routes. Analytics routes precede the generic /:id.
	feedback := protected.Group("/feedback")
	feedback.Post("/", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_feedback"), s.CreateFeedback)
	feedback.Get("/counts", s.GetFeedbackCounts)
	feedback.Get("/top_voted", s.GetTopVotedFeedback)
	feedback.Get("/trends", s.GetFeedbackTrends)
	feedback.Post("/:id/vote", s.VoteFeedback)
	feedback.Patch("/:id", s.UpdateFeedback)
	feedback.Delete("/:id", s.DeleteFeedback)

	// Feedback detail stays public (scoped per actor).
	publicFeedback.Get("/:id", s.GetFeedback)

	// Protected comment routes
	comments := protected.Group("/comments")
	comments.Post("/", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	comments.Patch("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	// Tag routes
	tags := protected.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Post("/", s.CreateTag)
	tags.Get("/:id", s.GetTag)
	tags.Patch("/:id", s.UpdateTag)
	tags.Delete("/:id", s.DeleteTag)
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
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// AuthRequired returns the authentication middleware. Only access tokens are
// accepted here; refresh tokens work solely against /auth/refresh.
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

		claims, err := s.parseToken(c.Context(), tokenString, tokenTypeAccess)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		userID, err := userIDFromClaims(claims)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// parseToken validates signature, standard claims, token type and the jti
// denylist, returning the claims.
func (s *Server) parseToken(ctx context.Context, tokenString, wantType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("Invalid token claims")
	}

	if issuer, ok := claims["iss"].(string); !ok || issuer != tokenIssuer {
		return nil, fmt.Errorf("Invalid token issuer")
	}
	if audience, ok := claims["aud"].(string); !ok || audience != tokenAudience {
		return nil, fmt.Errorf("Invalid token audience")
	}
	if typ, ok := claims["typ"].(string); !ok || typ != wantType {
		return nil, fmt.Errorf("Invalid token type")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, "blacklist:"+jti).Result()
		if err == nil && revoked > 0 {
			return nil, fmt.Errorf("Token has been revoked")
		}
	}

	return claims, nil
}

func userIDFromClaims(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid user ID in token")
	}
	return uint(userID), nil
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Pulseboard API",
		BodyLimit: 1 * 1024 * 1024,
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
