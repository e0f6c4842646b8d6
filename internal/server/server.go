// Package server contains the HTTP and WebSocket handlers for the article API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/minasenanami/wonderful-editor/docs" // swagger docs
	"github.com/minasenanami/wonderful-editor/internal/bootstrap"
	"github.com/minasenanami/wonderful-editor/internal/config"
	"github.com/minasenanami/wonderful-editor/internal/featureflags"
	"github.com/minasenanami/wonderful-editor/internal/middleware"
	"github.com/minasenanami/wonderful-editor/internal/models"
	"github.com/minasenanami/wonderful-editor/internal/notifications"
	"github.com/minasenanami/wonderful-editor/internal/repository"
	"github.com/minasenanami/wonderful-editor/internal/service"

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
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	articleRepo repository.ArticleRepository
	likeRepo    repository.LikeRepository

	credentials    *service.CredentialStore
	auth           *service.Authenticator
	userService    *service.UserService
	articleService *service.ArticleService
	likeService    *service.LikeService

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Set
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and cross-instance events
// are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server requires config and database")
	}

	flags, warnings := featureflags.Parse(cfg.FeatureFlags)
	for _, w := range warnings {
		middleware.Logger.Warn("ignoring feature flag", slog.String("detail", w))
	}

	userRepo := repository.NewUserRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	credentials := service.NewCredentialStore(sessionRepo, service.CredentialStoreConfig{
		TTL:        cfg.SessionTTL(),
		MaxDevices: cfg.SessionMaxDevices,
	})

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wonderful-editor"),
		userRepo:       userRepo,
		articleRepo:    articleRepo,
		likeRepo:       likeRepo,
		credentials:    credentials,
		auth:           service.NewAuthenticator(userRepo, credentials, hasher),
		userService:    service.NewUserService(userRepo, hasher),
		articleService: service.NewArticleService(articleRepo),
		likeService:    service.NewLikeService(likeRepo, articleRepo),
		hub:            notifications.NewHub(0),
		featureFlags:   flags,
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Wonderful Editor API",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escape handlers, including Fiber's own
// 404 and 405 for unknown routes.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs first so the trace id reaches the request context.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://localhost:8080"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, access-token, client, uid, expiry",
		ExposeHeaders: "access-token, client, uid, expiry",
		MaxAge:        86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))

	app.Use(middleware.RequestTimeout(s.config.RequestTimeout()))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api/v1")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Wonderful Editor Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/sign_in", middleware.RateLimit(s.redis, 10, 5*time.Minute, "sign_in"), s.SignIn)
	auth.Delete("/sign_out", s.SignOut)
	auth.Get("/validate_token", s.AuthRequired(), s.ValidateToken)

	articles := api.Group("/articles")
	articles.Get("/", s.OptionalAuth(), s.ListArticles)
	articles.Post("/", s.AuthRequired(), middleware.RateLimit(s.redis, 10, time.Minute, "create_article"), s.CreateArticle)
	// Specific /:id/like routes before the generic /:id routes.
	articles.Post("/:id/like", s.AuthRequired(), s.LikeArticle)
	articles.Delete("/:id/like", s.AuthRequired(), s.UnlikeArticle)
	articles.Get("/:id", s.OptionalAuth(), s.GetArticle)
	articles.Patch("/:id", s.AuthRequired(), s.UpdateArticle)
	articles.Put("/:id", s.AuthRequired(), s.UpdateArticle)
	articles.Delete("/:id", s.AuthRequired(), s.DeleteArticle)

	api.Get("/ws/articles", s.ArticleFeedUpgrade, s.ArticleFeedHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database is unreachable. Redis is
// optional, so a missing client is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil {
		if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start activity feed wiring", slog.String("error", err.Error()))
		}
	}

	go s.runSessionJanitor(ctx, s.config.SessionPurgeInterval())

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// runSessionJanitor deletes expired sessions on a fixed interval until ctx ends.
func (s *Server) runSessionJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.credentials.PurgeExpired(ctx)
			if err != nil {
				middleware.Logger.Warn("session purge failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				middleware.Logger.Info("purged expired sessions", slog.Int64("count", n))
			}
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("feed hub shutdown: %w", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
