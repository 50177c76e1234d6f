package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bobsgarage/api/internal/cache"
	"bobsgarage/api/internal/config"
	"bobsgarage/api/internal/middleware"
	"bobsgarage/api/internal/repository"
	"bobsgarage/api/internal/service"
	"bobsgarage/api/internal/storage"
)

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	authService *service.AuthService
	db          *pgxpool.Pool
	redis       *redis.Client
	content     *cache.ContentCache
	store       *storage.ObjectStore
	users       *repository.UserRepository
	sessions    *repository.SessionRepository
	services    *repository.ServiceRepository
	blog        *repository.BlogRepository
	feedback    *repository.FeedbackRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	auth := service.NewAuthService(userRepo, sessionRepo, cfg, log)
	content := cache.NewContentCache(redisClient, cfg.Cache.ContentTTL)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		authService: auth,
		db:          db,
		redis:       redisClient,
		content:     content,
		store:       store,
		users:       userRepo,
		sessions:    sessionRepo,
		services:    serviceRepo,
		blog:        blogRepo,
		feedback:    feedbackRepo,
	}
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireAuth := middleware.Auth(h.cfg.Security.JWTAccessSecret, h.users, h.log)
	requireAdmin := middleware.RequireAdmin()
	optionalAuth := middleware.OptionalAuth(h.cfg.Security.JWTAccessSecret, h.users, h.log)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/refresh-token", h.Refresh)
		auth.POST("/logout", h.Logout)

		auth.GET("/profile", requireAuth, h.Profile)
		auth.GET("/users", requireAuth, requireAdmin, h.ListUsers)
		auth.PUT("/users/:id/toggle-admin", requireAuth, requireAdmin, h.ToggleAdmin)
	}

	services := router.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)
		services.POST("", requireAuth, requireAdmin, h.CreateService)
		services.PUT("/:id", requireAuth, requireAdmin, h.UpdateService)
		services.DELETE("/:id", requireAuth, requireAdmin, h.DeleteService)
	}

	blog := router.Group("/blog")
	{
		blog.GET("", optionalAuth, h.ListPosts)
		blog.GET("/:id", optionalAuth, h.GetPost)
		blog.POST("", requireAuth, requireAdmin, h.CreatePost)
		blog.PUT("/:id", requireAuth, requireAdmin, h.UpdatePost)
		blog.DELETE("/:id", requireAuth, requireAdmin, h.DeletePost)
	}

	feedback := router.Group("/feedback")
	{
		feedback.GET("", optionalAuth, h.ListFeedback)
		feedback.POST("", h.SubmitFeedback)
		feedback.PUT("/:id/approve", requireAuth, requireAdmin, h.ApproveFeedback)
		feedback.DELETE("/:id", requireAuth, requireAdmin, h.DeleteFeedback)
	}

	media := router.Group("/media")
	media.Use(requireAuth, requireAdmin)
	media.POST("/upload", h.UploadImage)
}
