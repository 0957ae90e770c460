package router

import (
	"log"

	"github.com/anonto42/murmur/backend/internal/handlers"
	"github.com/anonto42/murmur/backend/internal/middleware"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/anonto42/murmur/backend/internal/services"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SearchBridge is the search surface the routes need: write-through
// indexing for services, querying for handlers and queue counters for
// the health check.
type SearchBridge interface {
	services.Indexer
	handlers.Searcher
	handlers.QueueStats
}

// Dependencies are the long-lived collaborators injected into the routes.
type Dependencies struct {
	DB         *gorm.DB
	Search     SearchBridge
	Auth       echo.MiddlewareFunc
	AdminToken string
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	e.HTTPErrorHandler = handlers.ErrorHandler

	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Search)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Initialize Repositories ---
	accountRepo := repositories.NewPostgresAccountRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	feedRepo := repositories.NewPostgresFeedRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	bookmarkRepo := repositories.NewPostgresBookmarkRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)

	// --- Initialize Services ---
	timeline := services.NewTimelineService(postRepo, feedRepo, followRepo, accountRepo)
	postService := services.NewPostService(postRepo, accountRepo, timeline, deps.Search)
	notifications := services.NewNotificationService(notificationRepo, accountRepo)
	engagement := services.NewEngagementService(postRepo, likeRepo, commentRepo, accountRepo, notifications)
	graph := services.NewSocialGraph(followRepo, accountRepo, timeline, notifications)
	bookmarks := services.NewBookmarkService(bookmarkRepo, postRepo, accountRepo)

	postHandler := handlers.NewPostHandler(postService)
	feedHandler := handlers.NewFeedHandler(timeline)
	likeHandler := handlers.NewLikeHandler(engagement)
	commentHandler := handlers.NewCommentHandler(engagement)
	followHandler := handlers.NewFollowHandler(graph)
	accountHandler := handlers.NewAccountHandler(graph, postService)
	searchHandler := handlers.NewSearchHandler(deps.Search)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarks)
	notificationHandler := handlers.NewNotificationHandler(notifications)

	// --- Public routes ---
	public := e.Group("/api/v1")
	postHandler.RegisterPublicRoutes(public)
	feedHandler.RegisterPublicRoutes(public)
	commentHandler.RegisterPublicRoutes(public)
	followHandler.RegisterPublicRoutes(public)
	accountHandler.RegisterPublicRoutes(public)
	log.Println("Public routes configured.")

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(deps.Auth)
	postHandler.RegisterPostRoutes(api)
	feedHandler.RegisterFeedRoutes(api)
	likeHandler.RegisterLikeRoutes(api)
	commentHandler.RegisterCommentRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	searchHandler.RegisterSearchRoutes(api)
	bookmarkHandler.RegisterBookmarkRoutes(api)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Authenticated routes configured.")

	// --- Operator routes ---
	admin := e.Group("/api/v1/admin")
	admin.Use(middleware.AdminTokenMiddleware(deps.AdminToken))
	searchHandler.RegisterAdminRoutes(admin)
	log.Println("Admin routes configured.")

	log.Println("All routes configured.")
}
