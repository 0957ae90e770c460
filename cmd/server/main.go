package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/murmur/backend/internal/middleware"
	"github.com/anonto42/murmur/backend/internal/migrations"
	"github.com/anonto42/murmur/backend/internal/repositories"
	"github.com/anonto42/murmur/backend/internal/router"
	"github.com/anonto42/murmur/backend/internal/search"
	"github.com/anonto42/murmur/backend/pkg/config"
	"github.com/anonto42/murmur/backend/pkg/firebase"
	"github.com/anonto42/murmur/backend/validators"
	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logFile := config.SetupLogging(cfg)
	defer logFile.Close()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if cfg.AutoMigrate {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB: %v", err)
		}
		if err := migrations.Up(sqlDB); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
	}

	ctx := context.Background()
	accountRepo := repositories.NewPostgresAccountRepository(db.Postgres)

	// Search index bridge
	backend := search.NewMongoBackend(db.Mongo.Database(cfg.SearchMongoDB))
	if err := backend.EnsureIndexes(ctx); err != nil {
		log.Printf("search: ensuring indexes failed, search may degrade: %v", err)
	}
	bridge := search.NewBridge(
		backend,
		accountRepo,
		repositories.NewPostgresPostRepository(db.Postgres),
		search.NewDispatcher(cfg.SearchWorkers, cfg.SearchQueueSize, cfg.RequestTimeout),
	)

	// Identity
	var auth echo.MiddlewareFunc
	switch cfg.AuthProvider {
	case config.AuthProviderFirebase:
		firebaseApp, err := firebase.InitFirebase(ctx, firebase.Options{
			CredentialsPath: cfg.FirebaseCredentialsPath,
			ProjectID:       cfg.FirebaseProjectID,
			CheckRevoked:    cfg.FirebaseCheckRevoked,
		})
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		auth = middleware.FirebaseAuthMiddleware(firebaseApp, accountRepo)
	default:
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
		auth = middleware.JWTAuthMiddleware(cfg.JWTSecret)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, cfg)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Dependencies{
		DB:         db.Postgres,
		Search:     bridge,
		Auth:       auth,
		AdminToken: cfg.AdminToken,
	})

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := bridge.Close(shutdownCtx); err != nil {
		log.Printf("search: draining index queue: %v", err)
	}
}
