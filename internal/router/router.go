package router

import (
	"log"
	"net/http"

	"github.com/friendo-social/backend/internal/cache"
	"github.com/friendo-social/backend/internal/engine"
	"github.com/friendo-social/backend/internal/handlers"
	"github.com/friendo-social/backend/internal/keylock"
	"github.com/friendo-social/backend/internal/middleware"
	"github.com/friendo-social/backend/internal/models"
	"github.com/friendo-social/backend/internal/repositories"
	"github.com/friendo-social/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	if cfg.HTTPLogging {
		e.Use(eMiddleware.Logger())
	}
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     cfg.AcceptedOrigins,
		AllowCredentials: true,
	}))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, feedCache *cache.Cache) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.FriendLink{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	friendshipRepo := repositories.NewPostgresFriendshipRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database(cfg.MongoDatabase))

	// --- Initialize Engines ---
	locks := keylock.New()
	reactionEngine := engine.NewReactionEngine(postRepo, locks)
	friendshipEngine := engine.NewFriendshipEngine(userRepo, friendshipRepo, locks)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public routes ---
	postHandler := handlers.NewPostHandler(postRepo, feedCache)
	postGroup := e.Group("/post")
	postHandler.RegisterPublicRoutes(postGroup)

	friendshipHandler := handlers.NewFriendshipHandler(friendshipEngine)
	e.GET("/user/friend/list/:userId", friendshipHandler.ListFriends)
	log.Println("Public routes configured.")

	// --- Protected routes (require a valid session cookie) ---
	userGroup := e.Group("/user")
	userGroup.Use(middleware.SessionAuth(cfg.JWTSecret))

	postHandler.RegisterUserRoutes(userGroup)

	reactionHandler := handlers.NewReactionHandler(reactionEngine, feedCache)
	reactionHandler.RegisterReactionRoutes(userGroup)

	commentHandler := handlers.NewCommentHandler(postRepo, feedCache)
	commentHandler.RegisterCommentRoutes(userGroup)

	friendshipHandler.RegisterFriendshipRoutes(userGroup)

	accountHandler := handlers.NewAccountHandler(userRepo)
	accountHandler.RegisterAccountRoutes(userGroup)
	log.Println("Session-gated routes configured.")

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"errorMessage": "This route is not available."})
	})

	log.Println("All routes configured.")
}
