package main

import (
	"log"

	"github.com/friendo-social/backend/internal/cache"
	"github.com/friendo-social/backend/internal/router"
	"github.com/friendo-social/backend/internal/validators"
	"github.com/friendo-social/backend/pkg/config"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Feed cache, disabled when Redis is unreachable
	feedCache := cache.New(cfg.RedisAddr)
	defer feedCache.Close()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, cfg)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, feedCache)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
