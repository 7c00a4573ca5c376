package main

import (
	"context"
	"log"

	"github.com/ardakaya/car-market/internal/broker"
	"github.com/ardakaya/car-market/internal/config"
	"github.com/ardakaya/car-market/internal/database"
	"github.com/ardakaya/car-market/internal/handler"
	"github.com/ardakaya/car-market/internal/middleware"
	"github.com/ardakaya/car-market/internal/repository"
	"github.com/ardakaya/car-market/internal/service"
	"github.com/ardakaya/car-market/pkg/logger"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	if err := logger.Init(cfg.Environment != "production"); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Redis broker: car listing cache + car event pub/sub
	carBroker, err := broker.NewRedisCarBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize Redis broker: %v", err)
	}
	defer carBroker.Close()

	// Repositories
	userRepo := repository.NewUserRepository(database.DB)
	carRepo := repository.NewCarRepository(database.DB)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry, cfg.Environment)
	carService := service.NewCarService(carRepo, carBroker)
	adminService := service.NewAdminService(userRepo, carService)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	carHandler := handler.NewCarHandler(carService)
	adminHandler := handler.NewAdminHandler(adminService)
	eventsHandler := handler.NewEventsHandler(carBroker)

	// Fan car events out to connected feed clients
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := eventsHandler.Run(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Event feed stopped: %v", err)
		}
	}()

	router := gin.Default()
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.Default())

	// Public routes
	router.POST("/api/auth/register", authHandler.Register)
	router.POST("/api/auth/login", authHandler.Login)

	// Protected routes (require JWT)
	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.POST("/cars", carHandler.Create)
		protected.GET("/cars/list", carHandler.List)
		protected.GET("/cars/feed", eventsHandler.HandleFeed)
		protected.GET("/cars/:userId", carHandler.ListByUser)
		protected.PUT("/cars/:id", carHandler.UpdatePrice)
		protected.DELETE("/cars/:id", carHandler.Delete)

		// Admin routes stack the role gate on top of the auth gate
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/users", adminHandler.GetAllUsers)
			admin.PATCH("/users/:id/make-admin", adminHandler.MakeAdmin)
			admin.DELETE("/users/:id", adminHandler.DeleteUser)
		}
	}

	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
