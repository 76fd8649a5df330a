package main

import (
	"context"
	"log"
	"os"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "zonekids/docs"
	"zonekids/internal/caching"
	"zonekids/internal/config"
	"zonekids/internal/handlers"
	"zonekids/internal/jobs"
	"zonekids/internal/middleware"
	"zonekids/internal/models"
	"zonekids/internal/repositories"
	"zonekids/internal/services"
	"zonekids/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.toml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Image storage
	var storageSvc services.ImageStorageService
	if cfg.Storage.Endpoint != "" {
		storageSvc, err = services.NewImageStorageService(
			cfg.Storage.Endpoint,
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			cfg.Storage.Bucket,
			cfg.Storage.UseSSL,
		)
		if err != nil {
			log.Fatalf("Failed to initialize image storage: %v", err)
		}
		if err := storageSvc.EnsureBucketExists(context.Background()); err != nil {
			log.Printf("WARN: could not ensure image bucket exists: %v", err)
		}
	} else {
		log.Printf("WARN: image storage not configured, uploads disabled")
	}

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	userProfileRepo := repositories.NewUserProfileRepo(pool)
	productRepo := repositories.NewProductRepo(pool)
	productImageRepo := repositories.NewProductImageRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	userSvc := services.NewUserService(userRepo, userProfileRepo)
	productSvc := services.NewProductService(productRepo, productImageRepo, storageSvc, cacheSvc)
	orderSvc := services.NewOrderService(pool, userRepo, cacheSvc)
	receiptSvc := services.NewReceiptService(pool, userRepo, cacheSvc)

	if cfg.Auth.BootstrapAdmin {
		if err := userSvc.BootstrapAdmin(context.Background(), cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminFirstName, cfg.Auth.AdminLastName); err != nil {
			log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
	}

	// Background jobs
	scheduler, err := jobs.NewJobScheduler(receiptSvc, cfg.Receipts)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, userSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	receiptHandlers := handlers.NewReceiptHandlers(receiptSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)

	// Public catalog routes
	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/search", productHandlers.SearchProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(middleware.JWTConfig(cfg.Auth.JWTSecret)))

	protected.GET("/me", authHandlers.Me)
	protected.PUT("/me", userHandlers.UpdateProfile)
	protected.GET("/me/profile", userHandlers.GetMyProfile)
	protected.PUT("/me/profile", userHandlers.SaveMyProfile)

	// Order routes
	protected.POST("/orders", orderHandlers.CreateOrder)
	protected.GET("/orders", orderHandlers.ListOrders)
	protected.GET("/orders/:id", orderHandlers.GetOrder)
	protected.POST("/orders/:id/complete", orderHandlers.CompleteOrder)
	protected.POST("/orders/:id/cancel", orderHandlers.CancelOrder)
	protected.DELETE("/orders/:id/items/:itemID", orderHandlers.RemoveOrderItem)

	// Receipt routes
	protected.POST("/receipts", receiptHandlers.CreateReceipt)
	protected.GET("/receipts", receiptHandlers.ListReceipts)
	protected.GET("/receipts/:id", receiptHandlers.GetReceipt)
	protected.GET("/receipts/number/:number", receiptHandlers.GetReceiptByNumber)
	protected.POST("/receipts/:id/pay", receiptHandlers.PayReceipt)
	protected.POST("/receipts/:id/cancel", receiptHandlers.CancelReceipt)
	protected.DELETE("/receipts/:id/items/:itemID", receiptHandlers.RemoveReceiptItem)

	// Admin routes
	admin := protected.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.GET("/users", userHandlers.ListUsers)
	admin.GET("/users/:id", userHandlers.GetUser)
	admin.PUT("/users/:id/status", userHandlers.SetUserStatus)
	admin.DELETE("/users/:id", userHandlers.DeleteUser)

	admin.POST("/products", productHandlers.CreateProduct)
	admin.PUT("/products/:id", productHandlers.UpdateProduct)
	admin.PUT("/products/:id/images", productHandlers.SetProductImages)
	admin.POST("/products/:id/images/upload", productHandlers.UploadProductImage)
	admin.POST("/products/:id/restock", productHandlers.RestockProduct)
	admin.DELETE("/products/:id", productHandlers.DeleteProduct)

	admin.DELETE("/orders/:id", orderHandlers.DeleteOrder)
	admin.DELETE("/receipts/:id", receiptHandlers.DeleteReceipt)

	log.Printf("ZoneKids server starting on port %s", cfg.Server.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Server.Port))
}
