package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "altify/docs"
	"altify/internal/caching"
	"altify/internal/config"
	"altify/internal/handlers"
	"altify/internal/jobs/background"
	"altify/internal/middleware"
	"altify/internal/repositories"
	"altify/internal/services"
	"altify/internal/shopify"
	"altify/pkg/database"
)

const version = "1.0.0"

// @title Altify API
// @version 1.0
// @description Alt text management for Shopify product images
// @BasePath /v1
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, relying on environment")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.JWTSecret == "" {
		cfg.Server.JWTSecret = random.String(32)
		log.Printf("WARNING: Using generated JWT secret, sessions will not survive restarts")
	}

	pool, err := database.NewPool(cfg.Server.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories
	templateRepo := repositories.NewTemplateRepo(pool)
	updateRepo := repositories.NewAltTextUpdateRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Shopify Admin API client
	shopifyClient := shopify.NewAdminClient(cfg.ShopifyTimeout())

	// Image mirror is optional; without object storage the rest of the app
	// works and the mirror endpoints report it as unconfigured.
	var mirrorSvc services.MirrorService
	if cfg.Storage.Enabled {
		mirrorSvc, err = services.NewMirrorService(cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.UseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize mirror storage: %v", err)
		}
	}

	// Create services
	sessionSvc := services.NewSessionService(shopifyClient, cacheSvc, cfg.Server.JWTSecret)
	templateSvc := services.NewTemplateService(templateRepo)
	productSvc := services.NewProductService(shopifyClient, sessionSvc, templateSvc, cacheSvc, updateRepo)

	// Create handlers
	sessionHandlers := handlers.NewSessionHandlers(sessionSvc)
	templateHandlers := handlers.NewTemplateHandlers(templateSvc, productSvc)
	productHandlers := handlers.NewProductHandlers(productSvc, mirrorSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	scheduler := background.NewJobScheduler(cacheSvc, productSvc, mirrorSvc)
	if err := scheduler.Start(); err != nil {
		log.Printf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())

	// Health and docs
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/ready", healthHandlers.ReadinessCheck)
	e.GET("/live", healthHandlers.LivenessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/web", "web/static")

	versionMw := middleware.NewVersionMiddleware()
	v1 := versionMw.VersionRoute(e, "v1")

	// Public routes
	v1.POST("/connect", sessionHandlers.Connect)

	// Everything else requires a session token
	protected := v1.Group("")
	protected.Use(middleware.SessionAuth(cfg.Server.JWTSecret)...)

	protected.POST("/disconnect", sessionHandlers.Disconnect)
	protected.GET("/session", sessionHandlers.GetSession)

	protected.POST("/templates", templateHandlers.CreateTemplate)
	protected.GET("/templates", templateHandlers.ListTemplates)
	protected.GET("/templates/tokens", templateHandlers.ListTokens)
	protected.GET("/templates/:id", templateHandlers.GetTemplate)
	protected.PUT("/templates/:id", templateHandlers.UpdateTemplate)
	protected.DELETE("/templates/:id", templateHandlers.DeleteTemplate)
	protected.GET("/templates/:id/preview", templateHandlers.PreviewTemplate)

	protected.POST("/products/fetch", productHandlers.FetchProducts)
	protected.GET("/products", productHandlers.ListProducts)
	protected.GET("/products/recent", productHandlers.RecentProducts)
	protected.POST("/products/apply-all", productHandlers.ApplyTemplateAll)
	protected.GET("/products/:id", productHandlers.GetProduct)
	protected.POST("/products/:id/sync", productHandlers.SyncProduct)
	protected.POST("/products/:id/apply", productHandlers.ApplyTemplate)
	protected.DELETE("/products/:id/alt", productHandlers.ClearProductAlt)
	protected.PUT("/products/:id/images/:image_id/alt", productHandlers.SetImageAlt)
	protected.DELETE("/products/:id/images/:image_id/alt", productHandlers.ClearImageAlt)
	protected.POST("/products/:id/mirror", productHandlers.MirrorProduct)
	protected.GET("/products/:id/images/:image_id/mirror-url", productHandlers.GetMirrorURL)

	protected.GET("/dashboard/coverage", productHandlers.GetCoverage)
	protected.GET("/updates", productHandlers.GetUpdateHistory)

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Printf("Shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Starting altify %s on port %s", version, cfg.Server.Port)
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
