package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/macrolog/backend/internal/config"
	"github.com/macrolog/backend/internal/foodcache"
	"github.com/macrolog/backend/internal/handlers"
	"github.com/macrolog/backend/internal/logger"
	"github.com/macrolog/backend/internal/middleware"
	"github.com/macrolog/backend/internal/provider/openfoodfacts"
	"github.com/macrolog/backend/internal/repository"
	"github.com/macrolog/backend/internal/service"
	"github.com/macrolog/backend/pkg/supabase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	logger.SetDefault(logger.NewSlogLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	}))
	log := logger.Default()

	log.Info("starting macrolog API server",
		logger.String("env", cfg.Server.Env),
		logger.String("supabase_url", cfg.Supabase.URL))

	// Initialize Supabase client
	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	// Initialize repositories
	mealRepo := repository.NewMealRepository(supabaseClient)
	profileRepo := repository.NewProfileRepository(supabaseClient)
	idempotencyRepo := repository.NewIdempotencyRepository(supabaseClient)

	// The barcode cache is a local convenience; the server runs without it
	cache, err := foodcache.Open(cfg.FoodCache.Path, time.Duration(cfg.FoodCache.TTLHours)*time.Hour)
	if err != nil {
		log.Warn("food cache unavailable",
			logger.String("path", cfg.FoodCache.Path), logger.Err(err))
		cache = nil
	} else {
		defer cache.Close()
	}

	// Initialize services
	mealService := service.NewMealService(mealRepo)
	analyticsService := service.NewAnalyticsService(mealRepo, profileRepo)
	authService := service.NewAuthService(supabaseClient, cfg.Supabase.AnonKey, profileRepo)
	aiService := service.NewAIService(cfg.AI, supabaseClient, cfg.Supabase.StorageBucket)
	foodService := service.NewFoodService(cache,
		openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent))
	profileService := service.NewProfileService(profileRepo)
	exportService := service.NewExportService(mealRepo, profileRepo, analyticsService)
	accountService := service.NewAccountService(mealRepo, profileRepo, supabaseClient, cfg.Supabase.StorageBucket)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	mealHandler := handlers.NewMealHandler(mealService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	aiHandler := handlers.NewAIHandler(aiService)
	foodHandler := handlers.NewFoodHandler(foodService)
	profileHandler := handlers.NewProfileHandler(profileService)
	exportHandler := handlers.NewExportHandler(exportService)
	accountHandler := handlers.NewAccountHandler(exportService, accountService)

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// gin.New instead of gin.Default: the request logger below replaces
	// gin's own
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimitAuth())
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", middleware.Auth(supabaseClient), authHandler.Me)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.Auth(supabaseClient))
		protected.Use(middleware.Idempotency(idempotencyRepo))
		{
			// Meal routes
			protected.GET("/meals", mealHandler.GetMeals)
			protected.POST("/meals", mealHandler.CreateMeal)
			protected.GET("/meals/:id", mealHandler.GetMeal)
			protected.PUT("/meals/:id", mealHandler.UpdateMeal)
			protected.DELETE("/meals/:id", mealHandler.DeleteMeal)

			// Analytics routes
			protected.GET("/analytics/daily", analyticsHandler.GetDaily)
			protected.GET("/analytics/weekly", analyticsHandler.GetWeekly)
			protected.GET("/analytics/monthly", analyticsHandler.GetMonthly)
			protected.GET("/analytics/summary", analyticsHandler.GetSummary)
			protected.GET("/analytics/insights", analyticsHandler.GetInsights)

			// AI analysis is expensive; it gets the strict rate tier
			ai := protected.Group("/ai")
			ai.Use(middleware.RateLimitStrict())
			{
				ai.POST("/analyze-text", aiHandler.AnalyzeText)
				ai.POST("/analyze-photo", aiHandler.AnalyzePhoto)
			}

			// Food database routes
			protected.GET("/foods/barcode/:code", foodHandler.LookupBarcode)

			// Profile routes
			protected.GET("/profile", profileHandler.GetProfile)
			protected.PUT("/profile", profileHandler.UpdateProfile)

			// Export routes
			protected.GET("/export/meals.csv", exportHandler.MealsCSV)
			protected.GET("/export/summary.csv", exportHandler.SummaryCSV)
			protected.GET("/export/report.html", exportHandler.ReportHTML)

			// Account routes
			protected.GET("/account/export", accountHandler.ExportAccount)
			protected.DELETE("/account", accountHandler.DeleteAccount)
		}
	}

	log.Info("server listening", logger.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
