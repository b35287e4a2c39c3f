package main

import (
	"log"
	"net/http"

	"github.com/flavorlab/reimburse-assistant/config"
	"github.com/flavorlab/reimburse-assistant/handlers"
	"github.com/flavorlab/reimburse-assistant/middleware"
	"github.com/flavorlab/reimburse-assistant/ocr"
	"github.com/flavorlab/reimburse-assistant/uploads"
	"github.com/flavorlab/reimburse-assistant/workflow"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Shared services
	wf := workflow.NewService(db, cfg.OrgName, cfg.OrgTaxID)
	registry := uploads.NewRegistry()
	ocrClient := ocr.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)

	// Setup router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "reimburse-assistant-api",
		})
	})

	authHandler := handlers.NewAuthHandler(db, cfg)
	uploadHandler := handlers.NewUploadHandler(registry, ocrClient, wf, cfg)
	recordHandler := handlers.NewRecordHandler(db, wf, registry, cfg)
	surveyHandler := handlers.NewSurveyHandler(wf)
	exportHandler := handlers.NewExportHandler(wf)

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.Refresh)

		authed := api.Group("")
		authed.Use(middleware.JwtAuthMiddleware(cfg))
		{
			authed.GET("/profile", authHandler.GetProfile)

			authed.POST("/uploads", uploadHandler.Upload)
			authed.GET("/uploads", uploadHandler.ListUploads)
			authed.GET("/uploads/:id", uploadHandler.GetUpload)
			authed.DELETE("/uploads/:id", uploadHandler.DeleteUpload)

			authed.POST("/records", recordHandler.CreateRecord)
			authed.GET("/records", recordHandler.ListRecords)
			authed.GET("/records/export", exportHandler.ExportCSV)
			authed.POST("/records/:id/paid", recordHandler.TogglePaid)
			authed.POST("/records/:id/status", middleware.RequireRole("admin"), recordHandler.AdvanceStatus)

			authed.GET("/survey", surveyHandler.Current)
			authed.POST("/survey/answer", surveyHandler.Answer)
		}
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting reimburse-assistant API server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
