package main

import (
	"log"
	"os"

	"legalai-backend/handlers"
	"legalai-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	// Initialize services. Model artifacts and the chat pipeline load
	// lazily on first request, so startup never blocks on the database or
	// the Gemini API.
	classificationService := service.NewClassificationService()
	prioritizationService := service.NewPrioritizationService()
	chatService := service.NewChatServiceFromEnv()

	// Initialize handlers
	predictHandler := handlers.NewPredictHandler(classificationService, prioritizationService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	// Liveness endpoints
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Legal AI API is running",
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api/v1")
	{
		api.POST("/classify", predictHandler.Classify)
		api.POST("/prioritize", predictHandler.Prioritize)
		api.POST("/chat", chatHandler.Chat)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
