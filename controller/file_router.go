package controller

import (
	"tabular-file-service/conf"
	"tabular-file-service/controller/handler"
	"tabular-file-service/controller/respond"
	"tabular-file-service/docs"
	"tabular-file-service/service/file_service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupFileRouter setup file service router
func SetupFileRouter(fileService *file_service.FileService) *gin.Engine {
	// Set Swagger host from config
	docs.SwaggerInfo.Host = conf.Cfg.SwaggerBaseUrl

	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "Accept", "Cache-Control", "X-Requested-With", "x-upload-id"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Timing middleware for processing_time in responses
	r.Use(respond.TimingMiddleware())

	fileHandler := handler.NewFileHandler(fileService)

	// API routes
	v1 := r.Group("/api/v1")
	{
		files := v1.Group("/files")
		{
			// Pre-allocate an upload identifier
			files.POST("/request-id", fileHandler.RequestUploadId)

			// Stream a file upload
			files.POST("", fileHandler.Upload)

			// List all records (no parsed content)
			files.GET("", fileHandler.ListFiles)

			// Poll upload/parse progress
			files.GET("/:fileId/progress", fileHandler.GetProgress)

			// Fetch parsed result
			files.GET("/:fileId", fileHandler.GetFile)

			// Remove record and blob
			files.DELETE("/:fileId", fileHandler.DeleteFile)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "tabular-file-service",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
