package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Gomafia Sync API
// @version 1.0
// @description API for importing and verifying gomafia.pro tournament data
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		sync := v1.Group("/sync")
		{
			sync.POST("", h.StartSync)
			sync.POST("/cancel", h.CancelSync)
			sync.GET("/status", h.GetSyncStatus)
		}

		verification := v1.Group("/verification")
		{
			verification.POST("", h.RunVerification)
			verification.GET("/latest", h.GetLatestVerification)
		}
	}

	return r
}
