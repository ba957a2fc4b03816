package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/handler"
	"github.com/weylan/street-coverage-go/internal/middleware"
)

// Handlers bundles the HTTP handlers the router exposes.
type Handlers struct {
	Run      *handler.RunHandler
	Progress *handler.ProgressHandler
	Area     *handler.AreaHandler
}

// SetupRouter builds the gin engine with middleware and routes.
func SetupRouter(logger *logrus.Logger, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Street Coverage API is running",
		})
	})

	api := r.Group("/api/v1")
	// Run ingestion calls external road-data services; keep clients honest.
	api.Use(middleware.RateLimit(60, time.Minute))
	{
		api.POST("/runs", h.Run.CreateRun)

		progress := api.Group("/progress")
		{
			progress.GET("/streets", h.Progress.ListStreets)
			progress.GET("/streets/:streetKey", h.Progress.GetStreet)
		}

		areas := api.Group("/areas")
		{
			areas.POST("/overlap", h.Area.CheckOverlap)
		}
	}

	return r
}
