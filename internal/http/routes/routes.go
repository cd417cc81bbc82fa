package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/http/handlers"
	"github.com/phambaophuc/image-watermark/internal/http/middleware"
	"go.uber.org/zap"
)

type Router struct {
	watermarkHandler *handlers.WatermarkHandler
	logger           *zap.Logger
	maxBodySize      int64
}

func NewRouter(
	watermarkHandler *handlers.WatermarkHandler,
	logger *zap.Logger,
	maxBodySize int64,
) *Router {
	return &Router{
		watermarkHandler: watermarkHandler,
		logger:           logger,
		maxBodySize:      maxBodySize,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.watermarkHandler.HealthCheck)
		v1.GET("/settings", r.watermarkHandler.GetSettings)

		watermark := v1.Group("/watermark")
		watermark.Use(middleware.RequireMultipart(), middleware.LimitBody(r.maxBodySize))
		{
			watermark.POST("/batch", r.watermarkHandler.BatchWatermark)
			watermark.POST("/preview", r.watermarkHandler.Preview)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Batch watermarking is running",
		})
	})

	return router
}
