package api

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/clipforge/media-api/api/blobs"
	"github.com/clipforge/media-api/api/health"
	"github.com/clipforge/media-api/api/media"
	"github.com/clipforge/media-api/api/middleware"
	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/api/version"
	_ "github.com/clipforge/media-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limiters *limiterRegistry) error {
	if deps == nil {
		deps = &types.Dependencies{}
	}
	if limiters == nil {
		limiters = newLimiterRegistry()
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// API v1 routes
	v1 := engine.Group("/api/v1")

	// Transcript and insights payloads are immutable once written, so GET
	// responses are served from the response cache when one is configured
	cacheMW := middleware.CacheMiddleware(middleware.CacheConfig{
		Cache:      deps.Cache,
		DefaultTTL: 30 * time.Second,
		Enabled:    deps.Cache != nil,
	})

	// Register media routes with general rate limiting (10 req/s, burst of 20);
	// reprocess triggers get a much tighter budget (1 req/s, burst of 2)
	if deps.MediaService != nil {
		mediaGroup := v1.Group("/media")
		mediaGroup.Use(limiters.Limit(10, 20))
		processMW := limiters.Limit(1, 2)
		media.RegisterRoutes(mediaGroup, deps, processMW, cacheMW)
	}

	// Register blob serving routes with higher limits (20 req/s, burst of 30)
	// since clients fetch derived audio and highlight clips through them
	if deps.BlobStore != nil {
		blobGroup := v1.Group("/blobs")
		blobGroup.Use(limiters.Limit(20, 30))
		blobs.RegisterRoutes(blobGroup, deps)
	}

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(404, gin.H{
			"status":  "error",
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	}
}
