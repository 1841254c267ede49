package media

import (
	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// RegisterRoutes registers media routes on the given group. The process
// middleware carries a tighter rate limit since reprocessing is expensive;
// the cache middleware fronts the immutable-once-written payload reads.
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies, processMiddleware, cacheMiddleware gin.HandlerFunc) {
	group.POST("", Create(deps))
	group.GET("", List(deps))
	group.GET("/:uuid", Get(deps))
	group.DELETE("/:uuid", Delete(deps))
	group.GET("/:uuid/status", GetStatus(deps))
	group.GET("/:uuid/transcript", cacheMiddleware, GetTranscript(deps))
	group.GET("/:uuid/insights", cacheMiddleware, GetInsights(deps))
	group.POST("/:uuid/process", processMiddleware, Process(deps))
}
