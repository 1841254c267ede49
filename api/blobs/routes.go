package blobs

import (
	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// RegisterRoutes registers blob serving routes
func RegisterRoutes(group *gin.RouterGroup, deps *types.Dependencies) {
	group.GET("/*key", Get(deps))
}
