package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// GetInsights returns the insights fan-out results and content analysis
// @Summary      Get insights
// @Description  Returns the cross-modal insights (speakers, sentiment, topics, keywords, highlight reel) and the content analysis payload. 404 until the insights stage has run.
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      200 {object} types.InsightsResponse "Insights"
// @Failure      404 {object} types.ErrorResponse "Media or insights not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid}/insights [get]
func GetInsights(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		rec, ok := loadRecord(c, deps, uuid)
		if !ok {
			return
		}

		if rec.Insights == nil {
			types.SendError(c, http.StatusNotFound, "No insights available yet")
			return
		}

		c.JSON(http.StatusOK, types.InsightsResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Insights found",
			},
			UUID:     rec.UUID,
			Insights: rec.Insights,
			Analysis: rec.Analysis,
		})
	}
}
