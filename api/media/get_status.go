package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// GetStatus returns the aggregate and per-stage processing statuses
// @Summary      Get processing status
// @Description  Returns the aggregate pipeline status plus per-stage and highlight reel statuses, suitable for polling
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      200 {object} types.ProcessingStatusResponse "Processing status"
// @Failure      404 {object} types.ErrorResponse "Media not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid}/status [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		rec, ok := loadRecord(c, deps, uuid)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, types.ProcessingStatusResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Processing status",
			},
			UUID:       rec.UUID,
			Processing: types.ProcessingStateFromRecord(rec),
		})
	}
}
