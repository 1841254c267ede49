package media

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// List returns a paginated page of media records
// @Summary      List media records
// @Description  Lists media records newest first, optionally filtered by owner
// @Tags         media
// @Produce      json
// @Param        owner_id query string false "Filter by owner"
// @Param        limit query int false "Page size (max 100)" default(20)
// @Param        offset query int false "Page offset"
// @Success      200 {object} types.MediaListResponse "Media page"
// @Failure      400 {object} types.ErrorResponse "Bad request - invalid query parameters"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.ListMediaRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			types.SendError(c, http.StatusBadRequest, "Invalid query parameters")
			return
		}

		recs, total, err := deps.MediaService.List(c.Request.Context(), req.OwnerID, req.Limit, req.Offset)
		if err != nil {
			log.Printf("[ERROR] Failed to list media (owner=%q): %v", req.OwnerID, err)
			types.SendError(c, http.StatusInternalServerError, "Failed to list media")
			return
		}

		items := types.MediaListFromRecords(recs)
		c.JSON(http.StatusOK, types.MediaListResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Media listed",
			},
			Media:  items,
			Count:  len(items),
			Total:  total,
			Offset: req.Offset,
		})
	}
}
