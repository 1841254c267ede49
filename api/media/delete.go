package media

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	mediaService "github.com/clipforge/media-api/internal/services/media"
)

// Delete removes a media record and its derived blobs
// @Summary      Delete a media record
// @Description  Deletes the record and cascades to the source blob, derived audio blob and highlight clip blob
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      200 {object} types.BaseResponse "Media deleted"
// @Failure      404 {object} types.ErrorResponse "Media not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		if err := deps.MediaService.Delete(c.Request.Context(), uuid); err != nil {
			if errors.Is(err, mediaService.ErrMediaNotFound) {
				types.SendError(c, http.StatusNotFound, "Media not found")
			} else {
				log.Printf("[ERROR] Failed to delete media %s: %v", uuid, err)
				types.SendError(c, http.StatusInternalServerError, "Failed to delete media")
			}
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{
			Status:  types.StatusOK,
			Message: "Media deleted",
		})
	}
}
