package media

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/models"
	mediaService "github.com/clipforge/media-api/internal/services/media"
)

// Get returns a single media record by UUID
// @Summary      Get a media record
// @Description  Returns the full media record including processing payloads
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      200 {object} types.SingleMediaResponse "Media record"
// @Failure      404 {object} types.ErrorResponse "Media not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		rec, ok := loadRecord(c, deps, uuid)
		if !ok {
			return
		}

		media := types.MediaFromRecord(rec)
		c.JSON(http.StatusOK, types.SingleMediaResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Media found",
			},
			Media: &media,
		})
	}
}

// loadRecord fetches a record and writes the error response when it cannot
func loadRecord(c *gin.Context, deps *types.Dependencies, uuid string) (*models.MediaRecord, bool) {
	rec, err := deps.MediaService.GetByUUID(c.Request.Context(), uuid)
	if err != nil {
		if errors.Is(err, mediaService.ErrMediaNotFound) {
			types.SendError(c, http.StatusNotFound, "Media not found")
		} else {
			log.Printf("[ERROR] Failed to fetch media %s: %v", uuid, err)
			types.SendError(c, http.StatusInternalServerError, "Failed to fetch media")
		}
		return nil, false
	}
	return rec, true
}
