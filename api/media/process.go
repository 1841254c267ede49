package media

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	mediaService "github.com/clipforge/media-api/internal/services/media"
)

// Process queues a reprocessing run for an existing record
// @Summary      Reprocess a media record
// @Description  Queues a new pipeline run. Returns 409 when a run is already queued or in flight.
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      202 {object} types.BaseResponse "Processing queued"
// @Failure      404 {object} types.ErrorResponse "Media not found"
// @Failure      409 {object} types.ErrorResponse "Processing already in progress"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid}/process [post]
func Process(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		err := deps.MediaService.TriggerProcessing(c.Request.Context(), uuid)
		switch {
		case err == nil:
			c.JSON(http.StatusAccepted, types.BaseResponse{
				Status:  types.StatusQueued,
				Message: "Processing queued",
			})

		case errors.Is(err, mediaService.ErrAlreadyRunning):
			types.SendError(c, http.StatusConflict, "Processing already in progress")

		case errors.Is(err, mediaService.ErrMediaNotFound):
			types.SendError(c, http.StatusNotFound, "Media not found")

		default:
			log.Printf("[ERROR] Failed to queue processing for media %s: %v", uuid, err)
			types.SendError(c, http.StatusInternalServerError, "Failed to queue processing")
		}
	}
}
