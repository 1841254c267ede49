package media

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
)

// GetTranscript returns the transcript payload of a processed record
// @Summary      Get transcript
// @Description  Returns the transcript derived by the transcription stage. 404 until the stage has produced one.
// @Tags         media
// @Produce      json
// @Param        uuid path string true "Media UUID"
// @Success      200 {object} types.TranscriptResponse "Transcript"
// @Failure      404 {object} types.ErrorResponse "Media or transcript not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media/{uuid}/transcript [get]
func GetTranscript(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid, ok := types.UUIDParam(c)
		if !ok {
			return
		}

		rec, ok := loadRecord(c, deps, uuid)
		if !ok {
			return
		}

		if rec.Transcript == nil {
			types.SendError(c, http.StatusNotFound, "No transcript available yet")
			return
		}

		c.JSON(http.StatusOK, types.TranscriptResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusOK,
				Message: "Transcript found",
			},
			UUID:       rec.UUID,
			Transcript: rec.Transcript,
		})
	}
}
