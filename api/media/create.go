package media

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/models"
	mediaService "github.com/clipforge/media-api/internal/services/media"
)

// Create ingests a new media record from a multipart upload or a source URL
// @Summary      Ingest a media file
// @Description  Accepts a multipart file upload or a JSON body with a source URL. Creates a pending record and queues the processing pipeline.
// @Tags         media
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Param        request body types.CreateMediaRequest false "URL ingest parameters (JSON mode)"
// @Success      202 {object} types.SingleMediaResponse "Record created, processing queued"
// @Failure      400 {object} types.ErrorResponse "Bad request - no file or source URL"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/media [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rec *models.MediaRecord
		var err error

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			rec, err = createFromUpload(c, deps)
		} else {
			rec, err = createFromURL(c, deps)
		}
		if err != nil || rec == nil {
			// createFromUpload/createFromURL already wrote the response
			return
		}

		// Queue the pipeline; ingest succeeds even when the queue is briefly
		// unavailable, the record can be reprocessed later
		if err := deps.MediaService.TriggerProcessing(c.Request.Context(), rec.UUID); err != nil {
			log.Printf("[ERROR] Failed to queue processing for media %s: %v", rec.UUID, err)
		}

		media := types.MediaFromRecord(rec)
		c.JSON(http.StatusAccepted, types.SingleMediaResponse{
			BaseResponse: types.BaseResponse{
				Status:  types.StatusQueued,
				Message: "Media accepted for processing",
			},
			Media: &media,
		})
	}
}

// createFromUpload handles the multipart form path
func createFromUpload(c *gin.Context, deps *types.Dependencies) (*models.MediaRecord, error) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		log.Printf("[ERROR] Invalid multipart upload: %v", err)
		types.SendError(c, http.StatusBadRequest, "Missing file field in multipart upload")
		return nil, err
	}
	defer file.Close()

	input := mediaService.CreateInput{
		OwnerID:     c.PostForm("ownerId"),
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Filename:    header.Filename,
		MimeType:    header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
	}
	if input.Title == "" {
		input.Title = header.Filename
	}

	log.Printf("[DEBUG] Creating media from upload: %s (%d bytes)", header.Filename, header.Size)
	rec, err := deps.MediaService.CreateFromUpload(c.Request.Context(), input, file)
	if err != nil {
		log.Printf("[ERROR] Failed to create media from upload %s: %v", header.Filename, err)
		types.SendError(c, http.StatusInternalServerError, "Failed to store uploaded media")
		return nil, err
	}
	return rec, nil
}

// createFromURL handles the JSON url-ingest path
func createFromURL(c *gin.Context, deps *types.Dependencies) (*models.MediaRecord, error) {
	var req types.CreateMediaRequest
	if !types.BindJSONOrError(c, &req) {
		return nil, mediaService.ErrInvalidInput
	}

	input := mediaService.CreateInput{
		OwnerID:     req.OwnerID,
		Title:       req.Title,
		Description: req.Description,
	}

	log.Printf("[DEBUG] Creating media from URL: %s", req.SourceURL)
	rec, err := deps.MediaService.CreateFromURL(c.Request.Context(), input, req.SourceURL)
	if err != nil {
		if errors.Is(err, mediaService.ErrInvalidInput) {
			types.SendError(c, http.StatusBadRequest, "Source URL must be http or https")
			return nil, err
		}
		log.Printf("[ERROR] Failed to create media from URL %s: %v", req.SourceURL, err)
		types.SendError(c, http.StatusInternalServerError, "Failed to create media record")
		return nil, err
	}
	return rec, nil
}
