package blobs

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clipforge/media-api/api/types"
	"github.com/clipforge/media-api/internal/services/blobstore"
)

// Get streams a stored blob. This backs the URLs handed out by the local
// filesystem store; S3 deployments serve blobs from the bucket directly.
// @Summary      Fetch a stored blob
// @Description  Streams a source, derived audio or highlight clip blob by key
// @Tags         blobs
// @Produce      octet-stream
// @Param        key path string true "Blob key"
// @Success      200 {file} binary "Blob content"
// @Failure      404 {object} types.ErrorResponse "Blob not found"
// @Failure      500 {object} types.ErrorResponse "Internal server error"
// @Router       /api/v1/blobs/{key} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" {
			types.SendError(c, http.StatusBadRequest, "Missing blob key")
			return
		}

		content, err := deps.BlobStore.Get(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, blobstore.ErrBlobNotFound) {
				types.SendError(c, http.StatusNotFound, "Blob not found")
			} else {
				log.Printf("[ERROR] Failed to fetch blob %s: %v", key, err)
				types.SendError(c, http.StatusInternalServerError, "Failed to fetch blob")
			}
			return
		}
		defer content.Close()

		contentType := mime.TypeByExtension(filepath.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		c.Header("Content-Type", contentType)
		c.Status(http.StatusOK)
		if _, err := io.Copy(c.Writer, content); err != nil {
			log.Printf("[WARNING] Interrupted while streaming blob %s: %v", key, err)
		}
	}
}
