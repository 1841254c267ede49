package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/pkg/download"
)

// FetchSource materializes the record's source media as a local temp file.
// Uploaded sources come from the blob store, URL sources are downloaded.
// The returned cleanup removes the temp file and is safe to call always.
func FetchSource(ctx context.Context, blobs blobstore.Store, downloader *download.Downloader, tempDir string, rec *models.MediaRecord) (string, func(), error) {
	noop := func() {}

	if rec.SourceKey != "" {
		reader, err := blobs.Get(ctx, rec.SourceKey)
		if err != nil {
			return "", noop, fmt.Errorf("fetching source blob %s: %w", rec.SourceKey, err)
		}
		defer reader.Close()

		tmp, err := os.CreateTemp(tempDir, "media_"+rec.UUID+"_*")
		if err != nil {
			return "", noop, fmt.Errorf("creating temp source file: %w", err)
		}
		if _, err := io.Copy(tmp, reader); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return "", noop, fmt.Errorf("copying source blob: %w", err)
		}
		tmp.Close()
		path := tmp.Name()
		return path, func() { os.Remove(path) }, nil
	}

	if rec.SourceURL != "" {
		result, err := downloader.DownloadToTemp(ctx, rec.SourceURL, rec.UUID)
		if err != nil {
			return "", noop, fmt.Errorf("downloading source: %w", err)
		}
		return result.FilePath, func() { _ = download.CleanupTempFile(result.FilePath) }, nil
	}

	return "", noop, fmt.Errorf("media %s has no source blob or URL", rec.UUID)
}
