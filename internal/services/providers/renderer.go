package providers

import (
	"context"
	"fmt"
	"log"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/pkg/ffmpeg"
)

const rendererProviderName = "renderer"

// FFmpegRenderer renders highlight clips with a local ffmpeg install
type FFmpegRenderer struct {
	ffmpeg  *ffmpeg.FFmpeg
	tempDir string
	enabled bool
}

// NewFFmpegRenderer creates a clip renderer backed by ffmpeg. The renderer
// reports itself unconfigured when the binaries are missing so the highlight
// reel degrades instead of failing.
func NewFFmpegRenderer(ff *ffmpeg.FFmpeg, tempDir string) *FFmpegRenderer {
	enabled := true
	if err := ff.ValidateBinaries(); err != nil {
		log.Printf("[WARNING] Highlight rendering disabled: %v", err)
		enabled = false
	}
	return &FFmpegRenderer{
		ffmpeg:  ff,
		tempDir: tempDir,
		enabled: enabled,
	}
}

// Configured reports whether the rendering capability is enabled
func (r *FFmpegRenderer) Configured() bool {
	return r.enabled
}

// RenderHighlight cuts the selected segments from the source file and
// concatenates them into one clip. Returns the local path of the output;
// the caller owns uploading and cleanup.
func (r *FFmpegRenderer) RenderHighlight(ctx context.Context, sourcePath string, segments []models.HighlightSegment) (string, error) {
	if !r.enabled {
		return "", Unconfigured(rendererProviderName)
	}
	if len(segments) == 0 {
		return "", Terminal(rendererProviderName, fmt.Errorf("no segments selected"))
	}

	spans := make([]ffmpeg.Span, 0, len(segments))
	for _, seg := range segments {
		spans = append(spans, ffmpeg.Span{Start: seg.Start, End: seg.End})
	}

	outPath, err := r.ffmpeg.RenderHighlight(ctx, sourcePath, spans, r.tempDir)
	if err != nil {
		// Local processing failures are not retryable; the input won't change
		return "", Terminal(rendererProviderName, err)
	}
	return outPath, nil
}
