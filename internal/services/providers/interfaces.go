package providers

import (
	"context"

	"github.com/clipforge/media-api/internal/models"
)

// Every capability adapter is a narrow function of (input, ctx) -> (result,
// classified error). Implementations wrap one external provider each and
// never let loosely-typed provider output leak past the adapter boundary.

// Transcriber converts an audio file into a transcript
type Transcriber interface {
	// Transcribe reads the audio at the given local path and returns a
	// transcript with segment and word timings
	Transcribe(ctx context.Context, audioPath string) (*models.TranscriptPayload, error)
	// Configured reports whether this capability is enabled
	Configured() bool
}

// ContentAnalyzer derives tags, objects, emotions and a summary from the
// media's visual reference and transcript text
type ContentAnalyzer interface {
	Analyze(ctx context.Context, visualURL, transcriptText string) (*models.AnalysisPayload, error)
	GenerateTags(ctx context.Context, title, description, transcriptText string) ([]string, error)
	Configured() bool
}

// Diarizer splits audio into speaker-attributed segments
type Diarizer interface {
	Diarize(ctx context.Context, audioURL string) ([]models.SpeakerSegment, error)
	Configured() bool
}

// SentimentScorer scores transcript segments on a [-1, 1] scale over time
type SentimentScorer interface {
	ScoreSegments(ctx context.Context, segments []models.TranscriptSegment) ([]models.SentimentPoint, error)
	Configured() bool
}

// TopicSegmenter splits a transcript into topical chapters and extracts
// keyword phrases with their timestamps. Both operations are typically
// served by the same LLM-backed provider.
type TopicSegmenter interface {
	SegmentTopics(ctx context.Context, segments []models.TranscriptSegment) ([]models.TopicChapter, error)
	ExtractKeywords(ctx context.Context, segments []models.TranscriptSegment) ([]models.Keyword, error)
	Configured() bool
}

// ClipRenderer cuts the selected segments out of the source media and
// produces the highlight clip
type ClipRenderer interface {
	RenderHighlight(ctx context.Context, sourcePath string, segments []models.HighlightSegment) (outputPath string, err error)
	Configured() bool
}
