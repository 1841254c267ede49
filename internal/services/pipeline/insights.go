package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/providers"
)

// InsightsAggregator fans transcript-derived analyses out to the capability
// providers and merges their results into one payload. Sub-analyses run
// concurrently and are isolated: one failing or unconfigured provider leaves
// its own field empty and never disturbs the others. The aggregator itself
// never returns an error.
type InsightsAggregator struct {
	diarizer  providers.Diarizer
	sentiment providers.SentimentScorer
	topics    providers.TopicSegmenter

	executor *Executor
	timeout  time.Duration
}

// NewInsightsAggregator creates the fan-out aggregator. timeout bounds each
// sub-analysis independently.
func NewInsightsAggregator(diarizer providers.Diarizer, sentiment providers.SentimentScorer, topics providers.TopicSegmenter, executor *Executor, timeout time.Duration) *InsightsAggregator {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &InsightsAggregator{
		diarizer:  diarizer,
		sentiment: sentiment,
		topics:    topics,
		executor:  executor,
		timeout:   timeout,
	}
}

// Run computes all insights for the record. Always returns a payload with
// every list non-nil; the capability stamps record which providers actually
// ran so empty lists are distinguishable from skipped analyses.
func (a *InsightsAggregator) Run(ctx context.Context, rec *models.MediaRecord) *models.InsightsPayload {
	payload := &models.InsightsPayload{
		SpeakerSegments: []models.SpeakerSegment{},
		SentimentPoints: []models.SentimentPoint{},
		TopicChapters:   []models.TopicChapter{},
		Keywords:        []models.Keyword{},
		HighlightReel:   models.HighlightReel{Status: models.HighlightStatusPending},
	}

	// Sub-analyses need real transcript text; a placeholder transcript means
	// nothing ran, regardless of which providers are configured.
	if !a.transcriptUsable(rec) {
		log.Printf("[DEBUG] Skipping insights for media %s: no usable transcript", rec.UUID)
		return payload
	}

	segments := rec.Transcript.Segments
	audioURL := rec.Transcript.AudioURL

	payload.Capabilities = models.InsightCapabilities{
		Diarization: a.diarizer.Configured() && rec.HasDerivedAudio(),
		Sentiment:   a.sentiment.Configured(),
		Topics:      a.topics.Configured(),
		Keywords:    a.topics.Configured(),
	}

	var wg sync.WaitGroup

	if payload.Capabilities.Diarization {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, ok := runSubAnalysis(ctx, a, rec.UUID, "diarization",
				func(ctx context.Context) ([]models.SpeakerSegment, error) {
					return a.diarizer.Diarize(ctx, audioURL)
				})
			if ok {
				payload.SpeakerSegments = result
			} else {
				payload.Capabilities.Diarization = false
			}
		}()
	} else {
		log.Printf("[DEBUG] Diarization skipped for media %s (configured=%v, audio=%v)",
			rec.UUID, a.diarizer.Configured(), rec.HasDerivedAudio())
	}

	if payload.Capabilities.Sentiment {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, ok := runSubAnalysis(ctx, a, rec.UUID, "sentiment",
				func(ctx context.Context) ([]models.SentimentPoint, error) {
					return a.sentiment.ScoreSegments(ctx, segments)
				})
			if ok {
				payload.SentimentPoints = result
			} else {
				payload.Capabilities.Sentiment = false
			}
		}()
	}

	if payload.Capabilities.Topics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, ok := runSubAnalysis(ctx, a, rec.UUID, "topics",
				func(ctx context.Context) ([]models.TopicChapter, error) {
					return a.topics.SegmentTopics(ctx, segments)
				})
			if ok {
				payload.TopicChapters = result
			} else {
				payload.Capabilities.Topics = false
			}
		}()
	}

	if payload.Capabilities.Keywords {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, ok := runSubAnalysis(ctx, a, rec.UUID, "keywords",
				func(ctx context.Context) ([]models.Keyword, error) {
					return a.topics.ExtractKeywords(ctx, segments)
				})
			if ok {
				payload.Keywords = result
			} else {
				payload.Capabilities.Keywords = false
			}
		}()
	}

	wg.Wait()
	return payload
}

func (a *InsightsAggregator) transcriptUsable(rec *models.MediaRecord) bool {
	return rec.HasTranscriptText() && rec.Transcript.Source != "placeholder"
}

// runSubAnalysis executes one fan-out branch under its own timeout and retry
// budget. Returns (result, true) on success; on any failure it logs, reports
// false, and the branch's field stays empty.
func runSubAnalysis[T any](ctx context.Context, a *InsightsAggregator, mediaUUID, name string, fn func(ctx context.Context) (T, error)) (T, bool) {
	subCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var result T
	err := a.executor.Execute(subCtx, func() error {
		var callErr error
		result, callErr = fn(subCtx)
		return callErr
	})
	if err != nil {
		if providers.IsUnconfigured(err) {
			log.Printf("[DEBUG] Insights %s unavailable for media %s: provider not configured", name, mediaUUID)
		} else {
			log.Printf("[ERROR] Insights %s failed for media %s: %v", name, mediaUUID, err)
		}
		var zero T
		return zero, false
	}
	return result, true
}
