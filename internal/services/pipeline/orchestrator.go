package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/providers"
	"github.com/clipforge/media-api/pkg/download"
	"github.com/clipforge/media-api/pkg/ffmpeg"
)

// HighlightScheduler enqueues the detached highlight render job. Implemented
// over the job queue by the worker package.
type HighlightScheduler interface {
	ScheduleHighlight(ctx context.Context, mediaUUID string) error
}

// Config tunes the pipeline run
type Config struct {
	MaxAttempts     int           // retry budget per provider call
	BaseDelay       time.Duration // first retry backoff
	InsightsTimeout time.Duration // per sub-analysis
	TempDir         string
	MaxHighlights   int     // segments selected for the reel
	HighlightWindow float64 // seconds of media per selected segment
}

// Orchestrator drives one media record through transcription, content
// analysis and the insights fan-out, then settles the aggregate status.
// Stage failures are recorded, never fatal: analysis still runs after a
// failed transcription, and the run completes as long as at least one of the
// two primary stages produced a result.
type Orchestrator struct {
	store       Store
	blobs       blobstore.Store
	downloader  *download.Downloader
	ffmpeg      *ffmpeg.FFmpeg
	transcriber providers.Transcriber
	analyzer    providers.ContentAnalyzer
	renderer    providers.ClipRenderer
	insights    *InsightsAggregator
	scheduler   HighlightScheduler
	lease       Lease
	runner      *Runner
	cfg         Config
}

// NewOrchestrator wires the pipeline together
func NewOrchestrator(
	store Store,
	blobs blobstore.Store,
	downloader *download.Downloader,
	ff *ffmpeg.FFmpeg,
	transcriber providers.Transcriber,
	analyzer providers.ContentAnalyzer,
	renderer providers.ClipRenderer,
	insights *InsightsAggregator,
	scheduler HighlightScheduler,
	lease Lease,
	cfg Config,
) *Orchestrator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxHighlights <= 0 {
		cfg.MaxHighlights = 3
	}
	if cfg.HighlightWindow <= 0 {
		cfg.HighlightWindow = 8
	}

	return &Orchestrator{
		store:       store,
		blobs:       blobs,
		downloader:  downloader,
		ffmpeg:      ff,
		transcriber: transcriber,
		analyzer:    analyzer,
		renderer:    renderer,
		insights:    insights,
		scheduler:   scheduler,
		lease:       lease,
		runner:      NewRunner(store, NewExecutor(cfg.MaxAttempts, cfg.BaseDelay)),
		cfg:         cfg,
	}
}

// Process runs the full pipeline for one media record. Concurrent runs on the
// same record are rejected with ErrLeaseHeld. A record deleted mid-run aborts
// quietly.
func (o *Orchestrator) Process(ctx context.Context, mediaUUID string) error {
	acquired, err := o.lease.Acquire(ctx, mediaUUID)
	if err != nil {
		return fmt.Errorf("acquiring pipeline lease: %w", err)
	}
	if !acquired {
		return ErrLeaseHeld
	}
	// Release with a fresh context so a canceled run still frees the record
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := o.lease.Release(releaseCtx, mediaUUID); err != nil {
			log.Printf("[WARNING] Failed to release pipeline lease for %s: %v", mediaUUID, err)
		}
	}()

	rec, err := o.store.GetByUUID(ctx, mediaUUID)
	if err != nil {
		return err
	}

	log.Printf("[INFO] Pipeline starting for media %s", rec.UUID)

	now := time.Now().UTC()
	startFields := map[string]interface{}{
		"status":           models.ProcessingStatusProcessing,
		"completed_at":     nil,
		"processing_error": "",
	}
	// startedAt marks the first run only; a reprocess keeps the original
	firstRun := rec.StartedAt == nil
	if firstRun {
		startFields["started_at"] = &now
	}
	if err := o.runner.persist(ctx, rec.UUID, startFields); err != nil {
		return o.settleEscalation(rec.UUID, err)
	}
	rec.Status = models.ProcessingStatusProcessing
	rec.ProcessingError = ""
	if firstRun {
		rec.StartedAt = &now
	}

	if _, err := o.runner.Run(ctx, rec, StageTranscription, o.transcriptionStage(rec)); err != nil {
		return o.settleEscalation(rec.UUID, err)
	}

	// Analysis runs regardless of how transcription went; it degrades to
	// metadata-only input on its own.
	if _, err := o.runner.Run(ctx, rec, StageAnalysis, o.analysisStage(rec)); err != nil {
		return o.settleEscalation(rec.UUID, err)
	}

	scheduleReel := false
	insightsStage := func(ctx context.Context) (map[string]interface{}, error) {
		payload := o.insights.Run(ctx, rec)
		scheduleReel = o.prepareHighlightReel(rec, payload)
		rec.Insights = payload
		return map[string]interface{}{"insights": payload}, nil
	}
	if _, err := o.runner.Run(ctx, rec, StageInsights, insightsStage); err != nil {
		return o.settleEscalation(rec.UUID, err)
	}

	if err := o.settleAggregate(ctx, rec); err != nil {
		return o.settleEscalation(rec.UUID, err)
	}

	// The reel is detached: it starts after the aggregate status settles and
	// its outcome never changes it.
	if scheduleReel {
		if err := o.scheduler.ScheduleHighlight(ctx, rec.UUID); err != nil {
			log.Printf("[ERROR] Failed to schedule highlight render for %s: %v", rec.UUID, err)
		}
	}

	log.Printf("[INFO] Pipeline finished for media %s with status %s", rec.UUID, rec.Status)
	return nil
}

// settleEscalation turns a vanished record into a quiet abort; anything else
// propagates to the job layer.
func (o *Orchestrator) settleEscalation(mediaUUID string, err error) error {
	if errors.Is(err, ErrRecordVanished) {
		log.Printf("[WARNING] Media %s deleted during processing, aborting pipeline", mediaUUID)
		return nil
	}
	return err
}

func (o *Orchestrator) settleAggregate(ctx context.Context, rec *models.MediaRecord) error {
	status := models.ProcessingStatusFailed
	summary := ""
	if rec.TranscriptionStatus == models.StageStatusCompleted ||
		rec.AnalysisStatus == models.StageStatusCompleted {
		status = models.ProcessingStatusCompleted
	} else {
		summary = rec.FailureSummary()
	}

	now := time.Now().UTC()
	fields := map[string]interface{}{
		"status":           status,
		"completed_at":     &now,
		"processing_error": summary,
	}
	if err := o.runner.persist(ctx, rec.UUID, fields); err != nil {
		return err
	}
	rec.Status = status
	rec.ProcessingError = summary
	rec.CompletedAt = &now
	return nil
}

// transcriptionStage fetches the source, derives the audio blob and produces
// the transcript. An unconfigured transcriber yields a labeled placeholder
// instead of a failure.
func (o *Orchestrator) transcriptionStage(rec *models.MediaRecord) StageFunc {
	return func(ctx context.Context) (map[string]interface{}, error) {
		sourcePath, cleanup, err := o.fetchSource(ctx, rec)
		if err != nil {
			return nil, err
		}
		defer cleanup()

		fields := map[string]interface{}{}

		if meta, err := o.ffmpeg.GetMetadata(ctx, sourcePath); err == nil {
			rec.Duration = meta.Duration
			fields["duration"] = meta.Duration
		} else {
			log.Printf("[WARNING] Could not probe media %s: %v", rec.UUID, err)
		}

		// The derived audio feeds both transcription and later diarization;
		// if extraction fails we transcribe the source directly.
		audioPath := sourcePath
		var audioKey, audioURL string
		if extracted, err := o.ffmpeg.ExtractAudio(ctx, sourcePath, o.cfg.TempDir); err == nil {
			defer os.Remove(extracted)
			audioPath = extracted
			audioKey, audioURL = o.storeDerivedAudio(ctx, rec.UUID, extracted)
		} else {
			log.Printf("[WARNING] Audio extraction failed for media %s: %v", rec.UUID, err)
		}

		var transcript *models.TranscriptPayload
		if !o.transcriber.Configured() {
			transcript = providers.PlaceholderTranscript(rec.Title)
		} else {
			transcript, err = o.transcriber.Transcribe(ctx, audioPath)
			if providers.IsUnconfigured(err) {
				transcript = providers.PlaceholderTranscript(rec.Title)
			} else if err != nil {
				return nil, err
			}
		}

		transcript.AudioKey = audioKey
		transcript.AudioURL = audioURL
		rec.Transcript = transcript
		fields["transcript"] = transcript
		return fields, nil
	}
}

// analysisStage derives tags, objects, emotions and a summary. It uses the
// transcript when a real one exists and falls back to record metadata when
// the analyzer is unconfigured.
func (o *Orchestrator) analysisStage(rec *models.MediaRecord) StageFunc {
	return func(ctx context.Context) (map[string]interface{}, error) {
		transcriptText := ""
		if rec.HasTranscriptText() && rec.Transcript.Source != "placeholder" {
			transcriptText = rec.Transcript.Text
		}

		var analysis *models.AnalysisPayload
		if !o.analyzer.Configured() {
			analysis = providers.FallbackAnalysis(rec.Title, rec.Description)
		} else {
			var err error
			analysis, err = o.analyzer.Analyze(ctx, rec.SourceURL, transcriptText)
			if providers.IsUnconfigured(err) {
				analysis = providers.FallbackAnalysis(rec.Title, rec.Description)
			} else if err != nil {
				return nil, err
			}
		}

		tagNames := make([]string, 0, len(analysis.Tags))
		for _, tag := range analysis.Tags {
			tagNames = append(tagNames, tag.Tag)
		}

		// Generated tags are a bonus; their failure never fails the stage
		if analysis.Source != "metadata" && o.analyzer.Configured() {
			if generated, err := o.analyzer.GenerateTags(ctx, rec.Title, rec.Description, transcriptText); err == nil {
				tagNames = append(tagNames, generated...)
			} else {
				log.Printf("[WARNING] Tag generation failed for media %s: %v", rec.UUID, err)
			}
		}

		merged := rec.MergeTags(tagNames...)
		rec.Analysis = analysis

		return map[string]interface{}{
			"analysis": analysis,
			"tags":     merged,
		}, nil
	}
}

// prepareHighlightReel selects reel segments from the computed insights and
// reports whether a render should be scheduled
func (o *Orchestrator) prepareHighlightReel(rec *models.MediaRecord, payload *models.InsightsPayload) bool {
	if !o.renderer.Configured() {
		payload.HighlightReel = models.HighlightReel{
			Status: models.HighlightStatusFailed,
			Error:  "clip rendering not available",
		}
		return false
	}

	segments := o.selectHighlightSegments(payload, rec.Duration)
	if len(segments) == 0 {
		log.Printf("[DEBUG] No highlight segments selectable for media %s", rec.UUID)
		payload.HighlightReel = models.HighlightReel{Status: models.HighlightStatusFailed, Error: "no segments selected"}
		return false
	}

	payload.HighlightReel = models.HighlightReel{
		Status:   models.HighlightStatusPending,
		Segments: segments,
	}
	return true
}

// selectHighlightSegments picks up to MaxHighlights non-overlapping windows,
// preferring keyword occurrences and falling back to topic chapter openings.
// Selection is deterministic for a given payload.
func (o *Orchestrator) selectHighlightSegments(payload *models.InsightsPayload, duration float64) []models.HighlightSegment {
	window := o.cfg.HighlightWindow

	var candidates []models.HighlightSegment
	for _, kw := range payload.Keywords {
		for _, ts := range kw.Timestamps {
			candidates = append(candidates, models.HighlightSegment{
				Start:  ts,
				End:    ts + window,
				Phrase: kw.Phrase,
			})
		}
	}
	if len(candidates) == 0 {
		for _, chapter := range payload.TopicChapters {
			candidates = append(candidates, models.HighlightSegment{
				Start:  chapter.Start,
				End:    chapter.Start + window,
				Phrase: chapter.Title,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})

	var selected []models.HighlightSegment
	lastEnd := -1.0
	for _, c := range candidates {
		if len(selected) >= o.cfg.MaxHighlights {
			break
		}
		if c.Start < 0 || c.Start < lastEnd {
			continue
		}
		if duration > 0 {
			if c.Start >= duration {
				continue
			}
			if c.End > duration {
				c.End = duration
			}
		}
		if c.End <= c.Start {
			continue
		}
		selected = append(selected, c)
		lastEnd = c.End
	}
	return selected
}

// fetchSource materializes the record's source media as a local temp file
func (o *Orchestrator) fetchSource(ctx context.Context, rec *models.MediaRecord) (string, func(), error) {
	return FetchSource(ctx, o.blobs, o.downloader, o.cfg.TempDir, rec)
}

// storeDerivedAudio uploads the extracted audio; failure is logged, not
// fatal, since transcription can proceed from the local file
func (o *Orchestrator) storeDerivedAudio(ctx context.Context, mediaUUID, audioPath string) (string, string) {
	f, err := os.Open(audioPath)
	if err != nil {
		log.Printf("[WARNING] Could not open extracted audio for media %s: %v", mediaUUID, err)
		return "", ""
	}
	defer f.Close()

	key := fmt.Sprintf("derived/%s/audio.wav", mediaUUID)
	url, err := o.blobs.Put(ctx, key, f, "audio/wav")
	if err != nil {
		log.Printf("[WARNING] Could not store derived audio for media %s: %v", mediaUUID, err)
		return "", ""
	}
	return key, url
}
