package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/internal/services/pipeline"
	"github.com/clipforge/media-api/internal/services/providers"
	"github.com/clipforge/media-api/pkg/download"
)

// HighlightScheduler enqueues highlight render jobs on the shared queue
type HighlightScheduler struct {
	jobService jobs.Service
}

// NewHighlightScheduler creates the scheduler the pipeline hands reels to
func NewHighlightScheduler(jobService jobs.Service) *HighlightScheduler {
	return &HighlightScheduler{jobService: jobService}
}

// ScheduleHighlight enqueues one render job per media record
func (s *HighlightScheduler) ScheduleHighlight(ctx context.Context, mediaUUID string) error {
	_, err := s.jobService.EnqueueUniqueJob(ctx, models.JobTypeHighlightRender,
		models.JobPayload{"media_uuid": mediaUUID}, "media_uuid")
	return err
}

// HighlightProcessor renders the highlight reel for queued jobs. It runs
// detached from the pipeline: the record's aggregate status never changes
// based on how the render goes, only the reel state inside insights does.
type HighlightProcessor struct {
	repo       media.Repository
	blobs      blobstore.Store
	renderer   providers.ClipRenderer
	downloader *download.Downloader
	jobService jobs.Service
	tempDir    string
}

// NewHighlightProcessor creates a processor for highlight_render jobs
func NewHighlightProcessor(
	repo media.Repository,
	blobs blobstore.Store,
	renderer providers.ClipRenderer,
	downloader *download.Downloader,
	jobService jobs.Service,
	tempDir string,
) *HighlightProcessor {
	return &HighlightProcessor{
		repo:       repo,
		blobs:      blobs,
		renderer:   renderer,
		downloader: downloader,
		jobService: jobService,
		tempDir:    tempDir,
	}
}

// CanProcess returns true for highlight render jobs
func (p *HighlightProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeHighlightRender
}

// ProcessJob renders and stores the highlight reel for the job's record
func (p *HighlightProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	mediaUUID, ok := job.GetPayloadString("media_uuid")
	if !ok {
		return models.NewSystemError("invalid_payload",
			"job payload missing media_uuid", "", nil)
	}

	rec, err := p.repo.GetByUUID(ctx, mediaUUID)
	if err != nil {
		if errors.Is(err, media.ErrMediaNotFound) {
			return models.NewNotFoundError("media_not_found",
				fmt.Sprintf("media %s does not exist", mediaUUID), "", err)
		}
		return models.NewSystemError("media_lookup_failed",
			fmt.Sprintf("could not load media %s", mediaUUID), err.Error(), err)
	}

	if rec.Insights == nil || len(rec.Insights.HighlightReel.Segments) == 0 {
		log.Printf("[WARNING] Highlight job %d has no segments for media %s", job.ID, mediaUUID)
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
			"media_uuid": mediaUUID,
			"skipped":    "no segments",
		})
	}

	if err := p.setReelState(ctx, rec, models.HighlightStatusProcessing, "", "", ""); err != nil {
		return models.NewSystemError("reel_state_failed",
			"could not mark highlight reel processing", err.Error(), err)
	}

	outputKey, outputURL, renderErr := p.render(ctx, rec)
	if renderErr != nil {
		log.Printf("[ERROR] Highlight render failed for media %s: %v", mediaUUID, renderErr)
		if err := p.setReelState(ctx, rec, models.HighlightStatusFailed, "", "", renderErr.Error()); err != nil {
			log.Printf("[ERROR] Could not record highlight failure for media %s: %v", mediaUUID, err)
		}
		// The reel carries its own failure state; the job itself is done
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
			"media_uuid": mediaUUID,
			"reel":       "failed",
		})
	}

	if err := p.setReelState(ctx, rec, models.HighlightStatusReady, outputKey, outputURL, ""); err != nil {
		return models.NewSystemError("reel_state_failed",
			"could not mark highlight reel ready", err.Error(), err)
	}

	log.Printf("[INFO] Highlight reel ready for media %s at %s", mediaUUID, outputKey)
	return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
		"media_uuid": mediaUUID,
		"output_key": outputKey,
	})
}

// render cuts the reel locally and uploads it
func (p *HighlightProcessor) render(ctx context.Context, rec *models.MediaRecord) (string, string, error) {
	sourcePath, cleanup, err := pipeline.FetchSource(ctx, p.blobs, p.downloader, p.tempDir, rec)
	if err != nil {
		return "", "", err
	}
	defer cleanup()

	outPath, err := p.renderer.RenderHighlight(ctx, sourcePath, rec.Insights.HighlightReel.Segments)
	if err != nil {
		return "", "", err
	}
	defer os.Remove(outPath)

	f, err := os.Open(outPath)
	if err != nil {
		return "", "", fmt.Errorf("opening rendered clip: %w", err)
	}
	defer f.Close()

	ext := filepath.Ext(outPath)
	if ext == "" {
		ext = ".mp4"
	}
	key := fmt.Sprintf("highlights/%s/reel%s", rec.UUID, ext)
	url, err := p.blobs.Put(ctx, key, f, "")
	if err != nil {
		return "", "", fmt.Errorf("storing rendered clip: %w", err)
	}
	return key, url, nil
}

// setReelState persists the reel status inside the insights payload
func (p *HighlightProcessor) setReelState(ctx context.Context, rec *models.MediaRecord, status models.HighlightStatus, outputKey, outputURL, errMsg string) error {
	rec.Insights.HighlightReel.Status = status
	rec.Insights.HighlightReel.Error = errMsg
	if outputKey != "" {
		rec.Insights.HighlightReel.OutputKey = outputKey
		rec.Insights.HighlightReel.OutputURL = outputURL
	}
	return p.repo.UpdateFields(ctx, rec.UUID, map[string]interface{}{
		"insights": rec.Insights,
	})
}
