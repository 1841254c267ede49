package workers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/internal/services/pipeline"
)

// PipelineProcessor runs the media processing pipeline for queued jobs
type PipelineProcessor struct {
	orchestrator *pipeline.Orchestrator
	jobService   jobs.Service
}

// NewPipelineProcessor creates a processor for media_processing jobs
func NewPipelineProcessor(orchestrator *pipeline.Orchestrator, jobService jobs.Service) *PipelineProcessor {
	return &PipelineProcessor{
		orchestrator: orchestrator,
		jobService:   jobService,
	}
}

// CanProcess returns true for media processing jobs
func (p *PipelineProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeMediaProcessing
}

// ProcessJob runs the pipeline for the job's media record
func (p *PipelineProcessor) ProcessJob(ctx context.Context, job *models.Job) error {
	mediaUUID, ok := job.GetPayloadString("media_uuid")
	if !ok {
		return models.NewSystemError("invalid_payload",
			"job payload missing media_uuid", "", nil)
	}

	err := p.orchestrator.Process(ctx, mediaUUID)

	switch {
	case err == nil:
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
			"media_uuid": mediaUUID,
		})

	case errors.Is(err, pipeline.ErrLeaseHeld):
		// Another worker already owns this record; the job is redundant,
		// not failed
		log.Printf("[DEBUG] Pipeline job %d skipped: media %s already being processed", job.ID, mediaUUID)
		return p.jobService.CompleteJob(ctx, job.ID, models.JobResult{
			"media_uuid": mediaUUID,
			"skipped":    "already processing",
		})

	case errors.Is(err, media.ErrMediaNotFound):
		return models.NewNotFoundError("media_not_found",
			fmt.Sprintf("media %s does not exist", mediaUUID), "", err)

	default:
		return models.NewSystemError("pipeline_error",
			fmt.Sprintf("pipeline failed for media %s", mediaUUID), err.Error(), err)
	}
}
