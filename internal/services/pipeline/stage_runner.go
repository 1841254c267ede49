package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/media"
)

// ErrRecordVanished signals the media record was deleted mid-pipeline. The
// run aborts quietly; there is nothing left to record results against.
var ErrRecordVanished = errors.New("media record deleted during processing")

// Store is the slice of persistence the pipeline needs. Satisfied by
// media.MediaRepository.
type Store interface {
	GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error)
	UpdateFields(ctx context.Context, uuid string, fields map[string]interface{}) error
}

// Stage identifies one pipeline stage
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageInsights      Stage = "insights"
)

func (s Stage) statusColumn() string { return string(s) + "_status" }
func (s Stage) errorColumn() string  { return string(s) + "_error" }

// StageFunc performs the work of one stage against the in-memory record and
// returns the columns to persist on success. Implementations mutate rec so
// downstream stages see the result without a reload.
type StageFunc func(ctx context.Context) (map[string]interface{}, error)

// Runner executes one stage with the persist-first protocol: mark the stage
// processing, run the work under the retry executor, then persist either the
// result or the failure. A stage failure is recorded on the record and
// swallowed so sibling stages keep running; only record-vanished and
// persistence failures escalate.
type Runner struct {
	store    Store
	executor *Executor
}

// NewRunner creates a stage runner
func NewRunner(store Store, executor *Executor) *Runner {
	return &Runner{
		store:    store,
		executor: executor,
	}
}

// Run executes the stage and reports whether it completed. The returned error
// is non-nil only for escalating conditions, never for stage-level failures.
func (r *Runner) Run(ctx context.Context, rec *models.MediaRecord, stage Stage, fn StageFunc) (bool, error) {
	if err := r.persist(ctx, rec.UUID, map[string]interface{}{
		stage.statusColumn(): models.StageStatusProcessing,
		stage.errorColumn():  "",
	}); err != nil {
		return false, err
	}
	setStageStatus(rec, stage, models.StageStatusProcessing, "")

	var fields map[string]interface{}
	runErr := r.executor.Execute(ctx, func() error {
		var err error
		fields, err = fn(ctx)
		return err
	})

	if runErr != nil {
		log.Printf("[ERROR] Stage %s failed for media %s: %v", stage, rec.UUID, runErr)
		if err := r.persist(ctx, rec.UUID, map[string]interface{}{
			stage.statusColumn(): models.StageStatusFailed,
			stage.errorColumn():  runErr.Error(),
		}); err != nil {
			return false, err
		}
		setStageStatus(rec, stage, models.StageStatusFailed, runErr.Error())
		return false, nil
	}

	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields[stage.statusColumn()] = models.StageStatusCompleted
	fields[stage.errorColumn()] = ""

	if err := r.persist(ctx, rec.UUID, fields); err != nil {
		return false, err
	}
	setStageStatus(rec, stage, models.StageStatusCompleted, "")

	log.Printf("[DEBUG] Stage %s completed for media %s", stage, rec.UUID)
	return true, nil
}

func (r *Runner) persist(ctx context.Context, uuid string, fields map[string]interface{}) error {
	err := r.store.UpdateFields(ctx, uuid, fields)
	if err == nil {
		return nil
	}
	if errors.Is(err, media.ErrMediaNotFound) {
		return fmt.Errorf("%w: %s", ErrRecordVanished, uuid)
	}
	return fmt.Errorf("persisting stage state for %s: %w", uuid, err)
}

func setStageStatus(rec *models.MediaRecord, stage Stage, status models.StageStatus, errMsg string) {
	switch stage {
	case StageTranscription:
		rec.TranscriptionStatus = status
		rec.TranscriptionError = errMsg
	case StageAnalysis:
		rec.AnalysisStatus = status
		rec.AnalysisError = errMsg
	case StageInsights:
		rec.InsightsStatus = status
		rec.InsightsError = errMsg
	}
}
