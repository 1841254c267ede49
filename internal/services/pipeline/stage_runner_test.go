package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/internal/services/providers"
)

// fakeStore records every UpdateFields call and merges the fields so tests
// can assert both the persist order and the final persisted state. Shared by
// the runner and orchestrator tests.
type fakeStore struct {
	rec     *models.MediaRecord
	updates []map[string]interface{}
	merged  map[string]interface{}

	// failOn returns the error for the Nth UpdateFields call (0-based); nil
	// means succeed
	failOn map[int]error
	calls  int
}

func newFakeStore(rec *models.MediaRecord) *fakeStore {
	return &fakeStore{
		rec:    rec,
		merged: make(map[string]interface{}),
		failOn: make(map[int]error),
	}
}

func (s *fakeStore) GetByUUID(_ context.Context, uuid string) (*models.MediaRecord, error) {
	if s.rec == nil || s.rec.UUID != uuid {
		return nil, fmt.Errorf("%w: %s", media.ErrMediaNotFound, uuid)
	}
	return s.rec, nil
}

func (s *fakeStore) UpdateFields(_ context.Context, uuid string, fields map[string]interface{}) error {
	call := s.calls
	s.calls++
	if err, ok := s.failOn[call]; ok {
		return err
	}
	if s.rec == nil || s.rec.UUID != uuid {
		return fmt.Errorf("%w: %s", media.ErrMediaNotFound, uuid)
	}
	s.updates = append(s.updates, fields)
	for k, v := range fields {
		s.merged[k] = v
	}
	return nil
}

func immediateExecutor(maxAttempts int) *Executor {
	e := NewExecutor(maxAttempts, time.Millisecond)
	e.timer = &fakeTimer{}
	return e
}

func TestRunnerPersistsProcessingThenResult(t *testing.T) {
	rec := &models.MediaRecord{UUID: "rec-1"}
	store := newFakeStore(rec)
	runner := NewRunner(store, immediateExecutor(1))

	completed, err := runner.Run(context.Background(), rec, StageTranscription, func(ctx context.Context) (map[string]interface{}, error) {
		return map[string]interface{}{"duration": 12.5}, nil
	})

	require.NoError(t, err)
	assert.True(t, completed)
	require.Len(t, store.updates, 2)

	assert.Equal(t, models.StageStatusProcessing, store.updates[0]["transcription_status"])
	assert.Equal(t, models.StageStatusCompleted, store.updates[1]["transcription_status"])
	assert.Equal(t, 12.5, store.updates[1]["duration"])
	assert.Equal(t, "", store.merged["transcription_error"])

	assert.Equal(t, models.StageStatusCompleted, rec.TranscriptionStatus)
}

func TestRunnerRecordsStageFailureWithoutEscalating(t *testing.T) {
	rec := &models.MediaRecord{UUID: "rec-1"}
	store := newFakeStore(rec)
	runner := NewRunner(store, immediateExecutor(1))

	completed, err := runner.Run(context.Background(), rec, StageAnalysis, func(ctx context.Context) (map[string]interface{}, error) {
		return nil, providers.Terminal("analysis", errors.New("unsupported format"))
	})

	require.NoError(t, err, "stage failures are recorded, not escalated")
	assert.False(t, completed)

	assert.Equal(t, models.StageStatusFailed, store.merged["analysis_status"])
	assert.Contains(t, store.merged["analysis_error"], "unsupported format")
	assert.Equal(t, models.StageStatusFailed, rec.AnalysisStatus)
	assert.NotEmpty(t, rec.AnalysisError)
}

func TestRunnerRetriesTransientStageFailure(t *testing.T) {
	rec := &models.MediaRecord{UUID: "rec-1"}
	store := newFakeStore(rec)
	runner := NewRunner(store, immediateExecutor(3))

	calls := 0
	completed, err := runner.Run(context.Background(), rec, StageTranscription, func(ctx context.Context) (map[string]interface{}, error) {
		calls++
		if calls < 2 {
			return nil, providers.Transient("transcription", errors.New("timeout"))
		}
		return nil, nil
	})

	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 2, calls)
	assert.Equal(t, models.StageStatusCompleted, rec.TranscriptionStatus)
}

func TestRunnerEscalatesWhenRecordVanishes(t *testing.T) {
	rec := &models.MediaRecord{UUID: "rec-1"}
	store := newFakeStore(rec)
	// The completion write hits a deleted record
	store.failOn[1] = fmt.Errorf("%w", media.ErrMediaNotFound)
	runner := NewRunner(store, immediateExecutor(1))

	_, err := runner.Run(context.Background(), rec, StageInsights, func(ctx context.Context) (map[string]interface{}, error) {
		return nil, nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRecordVanished))
}

func TestRunnerEscalatesPersistenceFailure(t *testing.T) {
	rec := &models.MediaRecord{UUID: "rec-1"}
	store := newFakeStore(rec)
	dbErr := errors.New("disk full")
	store.failOn[0] = dbErr
	runner := NewRunner(store, immediateExecutor(1))

	ran := false
	_, err := runner.Run(context.Background(), rec, StageTranscription, func(ctx context.Context) (map[string]interface{}, error) {
		ran = true
		return nil, nil
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.False(t, ran, "stage work must not run when the processing mark fails")
}
