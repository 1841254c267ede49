package workers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/media-api/internal/database"
	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/jobs"
	"github.com/clipforge/media-api/internal/services/media"
	"github.com/clipforge/media-api/pkg/download"
)

// memBlobs is a tiny in-memory blobstore.Store for processor tests
type memBlobs struct {
	blobs map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: make(map[string][]byte)} }

func (s *memBlobs) Put(_ context.Context, key string, content io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.blobs[key] = data
	return s.URL(key), nil
}

func (s *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrBlobNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memBlobs) Delete(_ context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}

func (s *memBlobs) URL(key string) string { return "mem://" + key }

// stubRenderer writes a fake clip file instead of invoking ffmpeg
type stubRenderer struct {
	dir string
	err error
}

func (r *stubRenderer) RenderHighlight(_ context.Context, _ string, _ []models.HighlightSegment) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	out := filepath.Join(r.dir, "reel.mp4")
	if err := os.WriteFile(out, []byte("rendered clip"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func (r *stubRenderer) Configured() bool { return true }

type highlightFixture struct {
	processor  *HighlightProcessor
	repo       *media.MediaRepository
	blobs      *memBlobs
	jobService jobs.Service
	renderer   *stubRenderer
}

func setupHighlight(t *testing.T) *highlightFixture {
	t.Helper()
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.AutoMigrate(&models.Job{}, &models.MediaRecord{}))

	repo := media.NewRepository(db.DB)
	blobs := newMemBlobs()
	jobService := jobs.NewService(jobs.NewRepository(db.DB))
	renderer := &stubRenderer{dir: t.TempDir()}

	processor := NewHighlightProcessor(repo, blobs, renderer,
		download.NewDownloader(download.DefaultOptions()), jobService, t.TempDir())

	return &highlightFixture{
		processor:  processor,
		repo:       repo,
		blobs:      blobs,
		jobService: jobService,
		renderer:   renderer,
	}
}

func (fx *highlightFixture) seedRecord(t *testing.T, segments []models.HighlightSegment) *models.MediaRecord {
	t.Helper()
	rec := &models.MediaRecord{
		UUID:      "rec-1",
		SourceKey: "sources/rec-1/video.mp4",
		Status:    models.ProcessingStatusCompleted,
		Insights: &models.InsightsPayload{
			HighlightReel: models.HighlightReel{
				Status:   models.HighlightStatusPending,
				Segments: segments,
			},
		},
	}
	require.NoError(t, fx.repo.Create(context.Background(), rec))
	fx.blobs.blobs[rec.SourceKey] = []byte("source media")
	return rec
}

func (fx *highlightFixture) enqueue(t *testing.T, mediaUUID string) *models.Job {
	t.Helper()
	job, err := fx.jobService.EnqueueJob(context.Background(), models.JobTypeHighlightRender,
		models.JobPayload{"media_uuid": mediaUUID})
	require.NoError(t, err)
	return job
}

func TestHighlightProcessorRendersReel(t *testing.T) {
	fx := setupHighlight(t)
	ctx := context.Background()

	fx.seedRecord(t, []models.HighlightSegment{{Start: 3, End: 11, Phrase: "launch"}})
	job := fx.enqueue(t, "rec-1")

	require.NoError(t, fx.processor.ProcessJob(ctx, job))

	rec, err := fx.repo.GetByUUID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, models.HighlightStatusReady, rec.Insights.HighlightReel.Status)
	assert.Equal(t, "highlights/rec-1/reel.mp4", rec.Insights.HighlightReel.OutputKey)
	assert.Equal(t, "mem://highlights/rec-1/reel.mp4", rec.Insights.HighlightReel.OutputURL)
	assert.Empty(t, rec.Insights.HighlightReel.Error)

	// The clip blob is retrievable and the job is done
	assert.Equal(t, []byte("rendered clip"), fx.blobs.blobs["highlights/rec-1/reel.mp4"])
	got, err := fx.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)

	// The aggregate status never moves on reel outcomes
	assert.Equal(t, models.ProcessingStatusCompleted, rec.Status)
}

func TestHighlightProcessorRenderFailureSettlesOnReel(t *testing.T) {
	fx := setupHighlight(t)
	ctx := context.Background()

	fx.seedRecord(t, []models.HighlightSegment{{Start: 3, End: 11}})
	fx.renderer.err = errors.New("ffmpeg exploded")
	job := fx.enqueue(t, "rec-1")

	require.NoError(t, fx.processor.ProcessJob(ctx, job),
		"a failed render settles on the reel, the job itself completes")

	rec, err := fx.repo.GetByUUID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, models.HighlightStatusFailed, rec.Insights.HighlightReel.Status)
	assert.Contains(t, rec.Insights.HighlightReel.Error, "ffmpeg exploded")
	assert.Equal(t, models.ProcessingStatusCompleted, rec.Status)

	got, err := fx.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
}

func TestHighlightProcessorSkipsWithoutSegments(t *testing.T) {
	fx := setupHighlight(t)
	ctx := context.Background()

	fx.seedRecord(t, nil)
	job := fx.enqueue(t, "rec-1")

	require.NoError(t, fx.processor.ProcessJob(ctx, job))

	got, err := fx.jobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, "no segments", got.Result["skipped"])
}

func TestHighlightProcessorMissingRecord(t *testing.T) {
	fx := setupHighlight(t)

	job := fx.enqueue(t, "ghost")
	err := fx.processor.ProcessJob(context.Background(), job)
	require.Error(t, err)

	var structured *models.StructuredJobError
	require.True(t, errors.As(err, &structured))
	assert.Equal(t, models.ErrorTypeNotFound, structured.Type)
}

func TestHighlightSchedulerEnqueuesOnce(t *testing.T) {
	jobService, _ := setupJobService(t)
	scheduler := NewHighlightScheduler(jobService)
	ctx := context.Background()

	require.NoError(t, scheduler.ScheduleHighlight(ctx, "rec-1"))
	require.NoError(t, scheduler.ScheduleHighlight(ctx, "rec-1"))

	job, err := jobService.GetJobForMedia(ctx, models.JobTypeHighlightRender, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)

	// The duplicate schedule reused the live job instead of inserting a second
	_, err = jobService.GetJob(ctx, job.ID+1)
	assert.True(t, errors.Is(err, jobs.ErrJobNotFound))
}
