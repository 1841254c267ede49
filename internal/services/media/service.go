package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/clipforge/media-api/internal/models"
	"github.com/clipforge/media-api/internal/services/blobstore"
	"github.com/clipforge/media-api/internal/services/jobs"
)

type service struct {
	repo  Repository
	blobs blobstore.Store
	jobs  jobs.Service
}

// NewService creates the media business service
func NewService(repo Repository, blobs blobstore.Store, jobService jobs.Service) Service {
	return &service{
		repo:  repo,
		blobs: blobs,
		jobs:  jobService,
	}
}

// CreateFromUpload stores the uploaded content as the source blob and creates
// the record in Pending state. Processing starts only on an explicit trigger.
func (s *service) CreateFromUpload(ctx context.Context, input CreateInput, content io.Reader) (*models.MediaRecord, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: no file content", ErrInvalidInput)
	}

	record := newRecord(input)
	record.SourceKey = sourceKey(record.UUID, input.Filename)

	url, err := s.blobs.Put(ctx, record.SourceKey, content, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("storing source blob: %w", err)
	}
	record.SourceURL = url

	if err := s.repo.Create(ctx, record); err != nil {
		// Don't leave an orphaned blob behind
		if delErr := s.blobs.Delete(ctx, record.SourceKey); delErr != nil {
			log.Printf("[WARNING] Failed to clean up source blob %s: %v", record.SourceKey, delErr)
		}
		return nil, err
	}

	log.Printf("[DEBUG] Created media record %s from upload (%d bytes)", record.UUID, input.SizeBytes)
	return record, nil
}

// CreateFromURL creates a record pointing at a remote source. The pipeline
// downloads the content when processing starts.
func (s *service) CreateFromURL(ctx context.Context, input CreateInput, sourceURL string) (*models.MediaRecord, error) {
	sourceURL = strings.TrimSpace(sourceURL)
	if sourceURL == "" {
		return nil, fmt.Errorf("%w: source_url is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(sourceURL, "http://") && !strings.HasPrefix(sourceURL, "https://") {
		return nil, fmt.Errorf("%w: source_url must be http or https", ErrInvalidInput)
	}

	record := newRecord(input)
	record.SourceURL = sourceURL

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("[DEBUG] Created media record %s from URL", record.UUID)
	return record, nil
}

func (s *service) GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error) {
	return s.repo.GetByUUID(ctx, uuid)
}

func (s *service) List(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaRecord, int64, error) {
	return s.repo.List(ctx, ownerID, limit, offset)
}

// TriggerProcessing enqueues a pipeline run for the record. Duplicate
// triggers while a run is queued or in flight are rejected.
func (s *service) TriggerProcessing(ctx context.Context, mediaUUID string) error {
	record, err := s.repo.GetByUUID(ctx, mediaUUID)
	if err != nil {
		return err
	}

	existing, err := s.jobs.GetJobForMedia(ctx, models.JobTypeMediaProcessing, record.UUID)
	if err != nil && !errors.Is(err, jobs.ErrJobNotFound) {
		return fmt.Errorf("checking existing pipeline job: %w", err)
	}
	if existing != nil && !existing.IsTerminal() {
		return ErrAlreadyRunning
	}

	_, err = s.jobs.EnqueueUniqueJob(ctx, models.JobTypeMediaProcessing,
		models.JobPayload{"media_uuid": record.UUID}, "media_uuid")
	if err != nil {
		return fmt.Errorf("enqueuing pipeline job: %w", err)
	}

	log.Printf("[DEBUG] Triggered processing for media %s", record.UUID)
	return nil
}

// Delete removes the record and every blob derived from it. Blob deletion is
// best effort; a missing blob never blocks record deletion.
func (s *service) Delete(ctx context.Context, mediaUUID string) error {
	record, err := s.repo.GetByUUID(ctx, mediaUUID)
	if err != nil {
		return err
	}

	for _, key := range record.BlobKeys() {
		if err := s.blobs.Delete(ctx, key); err != nil {
			log.Printf("[WARNING] Failed to delete blob %s for media %s: %v", key, mediaUUID, err)
		}
	}

	if err := s.repo.Delete(ctx, mediaUUID); err != nil {
		return err
	}

	log.Printf("[DEBUG] Deleted media record %s", mediaUUID)
	return nil
}

func newRecord(input CreateInput) *models.MediaRecord {
	return &models.MediaRecord{
		UUID:        uuid.NewString(),
		OwnerID:     input.OwnerID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
		Status:      models.ProcessingStatusPending,
	}
}

func sourceKey(mediaUUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "source"
	}
	return fmt.Sprintf("source/%s/%s", mediaUUID, name)
}
