package media

import (
	"context"
	"errors"
	"io"

	"github.com/clipforge/media-api/internal/models"
)

// Common errors
var (
	ErrMediaNotFound  = errors.New("media record not found")
	ErrInvalidInput   = errors.New("invalid media input")
	ErrAlreadyRunning = errors.New("processing already in progress")
)

// Repository defines the interface for media record persistence
type Repository interface {
	Create(ctx context.Context, record *models.MediaRecord) error
	GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaRecord, int64, error)
	Delete(ctx context.Context, uuid string) error
	// UpdateFields applies a partial column update to one record. Returns
	// ErrMediaNotFound when the record no longer exists.
	UpdateFields(ctx context.Context, uuid string, fields map[string]interface{}) error
}

// Service defines the interface for media business operations
type Service interface {
	CreateFromUpload(ctx context.Context, input CreateInput, content io.Reader) (*models.MediaRecord, error)
	CreateFromURL(ctx context.Context, input CreateInput, sourceURL string) (*models.MediaRecord, error)
	GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error)
	List(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaRecord, int64, error)
	// TriggerProcessing enqueues a pipeline run for the record. Returns
	// ErrAlreadyRunning when a run is already queued or in flight.
	TriggerProcessing(ctx context.Context, uuid string) error
	// Delete removes the record and all blobs derived from it
	Delete(ctx context.Context, uuid string) error
}

// CreateInput carries caller-supplied metadata for a new media record
type CreateInput struct {
	OwnerID     string
	Title       string
	Description string
	Filename    string
	MimeType    string
	SizeBytes   int64
}
