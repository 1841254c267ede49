package media

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipforge/media-api/internal/models"
)

// MediaRepository implements Repository using GORM
type MediaRepository struct {
	db *gorm.DB
}

// NewRepository creates a new media repository
func NewRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a new media record
func (r *MediaRepository) Create(ctx context.Context, record *models.MediaRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create media record: %w", err)
	}
	return nil
}

// GetByUUID fetches a media record by its public identifier
func (r *MediaRepository) GetByUUID(ctx context.Context, uuid string) (*models.MediaRecord, error) {
	var record models.MediaRecord
	err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media record %s: %w", uuid, err)
	}
	return &record, nil
}

// List returns a page of records, newest first, optionally scoped to an owner
func (r *MediaRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]models.MediaRecord, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&models.MediaRecord{})
	if ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count media records: %w", err)
	}

	var records []models.MediaRecord
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list media records: %w", err)
	}
	return records, total, nil
}

// Delete removes a media record
func (r *MediaRepository) Delete(ctx context.Context, uuid string) error {
	result := r.db.WithContext(ctx).Where("uuid = ?", uuid).Delete(&models.MediaRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete media record %s: %w", uuid, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}
	return nil
}

// UpdateFields applies a partial update to exactly the given columns. Using
// column-scoped updates keeps concurrent stage writers from clobbering each
// other's results.
func (r *MediaRepository) UpdateFields(ctx context.Context, uuid string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.MediaRecord{}).
		Where("uuid = ?", uuid).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update media record %s: %w", uuid, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMediaNotFound
	}
	return nil
}
