package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
	"dentcheck/pkg/logger"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) Create(ctx context.Context, reference, note string) (*database.ImageRecord, error) {
	const op = "images.create"

	reference = strings.TrimSpace(reference)
	note = strings.TrimSpace(note)
	if reference == "" {
		return nil, apperr.Validation(op, "image reference is required")
	}
	if note == "" {
		return nil, apperr.Validation(op, "image note is required")
	}

	img := &database.ImageRecord{Reference: reference, Note: note}
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		return nil, apperr.Storage(op, err)
	}
	return img, nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id string) (*database.ImageRecord, error) {
	var img database.ImageRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, translate("images.find", err, "image not found")
	}
	return &img, nil
}

// FindByIDs returns the records for ids in the order given.
func (r *ImageRepository) FindByIDs(ctx context.Context, ids []string) ([]database.ImageRecord, error) {
	if len(ids) == 0 {
		return []database.ImageRecord{}, nil
	}

	var found []database.ImageRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, apperr.Storage("images.find_many", err)
	}

	byID := make(map[string]database.ImageRecord, len(found))
	for _, img := range found {
		byID[img.ID] = img
	}

	out := make([]database.ImageRecord, 0, len(ids))
	for _, id := range ids {
		img, ok := byID[id]
		if !ok {
			logger.LogWarn("Image %s is listed on a checkup but has no record", id)
			continue
		}
		out = append(out, img)
	}
	return out, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	const op = "images.delete"

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&database.ImageRecord{})
	if result.Error != nil {
		return apperr.Storage(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(op, "image not found")
	}
	return nil
}

// ExistingReferences reports which of refs still have an image record.
func (r *ImageRepository) ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(refs))
	if len(refs) == 0 {
		return out, nil
	}

	var found []string
	err := r.db.WithContext(ctx).Model(&database.ImageRecord{}).
		Where("reference IN ?", refs).
		Pluck("reference", &found).Error
	if err != nil {
		return nil, apperr.Storage("images.existing_references", err)
	}
	for _, ref := range found {
		out[ref] = true
	}
	return out, nil
}
