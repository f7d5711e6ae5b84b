package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
)

type CheckupRepository struct {
	db *gorm.DB
}

func NewCheckupRepository(db *gorm.DB) *CheckupRepository {
	return &CheckupRepository{db: db}
}

func (r *CheckupRepository) Create(ctx context.Context, patientID, dentistID string, appointmentDate time.Time, reason string) (*database.Checkup, error) {
	const op = "checkups.create"

	if strings.TrimSpace(patientID) == "" || strings.TrimSpace(dentistID) == "" {
		return nil, apperr.Validation(op, "patient and dentist are required")
	}
	if appointmentDate.IsZero() {
		return nil, apperr.Validation(op, "appointment date is required")
	}

	c := &database.Checkup{
		PatientID:       patientID,
		DentistID:       dentistID,
		Reason:          strings.TrimSpace(reason),
		AppointmentDate: appointmentDate.UTC(),
		Status:          database.StatusPending,
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, apperr.Storage(op, err)
	}
	c.ImageIDs = []string{}
	return c, nil
}

func (r *CheckupRepository) FindByID(ctx context.Context, id string) (*database.Checkup, error) {
	const op = "checkups.find"

	var c database.Checkup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translate(op, err, "checkup not found")
	}

	ids, err := r.imageIDs(ctx, []string{c.ID})
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	c.ImageIDs = ids[c.ID]
	if c.ImageIDs == nil {
		c.ImageIDs = []string{}
	}
	return &c, nil
}

// UpdateStatusAndNote sets the dentist-owned fields. Any enumerated status may
// replace any other.
func (r *CheckupRepository) UpdateStatusAndNote(ctx context.Context, id string, status database.CheckupStatus, note string) (*database.Checkup, error) {
	const op = "checkups.update"

	if !status.Valid() {
		return nil, apperr.Validation(op, "invalid status '%s'", status)
	}

	result := r.db.WithContext(ctx).Model(&database.Checkup{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":          status,
		"additional_note": note,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return nil, apperr.Storage(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound(op, "checkup not found")
	}
	return r.FindByID(ctx, id)
}

// Save persists the mutable columns and the ordered image list of c.
// Patient and dentist are never written after creation.
func (r *CheckupRepository) Save(ctx context.Context, c *database.Checkup) error {
	const op = "checkups.save"

	if !c.Status.Valid() {
		return apperr.Validation(op, "invalid status '%s'", c.Status)
	}
	seen := make(map[string]bool, len(c.ImageIDs))
	for _, id := range c.ImageIDs {
		if seen[id] {
			return apperr.Validation(op, "image %s is already attached", id)
		}
		seen[id] = true
	}

	db := r.db.WithContext(ctx)

	c.UpdatedAt = time.Now()
	result := db.Model(&database.Checkup{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"status":          c.Status,
		"additional_note": c.AdditionalNote,
		"updated_at":      c.UpdatedAt,
	})
	if result.Error != nil {
		return apperr.Storage(op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(op, "checkup not found")
	}

	if err := db.Where("checkup_id = ?", c.ID).Delete(&database.CheckupImage{}).Error; err != nil {
		return apperr.Storage(op, err)
	}
	if len(c.ImageIDs) == 0 {
		return nil
	}

	rows := make([]database.CheckupImage, 0, len(c.ImageIDs))
	for i, id := range c.ImageIDs {
		rows = append(rows, database.CheckupImage{CheckupID: c.ID, ImageID: id, Position: i})
	}
	if err := db.Create(&rows).Error; err != nil {
		return apperr.Storage(op, err)
	}
	return nil
}

func (r *CheckupRepository) ListByPatient(ctx context.Context, patientID string) ([]database.Checkup, error) {
	return r.list(ctx, "checkups.list_by_patient", r.db.Where("patient_id = ?", patientID))
}

func (r *CheckupRepository) ListByDentist(ctx context.Context, dentistID string) ([]database.Checkup, error) {
	return r.list(ctx, "checkups.list_by_dentist", r.db.Where("dentist_id = ?", dentistID))
}

func (r *CheckupRepository) ListByDentistAndStatus(ctx context.Context, dentistID string, status database.CheckupStatus) ([]database.Checkup, error) {
	const op = "checkups.list_by_dentist_status"
	if !status.Valid() {
		return nil, apperr.Validation(op, "invalid status '%s'", status)
	}
	return r.list(ctx, op, r.db.Where("dentist_id = ? AND status = ?", dentistID, status))
}

func (r *CheckupRepository) CountByDentist(ctx context.Context, dentistID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&database.Checkup{}).Where("dentist_id = ?", dentistID).Count(&n).Error
	return n, apperr.Storage("checkups.count_by_dentist", err)
}

func (r *CheckupRepository) CountByDentistAndStatus(ctx context.Context, dentistID string, status database.CheckupStatus) (int64, error) {
	const op = "checkups.count_by_dentist_status"
	if !status.Valid() {
		return 0, apperr.Validation(op, "invalid status '%s'", status)
	}

	var n int64
	err := r.db.WithContext(ctx).Model(&database.Checkup{}).
		Where("dentist_id = ? AND status = ?", dentistID, status).
		Count(&n).Error
	return n, apperr.Storage(op, err)
}

// list runs scope newest first and attaches each checkup's image ids.
func (r *CheckupRepository) list(ctx context.Context, op string, scope *gorm.DB) ([]database.Checkup, error) {
	var checkups []database.Checkup
	if err := scope.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&checkups).Error; err != nil {
		return nil, apperr.Storage(op, err)
	}
	if len(checkups) == 0 {
		return []database.Checkup{}, nil
	}

	ids := make([]string, len(checkups))
	for i := range checkups {
		ids[i] = checkups[i].ID
	}
	images, err := r.imageIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	for i := range checkups {
		checkups[i].ImageIDs = images[checkups[i].ID]
		if checkups[i].ImageIDs == nil {
			checkups[i].ImageIDs = []string{}
		}
	}
	return checkups, nil
}

func (r *CheckupRepository) imageIDs(ctx context.Context, checkupIDs []string) (map[string][]string, error) {
	var rows []database.CheckupImage
	err := r.db.WithContext(ctx).
		Where("checkup_id IN ?", checkupIDs).
		Order("checkup_id").Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string, len(checkupIDs))
	for _, row := range rows {
		out[row.CheckupID] = append(out[row.CheckupID], row.ImageID)
	}
	return out, nil
}
