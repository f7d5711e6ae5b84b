// Package repository holds the gorm-backed stores for checkups, image records
// and the user directory, plus the unit of work that scopes them to one
// transaction.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
)

type Checkups interface {
	Create(ctx context.Context, patientID, dentistID string, appointmentDate time.Time, reason string) (*database.Checkup, error)
	FindByID(ctx context.Context, id string) (*database.Checkup, error)
	UpdateStatusAndNote(ctx context.Context, id string, status database.CheckupStatus, note string) (*database.Checkup, error)
	Save(ctx context.Context, c *database.Checkup) error
	ListByPatient(ctx context.Context, patientID string) ([]database.Checkup, error)
	ListByDentist(ctx context.Context, dentistID string) ([]database.Checkup, error)
	ListByDentistAndStatus(ctx context.Context, dentistID string, status database.CheckupStatus) ([]database.Checkup, error)
	CountByDentist(ctx context.Context, dentistID string) (int64, error)
	CountByDentistAndStatus(ctx context.Context, dentistID string, status database.CheckupStatus) (int64, error)
}

type ImageRecords interface {
	Create(ctx context.Context, reference, note string) (*database.ImageRecord, error)
	FindByID(ctx context.Context, id string) (*database.ImageRecord, error)
	FindByIDs(ctx context.Context, ids []string) ([]database.ImageRecord, error)
	Delete(ctx context.Context, id string) error
	ExistingReferences(ctx context.Context, refs []string) (map[string]bool, error)
}

type Users interface {
	Create(ctx context.Context, u *database.User) error
	FindByID(ctx context.Context, id string) (*database.User, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]database.User, error)
}

// Stores groups repositories bound to the same connection or transaction.
type Stores struct {
	Checkups Checkups
	Images   ImageRecords
	Users    Users
}

func NewStores(db *gorm.DB) Stores {
	return Stores{
		Checkups: NewCheckupRepository(db),
		Images:   NewImageRepository(db),
		Users:    NewUserRepository(db),
	}
}

// translate maps driver errors onto the apperr taxonomy.
func translate(op string, err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, "%s", notFound)
	}
	return apperr.Storage(op, err)
}
