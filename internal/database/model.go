package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckupStatus string

const (
	StatusPending   CheckupStatus = "pending"
	StatusCompleted CheckupStatus = "completed"
	StatusCancelled CheckupStatus = "cancelled"
)

// CheckupStatuses lists every accepted status, pending first.
var CheckupStatuses = []CheckupStatus{StatusPending, StatusCompleted, StatusCancelled}

func (s CheckupStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// User is the directory entry for a patient or dentist. Only the display
// fields are read by the checkup flows.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber string    `gorm:"size:40" json:"phoneNumber"`
	Address     string    `gorm:"size:255" json:"address,omitempty"`
	Role        string    `gorm:"size:20;index;not null" json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Checkup struct {
	ID              string        `gorm:"primaryKey;size:36" json:"id"`
	PatientID       string        `gorm:"size:36;index;not null" json:"patientId"`
	DentistID       string        `gorm:"size:36;index;not null" json:"dentistId"`
	Reason          string        `gorm:"type:text" json:"reason,omitempty"`
	AppointmentDate time.Time     `gorm:"not null" json:"appointmentDate"`
	Status          CheckupStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	AdditionalNote  string        `gorm:"type:text" json:"additionalNote,omitempty"`
	CreatedAt       time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// ImageIDs is the ordered image list, persisted through CheckupImage rows.
	ImageIDs []string `gorm:"-" json:"images"`
}

func (c *Checkup) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasImage reports whether imageID is in the checkup's image list.
func (c *Checkup) HasImage(imageID string) bool {
	for _, id := range c.ImageIDs {
		if id == imageID {
			return true
		}
	}
	return false
}

// CheckupImage is one slot of a checkup's ordered image list.
type CheckupImage struct {
	CheckupID string `gorm:"primaryKey;size:36"`
	ImageID   string `gorm:"primaryKey;size:36;index"`
	Position  int    `gorm:"not null"`
}

// ImageRecord is the metadata of one uploaded, annotated image.
type ImageRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Reference string    `gorm:"size:512;uniqueIndex;not null" json:"url"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i *ImageRecord) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
