package checkup

import (
	"time"

	"dentcheck/internal/database"
)

// Contact is the display subset of a directory user.
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func contactOf(users map[string]database.User, id string) *Contact {
	u, ok := users[id]
	if !ok {
		return nil
	}
	return &Contact{ID: u.ID, Name: u.Name, Email: u.Email, PhoneNumber: u.PhoneNumber}
}

// View is a checkup joined with both parties and its ordered image records.
type View struct {
	ID              string                 `json:"id"`
	PatientID       string                 `json:"patientId"`
	DentistID       string                 `json:"dentistId"`
	Patient         *Contact               `json:"patient"`
	Dentist         *Contact               `json:"dentist"`
	Reason          string                 `json:"reason,omitempty"`
	AppointmentDate time.Time              `json:"appointmentDate"`
	Status          database.CheckupStatus `json:"status"`
	AdditionalNote  string                 `json:"additionalNote,omitempty"`
	Images          []database.ImageRecord `json:"images"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func newView(c *database.Checkup, users map[string]database.User, images []database.ImageRecord) *View {
	return &View{
		ID:              c.ID,
		PatientID:       c.PatientID,
		DentistID:       c.DentistID,
		Patient:         contactOf(users, c.PatientID),
		Dentist:         contactOf(users, c.DentistID),
		Reason:          c.Reason,
		AppointmentDate: c.AppointmentDate,
		Status:          c.Status,
		AdditionalNote:  c.AdditionalNote,
		Images:          images,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ListItem is a checkup row with the counterpart's contact filled in.
// Images are listed by id only.
type ListItem struct {
	database.Checkup
	Patient *Contact `json:"patient,omitempty"`
	Dentist *Contact `json:"dentist,omitempty"`
}

type Stats struct {
	TotalCheckups     int64 `json:"totalCheckups"`
	CompletedCheckups int64 `json:"completedCheckups"`
	PendingCheckups   int64 `json:"pendingCheckups"`
	CancelledCheckups int64 `json:"cancelledCheckups"`
}
