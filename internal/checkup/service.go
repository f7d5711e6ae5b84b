// Package checkup implements the checkup lifecycle: requesting, status
// updates, and the atomic attach/detach of annotated images.
package checkup

import (
	"context"
	"strings"
	"time"

	"dentcheck/internal/access"
	"dentcheck/internal/apperr"
	"dentcheck/internal/appinfo"
	"dentcheck/internal/database"
	"dentcheck/internal/repository"
	"dentcheck/internal/storage"
	"dentcheck/pkg/logger"
)

// Service runs checkup operations against a unit of work and a blob store.
type Service struct {
	uow       repository.UnitOfWork
	blobs     storage.BlobStore
	onDiscard func(reference string)
}

// NewService builds a Service. Register OnDiscard before serving requests.
func NewService(uow repository.UnitOfWork, blobs storage.BlobStore) *Service {
	return &Service{uow: uow, blobs: blobs}
}

// RequestCheckup creates a pending checkup for the calling patient.
func (s *Service) RequestCheckup(ctx context.Context, caller access.Caller, dentistID string, appointmentDate time.Time, reason string) (*database.Checkup, error) {
	const op = "checkup.request"

	if !caller.Is(access.RolePatient) {
		return nil, apperr.Authorization(op, "only patients can request checkups")
	}
	dentistID = strings.TrimSpace(dentistID)
	if dentistID == "" {
		return nil, apperr.Validation(op, "dentistId is required")
	}
	if appointmentDate.IsZero() {
		return nil, apperr.Validation(op, "appointmentDate is required")
	}

	var created *database.Checkup
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		dentist, err := st.Users.FindByID(ctx, dentistID)
		if apperr.IsNotFound(err) {
			return apperr.Validation(op, "dentist %s does not exist", dentistID)
		}
		if err != nil {
			return err
		}
		if dentist.Role != string(access.RoleDentist) {
			return apperr.Validation(op, "user %s is not a dentist", dentistID)
		}

		created, err = st.Checkups.Create(ctx, caller.UserID, dentistID, appointmentDate, strings.TrimSpace(reason))
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.LogDebug("Checkup %s requested by %s with %s", created.ID, caller.UserID, dentistID)
	return created, nil
}

// UpdateCheckup sets status and note. Only the assigned dentist may do so.
func (s *Service) UpdateCheckup(ctx context.Context, caller access.Caller, checkupID, status, note string) (*database.Checkup, error) {
	const op = "checkup.update"

	if !caller.Is(access.RoleDentist) {
		return nil, apperr.Authorization(op, "only dentists can update checkups")
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *database.Checkup
	err = s.uow.Within(ctx, func(stores repository.Stores) error {
		c, err := stores.Checkups.FindByID(ctx, checkupID)
		if err != nil {
			return err
		}
		if c.DentistID != caller.UserID {
			return apperr.Authorization(op, "checkup %s is assigned to another dentist", checkupID)
		}

		updated, err = stores.Checkups.UpdateStatusAndNote(ctx, checkupID, st, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetCheckup returns the checkup with both parties and its images, read in
// one transaction.
func (s *Service) GetCheckup(ctx context.Context, caller access.Caller, checkupID string) (*View, error) {
	const op = "checkup.get"

	var view *View
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		c, err := st.Checkups.FindByID(ctx, checkupID)
		if err != nil {
			return err
		}
		if !canRead(caller, c) {
			return apperr.Authorization(op, "not allowed to view checkup %s", checkupID)
		}

		users, err := st.Users.FindByIDs(ctx, []string{c.PatientID, c.DentistID})
		if err != nil {
			return err
		}
		images, err := st.Images.FindByIDs(ctx, c.ImageIDs)
		if err != nil {
			return err
		}

		view = newView(c, users, images)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// AttachImage stores the blob and appends a new image record to the checkup.
// The blob is written with no transaction open; the record and the checkup
// then commit as a pair or not at all. On failure the blob is removed.
func (s *Service) AttachImage(ctx context.Context, caller access.Caller, checkupID string, data []byte, fileName, note string) (*database.ImageRecord, error) {
	const op = "checkup.attach_image"

	if !caller.Is(access.RoleDentist) {
		return nil, apperr.Authorization(op, "only dentists can attach images")
	}
	if len(data) == 0 {
		return nil, apperr.Validation(op, "image data is required")
	}
	if strings.TrimSpace(note) == "" {
		return nil, apperr.Validation(op, "image note is required")
	}

	assigned := func(st repository.Stores) (*database.Checkup, error) {
		c, err := st.Checkups.FindByID(ctx, checkupID)
		if err != nil {
			return nil, err
		}
		if c.DentistID != caller.UserID {
			return nil, apperr.Authorization(op, "checkup %s is assigned to another dentist", checkupID)
		}
		return c, nil
	}

	err := s.uow.Within(ctx, func(st repository.Stores) error {
		_, err := assigned(st)
		return err
	})
	if err != nil {
		return nil, err
	}

	reference, err := s.blobs.Store(ctx, data, fileName)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	var record *database.ImageRecord
	err = s.uow.Within(ctx, func(st repository.Stores) error {
		// reload: the checkup may have changed while the blob was written
		c, err := assigned(st)
		if err != nil {
			return err
		}

		record, err = st.Images.Create(ctx, reference, note)
		if err != nil {
			return err
		}

		c.ImageIDs = append(c.ImageIDs, record.ID)
		return st.Checkups.Save(ctx, c)
	})
	if err != nil {
		s.discardBlob(ctx, reference)
		return nil, err
	}

	appinfo.ImagesAttached.Add(1)
	logger.LogDebug("Image %s attached to checkup %s", record.ID, checkupID)
	return record, nil
}

// DetachImage removes the image from the checkup and deletes its record,
// then deletes the blob. A failed blob delete is logged, not returned.
func (s *Service) DetachImage(ctx context.Context, caller access.Caller, checkupID, imageID string) error {
	const op = "checkup.detach_image"

	if !caller.Is(access.RoleDentist) {
		return apperr.Authorization(op, "only dentists can detach images")
	}

	var reference string
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		record, err := st.Images.FindByID(ctx, imageID)
		if err != nil {
			return err
		}
		c, err := st.Checkups.FindByID(ctx, checkupID)
		if err != nil {
			return err
		}
		if c.DentistID != caller.UserID {
			return apperr.Authorization(op, "checkup %s is assigned to another dentist", checkupID)
		}
		if !c.HasImage(imageID) {
			return apperr.NotFound(op, "image %s is not attached to checkup %s", imageID, checkupID)
		}

		kept := make([]string, 0, len(c.ImageIDs)-1)
		for _, id := range c.ImageIDs {
			if id != imageID {
				kept = append(kept, id)
			}
		}
		c.ImageIDs = kept
		if err := st.Checkups.Save(ctx, c); err != nil {
			return err
		}
		if err := st.Images.Delete(ctx, imageID); err != nil {
			return err
		}

		reference = record.Reference
		return nil
	})
	if err != nil {
		return err
	}

	appinfo.ImagesDetached.Add(1)
	s.discardBlob(ctx, reference)
	return nil
}

// ListCheckups returns the caller's own checkups, newest first.
func (s *Service) ListCheckups(ctx context.Context, caller access.Caller) ([]ListItem, error) {
	const op = "checkup.list"

	var items []ListItem
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		var rows []database.Checkup
		var err error
		switch {
		case caller.Is(access.RolePatient):
			rows, err = st.Checkups.ListByPatient(ctx, caller.UserID)
		case caller.Is(access.RoleDentist):
			rows, err = st.Checkups.ListByDentist(ctx, caller.UserID)
		default:
			return apperr.Authorization(op, "unknown caller role %q", caller.Role)
		}
		if err != nil {
			return err
		}

		items, err = withContacts(ctx, st.Users, caller, rows)
		return err
	})
	return items, err
}

// ListDentistCheckups lists the calling dentist's checkups, optionally
// filtered by status.
func (s *Service) ListDentistCheckups(ctx context.Context, caller access.Caller, status string) ([]ListItem, error) {
	const op = "checkup.list_dentist"

	if !caller.Is(access.RoleDentist) {
		return nil, apperr.Authorization(op, "only dentists can list their schedule")
	}

	var filter database.CheckupStatus
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = st
	}

	var items []ListItem
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		var rows []database.Checkup
		var err error
		if filter == "" {
			rows, err = st.Checkups.ListByDentist(ctx, caller.UserID)
		} else {
			rows, err = st.Checkups.ListByDentistAndStatus(ctx, caller.UserID, filter)
		}
		if err != nil {
			return err
		}

		items, err = withContacts(ctx, st.Users, caller, rows)
		return err
	})
	return items, err
}

// DentistStats counts the calling dentist's checkups, total and per status.
func (s *Service) DentistStats(ctx context.Context, caller access.Caller) (*Stats, error) {
	const op = "checkup.dentist_stats"

	if !caller.Is(access.RoleDentist) {
		return nil, apperr.Authorization(op, "only dentists have checkup stats")
	}

	stats := &Stats{}
	err := s.uow.Within(ctx, func(st repository.Stores) error {
		var err error
		if stats.TotalCheckups, err = st.Checkups.CountByDentist(ctx, caller.UserID); err != nil {
			return err
		}
		counts := map[database.CheckupStatus]*int64{
			database.StatusCompleted: &stats.CompletedCheckups,
			database.StatusPending:   &stats.PendingCheckups,
			database.StatusCancelled: &stats.CancelledCheckups,
		}
		for status, dst := range counts {
			if *dst, err = st.Checkups.CountByDentistAndStatus(ctx, caller.UserID, status); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// OnDiscard registers fn to run whenever a blob is deleted, e.g. to evict it
// from a read cache.
func (s *Service) OnDiscard(fn func(reference string)) {
	s.onDiscard = fn
}

func (s *Service) discardBlob(ctx context.Context, reference string) {
	if s.onDiscard != nil {
		defer s.onDiscard(reference)
	}
	res := s.blobs.Delete(ctx, reference)
	if !res.OK() {
		appinfo.BlobDeleteFailures.Add(1)
		logger.LogWarn("Blob %s could not be deleted: %v", res.Reference, res.Err)
	}
}

func canRead(caller access.Caller, c *database.Checkup) bool {
	switch {
	case caller.Is(access.RolePatient):
		return c.PatientID == caller.UserID
	case caller.Is(access.RoleDentist):
		return c.DentistID == caller.UserID
	}
	return false
}

// withContacts fills in the party the caller is not.
func withContacts(ctx context.Context, users repository.Users, caller access.Caller, rows []database.Checkup) ([]ListItem, error) {
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		if caller.Role == access.RolePatient {
			ids = append(ids, c.DentistID)
		} else {
			ids = append(ids, c.PatientID)
		}
	}

	dir, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, len(rows))
	for i, c := range rows {
		items[i] = ListItem{Checkup: c}
		if caller.Role == access.RolePatient {
			items[i].Dentist = contactOf(dir, c.DentistID)
		} else {
			items[i].Patient = contactOf(dir, c.PatientID)
		}
	}
	return items, nil
}
