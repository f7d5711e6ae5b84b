package checkup

import (
	"dentcheck/internal/apperr"
	"dentcheck/internal/database"
)

// ParseStatus accepts exactly the enumerated statuses. Any status may follow
// any other; the field classifies a checkup rather than driving a workflow.
func ParseStatus(raw string) (database.CheckupStatus, error) {
	s := database.CheckupStatus(raw)
	if !s.Valid() {
		return "", apperr.Validation("checkup.status", "invalid status %q (allowed: pending, completed, cancelled)", raw)
	}
	return s, nil
}
