package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dentcheck/pkg/utils"
)

type requestCheckupBody struct {
	DentistID       string `json:"dentistId"`
	AppointmentDate string `json:"appointmentDate"`
	Reason          string `json:"reason"`
}

type updateCheckupBody struct {
	Status         string `json:"status"`
	AdditionalNote string `json:"additionalNote"`
}

var appointmentLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseAppointment(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range appointmentLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RequestCheckup: POST /api/checkups
func (a *API) RequestCheckup(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var body requestCheckupBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Request body must be valid JSON.")
		return
	}

	when, ok := parseAppointment(body.AppointmentDate)
	if !ok {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationInvalidInput, "appointmentDate must be an RFC3339 timestamp.")
		return
	}

	c, err := a.checkups.RequestCheckup(r.Context(), caller, body.DentistID, when, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"checkup": c,
	})
}

// ListCheckups: GET /api/checkups
func (a *API) ListCheckups(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	items, err := a.checkups.ListCheckups(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"checkups": items,
	})
}

// GetCheckup: GET /api/checkups/{id}
func (a *API) GetCheckup(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	view, err := a.checkups.GetCheckup(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"checkup": view,
	})
}

// UpdateCheckup: PUT /api/checkups/{id}
func (a *API) UpdateCheckup(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	var body updateCheckupBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Request body must be valid JSON.")
		return
	}

	c, err := a.checkups.UpdateCheckup(r.Context(), caller, r.PathValue("id"), body.Status, body.AdditionalNote)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"checkup": c,
	})
}

// DentistCheckups: GET /api/dentist/checkups?status=
func (a *API) DentistCheckups(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	items, err := a.checkups.ListDentistCheckups(r.Context(), caller, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"checkups": items,
	})
}

// DentistStats: GET /api/dentist/stats
func (a *API) DentistStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerOf(w, r)
	if !ok {
		return
	}

	stats, err := a.checkups.DentistStats(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"stats":  stats,
	})
}
