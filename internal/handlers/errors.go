package handlers

import (
	"net/http"

	"dentcheck/internal/access"
	"dentcheck/internal/apperr"
	"dentcheck/pkg/logger"
	"dentcheck/pkg/utils"
)

// writeServiceError maps an apperr kind onto status and error code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		utils.WriteError(w, http.StatusBadRequest, utils.ErrValidationInvalidInput, apperr.Message(err))
	case apperr.KindNotFound:
		utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, apperr.Message(err))
	case apperr.KindAuthorization:
		utils.WriteError(w, http.StatusForbidden, utils.ErrAuthForbidden, apperr.Message(err))
	case apperr.KindStorage:
		logger.LogError("storage failure: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrStorageFailure, "Storage operation failed.")
	default:
		logger.LogError("unexpected error: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "Internal server error.")
	}
}

// callerOf reads the capability set by the access middleware.
func callerOf(w http.ResponseWriter, r *http.Request) (access.Caller, bool) {
	caller, ok := access.FromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Authentication required.")
	}
	return caller, ok
}
