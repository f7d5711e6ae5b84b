package utils

import (
	"encoding/json"
	"net/http"

	"dentcheck/pkg/logger"
)

const (
	// Request Error Codes
	ErrRequestInvalid           = "request/invalid_parameters"
	ErrRequestNotFound          = "request/not_found"
	ErrRequestRateLimitExceeded = "request/rate_limit_exceeded"

	ErrRequestBodyTooLarge     = "request/body_too_large"
	ErrRequestUnSupportedMedia = "request/invalid_media"

	// Auth Error Codes
	ErrAuthRequired  = "auth/authentication_required"
	ErrAuthInvalid   = "auth/invalid_credentials"
	ErrAuthForbidden = "auth/forbidden"

	// Server Error Codes
	ErrServerInternal = "server/internal_error"
	ErrStorageFailure = "storage/failure"

	// Validation & Resource Error Codes
	ErrValidationInvalidInput = "validation/invalid_input"
	ErrResourceNotFound       = "resource/not_found"

	ErrImageProcessingFailed = "image/processing_failed"
)

type APIError struct {
	Code    string `json:"code"`    // e.g., "validation/invalid_input"
	Message string `json:"message"` // User-friendly message
	Status  int    `json:"status"`  // HTTP Status Code
}

// WriteError sends a JSON formatted error response
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	if status >= http.StatusInternalServerError {
		logger.LogError("%s: %s", code, message)
	} else {
		logger.LogDebug("%s: %s", code, message)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIError{
		Code:    code,
		Message: message,
		Status:  status,
	})
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
