package response

import (
	"encoding/json"
	"net/http"

	"github.com/fairshare-app/fairshare/pkg/apperr"
)

// APIResponse is the standard response wrapper
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	json.NewEncoder(w).Encode(response)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// FromError maps a classified error to the matching HTTP status. Errors
// without a kind are reported as internal.
func FromError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		InternalError(w, "Internal server error")
		return
	}

	switch kind {
	case apperr.KindValidation:
		Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case apperr.KindNotFound:
		Error(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case apperr.KindConstraint:
		Error(w, http.StatusConflict, "CONSTRAINT_VIOLATION", err.Error())
	case apperr.KindConcurrency:
		Error(w, http.StatusConflict, "CONCURRENT_UPDATE", err.Error())
	default:
		InternalError(w, "Internal server error")
	}
}

// Common error responses
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, "BAD_REQUEST", message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, "NOT_FOUND", message)
}

func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, "CONFLICT", message)
}
