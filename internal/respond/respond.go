package respond

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/salud-red/appointment-service/internal/pagination"
)

// Envelope is the standard JSON response body.
type Envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// ErrorBody is the standard JSON error body.
type ErrorBody struct {
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success writes a success envelope.
func Success(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Page writes a success envelope with pagination metadata.
func Page(w http.ResponseWriter, message string, data interface{}, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: &meta})
}

// Error writes an error body with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorBody{Message: message, Status: status})
}

// ValidationError writes a 422 with field-level detail.
func ValidationError(w http.ResponseWriter, message string, errors map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Errors:  errors,
	})
}

// Internal writes a 500. detail is surfaced only when debug is set;
// otherwise a fixed message goes out.
func Internal(w http.ResponseWriter, debug bool, detail string) {
	msg := "internal server error"
	if debug && detail != "" {
		msg = detail
	}
	Error(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[ERROR] failed to encode response: %v", err)
	}
}
