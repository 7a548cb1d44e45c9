package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"incident-tracker/config"
	"incident-tracker/core/graph"
	"incident-tracker/core/store"
	"incident-tracker/core/utils"
	"incident-tracker/core/validate"
)

// envelope is the wire shape of every JSON response. Lists carry count,
// mutations carry message, failures carry error.
type envelope struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeMessageOnly(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: true, Message: message})
}

func writeErr(w http.ResponseWriter, status int, errText string) {
	writeJSON(w, status, envelope{Success: false, Error: errText})
}

func writeErrDetail(w http.ResponseWriter, status int, errText, message string) {
	writeJSON(w, status, envelope{Success: false, Error: errText, Message: message})
}

// respondError maps store and validation failures onto the error taxonomy:
// validation to 400, missing entity to 404 with the entity-specific text,
// unreachable database to 503, anything else to 500. Raw error detail only
// leaves the process in development mode.
func respondError(w http.ResponseWriter, cfg *config.AppConfig, log *utils.Logger, err error, notFound string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		writeErrDetail(w, http.StatusBadRequest, "Validation error", verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, notFound)
	case errors.Is(err, graph.ErrUnavailable):
		log.Errorf("graph unavailable: %v", err)
		detail := "Please try again later"
		if cfg.IsDevelopment() {
			detail = err.Error()
		}
		writeErrDetail(w, http.StatusServiceUnavailable, "Database service unavailable", detail)
	default:
		log.Errorf("request failed: %v", err)
		detail := "An unexpected error occurred"
		if cfg.IsDevelopment() {
			detail = err.Error()
		}
		writeErrDetail(w, http.StatusInternalServerError, "Internal server error", detail)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrDetail(w, http.StatusBadRequest, "Validation error", "Request body must be valid JSON")
		return false
	}
	return true
}
