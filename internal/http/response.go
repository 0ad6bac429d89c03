package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/log"
	"saldo/internal/services"
)

// APIResponse is the envelope wrapping every JSON body.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: statusSuccess, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Status: statusError, Message: msg})
}

var validationErrors = []error{
	core.ErrMissingAmount,
	core.ErrInvalidAmount,
	core.ErrAmountOverflow,
	core.ErrMissingDate,
	core.ErrInvalidDate,
	core.ErrInvalidCategory,
	core.ErrNoteTooLong,
	core.ErrMissingPending,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeInputError answers a request whose body could not become a record.
func writeInputError(w http.ResponseWriter, err error) {
	if isValidationError(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// writeServiceError maps a service error to a status. Anything unexpected is
// logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrMissingUser):
		writeError(w, http.StatusUnauthorized, "missing user")
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, ledger.ErrMalformedRecord),
		errors.Is(err, ledger.ErrAmountOverflow),
		errors.Is(err, ledger.ErrSnapshotNotReady):
		logRequestError(r, "Ledger could not be aggregated", err, operation)
		writeError(w, http.StatusInternalServerError, "ledger data is inconsistent")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logRequestError(r, "Request failed", err, operation)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func logRequestError(r *http.Request, msg string, err error, operation string) {
	fields := log.NewFields()
	if userID, ok := UserID(r.Context()); ok {
		fields = fields.WithUser(userID)
	}
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogError(r.Context(), msg, err, log.ComponentHTTP, operation, fields)
}
