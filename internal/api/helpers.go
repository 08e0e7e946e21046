// Package api exposes the ledger engine over HTTP. Handlers are thin
// adapters: request decoding, error mapping and JSON encoding only, with all
// accounting rules living in the ledger package.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

// writeLedgerError maps the ledger error taxonomy to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ledger.ErrDuplicateCode):
		writeJSONError(w, http.StatusConflict, "duplicate_code", err.Error())
	case errors.Is(err, ledger.ErrAccountHasTransactions):
		writeJSONError(w, http.StatusConflict, "has_transactions", err.Error())
	case errors.Is(err, ledger.ErrInvalidAccount),
		errors.Is(err, ledger.ErrInvalidEntry),
		errors.Is(err, ledger.ErrUnbalanced),
		errors.Is(err, ledger.ErrInvalidRange):
		writeJSONError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// parseDateParam parses a YYYY-MM-DD query parameter, defaulting to today
// when absent.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(models.DateLayout, value)
}
