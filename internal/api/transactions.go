package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// TransactionsHandler handles journal transaction API endpoints.
type TransactionsHandler struct {
	manager *ledger.TransactionManager
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(manager *ledger.TransactionManager) *TransactionsHandler {
	return &TransactionsHandler{manager: manager}
}

type lineRequest struct {
	AccountID   string          `json:"account_id"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

type postTransactionRequest struct {
	Date        string        `json:"date"`
	Description string        `json:"description"`
	Reference   string        `json:"reference"`
	Lines       []lineRequest `json:"lines"`
}

type updateTransactionRequest struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
}

type replaceLinesRequest struct {
	Lines []lineRequest `json:"lines"`
}

func toLines(reqs []lineRequest) []ledger.Line {
	lines := make([]ledger.Line, len(reqs))
	for i, l := range reqs {
		lines[i] = ledger.Line{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		}
	}
	return lines
}

// List handles GET /transactions. Supports ?from=/&to= date filters, ?q=
// description search and ?limit= recent-N.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		txns []models.Transaction
		err  error
	)

	query := r.URL.Query()
	switch {
	case query.Get("q") != "":
		txns, err = h.manager.SearchByDescription(r.Context(), query.Get("q"))
	case query.Get("from") != "" && query.Get("to") != "":
		var from, to time.Time
		from, err = time.Parse(models.DateLayout, query.Get("from"))
		if err == nil {
			to, err = time.Parse(models.DateLayout, query.Get("to"))
		}
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Dates must be formatted YYYY-MM-DD")
			return
		}
		txns, err = h.manager.ByDateRange(r.Context(), from, to)
	case query.Get("limit") != "":
		limit, convErr := strconv.Atoi(query.Get("limit"))
		if convErr != nil || limit <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit")
			return
		}
		txns, err = h.manager.Recent(r.Context(), limit)
	default:
		txns, err = h.manager.List(r.Context())
	}
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txns})
}

// Get handles GET /transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.manager.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transaction": txn})
}

// Create handles POST /transactions, posting a balanced journal transaction.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req postTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Date must be formatted YYYY-MM-DD")
		return
	}

	txn, err := h.manager.Post(r.Context(), req.Description, date, req.Reference, toLines(req.Lines))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"transaction": txn})
}

// Update handles PUT /transactions/{id}, amending header metadata only.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	date, err := time.Parse(models.DateLayout, req.Date)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Date must be formatted YYYY-MM-DD")
		return
	}

	txn, err := h.manager.Update(r.Context(), chi.URLParam(r, "id"), req.Description, date, req.Reference)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transaction": txn})
}

// ReplaceLines handles PUT /transactions/{id}/lines, atomically swapping a
// transaction's entries for a new balanced set.
func (h *TransactionsHandler) ReplaceLines(w http.ResponseWriter, r *http.Request) {
	var req replaceLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	txn, err := h.manager.ReplaceLines(r.Context(), chi.URLParam(r, "id"), toLines(req.Lines))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transaction": txn})
}

// Delete handles DELETE /transactions/{id}, reversing the transaction's
// balance effects.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	found, err := h.manager.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "not_found", "Transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
