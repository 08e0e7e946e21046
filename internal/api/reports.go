package api

import (
	"net/http"
	"time"

	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// ReportsHandler handles financial statement API endpoints.
type ReportsHandler struct {
	reports *ledger.ReportGenerator
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports *ledger.ReportGenerator) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// TrialBalance handles GET /reports/trial_balance?as_of=YYYY-MM-DD.
func (h *ReportsHandler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "as_of must be formatted YYYY-MM-DD")
		return
	}

	report, err := h.reports.TrialBalance(r.Context(), asOf)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trial_balance": report})
}

// BalanceSheet handles GET /reports/balance_sheet?as_of=YYYY-MM-DD.
func (h *ReportsHandler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateParam(r, "as_of")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "as_of must be formatted YYYY-MM-DD")
		return
	}

	report, err := h.reports.BalanceSheet(r.Context(), asOf)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"balance_sheet": report,
		"is_balanced":   report.IsBalanced(),
	})
}

// IncomeStatement handles GET /reports/income_statement?start=...&end=...
func (h *ReportsHandler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := time.Parse(models.DateLayout, query.Get("start"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "start must be formatted YYYY-MM-DD")
		return
	}
	end, err := time.Parse(models.DateLayout, query.Get("end"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "end must be formatted YYYY-MM-DD")
		return
	}

	report, err := h.reports.IncomeStatement(r.Context(), start, end)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"income_statement": report})
}
