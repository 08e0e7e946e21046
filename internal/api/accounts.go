package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/models"
)

// AccountsHandler handles chart-of-accounts API endpoints.
type AccountsHandler struct {
	registry *ledger.AccountRegistry
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(registry *ledger.AccountRegistry) *AccountsHandler {
	return &AccountsHandler{registry: registry}
}

type accountRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// List handles GET /accounts. Supports ?type=, ?active=true and ?q= filters.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		accounts []models.Account
		err      error
	)

	query := r.URL.Query()
	switch {
	case query.Get("q") != "":
		accounts, err = h.registry.SearchByName(r.Context(), query.Get("q"))
	case query.Get("type") != "":
		accounts, err = h.registry.ListByType(r.Context(), models.AccountType(query.Get("type")))
	case query.Get("active") == "true":
		accounts, err = h.registry.ListActive(r.Context())
	default:
		accounts, err = h.registry.ListAll(r.Context())
	}
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// Get handles GET /accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.registry.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"account": account})
}

// Create handles POST /accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	account, err := h.registry.CreateAccount(r.Context(), req.Code, req.Name, models.AccountType(req.Type), req.Description)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"account": account})
}

// Update handles PUT /accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	account, err := h.registry.UpdateAccount(r.Context(), chi.URLParam(r, "id"), req.Code, req.Name, models.AccountType(req.Type), req.Description)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"account": account})
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	found, err := h.registry.DeleteAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if !found {
		writeJSONError(w, http.StatusNotFound, "not_found", "Account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /accounts/{id}/toggle, flipping the active flag.
func (h *AccountsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	account, err := h.registry.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"account": account})
}
