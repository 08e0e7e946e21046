package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shunichi-ikebuchi/bookkeeping/internal/ledger"
)

// NewRouter wires the ledger services into a chi router.
func NewRouter(registry *ledger.AccountRegistry, manager *ledger.TransactionManager, reports *ledger.ReportGenerator) *chi.Mux {
	accountsHandler := NewAccountsHandler(registry)
	transactionsHandler := NewTransactionsHandler(manager)
	reportsHandler := NewReportsHandler(reports)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", accountsHandler.List)
			r.Post("/", accountsHandler.Create)
			r.Get("/{id}", accountsHandler.Get)
			r.Put("/{id}", accountsHandler.Update)
			r.Delete("/{id}", accountsHandler.Delete)
			r.Post("/{id}/toggle", accountsHandler.Toggle)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", transactionsHandler.List)
			r.Post("/", transactionsHandler.Create)
			r.Get("/{id}", transactionsHandler.Get)
			r.Put("/{id}", transactionsHandler.Update)
			r.Put("/{id}/lines", transactionsHandler.ReplaceLines)
			r.Delete("/{id}", transactionsHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial_balance", reportsHandler.TrialBalance)
			r.Get("/balance_sheet", reportsHandler.BalanceSheet)
			r.Get("/income_statement", reportsHandler.IncomeStatement)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
