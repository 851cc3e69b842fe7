package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/generalledger/internal/adapter/http/dto"
	"github.com/iho/generalledger/internal/chart"
	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	CreateLedger(ctx context.Context, input usecase.CreateLedgerInput) (*domain.LedgerDomain, error)
	GetDomain(ctx context.Context, code string) (*domain.LedgerDomain, error)
	UpdateDomain(ctx context.Context, input usecase.UpdateDomainInput) (*domain.LedgerDomain, error)
	GetBalance(ctx context.Context, domainCode, accountCode, currency string) (*domain.LedgerBalance, error)
	ListAccountBalances(ctx context.Context, domainCode, accountCode string) ([]*domain.LedgerBalance, error)
}

// LedgerHandler handles ledger domain HTTP requests.
type LedgerHandler struct {
	ledgerUC LedgerService
	charts   *chart.Registry
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, charts *chart.Registry) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC, charts: charts}
}

// Create creates a new ledger domain, optionally expanding a named chart
// template into its account tree.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input := req.ToUseCaseInput()

	if req.Template != "" {
		if len(req.Accounts) > 0 {
			writeError(w, http.StatusBadRequest, "invalid request", "template and accounts are mutually exclusive")
			return
		}

		tpl, err := h.charts.Get(req.Template)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown chart template", err.Error())
			return
		}
		input.Accounts = tpl.AccountInputs()
	}

	ledgerDomain, err := h.ledgerUC.CreateLedger(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.DomainFromModel(ledgerDomain))
}

// Get retrieves a ledger domain by code.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ledgerDomain, err := h.ledgerUC.GetDomain(r.Context(), code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DomainFromModel(ledgerDomain))
}

// Update mutates a ledger domain under optimistic revision check.
func (h *LedgerHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req dto.UpdateLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ledgerDomain, err := h.ledgerUC.UpdateDomain(r.Context(), req.ToUseCaseInput(code))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update ledger", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DomainFromModel(ledgerDomain))
}

// GetBalance returns an account's running balance in one currency.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")
	currency := chi.URLParam(r, "currency")

	balance, err := h.ledgerUC.GetBalance(r.Context(), code, accountCode, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromModel(balance, accountCode))
}

// ListBalances returns every balance row held by an account.
func (h *LedgerHandler) ListBalances(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")

	balances, err := h.ledgerUC.ListAccountBalances(r.Context(), code, accountCode)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list balances", err.Error())
		return
	}

	result := make([]*dto.BalanceResponse, len(balances))
	for i, b := range balances {
		result[i] = dto.BalanceFromModel(b, accountCode)
	}

	writeJSON(w, http.StatusOK, result)
}
