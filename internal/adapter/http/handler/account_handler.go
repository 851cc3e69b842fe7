package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/generalledger/internal/adapter/http/dto"
	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.LedgerAccount, error)
	GetAccount(ctx context.Context, domainCode, code string) (*domain.LedgerAccount, error)
	MoveAccount(ctx context.Context, input usecase.MoveAccountInput) (*domain.LedgerAccount, error)
	DeleteAccount(ctx context.Context, input usecase.DeleteAccountInput) error
	AncestorChain(ctx context.Context, domainCode, code string) ([]*domain.LedgerAccount, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.LedgerAccount, error)
}

// AccountHandler handles account tree HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account in a ledger domain.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(code))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromModel(account, req.Parent))
}

// Get retrieves an account by code.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")

	account, err := h.accountUC.GetAccount(r.Context(), code, accountCode)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	parentCode := ""
	if account.ParentUUID != nil {
		ancestors, err := h.accountUC.AncestorChain(r.Context(), code, accountCode)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to resolve parent", err.Error())
			return
		}
		if len(ancestors) > 0 {
			parentCode = ancestors[0].Code
		}
	}

	writeJSON(w, http.StatusOK, dto.AccountFromModel(account, parentCode))
}

// Move re-parents an account.
func (h *AccountHandler) Move(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")

	var req dto.MoveAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.MoveAccount(r.Context(), req.ToUseCaseInput(code, accountCode))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to move account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromModel(account, req.Parent))
}

// Delete removes an empty account. The revision token is passed as a query
// parameter since DELETE carries no body.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")

	revision := r.URL.Query().Get("revision")
	if revision == "" {
		writeError(w, http.StatusBadRequest, "missing revision", "the revision query parameter is required")
		return
	}

	err := h.accountUC.DeleteAccount(r.Context(), usecase.DeleteAccountInput{
		DomainCode: code,
		Code:       accountCode,
		Revision:   revision,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to delete account", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Ancestors returns the account's category chain, parent first.
func (h *AccountHandler) Ancestors(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	accountCode := chi.URLParam(r, "accountCode")

	ancestors, err := h.accountUC.AncestorChain(r.Context(), code, accountCode)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get ancestors", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromModel(ancestors))
}

// List lists a domain's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	accounts, err := h.accountUC.ListAccounts(r.Context(), usecase.ListAccountsInput{
		DomainCode: code,
		Limit:      parseIntQuery(r, "limit", 20),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromModel(accounts))
}
