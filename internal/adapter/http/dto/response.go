package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/domain"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DomainResponse represents a ledger domain in API responses.
type DomainResponse struct {
	Code            string    `json:"code"`
	CurrencyDefault string    `json:"currency_default"`
	SubJournals     bool      `json:"sub_journals"`
	Revision        string    `json:"revision"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DomainFromModel converts a ledger domain to a response.
func DomainFromModel(d *domain.LedgerDomain) *DomainResponse {
	return &DomainResponse{
		Code:            d.Code,
		CurrencyDefault: d.CurrencyDefault,
		SubJournals:     d.SubJournals,
		Revision:        d.Revision,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	Code       string    `json:"code"`
	Parent     string    `json:"parent,omitempty"`
	Category   bool      `json:"category"`
	Debit      bool      `json:"debit"`
	Credit     bool      `json:"credit"`
	Currencies []string  `json:"currencies"`
	Revision   string    `json:"revision"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// AccountFromModel converts an account to a response. The parent code is
// resolved by the handler since the model carries only the parent reference.
func AccountFromModel(a *domain.LedgerAccount, parentCode string) *AccountResponse {
	return &AccountResponse{
		Code:       a.Code,
		Parent:     parentCode,
		Category:   a.Category,
		Debit:      a.Debit,
		Credit:     a.Credit,
		Currencies: a.Currencies,
		Revision:   a.Revision,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// BalanceResponse represents a running balance in API responses.
type BalanceResponse struct {
	Account  string          `json:"account,omitempty"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Revision string          `json:"revision,omitempty"`
}

// BalanceFromModel converts a balance to a response.
func BalanceFromModel(b *domain.LedgerBalance, accountCode string) *BalanceResponse {
	return &BalanceResponse{
		Account:  accountCode,
		Currency: b.Currency,
		Balance:  b.Amount,
		Revision: b.Revision,
	}
}

// DetailResponse represents a journal detail in API responses.
type DetailResponse struct {
	ID      string          `json:"id"`
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID          string           `json:"id"`
	Currency    string           `json:"currency"`
	Date        string           `json:"date"`
	Description string           `json:"description,omitempty"`
	Revision    string           `json:"revision"`
	Details     []DetailResponse `json:"details"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// EntryFromModel converts a journal entry to a response.
func EntryFromModel(e *domain.JournalEntry) *EntryResponse {
	details := make([]DetailResponse, len(e.Details))
	for i, d := range e.Details {
		details[i] = DetailResponse{
			ID:      d.ID,
			Account: d.AccountCode,
			Amount:  d.Amount,
		}
	}

	return &EntryResponse{
		ID:          e.ID,
		Currency:    e.Currency,
		Date:        e.TransDate.Format(transDateLayout),
		Description: e.Description,
		Revision:    e.Revision,
		Details:     details,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// EntriesFromModel converts journal entries to responses.
func EntriesFromModel(entries []*domain.JournalEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromModel(e)
	}
	return result
}

// AccountsFromModel converts accounts to responses without parent codes.
func AccountsFromModel(accounts []*domain.LedgerAccount) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromModel(a, "")
	}
	return result
}
