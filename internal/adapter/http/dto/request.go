package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// transDateLayout is the wire format for journal entry dates.
const transDateLayout = "2006-01-02"

// CurrencyItem registers one currency when creating a ledger.
type CurrencyItem struct {
	Code     string `json:"code"`
	Decimals int32  `json:"decimals"`
}

// ChartAccountItem is one node of the chart-of-accounts tree in a create
// ledger request.
type ChartAccountItem struct {
	Code     string             `json:"code"`
	Category bool               `json:"category,omitempty"`
	Debit    bool               `json:"debit,omitempty"`
	Credit   bool               `json:"credit,omitempty"`
	Children []ChartAccountItem `json:"children,omitempty"`
}

// CreateLedgerRequest represents a request to create a ledger domain.
type CreateLedgerRequest struct {
	Code            string             `json:"code"`
	CurrencyDefault string             `json:"currency_default,omitempty"`
	SubJournals     bool               `json:"sub_journals,omitempty"`
	Currencies      []CurrencyItem     `json:"currencies"`
	Accounts        []ChartAccountItem `json:"accounts,omitempty"`
	Template        string             `json:"template,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLedgerRequest) ToUseCaseInput() usecase.CreateLedgerInput {
	currencies := make([]usecase.CurrencyInput, len(r.Currencies))
	for i, c := range r.Currencies {
		currencies[i] = usecase.CurrencyInput{Code: c.Code, Decimals: c.Decimals}
	}

	return usecase.CreateLedgerInput{
		DomainCode:      r.Code,
		CurrencyDefault: r.CurrencyDefault,
		SubJournals:     r.SubJournals,
		Currencies:      currencies,
		Accounts:        ChartAccountsToInputs(r.Accounts),
	}
}

// ChartAccountsToInputs converts a chart tree to use case inputs.
func ChartAccountsToInputs(items []ChartAccountItem) []usecase.TemplateAccountInput {
	inputs := make([]usecase.TemplateAccountInput, len(items))
	for i, item := range items {
		inputs[i] = usecase.TemplateAccountInput{
			Code:     item.Code,
			Category: item.Category,
			Debit:    item.Debit,
			Credit:   item.Credit,
			Children: ChartAccountsToInputs(item.Children),
		}
	}
	return inputs
}

// UpdateLedgerRequest represents a request to update a ledger domain.
type UpdateLedgerRequest struct {
	Revision        string `json:"revision"`
	ToCode          string `json:"to_code,omitempty"`
	CurrencyDefault string `json:"currency_default,omitempty"`
	SubJournals     *bool  `json:"sub_journals,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateLedgerRequest) ToUseCaseInput(domainCode string) usecase.UpdateDomainInput {
	return usecase.UpdateDomainInput{
		Code:            domainCode,
		Revision:        r.Revision,
		ToCode:          r.ToCode,
		CurrencyDefault: r.CurrencyDefault,
		SubJournals:     r.SubJournals,
	}
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Code       string   `json:"code"`
	Parent     string   `json:"parent,omitempty"`
	Category   bool     `json:"category,omitempty"`
	Debit      bool     `json:"debit,omitempty"`
	Credit     bool     `json:"credit,omitempty"`
	Currencies []string `json:"currencies,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput(domainCode string) usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		DomainCode: domainCode,
		Code:       r.Code,
		ParentCode: r.Parent,
		Category:   r.Category,
		Debit:      r.Debit,
		Credit:     r.Credit,
		Currencies: r.Currencies,
	}
}

// MoveAccountRequest represents a request to re-parent an account. An empty
// parent moves the account to the root level.
type MoveAccountRequest struct {
	Parent   string `json:"parent"`
	Revision string `json:"revision"`
}

// ToUseCaseInput converts to use case input.
func (r *MoveAccountRequest) ToUseCaseInput(domainCode, code string) usecase.MoveAccountInput {
	return usecase.MoveAccountInput{
		DomainCode:    domainCode,
		Code:          code,
		NewParentCode: r.Parent,
		Revision:      r.Revision,
	}
}

// DetailItem is one signed line of a journal entry request.
type DetailItem struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// EntryRequest represents a request to post or replace a journal entry.
type EntryRequest struct {
	Domain      string       `json:"domain"`
	Currency    string       `json:"currency"`
	Date        string       `json:"date"`
	Description string       `json:"description,omitempty"`
	Revision    string       `json:"revision,omitempty"`
	Details     []DetailItem `json:"details"`
}

// ToUseCaseInput converts to use case input, parsing the entry date.
func (r *EntryRequest) ToUseCaseInput() (usecase.EntryInput, error) {
	var date time.Time

	if r.Date != "" {
		parsed, err := time.Parse(transDateLayout, r.Date)
		if err != nil {
			return usecase.EntryInput{}, fmt.Errorf("%w: date must be %s", domain.ErrValidation, transDateLayout)
		}
		date = parsed
	}

	details := make([]usecase.DetailInput, len(r.Details))
	for i, d := range r.Details {
		details[i] = usecase.DetailInput{
			AccountCode: d.Account,
			Amount:      d.Amount,
		}
	}

	return usecase.EntryInput{
		DomainCode:  r.Domain,
		Currency:    r.Currency,
		Date:        date,
		Description: r.Description,
		Details:     details,
	}, nil
}
