package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/domain"
)

// LedgerUseCase handles ledger setup: domains, their currency registries and
// chart-of-accounts expansion.
type LedgerUseCase struct {
	txManager    TransactionManager
	domainRepo   DomainRepository
	currencyRepo CurrencyRepository
	accountRepo  AccountRepository
	balanceRepo  BalanceRepository
	idGen        IDGenerator
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	domainRepo DomainRepository,
	currencyRepo CurrencyRepository,
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:    txManager,
		domainRepo:   domainRepo,
		currencyRepo: currencyRepo,
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		idGen:        idGen,
	}
}

// CurrencyInput registers one currency in a new domain.
type CurrencyInput struct {
	Code     string
	Decimals int32
}

// TemplateAccountInput is one node of a chart-of-accounts tree to expand.
// The caller builds these from an explicitly loaded chart template.
type TemplateAccountInput struct {
	Code     string
	Category bool
	Debit    bool
	Credit   bool
	Children []TemplateAccountInput
}

// CreateLedgerInput represents input for creating a complete ledger domain.
type CreateLedgerInput struct {
	DomainCode      string
	CurrencyDefault string
	SubJournals     bool
	Currencies      []CurrencyInput
	Accounts        []TemplateAccountInput
}

// CreateLedger creates a domain, registers its currencies and expands the
// account tree, all in one transaction. The default currency must be among
// the registered ones; when unset it defaults to the first.
func (uc *LedgerUseCase) CreateLedger(ctx context.Context, input CreateLedgerInput) (*domain.LedgerDomain, error) {
	if err := domain.ValidateCode(input.DomainCode); err != nil {
		return nil, err
	}

	if len(input.Currencies) == 0 {
		return nil, fmt.Errorf("%w: at least one currency is required", domain.ErrValidation)
	}

	currencyCodes := make([]string, 0, len(input.Currencies))
	for i := range input.Currencies {
		input.Currencies[i].Code = domain.NormalizeCurrency(input.Currencies[i].Code)

		if err := domain.ValidateCurrencyCode(input.Currencies[i].Code); err != nil {
			return nil, err
		}

		if err := domain.ValidateCurrencyDecimals(input.Currencies[i].Decimals); err != nil {
			return nil, err
		}

		currencyCodes = append(currencyCodes, input.Currencies[i].Code)
	}

	currencyDefault := domain.NormalizeCurrency(input.CurrencyDefault)
	if currencyDefault == "" {
		currencyDefault = currencyCodes[0]
	}

	found := false
	for _, code := range currencyCodes {
		if code == currencyDefault {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: default currency %s is not registered", domain.ErrValidation, currencyDefault)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	ledgerDomain := &domain.LedgerDomain{
		UUID:            uc.idGen.Generate(),
		Code:            input.DomainCode,
		CurrencyDefault: currencyDefault,
		SubJournals:     input.SubJournals,
		Revision:        uc.idGen.Generate(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.domainRepo.Create(ctx, tx, ledgerDomain); err != nil {
		return nil, err
	}

	for _, c := range input.Currencies {
		currency := &domain.Currency{
			DomainUUID: ledgerDomain.UUID,
			Code:       c.Code,
			Decimals:   c.Decimals,
			Revision:   uc.idGen.Generate(),
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := uc.currencyRepo.Create(ctx, tx, currency); err != nil {
			return nil, err
		}
	}

	for _, node := range input.Accounts {
		if err := uc.createAccountTree(ctx, tx, ledgerDomain, nil, node, currencyCodes, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ledgerDomain, nil
}

func (uc *LedgerUseCase) createAccountTree(
	ctx context.Context,
	tx Transaction,
	ledgerDomain *domain.LedgerDomain,
	parent *domain.LedgerAccount,
	node TemplateAccountInput,
	currencies []string,
	now time.Time,
) error {
	if err := domain.ValidateCode(node.Code); err != nil {
		return err
	}

	account := &domain.LedgerAccount{
		UUID:       uc.idGen.Generate(),
		DomainUUID: ledgerDomain.UUID,
		Code:       node.Code,
		Category:   node.Category,
		Debit:      node.Debit,
		Credit:     node.Credit,
		Currencies: currencies,
		Revision:   uc.idGen.Generate(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if parent != nil {
		account.ParentUUID = &parent.UUID
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return err
	}

	for _, child := range node.Children {
		if err := uc.createAccountTree(ctx, tx, ledgerDomain, account, child, currencies, now); err != nil {
			return err
		}
	}

	return nil
}

// GetDomain retrieves a ledger domain by code.
func (uc *LedgerUseCase) GetDomain(ctx context.Context, code string) (*domain.LedgerDomain, error) {
	return uc.domainRepo.GetByCode(ctx, code)
}

// UpdateDomainInput represents input for updating a domain.
type UpdateDomainInput struct {
	Code            string
	Revision        string
	ToCode          string
	CurrencyDefault string
	SubJournals     *bool
}

// UpdateDomain mutates a domain under optimistic revision check. The default
// currency can only be changed to one already registered in the domain.
func (uc *LedgerUseCase) UpdateDomain(ctx context.Context, input UpdateDomainInput) (*domain.LedgerDomain, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ledgerDomain, err := uc.domainRepo.GetByCodeForUpdate(ctx, tx, input.Code)
	if err != nil {
		return nil, err
	}

	if ledgerDomain.Revision != input.Revision {
		return nil, domain.ErrRevisionMismatch
	}

	if input.ToCode != "" {
		if err := domain.ValidateCode(input.ToCode); err != nil {
			return nil, err
		}
		ledgerDomain.Code = input.ToCode
	}

	if input.CurrencyDefault != "" {
		code := domain.NormalizeCurrency(input.CurrencyDefault)
		if _, err := uc.currencyRepo.GetByCode(ctx, ledgerDomain.UUID, code); err != nil {
			return nil, err
		}
		ledgerDomain.CurrencyDefault = code
	}

	if input.SubJournals != nil {
		ledgerDomain.SubJournals = *input.SubJournals
	}

	ledgerDomain.Revision = uc.idGen.Generate()
	ledgerDomain.UpdatedAt = time.Now().UTC()

	if err := uc.domainRepo.Update(ctx, tx, ledgerDomain); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ledgerDomain, nil
}

// GetBalance returns the running balance for an account and currency. An
// account that was never posted to in the currency reports a zero balance.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, domainCode, accountCode, currency string) (*domain.LedgerBalance, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, domainCode)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByCode(ctx, ledgerDomain.UUID, accountCode)
	if err != nil {
		return nil, err
	}

	balance, err := uc.balanceRepo.Get(ctx, account.UUID, ledgerDomain.UUID, domain.NormalizeCurrency(currency))
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return &domain.LedgerBalance{
			AccountUUID: account.UUID,
			DomainUUID:  ledgerDomain.UUID,
			Currency:    domain.NormalizeCurrency(currency),
			Amount:      decimal.Zero,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	return balance, nil
}

// ListAccountBalances returns every balance row held by an account.
func (uc *LedgerUseCase) ListAccountBalances(ctx context.Context, domainCode, accountCode string) ([]*domain.LedgerBalance, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, domainCode)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByCode(ctx, ledgerDomain.UUID, accountCode)
	if err != nil {
		return nil, err
	}

	return uc.balanceRepo.ListByAccount(ctx, account.UUID)
}
