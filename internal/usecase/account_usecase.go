package usecase

import (
	"context"
	"time"

	"github.com/iho/generalledger/internal/domain"
)

// AccountUseCase maintains the account tree: parent/child links, category
// flags and per-account currency membership.
type AccountUseCase struct {
	txManager    TransactionManager
	domainRepo   DomainRepository
	currencyRepo CurrencyRepository
	accountRepo  AccountRepository
	balanceRepo  BalanceRepository
	entryRepo    EntryRepository
	idGen        IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	domainRepo DomainRepository,
	currencyRepo CurrencyRepository,
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:    txManager,
		domainRepo:   domainRepo,
		currencyRepo: currencyRepo,
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		entryRepo:    entryRepo,
		idGen:        idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	DomainCode string
	Code       string
	ParentCode string
	Category   bool
	Debit      bool
	Credit     bool
	Currencies []string
}

// CreateAccount creates an account, optionally under a parent category.
// When no currency set is given the account carries every currency
// registered in the domain.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.LedgerAccount, error) {
	if err := domain.ValidateCode(input.Code); err != nil {
		return nil, err
	}

	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, input.DomainCode)
	if err != nil {
		return nil, err
	}

	currencies := input.Currencies
	if len(currencies) == 0 {
		registered, err := uc.currencyRepo.ListByDomain(ctx, ledgerDomain.UUID)
		if err != nil {
			return nil, err
		}
		for _, c := range registered {
			currencies = append(currencies, c.Code)
		}
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	account := &domain.LedgerAccount{
		UUID:       uc.idGen.Generate(),
		DomainUUID: ledgerDomain.UUID,
		Code:       input.Code,
		Category:   input.Category,
		Debit:      input.Debit,
		Credit:     input.Credit,
		Currencies: currencies,
		Revision:   uc.idGen.Generate(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if input.ParentCode != "" {
		parent, err := uc.accountRepo.GetByCodeForUpdate(ctx, tx, ledgerDomain.UUID, input.ParentCode)
		if err != nil {
			return nil, err
		}

		siblings, err := uc.accountRepo.ListChildren(ctx, tx, parent.UUID)
		if err != nil {
			return nil, err
		}

		if err := parent.CanParent(account, siblings); err != nil {
			return nil, err
		}

		account.ParentUUID = &parent.UUID
	}

	if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// MoveAccountInput represents input for re-parenting an account.
type MoveAccountInput struct {
	DomainCode    string
	Code          string
	NewParentCode string
	Revision      string
}

// MoveAccount re-parents an account under optimistic revision check. The
// move is rejected when it would create a cycle or violate the category
// child policy. An empty NewParentCode moves the account to the root level.
func (uc *AccountUseCase) MoveAccount(ctx context.Context, input MoveAccountInput) (*domain.LedgerAccount, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, input.DomainCode)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByCodeForUpdate(ctx, tx, ledgerDomain.UUID, input.Code)
	if err != nil {
		return nil, err
	}

	if account.Revision != input.Revision {
		return nil, domain.ErrRevisionMismatch
	}

	oldChain, err := uc.accountRepo.AncestorChain(ctx, tx, account.UUID)
	if err != nil {
		return nil, err
	}

	var newChain []*domain.LedgerAccount

	if input.NewParentCode == "" {
		account.ParentUUID = nil
	} else {
		parent, err := uc.accountRepo.GetByCodeForUpdate(ctx, tx, ledgerDomain.UUID, input.NewParentCode)
		if err != nil {
			return nil, err
		}

		parentChain, err := uc.accountRepo.AncestorChain(ctx, tx, parent.UUID)
		if err != nil {
			return nil, err
		}

		if err := checkNoCycle(account, parent, parentChain); err != nil {
			return nil, err
		}

		siblings, err := uc.accountRepo.ListChildren(ctx, tx, parent.UUID)
		if err != nil {
			return nil, err
		}

		if err := parent.CanParent(account, siblings); err != nil {
			return nil, err
		}

		account.ParentUUID = &parent.UUID
		newChain = append([]*domain.LedgerAccount{parent}, parentChain...)
	}

	// The moved account's balance rows already aggregate its whole subtree,
	// so shifting them off the old ancestor chain and onto the new one keeps
	// every category equal to the sum of its children.
	deltas, err := uc.moveDeltas(ctx, account, oldChain, newChain)
	if err != nil {
		return nil, err
	}

	if len(deltas) > 0 {
		if err := uc.balanceRepo.ApplyDeltaSet(ctx, tx, deltas); err != nil {
			return nil, err
		}
	}

	account.Revision = uc.idGen.Generate()
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountRepo.Update(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// checkNoCycle rejects a re-parent that would place account above itself.
// parentChain is the new parent's ancestor chain, parent first.
func checkNoCycle(account, newParent *domain.LedgerAccount, parentChain []*domain.LedgerAccount) error {
	if newParent.UUID == account.UUID {
		return domain.ErrCycleDetected
	}

	for _, ancestor := range parentChain {
		if ancestor.UUID == account.UUID {
			return domain.ErrCycleDetected
		}
	}

	return nil
}

// moveDeltas builds the balance adjustments a re-parent requires: each of
// the account's non-zero balances is subtracted from every old ancestor and
// added to every new one. Ancestors on both chains merge to zero and are
// dropped.
func (uc *AccountUseCase) moveDeltas(ctx context.Context, account *domain.LedgerAccount, oldChain, newChain []*domain.LedgerAccount) ([]domain.BalanceDelta, error) {
	balances, err := uc.balanceRepo.ListByAccount(ctx, account.UUID)
	if err != nil {
		return nil, err
	}

	var deltas []domain.BalanceDelta
	for _, b := range balances {
		if b.Amount.IsZero() {
			continue
		}

		for _, ancestor := range oldChain {
			deltas = append(deltas, domain.BalanceDelta{
				AccountUUID: ancestor.UUID,
				DomainUUID:  b.DomainUUID,
				Currency:    b.Currency,
				Amount:      b.Amount.Neg(),
			})
		}

		for _, ancestor := range newChain {
			deltas = append(deltas, domain.BalanceDelta{
				AccountUUID: ancestor.UUID,
				DomainUUID:  b.DomainUUID,
				Currency:    b.Currency,
				Amount:      b.Amount,
			})
		}
	}

	merged := domain.MergeDeltas(deltas)

	kept := merged[:0]
	for _, d := range merged {
		if d.Amount.IsZero() {
			continue
		}
		d.Revision = uc.idGen.Generate()
		kept = append(kept, d)
	}

	return kept, nil
}

// DeleteAccountInput represents input for deleting an account.
type DeleteAccountInput struct {
	DomainCode string
	Code       string
	Revision   string
}

// DeleteAccount removes an account that has no children, no postings and no
// non-zero balance, under optimistic revision check. Zero balance rows left
// over from fully reversed postings are removed with it.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, input DeleteAccountInput) error {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, input.DomainCode)
	if err != nil {
		return err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByCodeForUpdate(ctx, tx, ledgerDomain.UUID, input.Code)
	if err != nil {
		return err
	}

	if account.Revision != input.Revision {
		return domain.ErrRevisionMismatch
	}

	hasChildren, err := uc.accountRepo.HasChildren(ctx, tx, account.UUID)
	if err != nil {
		return err
	}
	if hasChildren {
		return domain.ErrAccountNotEmpty
	}

	hasBalance, err := uc.balanceRepo.HasNonZero(ctx, tx, account.UUID)
	if err != nil {
		return err
	}
	if hasBalance {
		return domain.ErrAccountNotEmpty
	}

	hasPostings, err := uc.entryRepo.HasDetailsForAccount(ctx, tx, account.UUID)
	if err != nil {
		return err
	}
	if hasPostings {
		return domain.ErrAccountNotEmpty
	}

	if err := uc.balanceRepo.DeleteByAccount(ctx, tx, account.UUID); err != nil {
		return err
	}

	if err := uc.accountRepo.Delete(ctx, tx, account.UUID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetAccount retrieves an account by domain and code.
func (uc *AccountUseCase) GetAccount(ctx context.Context, domainCode, code string) (*domain.LedgerAccount, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, domainCode)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.GetByCode(ctx, ledgerDomain.UUID, code)
}

// AncestorChain returns the account's ancestors, parent first, root last.
func (uc *AccountUseCase) AncestorChain(ctx context.Context, domainCode, code string) ([]*domain.LedgerAccount, error) {
	account, err := uc.GetAccount(ctx, domainCode, code)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.AncestorChain(ctx, nil, account.UUID)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	DomainCode string
	Limit      int
	Offset     int
}

// ListAccounts lists a domain's accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.LedgerAccount, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, input.DomainCode)
	if err != nil {
		return nil, err
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}

	if input.Limit > 100 {
		input.Limit = 100
	}

	return uc.accountRepo.List(ctx, ledgerDomain.UUID, input.Limit, input.Offset)
}
