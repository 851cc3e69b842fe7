package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/domain"
)

// JournalUseCase is the posting engine: it validates journal entry intents
// and applies them to the balance store, propagating every leaf delta to the
// leaf's category ancestors inside one transaction.
type JournalUseCase struct {
	txManager    TransactionManager
	retrier      Retrier
	domainRepo   DomainRepository
	currencyRepo CurrencyRepository
	accountRepo  AccountRepository
	balanceRepo  BalanceRepository
	entryRepo    EntryRepository
	idGen        IDGenerator
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(
	txManager TransactionManager,
	retrier Retrier,
	domainRepo DomainRepository,
	currencyRepo CurrencyRepository,
	accountRepo AccountRepository,
	balanceRepo BalanceRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
) *JournalUseCase {
	return &JournalUseCase{
		txManager:    txManager,
		retrier:      retrier,
		domainRepo:   domainRepo,
		currencyRepo: currencyRepo,
		accountRepo:  accountRepo,
		balanceRepo:  balanceRepo,
		entryRepo:    entryRepo,
		idGen:        idGen,
	}
}

// DetailInput is one signed line of an entry intent.
type DetailInput struct {
	AccountCode string
	Amount      decimal.Decimal
}

// EntryInput is a journal entry intent as produced by the request layer.
type EntryInput struct {
	DomainCode  string
	Currency    string
	Date        time.Time
	Description string
	Details     []DetailInput
}

// PostEntry validates the intent and posts it: one delta per distinct
// account plus its category ancestors, applied with the stored entry in a
// single transaction.
func (uc *JournalUseCase) PostEntry(ctx context.Context, input EntryInput) (*domain.JournalEntry, error) {
	ledgerDomain, currency, err := uc.resolveScope(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := validateEntryInput(input, currency); err != nil {
		return nil, err
	}

	var entry *domain.JournalEntry

	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		entry, opErr = uc.postOnce(ctx, ledgerDomain, input)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *JournalUseCase) postOnce(ctx context.Context, ledgerDomain *domain.LedgerDomain, input EntryInput) (*domain.JournalEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	accounts, err := uc.lockAccounts(ctx, tx, ledgerDomain.UUID, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := uc.buildEntry(ledgerDomain, input, accounts, now)

	deltas, err := uc.expandDeltas(ctx, tx, entry.LeafDeltas())
	if err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.ApplyDeltaSet(ctx, tx, deltas); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// UpdateEntry replaces a posted entry under optimistic revision check. The
// reversal of the old details and the application of the new ones are merged
// into one delta set so no half-applied state is ever visible.
func (uc *JournalUseCase) UpdateEntry(ctx context.Context, id, revision string, input EntryInput) (*domain.JournalEntry, error) {
	ledgerDomain, currency, err := uc.resolveScope(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := validateEntryInput(input, currency); err != nil {
		return nil, err
	}

	var entry *domain.JournalEntry

	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		entry, opErr = uc.updateOnce(ctx, ledgerDomain, id, revision, input)
		return opErr
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

func (uc *JournalUseCase) updateOnce(ctx context.Context, ledgerDomain *domain.LedgerDomain, id, revision string, input EntryInput) (*domain.JournalEntry, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	old, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if old.Revision != revision {
		return nil, domain.ErrRevisionMismatch
	}

	if old.DomainUUID != ledgerDomain.UUID {
		return nil, domain.ErrDomainImmutable
	}

	accounts, err := uc.lockAccounts(ctx, tx, ledgerDomain.UUID, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := uc.buildEntry(ledgerDomain, input, accounts, now)
	entry.ID = old.ID
	entry.CreatedAt = old.CreatedAt

	// Net effect of removing the old details and posting the new ones.
	deltas, err := uc.expandDeltas(ctx, tx, append(old.ReversalDeltas(), entry.LeafDeltas()...))
	if err != nil {
		return nil, err
	}

	if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := uc.balanceRepo.ApplyDeltaSet(ctx, tx, deltas); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// DeleteEntry reverses a posted entry's contribution to every affected
// balance and removes it, under optimistic revision check.
func (uc *JournalUseCase) DeleteEntry(ctx context.Context, id, revision string) error {
	return uc.retrier.Retry(ctx, func() error {
		return uc.deleteOnce(ctx, id, revision)
	})
}

func (uc *JournalUseCase) deleteOnce(ctx context.Context, id, revision string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	old, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if old.Revision != revision {
		return domain.ErrRevisionMismatch
	}

	deltas, err := uc.expandDeltas(ctx, tx, old.ReversalDeltas())
	if err != nil {
		return err
	}

	if err := uc.entryRepo.Delete(ctx, tx, id); err != nil {
		return err
	}

	if err := uc.balanceRepo.ApplyDeltaSet(ctx, tx, deltas); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetEntry retrieves a posted entry by ID.
func (uc *JournalUseCase) GetEntry(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	DomainCode string
	Limit      int
	Offset     int
}

// ListEntries lists a domain's entries, newest first.
func (uc *JournalUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
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

	return uc.entryRepo.ListByDomain(ctx, ledgerDomain.UUID, input.Limit, input.Offset)
}

func (uc *JournalUseCase) resolveScope(ctx context.Context, input EntryInput) (*domain.LedgerDomain, *domain.Currency, error) {
	ledgerDomain, err := uc.domainRepo.GetByCode(ctx, input.DomainCode)
	if err != nil {
		return nil, nil, err
	}

	currency, err := uc.currencyRepo.GetByCode(ctx, ledgerDomain.UUID, domain.NormalizeCurrency(input.Currency))
	if err != nil {
		return nil, nil, err
	}

	return ledgerDomain, currency, nil
}

// lockAccounts resolves and row-locks every account referenced by the intent
// in sorted code order (deadlock prevention), and checks that each is a
// postable leaf carrying the entry currency.
func (uc *JournalUseCase) lockAccounts(ctx context.Context, tx Transaction, domainUUID string, input EntryInput) (map[string]*domain.LedgerAccount, error) {
	seen := make(map[string]bool, len(input.Details))

	var codes []string
	for _, d := range input.Details {
		if !seen[d.AccountCode] {
			seen[d.AccountCode] = true
			codes = append(codes, d.AccountCode)
		}
	}
	sort.Strings(codes)

	accounts, err := uc.accountRepo.GetByCodesForUpdate(ctx, tx, domainUUID, codes)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(codes) {
		return nil, domain.ErrAccountNotFound
	}

	currency := domain.NormalizeCurrency(input.Currency)

	byCode := make(map[string]*domain.LedgerAccount, len(accounts))
	for _, a := range accounts {
		if !a.Postable() {
			return nil, domain.ErrCategoryPosting
		}

		if !a.SupportsCurrency(currency) {
			return nil, domain.ErrCurrencyNotSupported
		}

		byCode[a.Code] = a
	}

	return byCode, nil
}

func (uc *JournalUseCase) buildEntry(ledgerDomain *domain.LedgerDomain, input EntryInput, accounts map[string]*domain.LedgerAccount, now time.Time) *domain.JournalEntry {
	entry := &domain.JournalEntry{
		ID:          uc.idGen.Generate(),
		DomainUUID:  ledgerDomain.UUID,
		Currency:    domain.NormalizeCurrency(input.Currency),
		TransDate:   input.Date,
		Description: input.Description,
		Revision:    uc.idGen.Generate(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, d := range input.Details {
		account := accounts[d.AccountCode]
		entry.Details = append(entry.Details, domain.JournalDetail{
			ID:          uc.idGen.Generate(),
			EntryID:     entry.ID,
			AccountUUID: account.UUID,
			AccountCode: account.Code,
			Amount:      d.Amount,
		})
	}

	return entry
}

// expandDeltas adds, for each leaf delta, an equal delta for every category
// ancestor of the leaf, then merges deltas that target the same balance row
// and stamps each survivor with a fresh revision token.
func (uc *JournalUseCase) expandDeltas(ctx context.Context, tx Transaction, leafDeltas []domain.BalanceDelta) ([]domain.BalanceDelta, error) {
	expanded := make([]domain.BalanceDelta, 0, len(leafDeltas)*2)

	for _, d := range leafDeltas {
		expanded = append(expanded, d)

		ancestors, err := uc.accountRepo.AncestorChain(ctx, tx, d.AccountUUID)
		if err != nil {
			return nil, err
		}

		for _, ancestor := range ancestors {
			expanded = append(expanded, domain.BalanceDelta{
				AccountUUID: ancestor.UUID,
				DomainUUID:  d.DomainUUID,
				Currency:    d.Currency,
				Amount:      d.Amount,
			})
		}
	}

	merged := domain.MergeDeltas(expanded)
	for i := range merged {
		merged[i].Revision = uc.idGen.Generate()
	}

	return merged, nil
}

// validateEntryInput enforces the structural rules of an entry intent before
// any transaction is opened: at least two details, a valid date, amounts
// representable at the currency precision and a zero signed sum.
func validateEntryInput(input EntryInput, currency *domain.Currency) error {
	if len(input.Details) < 2 {
		return domain.ErrTooFewDetails
	}

	if input.Date.IsZero() {
		return domain.ErrInvalidDate
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return err
	}

	amounts := make([]decimal.Decimal, 0, len(input.Details))
	for _, d := range input.Details {
		if err := domain.ValidateCode(d.AccountCode); err != nil {
			return err
		}

		if err := currency.CheckPrecision(d.Amount); err != nil {
			return err
		}

		amounts = append(amounts, d.Amount)
	}

	return domain.CheckZeroSum(amounts)
}
