package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// The repositories store and return copies so callers get snapshot
// semantics: mutating a fetched entity changes nothing until it is written
// back, the way a real store behaves.

func cloneDomain(d *domain.LedgerDomain) *domain.LedgerDomain {
	c := *d
	return &c
}

func cloneCurrency(cur *domain.Currency) *domain.Currency {
	c := *cur
	return &c
}

func cloneAccount(a *domain.LedgerAccount) *domain.LedgerAccount {
	c := *a
	if a.ParentUUID != nil {
		parent := *a.ParentUUID
		c.ParentUUID = &parent
	}
	c.Currencies = append([]string(nil), a.Currencies...)
	return &c
}

func cloneBalance(b *domain.LedgerBalance) *domain.LedgerBalance {
	c := *b
	return &c
}

func cloneEntry(e *domain.JournalEntry) *domain.JournalEntry {
	c := *e
	c.Details = append([]domain.JournalDetail(nil), e.Details...)
	return &c
}

// MockTransaction is a no-op transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (t *MockTransaction) Commit(ctx context.Context) error {
	if t.CommitFunc != nil {
		return t.CommitFunc(ctx)
	}
	return nil
}

func (t *MockTransaction) Rollback(ctx context.Context) error {
	if t.RollbackFunc != nil {
		return t.RollbackFunc(ctx)
	}
	return nil
}

// MockTransactionManager hands out no-op transactions.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockIDGenerator generates sequential deterministic IDs.
type MockIDGenerator struct {
	mu sync.Mutex
	n  int

	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.n++
	return fmt.Sprintf("id-%06d", m.n)
}

// MockRetrier runs the operation once, without retries.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, op func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, op func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, op)
	}
	return op()
}

// MockDomainRepository is an in-memory implementation of DomainRepository.
type MockDomainRepository struct {
	mu      sync.RWMutex
	domains map[string]*domain.LedgerDomain // by UUID

	CreateFunc             func(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error
	GetByCodeFunc          func(ctx context.Context, code string) (*domain.LedgerDomain, error)
	GetByCodeForUpdateFunc func(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerDomain, error)
	UpdateFunc             func(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error
}

func NewMockDomainRepository() *MockDomainRepository {
	return &MockDomainRepository{
		domains: make(map[string]*domain.LedgerDomain),
	}
}

func (m *MockDomainRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.domains {
		if existing.Code == d.Code {
			return domain.ErrDomainExists
		}
	}
	m.domains[d.UUID] = cloneDomain(d)
	return nil
}

func (m *MockDomainRepository) GetByCode(ctx context.Context, code string) (*domain.LedgerDomain, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.domains {
		if d.Code == code {
			return cloneDomain(d), nil
		}
	}
	return nil, domain.ErrDomainNotFound
}

func (m *MockDomainRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerDomain, error) {
	if m.GetByCodeForUpdateFunc != nil {
		return m.GetByCodeForUpdateFunc(ctx, tx, code)
	}
	return m.GetByCode(ctx, code)
}

func (m *MockDomainRepository) Update(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, d)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.domains[d.UUID]; !ok {
		return domain.ErrDomainNotFound
	}
	m.domains[d.UUID] = cloneDomain(d)
	return nil
}

// MockCurrencyRepository is an in-memory implementation of CurrencyRepository.
type MockCurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency // by domainUUID|code

	CreateFunc       func(ctx context.Context, tx usecase.Transaction, c *domain.Currency) error
	GetByCodeFunc    func(ctx context.Context, domainUUID, code string) (*domain.Currency, error)
	ListByDomainFunc func(ctx context.Context, domainUUID string) ([]*domain.Currency, error)
}

func NewMockCurrencyRepository() *MockCurrencyRepository {
	return &MockCurrencyRepository{
		currencies: make(map[string]*domain.Currency),
	}
}

func currencyKey(domainUUID, code string) string {
	return domainUUID + "|" + code
}

func (m *MockCurrencyRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Currency) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, c)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := currencyKey(c.DomainUUID, c.Code)
	if _, ok := m.currencies[key]; ok {
		return domain.ErrCurrencyExists
	}
	m.currencies[key] = cloneCurrency(c)
	return nil
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, domainUUID, code string) (*domain.Currency, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, domainUUID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.currencies[currencyKey(domainUUID, code)]; ok {
		return cloneCurrency(c), nil
	}
	return nil, domain.ErrCurrencyNotFound
}

func (m *MockCurrencyRepository) ListByDomain(ctx context.Context, domainUUID string) ([]*domain.Currency, error) {
	if m.ListByDomainFunc != nil {
		return m.ListByDomainFunc(ctx, domainUUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Currency
	for _, c := range m.currencies {
		if c.DomainUUID == domainUUID {
			out = append(out, cloneCurrency(c))
		}
	}
	return out, nil
}

// MockAccountRepository is an in-memory implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.LedgerAccount // by UUID

	CreateFunc              func(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error
	GetByCodeFunc           func(ctx context.Context, domainUUID, code string) (*domain.LedgerAccount, error)
	GetByUUIDFunc           func(ctx context.Context, uuid string) (*domain.LedgerAccount, error)
	GetByCodeForUpdateFunc  func(ctx context.Context, tx usecase.Transaction, domainUUID, code string) (*domain.LedgerAccount, error)
	GetByCodesForUpdateFunc func(ctx context.Context, tx usecase.Transaction, domainUUID string, codes []string) ([]*domain.LedgerAccount, error)
	UpdateFunc              func(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error
	DeleteFunc              func(ctx context.Context, tx usecase.Transaction, uuid string) error
	AncestorChainFunc       func(ctx context.Context, tx usecase.Transaction, uuid string) ([]*domain.LedgerAccount, error)
	HasChildrenFunc         func(ctx context.Context, tx usecase.Transaction, uuid string) (bool, error)
	ListChildrenFunc        func(ctx context.Context, tx usecase.Transaction, parentUUID string) ([]*domain.LedgerAccount, error)
	ListFunc                func(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.LedgerAccount, error)
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.LedgerAccount),
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.DomainUUID == a.DomainUUID && existing.Code == a.Code {
			return domain.ErrAccountExists
		}
	}
	m.accounts[a.UUID] = cloneAccount(a)
	return nil
}

func (m *MockAccountRepository) GetByCode(ctx context.Context, domainUUID, code string) (*domain.LedgerAccount, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, domainUUID, code)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.DomainUUID == domainUUID && a.Code == code {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByUUID(ctx context.Context, uuid string) (*domain.LedgerAccount, error) {
	if m.GetByUUIDFunc != nil {
		return m.GetByUUIDFunc(ctx, uuid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.accounts[uuid]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, domainUUID, code string) (*domain.LedgerAccount, error) {
	if m.GetByCodeForUpdateFunc != nil {
		return m.GetByCodeForUpdateFunc(ctx, tx, domainUUID, code)
	}
	return m.GetByCode(ctx, domainUUID, code)
}

func (m *MockAccountRepository) GetByCodesForUpdate(ctx context.Context, tx usecase.Transaction, domainUUID string, codes []string) ([]*domain.LedgerAccount, error) {
	if m.GetByCodesForUpdateFunc != nil {
		return m.GetByCodesForUpdateFunc(ctx, tx, domainUUID, codes)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerAccount
	for _, code := range codes {
		for _, a := range m.accounts {
			if a.DomainUUID == domainUUID && a.Code == code {
				out = append(out, cloneAccount(a))
				break
			}
		}
	}
	return out, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.UUID]; !ok {
		return domain.ErrAccountNotFound
	}
	m.accounts[a.UUID] = cloneAccount(a)
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, tx usecase.Transaction, uuid string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, uuid)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[uuid]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(m.accounts, uuid)
	return nil
}

func (m *MockAccountRepository) AncestorChain(ctx context.Context, tx usecase.Transaction, uuid string) ([]*domain.LedgerAccount, error) {
	if m.AncestorChainFunc != nil {
		return m.AncestorChainFunc(ctx, tx, uuid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[uuid]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	var chain []*domain.LedgerAccount
	for account.ParentUUID != nil {
		parent, ok := m.accounts[*account.ParentUUID]
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		chain = append(chain, cloneAccount(parent))
		account = parent
	}
	return chain, nil
}

func (m *MockAccountRepository) HasChildren(ctx context.Context, tx usecase.Transaction, uuid string) (bool, error) {
	if m.HasChildrenFunc != nil {
		return m.HasChildrenFunc(ctx, tx, uuid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.accounts {
		if a.ParentUUID != nil && *a.ParentUUID == uuid {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccountRepository) ListChildren(ctx context.Context, tx usecase.Transaction, parentUUID string) ([]*domain.LedgerAccount, error) {
	if m.ListChildrenFunc != nil {
		return m.ListChildrenFunc(ctx, tx, parentUUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerAccount
	for _, a := range m.accounts {
		if a.ParentUUID != nil && *a.ParentUUID == parentUUID {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

func (m *MockAccountRepository) List(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.LedgerAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, domainUUID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerAccount
	for _, a := range m.accounts {
		if a.DomainUUID == domainUUID {
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

// MockBalanceRepository is an in-memory implementation of BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*domain.LedgerBalance // by account|domain|currency

	ApplyDeltaSetFunc   func(ctx context.Context, tx usecase.Transaction, deltas []domain.BalanceDelta) error
	GetFunc             func(ctx context.Context, accountUUID, domainUUID, currency string) (*domain.LedgerBalance, error)
	ListByAccountFunc   func(ctx context.Context, accountUUID string) ([]*domain.LedgerBalance, error)
	HasNonZeroFunc      func(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error)
	DeleteByAccountFunc func(ctx context.Context, tx usecase.Transaction, accountUUID string) error
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]*domain.LedgerBalance),
	}
}

func (m *MockBalanceRepository) ApplyDeltaSet(ctx context.Context, tx usecase.Transaction, deltas []domain.BalanceDelta) error {
	if m.ApplyDeltaSetFunc != nil {
		return m.ApplyDeltaSetFunc(ctx, tx, deltas)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range deltas {
		key := d.Key()
		if b, ok := m.balances[key]; ok {
			b.Amount = b.Amount.Add(d.Amount)
			b.Revision = d.Revision
			continue
		}
		m.balances[key] = &domain.LedgerBalance{
			AccountUUID: d.AccountUUID,
			DomainUUID:  d.DomainUUID,
			Currency:    d.Currency,
			Amount:      d.Amount,
			Revision:    d.Revision,
		}
	}
	return nil
}

func (m *MockBalanceRepository) Get(ctx context.Context, accountUUID, domainUUID, currency string) (*domain.LedgerBalance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountUUID, domainUUID, currency)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := domain.BalanceDelta{AccountUUID: accountUUID, DomainUUID: domainUUID, Currency: currency}.Key()
	if b, ok := m.balances[key]; ok {
		return cloneBalance(b), nil
	}
	return nil, domain.ErrBalanceNotFound
}

func (m *MockBalanceRepository) ListByAccount(ctx context.Context, accountUUID string) ([]*domain.LedgerBalance, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountUUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerBalance
	for _, b := range m.balances {
		if b.AccountUUID == accountUUID {
			out = append(out, cloneBalance(b))
		}
	}
	return out, nil
}

func (m *MockBalanceRepository) HasNonZero(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error) {
	if m.HasNonZeroFunc != nil {
		return m.HasNonZeroFunc(ctx, tx, accountUUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.balances {
		if b.AccountUUID == accountUUID && !b.Amount.Equal(decimal.Zero) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockBalanceRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountUUID string) error {
	if m.DeleteByAccountFunc != nil {
		return m.DeleteByAccountFunc(ctx, tx, accountUUID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, b := range m.balances {
		if b.AccountUUID == accountUUID {
			delete(m.balances, key)
		}
	}
	return nil
}

// MockEntryRepository is an in-memory implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.JournalEntry

	CreateFunc               func(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetByIDForUpdateFunc     func(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error
	DeleteFunc               func(ctx context.Context, tx usecase.Transaction, id string) error
	HasDetailsForAccountFunc func(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error)
	ListByDomainFunc         func(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.JournalEntry, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.JournalEntry),
	}
}

func (m *MockEntryRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = cloneEntry(e)
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return cloneEntry(e), nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockEntryRepository) Update(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return domain.ErrEntryNotFound
	}
	m.entries[e.ID] = cloneEntry(e)
	return nil
}

func (m *MockEntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *MockEntryRepository) HasDetailsForAccount(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error) {
	if m.HasDetailsForAccountFunc != nil {
		return m.HasDetailsForAccountFunc(ctx, tx, accountUUID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.entries {
		for _, d := range e.Details {
			if d.AccountUUID == accountUUID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *MockEntryRepository) ListByDomain(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.JournalEntry, error) {
	if m.ListByDomainFunc != nil {
		return m.ListByDomainFunc(ctx, domainUUID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.JournalEntry
	for _, e := range m.entries {
		if e.DomainUUID == domainUUID {
			out = append(out, cloneEntry(e))
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
