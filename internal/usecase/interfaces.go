package usecase

import (
	"context"
	"time"

	"github.com/iho/generalledger/internal/domain"
)

// DomainRepository defines data access for ledger domains.
type DomainRepository interface {
	Create(ctx context.Context, tx Transaction, d *domain.LedgerDomain) error
	GetByCode(ctx context.Context, code string) (*domain.LedgerDomain, error)
	GetByCodeForUpdate(ctx context.Context, tx Transaction, code string) (*domain.LedgerDomain, error)
	Update(ctx context.Context, tx Transaction, d *domain.LedgerDomain) error
}

// CurrencyRepository defines data access for the per-domain currency registry.
type CurrencyRepository interface {
	Create(ctx context.Context, tx Transaction, c *domain.Currency) error
	GetByCode(ctx context.Context, domainUUID, code string) (*domain.Currency, error)
	ListByDomain(ctx context.Context, domainUUID string) ([]*domain.Currency, error)
}

// AccountRepository defines data access for the account tree. Methods that
// accept a Transaction run inside it; AncestorChain, HasChildren and
// ListChildren accept a nil Transaction for plain reads.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, a *domain.LedgerAccount) error
	GetByCode(ctx context.Context, domainUUID, code string) (*domain.LedgerAccount, error)
	GetByUUID(ctx context.Context, uuid string) (*domain.LedgerAccount, error)
	GetByCodeForUpdate(ctx context.Context, tx Transaction, domainUUID, code string) (*domain.LedgerAccount, error)
	GetByCodesForUpdate(ctx context.Context, tx Transaction, domainUUID string, codes []string) ([]*domain.LedgerAccount, error)
	Update(ctx context.Context, tx Transaction, a *domain.LedgerAccount) error
	Delete(ctx context.Context, tx Transaction, uuid string) error
	AncestorChain(ctx context.Context, tx Transaction, uuid string) ([]*domain.LedgerAccount, error)
	HasChildren(ctx context.Context, tx Transaction, uuid string) (bool, error)
	ListChildren(ctx context.Context, tx Transaction, parentUUID string) ([]*domain.LedgerAccount, error)
	List(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.LedgerAccount, error)
}

// BalanceRepository defines data access for running balances. ApplyDeltaSet
// must apply every delta or none; partial application is never observable.
type BalanceRepository interface {
	ApplyDeltaSet(ctx context.Context, tx Transaction, deltas []domain.BalanceDelta) error
	Get(ctx context.Context, accountUUID, domainUUID, currency string) (*domain.LedgerBalance, error)
	ListByAccount(ctx context.Context, accountUUID string) ([]*domain.LedgerBalance, error)
	HasNonZero(ctx context.Context, tx Transaction, accountUUID string) (bool, error)
	DeleteByAccount(ctx context.Context, tx Transaction, accountUUID string) error
}

// EntryRepository defines data access for journal entries and their details.
// Create and Update persist the detail list along with the header; Delete
// cascades to details.
type EntryRepository interface {
	Create(ctx context.Context, tx Transaction, e *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.JournalEntry, error)
	Update(ctx context.Context, tx Transaction, e *domain.JournalEntry) error
	Delete(ctx context.Context, tx Transaction, id string) error
	HasDetailsForAccount(ctx context.Context, tx Transaction, accountUUID string) (bool, error)
	ListByDomain(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.JournalEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs and revision tokens.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation when the store reports a transient conflict.
// Implementations bound the number of attempts and surface
// domain.ErrTransactionConflict when retries are exhausted.
type Retrier interface {
	Retry(ctx context.Context, op func() error) error
}

// IdempotencyStore handles idempotency key storage for the request layer.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
