package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `uuid, domain_uuid, code, parent_uuid, category, debit, credit, currencies, revision, created_at, updated_at`

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error {
	query := `
		INSERT INTO ledger_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := inTx(r.pool, tx).Exec(ctx, query,
		a.UUID,
		a.DomainUUID,
		a.Code,
		a.ParentUUID,
		a.Category,
		a.Debit,
		a.Credit,
		a.Currencies,
		a.Revision,
		timeToPgTimestamptz(a.CreatedAt),
		timeToPgTimestamptz(a.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrAccountExists
	}

	return err
}

// GetByCode retrieves an account by domain and code.
func (r *AccountRepository) GetByCode(ctx context.Context, domainUUID, code string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE domain_uuid = $1 AND code = $2`

	return scanAccount(r.pool.QueryRow(ctx, query, domainUUID, code))
}

// GetByUUID retrieves an account by UUID.
func (r *AccountRepository) GetByUUID(ctx context.Context, uuid string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE uuid = $1`

	return scanAccount(r.pool.QueryRow(ctx, query, uuid))
}

// GetByCodeForUpdate retrieves an account with a FOR UPDATE lock.
func (r *AccountRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, domainUUID, code string) (*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE domain_uuid = $1 AND code = $2 FOR UPDATE`

	return scanAccount(inTx(r.pool, tx).QueryRow(ctx, query, domainUUID, code))
}

// GetByCodesForUpdate retrieves multiple accounts with FOR UPDATE locks.
// Rows are locked in code order; callers pass codes pre-sorted so concurrent
// posts acquire locks in the same order.
func (r *AccountRepository) GetByCodesForUpdate(ctx context.Context, tx usecase.Transaction, domainUUID string, codes []string) ([]*domain.LedgerAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger_accounts
		WHERE domain_uuid = $1 AND code = ANY($2)
		ORDER BY code
		FOR UPDATE`

	rows, err := inTx(r.pool, tx).Query(ctx, query, domainUUID, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// Update replaces an account row.
func (r *AccountRepository) Update(ctx context.Context, tx usecase.Transaction, a *domain.LedgerAccount) error {
	query := `
		UPDATE ledger_accounts
		SET code = $2, parent_uuid = $3, category = $4, debit = $5, credit = $6,
		    currencies = $7, revision = $8, updated_at = $9
		WHERE uuid = $1`

	tag, err := inTx(r.pool, tx).Exec(ctx, query,
		a.UUID,
		a.Code,
		a.ParentUUID,
		a.Category,
		a.Debit,
		a.Credit,
		a.Currencies,
		a.Revision,
		timeToPgTimestamptz(a.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Delete removes an account row.
func (r *AccountRepository) Delete(ctx context.Context, tx usecase.Transaction, uuid string) error {
	tag, err := inTx(r.pool, tx).Exec(ctx, `DELETE FROM ledger_accounts WHERE uuid = $1`, uuid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// AncestorChain walks the parent links of an account, parent first, root
// last. The recursive CTE is depth-bounded to cut off corrupted parent loops.
func (r *AccountRepository) AncestorChain(ctx context.Context, tx usecase.Transaction, uuid string) ([]*domain.LedgerAccount, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT a.*, 1 AS depth
			FROM ledger_accounts a
			WHERE a.uuid = (SELECT parent_uuid FROM ledger_accounts WHERE uuid = $1)
			UNION ALL
			SELECT a.*, chain.depth + 1
			FROM ledger_accounts a
			JOIN chain ON a.uuid = chain.parent_uuid
			WHERE chain.depth < 64
		)
		SELECT ` + accountColumns + ` FROM chain ORDER BY depth`

	rows, err := inTx(r.pool, tx).Query(ctx, query, uuid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// HasChildren reports whether any account points at uuid as its parent.
func (r *AccountRepository) HasChildren(ctx context.Context, tx usecase.Transaction, uuid string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_accounts WHERE parent_uuid = $1)`

	var exists bool
	err := inTx(r.pool, tx).QueryRow(ctx, query, uuid).Scan(&exists)

	return exists, err
}

// ListChildren lists the direct children of an account.
func (r *AccountRepository) ListChildren(ctx context.Context, tx usecase.Transaction, parentUUID string) ([]*domain.LedgerAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM ledger_accounts WHERE parent_uuid = $1 ORDER BY code`

	rows, err := inTx(r.pool, tx).Query(ctx, query, parentUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

// List lists a domain's accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.LedgerAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM ledger_accounts
		WHERE domain_uuid = $1
		ORDER BY code
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, domainUUID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func scanAccount(row pgx.Row) (*domain.LedgerAccount, error) {
	var a domain.LedgerAccount

	err := row.Scan(
		&a.UUID,
		&a.DomainUUID,
		&a.Code,
		&a.ParentUUID,
		&a.Category,
		&a.Debit,
		&a.Credit,
		&a.Currencies,
		&a.Revision,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func collectAccounts(rows pgx.Rows) ([]*domain.LedgerAccount, error) {
	var accounts []*domain.LedgerAccount

	for rows.Next() {
		var a domain.LedgerAccount

		if err := rows.Scan(
			&a.UUID,
			&a.DomainUUID,
			&a.Code,
			&a.ParentUUID,
			&a.Category,
			&a.Debit,
			&a.Credit,
			&a.Currencies,
			&a.Revision,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}

		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}
