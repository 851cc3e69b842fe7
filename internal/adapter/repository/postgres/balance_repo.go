package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

const balanceColumns = `account_uuid, domain_uuid, currency, balance, revision, created_at, updated_at`

// ApplyDeltaSet upserts every delta of the set inside the caller's
// transaction. Rows are created lazily on first posting and kept at zero
// thereafter.
func (r *BalanceRepository) ApplyDeltaSet(ctx context.Context, tx usecase.Transaction, deltas []domain.BalanceDelta) error {
	query := `
		INSERT INTO ledger_balances (account_uuid, domain_uuid, currency, balance, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (account_uuid, domain_uuid, currency)
		DO UPDATE SET
			balance = ledger_balances.balance + EXCLUDED.balance,
			revision = EXCLUDED.revision,
			updated_at = now()`

	db := inTx(r.pool, tx)

	for _, d := range deltas {
		if _, err := db.Exec(ctx, query,
			d.AccountUUID,
			d.DomainUUID,
			d.Currency,
			decimalToNumeric(d.Amount),
			d.Revision,
		); err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves one balance row.
func (r *BalanceRepository) Get(ctx context.Context, accountUUID, domainUUID, currency string) (*domain.LedgerBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM ledger_balances
		WHERE account_uuid = $1 AND domain_uuid = $2 AND currency = $3`

	var (
		b      domain.LedgerBalance
		amount pgtype.Numeric
	)

	err := r.pool.QueryRow(ctx, query, accountUUID, domainUUID, currency).Scan(
		&b.AccountUUID,
		&b.DomainUUID,
		&b.Currency,
		&amount,
		&b.Revision,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Amount = numericToDecimal(amount)

	return &b, nil
}

// ListByAccount lists every balance row held by an account.
func (r *BalanceRepository) ListByAccount(ctx context.Context, accountUUID string) ([]*domain.LedgerBalance, error) {
	query := `SELECT ` + balanceColumns + ` FROM ledger_balances WHERE account_uuid = $1 ORDER BY currency`

	rows, err := r.pool.Query(ctx, query, accountUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*domain.LedgerBalance

	for rows.Next() {
		var (
			b      domain.LedgerBalance
			amount pgtype.Numeric
		)

		if err := rows.Scan(
			&b.AccountUUID,
			&b.DomainUUID,
			&b.Currency,
			&amount,
			&b.Revision,
			&b.CreatedAt,
			&b.UpdatedAt,
		); err != nil {
			return nil, err
		}

		b.Amount = numericToDecimal(amount)
		balances = append(balances, &b)
	}

	return balances, rows.Err()
}

// HasNonZero reports whether any of the account's balances is non-zero.
func (r *BalanceRepository) HasNonZero(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ledger_balances WHERE account_uuid = $1 AND balance <> 0)`

	var exists bool
	err := inTx(r.pool, tx).QueryRow(ctx, query, accountUUID).Scan(&exists)

	return exists, err
}

// DeleteByAccount removes every balance row held by an account.
func (r *BalanceRepository) DeleteByAccount(ctx context.Context, tx usecase.Transaction, accountUUID string) error {
	_, err := inTx(r.pool, tx).Exec(ctx, `DELETE FROM ledger_balances WHERE account_uuid = $1`, accountUUID)

	return err
}
