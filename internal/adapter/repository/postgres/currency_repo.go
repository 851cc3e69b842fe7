package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

// CurrencyRepository implements usecase.CurrencyRepository.
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository.
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

const currencyColumns = `domain_uuid, code, decimals, revision, created_at, updated_at`

// Create registers a currency in a domain.
func (r *CurrencyRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Currency) error {
	query := `
		INSERT INTO ledger_currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := inTx(r.pool, tx).Exec(ctx, query,
		c.DomainUUID,
		c.Code,
		c.Decimals,
		c.Revision,
		timeToPgTimestamptz(c.CreatedAt),
		timeToPgTimestamptz(c.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrCurrencyExists
	}

	return err
}

// GetByCode retrieves a currency registered in a domain.
func (r *CurrencyRepository) GetByCode(ctx context.Context, domainUUID, code string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM ledger_currencies WHERE domain_uuid = $1 AND code = $2`

	var c domain.Currency

	err := r.pool.QueryRow(ctx, query, domainUUID, code).Scan(
		&c.DomainUUID,
		&c.Code,
		&c.Decimals,
		&c.Revision,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCurrencyNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// ListByDomain lists the currencies registered in a domain.
func (r *CurrencyRepository) ListByDomain(ctx context.Context, domainUUID string) ([]*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM ledger_currencies WHERE domain_uuid = $1 ORDER BY code`

	rows, err := r.pool.Query(ctx, query, domainUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var currencies []*domain.Currency

	for rows.Next() {
		var c domain.Currency

		if err := rows.Scan(
			&c.DomainUUID,
			&c.Code,
			&c.Decimals,
			&c.Revision,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}

		currencies = append(currencies, &c)
	}

	return currencies, rows.Err()
}
