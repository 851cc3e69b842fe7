package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/generalledger/internal/domain"
	"github.com/iho/generalledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// DomainRepository implements usecase.DomainRepository.
type DomainRepository struct {
	pool *pgxpool.Pool
}

// NewDomainRepository creates a new DomainRepository.
func NewDomainRepository(pool *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{pool: pool}
}

const domainColumns = `uuid, code, currency_default, sub_journals, revision, created_at, updated_at`

// Create creates a new ledger domain.
func (r *DomainRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error {
	query := `
		INSERT INTO ledger_domains (` + domainColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := inTx(r.pool, tx).Exec(ctx, query,
		d.UUID,
		d.Code,
		d.CurrencyDefault,
		d.SubJournals,
		d.Revision,
		timeToPgTimestamptz(d.CreatedAt),
		timeToPgTimestamptz(d.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return domain.ErrDomainExists
	}

	return err
}

// GetByCode retrieves a domain by code.
func (r *DomainRepository) GetByCode(ctx context.Context, code string) (*domain.LedgerDomain, error) {
	query := `SELECT ` + domainColumns + ` FROM ledger_domains WHERE code = $1`

	return r.scanDomain(r.pool.QueryRow(ctx, query, code))
}

// GetByCodeForUpdate retrieves a domain by code with a FOR UPDATE lock.
func (r *DomainRepository) GetByCodeForUpdate(ctx context.Context, tx usecase.Transaction, code string) (*domain.LedgerDomain, error) {
	query := `SELECT ` + domainColumns + ` FROM ledger_domains WHERE code = $1 FOR UPDATE`

	return r.scanDomain(inTx(r.pool, tx).QueryRow(ctx, query, code))
}

// Update replaces a domain row.
func (r *DomainRepository) Update(ctx context.Context, tx usecase.Transaction, d *domain.LedgerDomain) error {
	query := `
		UPDATE ledger_domains
		SET code = $2, currency_default = $3, sub_journals = $4, revision = $5, updated_at = $6
		WHERE uuid = $1`

	tag, err := inTx(r.pool, tx).Exec(ctx, query,
		d.UUID,
		d.Code,
		d.CurrencyDefault,
		d.SubJournals,
		d.Revision,
		timeToPgTimestamptz(d.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDomainNotFound
	}

	return nil
}

func (r *DomainRepository) scanDomain(row pgx.Row) (*domain.LedgerDomain, error) {
	var d domain.LedgerDomain

	err := row.Scan(
		&d.UUID,
		&d.Code,
		&d.CurrencyDefault,
		&d.SubJournals,
		&d.Revision,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDomainNotFound
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation
}
