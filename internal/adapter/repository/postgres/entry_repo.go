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

// EntryRepository implements usecase.EntryRepository. The detail list is
// persisted with the header; deleting a header cascades to its details.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

const entryColumns = `id, domain_uuid, currency, trans_date, description, revision, created_at, updated_at`

// Create stores a journal entry and its details.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	db := inTx(r.pool, tx)

	_, err := db.Exec(ctx, query,
		e.ID,
		e.DomainUUID,
		e.Currency,
		timeToPgTimestamptz(e.TransDate),
		e.Description,
		e.Revision,
		timeToPgTimestamptz(e.CreatedAt),
		timeToPgTimestamptz(e.UpdatedAt),
	)
	if err != nil {
		return err
	}

	return r.insertDetails(ctx, db, e)
}

// GetByID retrieves an entry with its details.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	return r.getByID(ctx, r.pool, id, "")
}

// GetByIDForUpdate retrieves an entry with a FOR UPDATE lock on the header.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.JournalEntry, error) {
	return r.getByID(ctx, inTx(r.pool, tx), id, " FOR UPDATE")
}

func (r *EntryRepository) getByID(ctx context.Context, db dbtx, id, lock string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE id = $1` + lock

	var e domain.JournalEntry

	err := db.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.DomainUUID,
		&e.Currency,
		&e.TransDate,
		&e.Description,
		&e.Revision,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}

	details, err := r.loadDetails(ctx, db, e.ID)
	if err != nil {
		return nil, err
	}
	e.Details = details

	return &e, nil
}

// Update replaces the entry header and rewrites its detail list.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, e *domain.JournalEntry) error {
	query := `
		UPDATE journal_entries
		SET currency = $2, trans_date = $3, description = $4, revision = $5, updated_at = $6
		WHERE id = $1`

	db := inTx(r.pool, tx)

	tag, err := db.Exec(ctx, query,
		e.ID,
		e.Currency,
		timeToPgTimestamptz(e.TransDate),
		e.Description,
		e.Revision,
		timeToPgTimestamptz(e.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	if _, err := db.Exec(ctx, `DELETE FROM journal_details WHERE entry_id = $1`, e.ID); err != nil {
		return err
	}

	return r.insertDetails(ctx, db, e)
}

// Delete removes an entry; details go with it via the cascade.
func (r *EntryRepository) Delete(ctx context.Context, tx usecase.Transaction, id string) error {
	tag, err := inTx(r.pool, tx).Exec(ctx, `DELETE FROM journal_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}

	return nil
}

// HasDetailsForAccount reports whether any posted detail references the
// account.
func (r *EntryRepository) HasDetailsForAccount(ctx context.Context, tx usecase.Transaction, accountUUID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM journal_details WHERE account_uuid = $1)`

	var exists bool
	err := inTx(r.pool, tx).QueryRow(ctx, query, accountUUID).Scan(&exists)

	return exists, err
}

// ListByDomain lists a domain's entries, newest first, details included.
func (r *EntryRepository) ListByDomain(ctx context.Context, domainUUID string, limit, offset int) ([]*domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE domain_uuid = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, domainUUID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry

	for rows.Next() {
		var e domain.JournalEntry

		if err := rows.Scan(
			&e.ID,
			&e.DomainUUID,
			&e.Currency,
			&e.TransDate,
			&e.Description,
			&e.Revision,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}

		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		details, err := r.loadDetails(ctx, r.pool, e.ID)
		if err != nil {
			return nil, err
		}
		e.Details = details
	}

	return entries, nil
}

func (r *EntryRepository) insertDetails(ctx context.Context, db dbtx, e *domain.JournalEntry) error {
	query := `
		INSERT INTO journal_details (id, entry_id, account_uuid, account_code, amount)
		VALUES ($1, $2, $3, $4, $5)`

	for _, d := range e.Details {
		if _, err := db.Exec(ctx, query,
			d.ID,
			d.EntryID,
			d.AccountUUID,
			d.AccountCode,
			decimalToNumeric(d.Amount),
		); err != nil {
			return err
		}
	}

	return nil
}

func (r *EntryRepository) loadDetails(ctx context.Context, db dbtx, entryID string) ([]domain.JournalDetail, error) {
	query := `
		SELECT id, entry_id, account_uuid, account_code, amount
		FROM journal_details
		WHERE entry_id = $1
		ORDER BY id`

	rows, err := db.Query(ctx, query, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.JournalDetail

	for rows.Next() {
		var (
			d      domain.JournalDetail
			amount pgtype.Numeric
		)

		if err := rows.Scan(&d.ID, &d.EntryID, &d.AccountUUID, &d.AccountCode, &amount); err != nil {
			return nil, err
		}

		d.Amount = numericToDecimal(amount)
		details = append(details, d)
	}

	return details, rows.Err()
}
