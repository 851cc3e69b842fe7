package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is one balanced, dated transaction against a domain. It owns
// its details exclusively; deleting the entry removes them and reverses
// their contribution to every affected balance.
type JournalEntry struct {
	ID          string
	DomainUUID  string
	Currency    string
	TransDate   time.Time
	Description string
	Revision    string
	Details     []JournalDetail
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JournalDetail is a single signed line within an entry. The sign convention
// is caller-defined (the original ledger records debits as negative amounts);
// the engine only requires the per-entry sum to be zero.
type JournalDetail struct {
	ID          string
	EntryID     string
	AccountUUID string
	AccountCode string
	Amount      decimal.Decimal
}

// CheckZeroSum verifies the double-entry balance rule over a set of signed
// amounts.
func CheckZeroSum(amounts []decimal.Decimal) error {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	if !sum.IsZero() {
		return ErrUnbalancedEntry
	}
	return nil
}

// LeafDeltas aggregates the entry's details into one signed delta per
// distinct account. The result does not include category ancestors; the
// posting engine expands those before applying.
func (e *JournalEntry) LeafDeltas() []BalanceDelta {
	deltas := make([]BalanceDelta, 0, len(e.Details))
	for _, d := range e.Details {
		deltas = append(deltas, BalanceDelta{
			AccountUUID: d.AccountUUID,
			DomainUUID:  e.DomainUUID,
			Currency:    e.Currency,
			Amount:      d.Amount,
		})
	}
	return MergeDeltas(deltas)
}

// ReversalDeltas is LeafDeltas with every amount negated, used when the
// entry is deleted or replaced.
func (e *JournalEntry) ReversalDeltas() []BalanceDelta {
	deltas := e.LeafDeltas()
	for i := range deltas {
		deltas[i].Amount = deltas[i].Amount.Neg()
	}
	return deltas
}
