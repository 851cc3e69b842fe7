package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerBalance is the running balance for one (account, domain, currency)
// triple. Rows are created lazily on first posting and retained at zero;
// Revision changes on every write so readers can detect movement without
// inspecting entries.
type LedgerBalance struct {
	AccountUUID string
	DomainUUID  string
	Currency    string
	Amount      decimal.Decimal
	Revision    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BalanceDelta is one signed adjustment to a balance row. A posting
// operation produces a set of deltas (leaves plus their category ancestors)
// that must be applied as a single unit.
type BalanceDelta struct {
	AccountUUID string
	DomainUUID  string
	Currency    string
	Amount      decimal.Decimal
	Revision    string
}

// Key identifies the balance row a delta targets.
func (d BalanceDelta) Key() string {
	return d.AccountUUID + "|" + d.DomainUUID + "|" + d.Currency
}

// MergeDeltas collapses deltas addressing the same balance row into one,
// summing their amounts. Order of first appearance is preserved so the
// apply order is deterministic.
func MergeDeltas(deltas []BalanceDelta) []BalanceDelta {
	index := make(map[string]int, len(deltas))

	var merged []BalanceDelta
	for _, d := range deltas {
		key := d.Key()
		if i, ok := index[key]; ok {
			merged[i].Amount = merged[i].Amount.Add(d.Amount)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, d)
	}

	return merged
}
