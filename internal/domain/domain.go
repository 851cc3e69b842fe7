package domain

import (
	"time"
)

// LedgerDomain is the isolation scope for one chart of accounts. Every
// account, balance and journal entry belongs to exactly one domain.
type LedgerDomain struct {
	UUID            string
	Code            string
	CurrencyDefault string
	SubJournals     bool
	Revision        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
