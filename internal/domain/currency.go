package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a currency registered within a domain. Decimals fixes the
// precision used for every amount posted in this currency; it never changes
// after creation.
type Currency struct {
	DomainUUID string
	Code       string
	Decimals   int32
	Revision   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CheckPrecision reports whether amount is exactly representable at the
// currency's decimal precision. Amounts with excess precision are rejected
// rather than rounded so that posting and reversal are bit-for-bit inverses.
func (c *Currency) CheckPrecision(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(c.Decimals)) {
		return ErrPrecisionExceeded
	}
	return nil
}
