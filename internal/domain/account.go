package domain

import (
	"slices"
	"time"
)

// LedgerAccount is a node in a domain's account tree. Category accounts
// aggregate their descendants and cannot be posted to; leaf accounts hold
// directly postable balances. ParentUUID is nil for root-level accounts.
type LedgerAccount struct {
	UUID       string
	DomainUUID string
	Code       string
	ParentUUID *string
	Category   bool
	Debit      bool
	Credit     bool
	Currencies []string
	Revision   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Postable reports whether journal details may reference this account.
func (a *LedgerAccount) Postable() bool {
	return !a.Category
}

// SupportsCurrency reports whether the account carries balances in the given
// currency.
func (a *LedgerAccount) SupportsCurrency(code string) bool {
	return slices.Contains(a.Currencies, code)
}

// CanParent reports whether child may be attached under this account.
// Children hang off category accounts only, and a category's direct children
// are homogeneous: all categories or all leaves. siblings are the current
// direct children of this account.
func (a *LedgerAccount) CanParent(child *LedgerAccount, siblings []*LedgerAccount) error {
	if !a.Category {
		return ErrCategoryMismatch
	}
	for _, s := range siblings {
		if s.UUID == child.UUID {
			continue
		}
		if s.Category != child.Category {
			return ErrCategoryMismatch
		}
	}
	return nil
}
