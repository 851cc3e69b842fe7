package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the root of all structural validation failures.
	// Specific validation errors wrap it so callers can match either the
	// broad kind or the precise cause.
	ErrValidation = errors.New("validation failed")

	// Not-found errors
	ErrDomainNotFound   = errors.New("ledger domain not found")
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrEntryNotFound    = errors.New("journal entry not found")
	ErrBalanceNotFound  = errors.New("ledger balance not found")

	// Concurrency errors
	ErrRevisionMismatch    = errors.New("revision does not match current record")
	ErrTransactionConflict = errors.New("transaction conflict not resolved by retry")

	// Hierarchy errors
	ErrCycleDetected    = errors.New("parent change would create a cycle")
	ErrAccountNotEmpty  = errors.New("account has children, postings or a non-zero balance")
	ErrCategoryMismatch = errors.New("parent account cannot hold this kind of child")

	// Uniqueness errors
	ErrDomainExists   = errors.New("ledger domain code already in use")
	ErrCurrencyExists = errors.New("currency already registered")
	ErrAccountExists  = errors.New("account code already in use")
)

// Validation errors. Each wraps ErrValidation.
var (
	ErrTooFewDetails        = fmt.Errorf("%w: an entry requires at least two details", ErrValidation)
	ErrUnbalancedEntry      = fmt.Errorf("%w: detail amounts do not sum to zero", ErrValidation)
	ErrPrecisionExceeded    = fmt.Errorf("%w: amount has more decimal places than the currency allows", ErrValidation)
	ErrCategoryPosting      = fmt.Errorf("%w: cannot post to a category account", ErrValidation)
	ErrCurrencyNotSupported = fmt.Errorf("%w: account does not carry the entry currency", ErrValidation)
	ErrInvalidDate          = fmt.Errorf("%w: transaction date is missing or invalid", ErrValidation)
	ErrDomainImmutable      = fmt.Errorf("%w: entry cannot move between domains", ErrValidation)
)
