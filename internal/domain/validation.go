package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation constants
const (
	MaxCodeLength        = 64
	MaxDescriptionLength = 1024
	MinCurrencyDecimals  = 0
	MaxCurrencyDecimals  = 8
)

var (
	codeRegex     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
	currencyRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,7}$`)
)

// ValidateCode validates a domain or account code.
func ValidateCode(code string) error {
	if code == "" {
		return fmt.Errorf("%w: code cannot be empty", ErrValidation)
	}

	if len(code) > MaxCodeLength {
		return fmt.Errorf("%w: code exceeds %d characters", ErrValidation, MaxCodeLength)
	}

	if !codeRegex.MatchString(code) {
		return fmt.Errorf("%w: code %q contains invalid characters", ErrValidation, code)
	}

	return nil
}

// ValidateCurrencyCode validates an ISO-like uppercase currency code.
func ValidateCurrencyCode(code string) error {
	if !currencyRegex.MatchString(code) {
		return fmt.Errorf("%w: %q is not a valid currency code", ErrValidation, code)
	}

	return nil
}

// ValidateCurrencyDecimals validates a currency's decimal precision.
func ValidateCurrencyDecimals(decimals int32) error {
	if decimals < MinCurrencyDecimals || decimals > MaxCurrencyDecimals {
		return fmt.Errorf("%w: currency precision must be between %d and %d decimals",
			ErrValidation, MinCurrencyDecimals, MaxCurrencyDecimals)
	}

	return nil
}

// ValidateDescription validates a journal entry description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrValidation, MaxDescriptionLength)
	}

	return nil
}

// NormalizeCurrency uppercases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
