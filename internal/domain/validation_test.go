package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCode(t *testing.T) {
	t.Parallel()

	t.Run("valid codes", func(t *testing.T) {
		for _, code := range []string{"1310", "Corp", "assets.current", "A-1_b"} {
			if err := ValidateCode(code); err != nil {
				t.Errorf("ValidateCode(%q) = %v, want nil", code, err)
			}
		}
	})

	t.Run("empty code rejected", func(t *testing.T) {
		if err := ValidateCode(""); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("code too long", func(t *testing.T) {
		err := ValidateCode(strings.Repeat("a", MaxCodeLength+1))
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("leading punctuation rejected", func(t *testing.T) {
		if err := ValidateCode("-1310"); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}

func TestValidateCurrencyCode(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrencyCode("CAD"); err != nil {
		t.Fatalf("expected CAD to validate, got %v", err)
	}

	for _, code := range []string{"cad", "C", "", "CA D", "1AD"} {
		if err := ValidateCurrencyCode(code); !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateCurrencyCode(%q) = %v, want ErrValidation", code, err)
		}
	}
}

func TestValidateCurrencyDecimals(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrencyDecimals(2); err != nil {
		t.Fatalf("expected 2 decimals to validate, got %v", err)
	}

	if err := ValidateCurrencyDecimals(-1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for -1, got %v", err)
	}

	if err := ValidateCurrencyDecimals(MaxCurrencyDecimals + 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation above max, got %v", err)
	}
}

func TestCurrency_CheckPrecision(t *testing.T) {
	t.Parallel()

	cad := &Currency{Code: "CAD", Decimals: 2}

	if err := cad.CheckPrecision(dec("520.00")); err != nil {
		t.Fatalf("expected 520.00 to fit 2 decimals, got %v", err)
	}

	if err := cad.CheckPrecision(dec("0.005")); !errors.Is(err, ErrPrecisionExceeded) {
		t.Fatalf("expected ErrPrecisionExceeded, got %v", err)
	}

	jpy := &Currency{Code: "JPY", Decimals: 0}
	if err := jpy.CheckPrecision(dec("100.5")); !errors.Is(err, ErrPrecisionExceeded) {
		t.Fatalf("expected ErrPrecisionExceeded for fractional yen, got %v", err)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	t.Parallel()

	if got := NormalizeCurrency(" cad "); got != "CAD" {
		t.Errorf("NormalizeCurrency = %q, want CAD", got)
	}
}
