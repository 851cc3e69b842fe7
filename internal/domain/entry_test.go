package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCheckZeroSum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amounts []string
		wantErr bool
	}{
		{"two line entry", []string{"-520.00", "520.00"}, false},
		{"split entry", []string{"-520.00", "500.00", "20.00"}, false},
		{"unbalanced", []string{"-520.00", "520.01"}, true},
		{"all zero", []string{"0.00", "0.00"}, false},
		{"one sided", []string{"100.00", "100.00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, 0, len(tt.amounts))
			for _, a := range tt.amounts {
				amounts = append(amounts, dec(a))
			}

			err := CheckZeroSum(amounts)

			if tt.wantErr && !errors.Is(err, ErrUnbalancedEntry) {
				t.Fatalf("expected ErrUnbalancedEntry, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestJournalEntry_LeafDeltas(t *testing.T) {
	t.Parallel()

	entry := &JournalEntry{
		ID:         "e1",
		DomainUUID: "dom-1",
		Currency:   "CAD",
		Details: []JournalDetail{
			{AccountUUID: "a1", Amount: dec("-520.00")},
			{AccountUUID: "a2", Amount: dec("500.00")},
			{AccountUUID: "a2", Amount: dec("20.00")},
		},
	}

	deltas := entry.LeafDeltas()
	if len(deltas) != 2 {
		t.Fatalf("expected 2 merged deltas, got %d", len(deltas))
	}

	if !deltas[0].Amount.Equal(dec("-520.00")) {
		t.Errorf("a1 delta = %s, want -520.00", deltas[0].Amount)
	}

	// The two a2 lines collapse into one delta.
	if deltas[1].AccountUUID != "a2" || !deltas[1].Amount.Equal(dec("520.00")) {
		t.Errorf("a2 delta = %s, want 520.00", deltas[1].Amount)
	}

	if deltas[0].Currency != "CAD" || deltas[0].DomainUUID != "dom-1" {
		t.Errorf("delta did not inherit entry scope: %+v", deltas[0])
	}
}

func TestJournalEntry_ReversalDeltas(t *testing.T) {
	t.Parallel()

	entry := &JournalEntry{
		DomainUUID: "dom-1",
		Currency:   "CAD",
		Details: []JournalDetail{
			{AccountUUID: "a1", Amount: dec("-520.00")},
			{AccountUUID: "a2", Amount: dec("520.00")},
		},
	}

	forward := entry.LeafDeltas()
	reversal := entry.ReversalDeltas()

	for i := range forward {
		if !forward[i].Amount.Add(reversal[i].Amount).IsZero() {
			t.Errorf("reversal of %s is %s, not its negation",
				forward[i].Amount, reversal[i].Amount)
		}
	}
}

func TestMergeDeltas(t *testing.T) {
	t.Parallel()

	deltas := []BalanceDelta{
		{AccountUUID: "a1", DomainUUID: "d", Currency: "CAD", Amount: dec("10.00")},
		{AccountUUID: "a1", DomainUUID: "d", Currency: "CAD", Amount: dec("-10.00")},
		{AccountUUID: "a1", DomainUUID: "d", Currency: "USD", Amount: dec("5.00")},
	}

	merged := MergeDeltas(deltas)
	if len(merged) != 2 {
		t.Fatalf("expected 2 deltas after merge, got %d", len(merged))
	}

	if !merged[0].Amount.IsZero() {
		t.Errorf("CAD delta = %s, want 0", merged[0].Amount)
	}

	if merged[1].Currency != "USD" || !merged[1].Amount.Equal(dec("5.00")) {
		t.Errorf("USD delta = %+v", merged[1])
	}
}
