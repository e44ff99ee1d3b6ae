package normalize

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{name: "plain", text: "1234.56", want: "1234.56", ok: true},
		{name: "thousands separators", text: "1,234.56", want: "1234.56", ok: true},
		{name: "rupee symbol", text: "₹1,234.56", want: "1234.56", ok: true},
		{name: "dollar symbol", text: "$42.00", want: "42", ok: true},
		{name: "euro symbol", text: "€99.95", want: "99.95", ok: true},
		{name: "accounting negative", text: "(1234.56)", want: "1234.56", ok: true},
		{name: "leading minus", text: "-250.00", want: "250", ok: true},
		{name: "debit suffix", text: "1234.56 Dr", want: "1234.56", ok: true},
		{name: "credit suffix lowercase", text: "500.00cr", want: "500", ok: true},
		{name: "symbol and parens", text: "($1,000.00)", want: "1000", ok: true},
		{name: "empty", text: "", ok: false},
		{name: "whitespace only", text: "   ", ok: false},
		{name: "single dash placeholder", text: "-", ok: false},
		{name: "double dash placeholder", text: "--", ok: false},
		{name: "nan placeholder", text: "NaN", ok: false},
		{name: "none placeholder", text: "None", ok: false},
		{name: "free text", text: "Opening Balance", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseAmount(%q) ok = %v; want %v", tt.text, ok, tt.ok)
			}
			if !tt.ok {
				return
			}
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad test fixture %q: %v", tt.want, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %s; want %s", tt.text, got, want)
			}
			if got.IsNegative() {
				t.Errorf("ParseAmount(%q) returned negative magnitude %s", tt.text, got)
			}
		})
	}
}

func TestParseSignedAmountKeepsSign(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "(1234.56)", want: "-1234.56"},
		{text: "-42.10", want: "-42.1"},
		{text: "99.00", want: "99"},
	}

	for _, tt := range tests {
		got, ok := ParseSignedAmount(tt.text)
		if !ok {
			t.Fatalf("ParseSignedAmount(%q) ok = false", tt.text)
		}
		want, _ := decimal.NewFromString(tt.want)
		if !got.Equal(want) {
			t.Errorf("ParseSignedAmount(%q) = %s; want %s", tt.text, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	sep1 := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{name: "day first slashes", text: "01/09/2025", want: sep1, ok: true},
		{name: "day first dashes", text: "01-09-2025", want: sep1, ok: true},
		{name: "short month name", text: "01-Sep-2025", want: sep1, ok: true},
		{name: "spaced month name", text: "01 Sep 2025", want: sep1, ok: true},
		{name: "iso", text: "2025-09-01", want: sep1, ok: true},
		{name: "dotted", text: "01.09.2025", want: sep1, ok: true},
		{name: "two digit year dashes", text: "01-09-25", want: sep1, ok: true},
		{name: "two digit year slashes", text: "01/09/25", want: sep1, ok: true},
		{name: "day first bias wins for ambiguous dates", text: "01/02/2025", want: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "placeholder", text: "--", ok: false},
		{name: "empty", text: "", ok: false},
		{name: "boilerplate", text: "Opening Balance", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v; want %v", tt.text, ok, tt.ok)
			}
			if tt.ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAmountPair(t *testing.T) {
	tests := []struct {
		name          string
		debit, credit string
		wantAmount    string
		wantDirection domain.Direction
	}{
		{name: "debit populated", debit: "125.00", credit: "", wantAmount: "125", wantDirection: domain.DirectionDebit},
		{name: "credit populated", debit: "", credit: "3000.00", wantAmount: "3000", wantDirection: domain.DirectionCredit},
		{name: "debit wins when both set", debit: "10.00", credit: "20.00", wantAmount: "10", wantDirection: domain.DirectionDebit},
		{name: "zero debit falls through to credit", debit: "0.00", credit: "20.00", wantAmount: "20", wantDirection: domain.DirectionCredit},
		{name: "both blank", debit: "", credit: "", wantAmount: "0", wantDirection: domain.DirectionUnknown},
		{name: "both placeholders", debit: "--", credit: "-", wantAmount: "0", wantDirection: domain.DirectionUnknown},
		{name: "accounting negative debit stays magnitude", debit: "(45.00)", credit: "", wantAmount: "45", wantDirection: domain.DirectionDebit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, direction := AmountPair(tt.debit, tt.credit)
			want, _ := decimal.NewFromString(tt.wantAmount)
			if !amount.Equal(want) {
				t.Errorf("AmountPair(%q, %q) amount = %s; want %s", tt.debit, tt.credit, amount, want)
			}
			if direction != tt.wantDirection {
				t.Errorf("AmountPair(%q, %q) direction = %s; want %s", tt.debit, tt.credit, direction, tt.wantDirection)
			}
		})
	}
}
