// Package normalize parses the heterogeneous textual amount and date
// representations found in bank statement exports into canonical values.
//
// All functions return an ok flag instead of an error: "no value" is a normal
// outcome for statement cells (blank debit side, boilerplate rows) and must be
// distinguishable from a malformed pipeline. Nothing here ever panics on bad
// input.
package normalize

import (
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

// Placeholder sentinels that banks emit for "no value" cells.
var blankSentinels = map[string]struct{}{
	"": {}, "-": {}, "--": {}, "nan": {}, "none": {},
}

// dateLayouts are tried in fixed priority order; the first layout that parses
// wins. Day-first layouts come first: this tool targets statements from
// banks where 01/02/2025 means 1 February. Changing the order silently
// changes financial data for existing users, so it is deliberately not
// configurable.
var dateLayouts = []string{
	"02/01/2006",
	"02-01-2006",
	"02-Jan-2006",
	"02 Jan 2006",
	"2006-01-02",
	"02.01.2006",
	"02-01-06",
	"02/01/06",
}

// ParseAmount parses an amount cell into a non-negative magnitude.
// Sign notation (parentheses, leading minus) is accepted but discarded:
// callers decide the sign meaning based on which column the value came from.
// Returns ok=false for blanks, placeholder sentinels, and anything that does
// not survive cleanup as a number.
func ParseAmount(text string) (decimal.Decimal, bool) {
	d, ok := ParseSignedAmount(text)
	if !ok {
		return decimal.Decimal{}, false
	}
	return d.Abs(), true
}

// ParseSignedAmount is ParseAmount with the sign preserved. The tabular
// reader uses it for the generic signed "amount" column fallback, where a
// negative value means a debit.
func ParseSignedAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if _, blank := blankSentinels[strings.ToLower(s)]; blank {
		return decimal.Decimal{}, false
	}

	// Strip any Unicode currency symbol (₹, $, €, £, ¥, ...), not a
	// locale-limited set.
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	// Accounting notation: (1234.56) is negative.
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Trailing Dr/Cr suffix tokens are stripped, not interpreted. Sign
	// inference belongs to the caller via column semantics.
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "DR") || strings.HasSuffix(upper, "CR") {
		s = strings.TrimSpace(s[:len(s)-2])
	}

	// Thousands separators.
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// ParseDate parses a date cell against the fixed layout priority list.
// Returns ok=false for anything no layout accepts; never panics.
func ParseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AmountPair normalizes a debit/credit cell pair into a magnitude and a
// direction. Source statements populate at most one side per row; that is a
// format assumption, not something validated here. If the debit side yields a
// nonzero magnitude it wins, otherwise the credit side, otherwise the pair is
// (0, Unknown).
func AmountPair(debitText, creditText string) (decimal.Decimal, domain.Direction) {
	if d, ok := ParseAmount(debitText); ok && !d.IsZero() {
		return d, domain.DirectionDebit
	}
	if c, ok := ParseAmount(creditText); ok && !c.IsZero() {
		return c, domain.DirectionCredit
	}
	return decimal.Zero, domain.DirectionUnknown
}
