// Package domain defines the canonical transaction row produced by every
// statement reader, independent of source format.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction carries the sign semantics of a transaction. Amounts are always
// stored as non-negative magnitudes; the direction says which way the money
// moved.
type Direction string

const (
	// DirectionDebit is money out of the account.
	DirectionDebit Direction = "Debit"
	// DirectionCredit is money into the account.
	DirectionCredit Direction = "Credit"
	// DirectionUnknown means neither source column yielded a value.
	DirectionUnknown Direction = "Unknown"
)

var validDirections = map[Direction]struct{}{
	DirectionDebit: {}, DirectionCredit: {}, DirectionUnknown: {},
}

// ValidateDirection checks if direction is valid
func ValidateDirection(d Direction) bool {
	_, ok := validDirections[d]
	return ok
}

// CategoryUncategorized is the default category assigned by readers.
// Categorization is the rules engine's job, applied after parsing.
const CategoryUncategorized = "Uncategorized"

// Transaction is the canonical row flowing through the ingestion pipeline.
// A row is created once per parsed source line and never mutated after
// fingerprinting; it is either inserted or discarded.
type Transaction struct {
	Date        time.Time
	Description string
	// Amount is always a non-negative magnitude. Direction carries the sign.
	Amount      decimal.Decimal
	Direction   Direction
	Category    string
	Fingerprint string
}

// NewTransaction creates a validated canonical row. The description is
// trimmed but case is preserved for storage; amount must be a positive
// magnitude and the date must be set. Category defaults to Uncategorized.
func NewTransaction(date time.Time, description string, amount decimal.Decimal, direction Direction) (*Transaction, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("transaction amount must be positive, got %s", amount)
	}
	if !ValidateDirection(direction) {
		return nil, fmt.Errorf("invalid direction: %s", direction)
	}

	return &Transaction{
		Date:        date,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Direction:   direction,
		Category:    CategoryUncategorized,
	}, nil
}

// DateString returns the date in ISO format YYYY-MM-DD.
func (t *Transaction) DateString() string {
	return t.Date.Format("2006-01-02")
}

// Valid reports whether the row may be forwarded to persistence. Rows with a
// non-positive amount or a zero date never reach the canonical set.
func (t *Transaction) Valid() bool {
	return !t.Date.IsZero() && t.Amount.IsPositive() && ValidateDirection(t.Direction)
}
