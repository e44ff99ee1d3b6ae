// Package dedup provides transaction deduplication via SHA256 fingerprinting.
//
// A fingerprint is a stable identity derived from the canonical row fields, so
// re-ingesting the same statement (or an overlapping one) recognizes rows it
// has seen before regardless of which file they arrived in.
package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

// Store is the persistence surface deduplication needs: one batched lookup of
// fingerprints that already exist. Implementations must answer with a subset
// of the queried fingerprints.
type Store interface {
	ExistingFingerprints(ctx context.Context, fingerprints []string) ([]string, error)
}

// Result partitions a batch into rows to insert and the duplicate count.
type Result struct {
	New        []domain.Transaction
	Duplicates int
}

// Fingerprint creates a SHA256 hash of date, amount, and description.
// Format: SHA256("{date}|{amount}|{normalizedDescription}")
// Date is formatted as YYYY-MM-DD, amount with 2 decimal places, and the
// description is lowercased and trimmed.
//
// Two distinct purchases on the same day at the same merchant for the same
// amount collide on purpose: without a bank-issued transaction ID there is no
// signal to tell them apart, and treating them as one row is the safer
// default for re-imported statements. See Occurrence for the opt-out.
func Fingerprint(date time.Time, amount decimal.Decimal, description string) string {
	normalizedDesc := strings.ToLower(strings.TrimSpace(description))
	input := fmt.Sprintf("%s|%s|%s", date.Format("2006-01-02"), amount.StringFixed(2), normalizedDesc)

	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

// Occurrence salts a fingerprint with a within-batch occurrence index, letting
// strict mode keep repeated identical rows from a single statement. Index 0 is
// the plain fingerprint so the first occurrence stays compatible with rows
// stored without strict mode.
func Occurrence(fingerprint string, index int) string {
	if index == 0 {
		return fingerprint
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", fingerprint, index)))
	return hex.EncodeToString(hash[:])
}

// Assign computes and sets the fingerprint on every row. In strict mode,
// repeated identical rows within the batch get occurrence-salted fingerprints
// instead of colliding.
func Assign(rows []domain.Transaction, strict bool) []domain.Transaction {
	seen := make(map[string]int, len(rows))
	out := make([]domain.Transaction, len(rows))
	for i, row := range rows {
		plain := Fingerprint(row.Date, row.Amount, row.Description)
		fp := plain
		if strict {
			fp = Occurrence(plain, seen[plain])
			seen[plain]++
		}
		row.Fingerprint = fp
		out[i] = row
	}
	return out
}

// FilterNew partitions rows into new and duplicate against the store using a
// single batched existence query. Rows whose fingerprint repeats within the
// batch itself also count as duplicates; the first occurrence wins.
//
// Rows must already carry fingerprints (see Assign).
func FilterNew(ctx context.Context, rows []domain.Transaction, store Store) (Result, error) {
	if len(rows) == 0 {
		return Result{}, nil
	}

	fingerprints := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Fingerprint == "" {
			return Result{}, fmt.Errorf("row %q has no fingerprint", row.Description)
		}
		fingerprints = append(fingerprints, row.Fingerprint)
	}

	existing, err := store.ExistingFingerprints(ctx, fingerprints)
	if err != nil {
		return Result{}, fmt.Errorf("failed to query existing fingerprints: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, fp := range existing {
		known[fp] = true
	}

	result := Result{New: make([]domain.Transaction, 0, len(rows))}
	for _, row := range rows {
		if known[row.Fingerprint] {
			result.Duplicates++
			continue
		}
		known[row.Fingerprint] = true
		result.New = append(result.New, row)
	}
	return result, nil
}
