// Package sqlite persists canonical transactions in a local SQLite database.
//
// The fingerprint column carries a UNIQUE constraint, so the database is the
// final arbiter of duplicates even if two ingestion runs race: the batched
// insert skips conflicting rows instead of failing.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

// SQLite bind parameters are capped, so large batches go to the database in
// chunks. 100 rows of 9 columns stays well under the default limit of 999.
const (
	lookupChunkSize = 500
	insertChunkSize = 100
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      TEXT NOT NULL,
	direction   TEXT NOT NULL,
	category    TEXT NOT NULL,
	fingerprint TEXT NOT NULL UNIQUE,
	source      TEXT NOT NULL,
	imported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source);
`

// Store wraps a SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and ensures the
// schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY on concurrent statements.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema at %q: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ExistingFingerprints returns the subset of fingerprints already stored.
// Lookups are chunked but the caller sees one logical batched query.
func (s *Store) ExistingFingerprints(ctx context.Context, fingerprints []string) ([]string, error) {
	if len(fingerprints) == 0 {
		return nil, nil
	}

	var existing []string
	for start := 0; start < len(fingerprints); start += lookupChunkSize {
		end := start + lookupChunkSize
		if end > len(fingerprints) {
			end = len(fingerprints)
		}
		chunk := fingerprints[start:end]

		placeholders := strings.Repeat("?,", len(chunk))
		query := fmt.Sprintf("SELECT fingerprint FROM transactions WHERE fingerprint IN (%s)",
			placeholders[:len(placeholders)-1])

		args := make([]interface{}, len(chunk))
		for i, fp := range chunk {
			args[i] = fp
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing fingerprints: %w", err)
		}

		for rows.Next() {
			var fp string
			if err := rows.Scan(&fp); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
			}
			existing = append(existing, fp)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to iterate fingerprints: %w", err)
		}
		rows.Close()
	}

	return existing, nil
}

// InsertTransactions writes rows in a single database transaction using
// multi-row VALUES statements. Fingerprint conflicts are skipped, so the
// returned count is the number of rows actually inserted.
func (s *Store) InsertTransactions(ctx context.Context, rows []domain.Transaction, source string, importedAt time.Time) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	importedStamp := importedAt.UTC().Format(time.RFC3339)
	inserted := 0

	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString("INSERT INTO transactions (id, date, description, amount, direction, category, fingerprint, source, imported_at) VALUES ")
		args := make([]interface{}, 0, len(chunk)*9)
		for i, row := range chunk {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?,?,?,?,?,?,?,?,?)")
			args = append(args,
				uuid.NewString(),
				row.DateString(),
				row.Description,
				row.Amount.StringFixed(2),
				string(row.Direction),
				row.Category,
				row.Fingerprint,
				source,
				importedStamp,
			)
		}
		sb.WriteString(" ON CONFLICT(fingerprint) DO NOTHING")

		result, err := tx.ExecContext(ctx, sb.String(), args...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert %d transactions: %w", len(chunk), err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count inserted rows: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

// Count returns the total number of stored transactions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
