// Package ingest orchestrates the statement ingestion pipeline: categorize,
// fingerprint, deduplicate against the store, and persist what is new.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/cashflow/internal/dedup"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/logger"
)

// TransactionStore is the persistence handle the orchestrator drives. It is
// injected so the pipeline can run against SQLite, an in-memory fake, or a
// dry-run wrapper without changing the pipeline itself.
type TransactionStore interface {
	dedup.Store
	InsertTransactions(ctx context.Context, rows []domain.Transaction, source string, importedAt time.Time) (int, error)
}

// Categorizer assigns a category to a transaction description.
type Categorizer interface {
	Categorize(description string) string
}

// Stats summarizes one ingestion batch.
type Stats struct {
	Inserted   int
	Duplicates int
	Errors     int
}

// Add accumulates another batch's stats.
func (s *Stats) Add(other Stats) {
	s.Inserted += other.Inserted
	s.Duplicates += other.Duplicates
	s.Errors += other.Errors
}

// Orchestrator runs parsed rows through categorization, deduplication and
// persistence.
type Orchestrator struct {
	store       TransactionStore
	categorizer Categorizer
	strict      bool
	now         func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStrictFingerprints salts repeated identical rows within a batch so each
// survives deduplication. Off by default: identical rows are usually
// re-imports, not distinct purchases.
func WithStrictFingerprints() Option {
	return func(o *Orchestrator) {
		o.strict = true
	}
}

// WithClock overrides the import timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator over the given store and categorizer.
func New(store TransactionStore, categorizer Categorizer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		categorizer: categorizer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ingest runs one batch of parsed rows through the pipeline under the given
// source label. A persistence failure counts every new row as an error and
// returns alongside the stats, so a caller processing many files can keep
// going and still report accurately.
func (o *Orchestrator) Ingest(ctx context.Context, rows []domain.Transaction, source string) (Stats, error) {
	log := logger.FromContext(ctx)

	if len(rows) == 0 {
		return Stats{}, nil
	}

	categorized := make([]domain.Transaction, len(rows))
	for i, row := range rows {
		row.Category = o.categorizer.Categorize(row.Description)
		categorized[i] = row
	}

	fingerprinted := dedup.Assign(categorized, o.strict)

	result, err := dedup.FilterNew(ctx, fingerprinted, o.store)
	if err != nil {
		return Stats{Errors: len(rows)}, fmt.Errorf("deduplication failed for source %q: %w", source, err)
	}

	log.Debug().
		Str("source", source).
		Int("rows", len(rows)).
		Int("new", len(result.New)).
		Int("duplicates", result.Duplicates).
		Msg("deduplicated batch")

	if len(result.New) == 0 {
		return Stats{Duplicates: result.Duplicates}, nil
	}

	inserted, err := o.store.InsertTransactions(ctx, result.New, source, o.now())
	if err != nil {
		return Stats{Duplicates: result.Duplicates, Errors: len(result.New)},
			fmt.Errorf("failed to persist %d transactions for source %q: %w", len(result.New), source, err)
	}

	stats := Stats{Inserted: inserted, Duplicates: result.Duplicates}
	// The UNIQUE constraint can still drop rows a concurrent writer beat us
	// to; they are duplicates, not errors.
	if inserted < len(result.New) {
		stats.Duplicates += len(result.New) - inserted
	}

	log.Info().
		Str("source", source).
		Int("inserted", stats.Inserted).
		Int("duplicates", stats.Duplicates).
		Msg("ingested batch")

	return stats, nil
}
