// Package parser defines the statement reader contract and the shared
// tabular normalization path every grid-shaped reader funnels into.
package parser

import (
	"context"
	"io"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

// Reader is the strategy interface for all statement format readers.
// Every reader produces the same canonical row set with Category defaulted
// to Uncategorized; categorization happens later in the orchestrator.
type Reader interface {
	// Name returns the reader identifier (e.g., "csv", "pdf")
	Name() string

	// CanRead checks if this reader can handle the file, based on the
	// path and the first bytes of content
	CanRead(path string, header []byte) bool

	// Read parses the source into canonical transaction rows. Rows with an
	// unparseable date or non-positive amount are dropped silently; the
	// named failure taxonomy in errors.go covers everything else.
	Read(ctx context.Context, r io.Reader, meta *Metadata) ([]domain.Transaction, error)
}
