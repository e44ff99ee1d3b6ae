// Package csv provides tabular (CSV) statement reading for cashflow
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
)

// Reader implements CSV statement reading. The only state is the column
// alias table, which is read-only after construction, so a single instance
// is safe for concurrent use.
type Reader struct {
	table *columns.Table
}

// NewReader creates a CSV reader resolving headers against the given alias
// table.
func NewReader(table *columns.Table) *Reader {
	return &Reader{table: table}
}

// getFileInfo returns a formatted file path string for error messages
func getFileInfo(meta *parser.Metadata) string {
	if meta != nil && meta.FilePath() != "" {
		return fmt.Sprintf(" from %s", meta.FilePath())
	}
	return ""
}

// Name returns the reader identifier
func (r *Reader) Name() string {
	return "csv"
}

// CanRead checks if this reader can handle the file based on extension
func (r *Reader) CanRead(path string, header []byte) bool {
	return strings.ToLower(filepath.Ext(path)) == ".csv"
}

// Read loads the full tabular source, treats the first record as the header
// row and funnels the remainder through the shared grid normalization.
func (r *Reader) Read(ctx context.Context, src io.Reader, meta *parser.Metadata) ([]domain.Transaction, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	csvReader := csv.NewReader(src)
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV content%s: %w", getFileInfo(meta), err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file%s has 0 rows: %w", getFileInfo(meta), parser.ErrEmptySource)
	}

	grid := parser.Grid{
		Headers: records[0],
		Rows:    records[1:],
	}

	txns, err := grid.Normalize(r.table)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV transactions%s: %w", getFileInfo(meta), err)
	}
	return txns, nil
}
