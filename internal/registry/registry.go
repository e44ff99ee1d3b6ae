// Package registry selects the right statement reader for a file.
package registry

import (
	"fmt"
	"io"
	"os"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parsers/csv"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parsers/ofx"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parsers/pdf"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parsers/xlsx"
)

// Registry holds all registered readers
type Registry struct {
	readers []parser.Reader
}

// New creates a registry with all built-in readers resolving headers against
// the given alias table.
func New(table *columns.Table) *Registry {
	return &Registry{
		readers: []parser.Reader{
			csv.NewReader(table),
			xlsx.NewReader(table),
			pdf.NewReader(table),
			ofx.NewReader(),
		},
	}
}

// Register adds a custom reader (for extensibility)
func (r *Registry) Register(p parser.Reader) {
	r.readers = append(r.readers, p)
}

// FindReader returns the best reader for this file.
// Reads first 512 bytes for format detection via header inspection.
// This is sufficient to detect magic numbers and headers in common statement
// formats (PDF, XLSX, OFX, CSV).
func (r *Registry) FindReader(path string) (parser.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	header := make([]byte, 512)
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		f.Close() // Best-effort close, ignore error since we're already failing
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}
	// EOF is OK - some statement files may be < 512 bytes. Readers receive
	// whatever was read (0 to 512 bytes) and should handle variable header
	// sizes.
	header = header[:n]

	for _, p := range r.readers {
		if p.CanRead(path, header) {
			if err := f.Close(); err != nil {
				return nil, fmt.Errorf("failed to close file %s: %w", path, err)
			}
			return p, nil
		}
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file %s: %w", path, err)
	}
	return nil, fmt.Errorf("no reader found for file: %s", path)
}

// ListReaders returns all registered reader names
func (r *Registry) ListReaders() []string {
	names := make([]string, len(r.readers))
	for i, p := range r.readers {
		names[i] = p.Name()
	}
	return names
}
