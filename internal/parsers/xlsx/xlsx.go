// Package xlsx provides spreadsheet statement reading for cashflow.
// Many banks offer XLSX exports alongside CSV; rows from the first sheet
// feed the same grid normalization as the CSV reader.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
)

// xlsxMagic is the ZIP local-file-header signature; XLSX files are ZIP
// containers.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// Reader implements XLSX statement reading over the first worksheet.
type Reader struct {
	table *columns.Table
}

// NewReader creates an XLSX reader resolving headers against the given
// alias table.
func NewReader(table *columns.Table) *Reader {
	return &Reader{table: table}
}

func getFileInfo(meta *parser.Metadata) string {
	if meta != nil && meta.FilePath() != "" {
		return fmt.Sprintf(" from %s", meta.FilePath())
	}
	return ""
}

// Name returns the reader identifier
func (r *Reader) Name() string {
	return "xlsx"
}

// CanRead checks extension and the ZIP container magic
func (r *Reader) CanRead(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return false
	}
	if len(header) >= len(xlsxMagic) && !bytes.HasPrefix(header, xlsxMagic) {
		return false
	}
	return true
}

// Read extracts rows from the first worksheet and funnels them through the
// shared grid normalization. Only the first sheet is considered: bank
// exports put the transaction table there and any further sheets hold
// summary boilerplate.
func (r *Reader) Read(ctx context.Context, src io.Reader, meta *parser.Metadata) ([]domain.Transaction, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX content%s: %w", getFileInfo(meta), err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("XLSX file%s has 0 sheets: %w", getFileInfo(meta), parser.ErrEmptySource)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q%s: %w", sheet, getFileInfo(meta), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q%s has 0 rows: %w", sheet, getFileInfo(meta), parser.ErrEmptySource)
	}

	grid := parser.Grid{
		Headers: rows[0],
		Rows:    rows[1:],
	}

	txns, err := grid.Normalize(r.table)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XLSX transactions%s: %w", getFileInfo(meta), err)
	}
	return txns, nil
}
