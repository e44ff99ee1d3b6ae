// Package pdf provides page-table statement reading for cashflow.
//
// Bank statement PDFs carry their transaction table as positioned text, not
// as a structured table. Extraction is alignment-based: positioned text
// fragments are grouped into lines by vertical position and split into cells
// wherever the horizontal gap is wide enough to be a column boundary. The
// flattened rows from all pages then go through header detection, a
// date-shaped row filter that removes statement boilerplate (opening balance
// lines, page footers), and finally the same grid normalization as the
// tabular readers.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
)

const (
	// lineTolerance is the vertical distance (points) within which text
	// fragments are considered part of the same row.
	lineTolerance = 2.0
	// cellGap is the horizontal gap (points) that starts a new cell.
	cellGap = 8.0
	// wordGap is the horizontal gap (points) that separates words within a
	// cell; smaller gaps are glyph spacing.
	wordGap = 1.5
)

// dateShaped matches first cells of transaction rows: DD/MM/YYYY,
// DD-MM-YYYY or DD-Mon-YYYY. Anchored at the start only, so trailing
// extraction artifacts don't reject a real row.
var dateShaped = regexp.MustCompile(`^(\d{2}[/-]\d{2}[/-]\d{4}|\d{2}-[A-Za-z]{3}-\d{4})`)

var pdfMagic = []byte("%PDF")

// Reader implements page-table statement reading.
type Reader struct {
	table *columns.Table
}

// NewReader creates a PDF reader resolving headers against the given alias
// table.
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
	return "pdf"
}

// CanRead checks extension and the %PDF magic
func (r *Reader) CanRead(path string, header []byte) bool {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return false
	}
	if len(header) >= len(pdfMagic) && !bytes.HasPrefix(header, pdfMagic) {
		return false
	}
	return true
}

// Read extracts grid rows from every page, flattens them and hands them to
// the shared column resolution and normalization path.
func (r *Reader) Read(ctx context.Context, src io.Reader, meta *parser.Metadata) ([]domain.Transaction, error) {
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF content%s: %w", getFileInfo(meta), err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	doc, err := pdflib.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF%s (%d bytes): %w", getFileInfo(meta), len(content), err)
	}

	numPages := doc.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF%s has 0 pages: %w", getFileInfo(meta), parser.ErrEmptySource)
	}

	var rows [][]string
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		rows = append(rows, extractPageRows(page.Content().Text)...)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("page-table extraction%s produced 0 rows across %d pages: %w",
			getFileInfo(meta), numPages, parser.ErrEmptySource)
	}

	grid, err := gridFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to locate transaction table%s: %w", getFileInfo(meta), err)
	}

	txns, err := grid.Normalize(r.table)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF transactions%s: %w", getFileInfo(meta), err)
	}
	return txns, nil
}

// extractPageRows groups positioned text fragments into rows of cells.
// PDF coordinates grow upward, so rows are ordered by descending Y.
func extractPageRows(texts []pdflib.Text) [][]string {
	if len(texts) == 0 {
		return nil
	}

	sorted := make([]pdflib.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > lineTolerance {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]string
	var line []pdflib.Text
	anchorY := sorted[0].Y

	flush := func() {
		if len(line) == 0 {
			return
		}
		if row := cellsFromLine(line); len(row) > 0 {
			rows = append(rows, row)
		}
		line = nil
	}

	for _, t := range sorted {
		if math.Abs(t.Y-anchorY) > lineTolerance {
			flush()
			anchorY = t.Y
		}
		line = append(line, t)
	}
	flush()

	return rows
}

// cellsFromLine splits one line's fragments into cells at column-sized gaps,
// inserting spaces at word-sized gaps. Lines with no visible content yield
// no cells.
func cellsFromLine(line []pdflib.Text) []string {
	var cells []string
	var b strings.Builder
	prevEnd := math.Inf(-1)

	emit := func() {
		cell := strings.TrimSpace(b.String())
		if cell != "" || len(cells) > 0 {
			cells = append(cells, cell)
		}
		b.Reset()
	}

	for _, t := range line {
		gap := t.X - prevEnd
		if b.Len() > 0 {
			switch {
			case gap > cellGap:
				emit()
			case gap > wordGap:
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	if b.Len() > 0 {
		emit()
	}

	if !rowHasContent(cells) {
		return nil
	}
	return cells
}

func rowHasContent(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return true
		}
	}
	return false
}

// isHeaderRow reports whether the row's first cell contains the literal
// token "date" (case-insensitive). Statements repeat the header on every
// page.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	return strings.Contains(strings.ToLower(row[0]), "date")
}

// gridFromRows locates the header row, drops repeated per-page headers,
// folds multi-line cells and keeps only rows whose first cell is
// date-shaped.
func gridFromRows(rows [][]string) (parser.Grid, error) {
	folded := make([][]string, 0, len(rows))
	for _, row := range rows {
		cleaned := make([]string, len(row))
		for i, cell := range row {
			cleaned[i] = strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
		}
		if rowHasContent(cleaned) {
			folded = append(folded, cleaned)
		}
	}

	headerIdx := -1
	for i, row := range folded {
		if isHeaderRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return parser.Grid{}, ErrHeaderNotFound(len(folded))
	}

	var data [][]string
	for _, row := range folded[headerIdx+1:] {
		if isHeaderRow(row) {
			continue
		}
		if !dateShaped.MatchString(row[0]) {
			continue
		}
		data = append(data, row)
	}

	if len(data) == 0 {
		return parser.Grid{}, fmt.Errorf("date filtering left 0 of %d extracted rows: %w",
			len(folded), parser.ErrNoTransactionRows)
	}

	return parser.Grid{Headers: folded[headerIdx], Rows: data}, nil
}

// ErrHeaderNotFound wraps ErrNoHeaderRow with the extracted row count so the
// diagnostic identifies which stage came up empty.
func ErrHeaderNotFound(rowCount int) error {
	return fmt.Errorf("scanned %d extracted rows: %w", rowCount, parser.ErrNoHeaderRow)
}
