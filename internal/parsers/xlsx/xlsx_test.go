package xlsx

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
)

// buildWorkbook writes rows into the default sheet and returns the encoded
// XLSX bytes.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		addr, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestCanRead(t *testing.T) {
	r := NewReader(columns.Default())
	zipHeader := []byte{0x50, 0x4b, 0x03, 0x04, 0x00}

	tests := []struct {
		name   string
		path   string
		header []byte
		want   bool
	}{
		{name: "xlsx with zip magic", path: "statement.xlsx", header: zipHeader, want: true},
		{name: "xlsx short header", path: "statement.xlsx", header: []byte{0x50}, want: true},
		{name: "xlsx with wrong magic", path: "statement.xlsx", header: []byte("not a zip file"), want: false},
		{name: "csv extension", path: "statement.csv", header: zipHeader, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanRead(tt.path, tt.header); got != tt.want {
				t.Errorf("CanRead(%q) = %v; want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Trans Date", "Memo", "Withdrawal", "Deposit"},
		{"01/09/2025", "STARBUCKS #1", "5.50", ""},
		{"01/09/2025", "Salary", "", "3000.00"},
		{"--", "Fee", "", ""},
	})

	r := NewReader(columns.Default())
	txns, err := r.Read(context.Background(), bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("Read() returned %d transactions; want 2", len(txns))
	}
	if txns[0].Direction != domain.DirectionDebit {
		t.Errorf("row 0 direction = %s; want Debit", txns[0].Direction)
	}
	if txns[1].Direction != domain.DirectionCredit {
		t.Errorf("row 1 direction = %s; want Credit", txns[1].Direction)
	}
}

func TestReadHeaderOnlyWorkbook(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Date", "Description", "Debit", "Credit"},
	})

	r := NewReader(columns.Default())
	_, err := r.Read(context.Background(), bytes.NewReader(data), nil)
	if !errors.Is(err, parser.ErrEmptySource) {
		t.Errorf("Read() error = %v; want ErrEmptySource", err)
	}
}

func TestReadSchemaMismatch(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"When", "What", "How Much"},
		{"01/09/2025", "Coffee", "5.00"},
	})

	r := NewReader(columns.Default())
	_, err := r.Read(context.Background(), bytes.NewReader(data), nil)
	var schemaErr *parser.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Read() error = %v; want *parser.SchemaError", err)
	}
}

func TestReadNotAWorkbook(t *testing.T) {
	r := NewReader(columns.Default())
	_, err := r.Read(context.Background(), bytes.NewReader([]byte("plain text")), nil)
	if err == nil {
		t.Fatal("Read() expected error for non-XLSX content")
	}
}
