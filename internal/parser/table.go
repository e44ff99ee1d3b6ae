package parser

import (
	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/normalize"
)

// Grid is a rectangular view of a statement: one header row plus data rows.
// Rows may be ragged; missing cells read as empty strings.
type Grid struct {
	Headers []string
	Rows    [][]string
}

// cell returns row[i] or "" when the row is shorter than the header row.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// headerIndex maps a resolved header name back to its column position.
func (g *Grid) headerIndex(name string) int {
	for i, h := range g.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Normalize converts the grid into canonical transaction rows using the
// column alias table. This is the single funnel shared by the CSV, XLSX and
// PDF readers.
//
// Required columns are date, description, and at least one of debit/credit;
// when neither side resolves, a generic signed "amount" column is split into
// synthetic debit/credit values by sign (negative = debit). Rows with an
// unparseable date or a non-positive amount are dropped without surfacing a
// row-level error: a single malformed line must not abort an otherwise-valid
// statement.
func (g *Grid) Normalize(table *columns.Table) ([]domain.Transaction, error) {
	if len(g.Rows) == 0 {
		return nil, ErrEmptySource
	}

	dateHeader, dateOK := table.Resolve(g.Headers, columns.FieldDate)
	descHeader, descOK := table.Resolve(g.Headers, columns.FieldDescription)
	if !dateOK || !descOK {
		var missing []columns.Field
		if !dateOK {
			missing = append(missing, columns.FieldDate)
		}
		if !descOK {
			missing = append(missing, columns.FieldDescription)
		}
		return nil, newSchemaError(table, g.Headers, missing...)
	}

	debitHeader, debitOK := table.Resolve(g.Headers, columns.FieldDebit)
	creditHeader, creditOK := table.Resolve(g.Headers, columns.FieldCredit)

	amountIdx := -1
	if !debitOK && !creditOK {
		amountHeader, amountOK := table.Resolve(g.Headers, columns.FieldAmount)
		if !amountOK {
			return nil, newSchemaError(table, g.Headers,
				columns.FieldDebit, columns.FieldCredit, columns.FieldAmount)
		}
		amountIdx = g.headerIndex(amountHeader)
	}

	dateIdx := g.headerIndex(dateHeader)
	descIdx := g.headerIndex(descHeader)
	debitIdx, creditIdx := -1, -1
	if debitOK {
		debitIdx = g.headerIndex(debitHeader)
	}
	if creditOK {
		creditIdx = g.headerIndex(creditHeader)
	}

	transactions := make([]domain.Transaction, 0, len(g.Rows))
	for _, row := range g.Rows {
		date, ok := normalize.ParseDate(cell(row, dateIdx))
		if !ok {
			continue
		}

		debitText, creditText := "", ""
		if amountIdx >= 0 {
			// Single signed amount column: split by sign.
			signed, ok := normalize.ParseSignedAmount(cell(row, amountIdx))
			if !ok {
				continue
			}
			if signed.IsNegative() {
				debitText = signed.Abs().String()
			} else {
				creditText = signed.String()
			}
		} else {
			if debitIdx >= 0 {
				debitText = cell(row, debitIdx)
			}
			if creditIdx >= 0 {
				creditText = cell(row, creditIdx)
			}
		}

		amount, direction := normalize.AmountPair(debitText, creditText)
		if !amount.IsPositive() {
			continue
		}

		txn, err := domain.NewTransaction(date, cell(row, descIdx), amount, direction)
		if err != nil {
			continue
		}
		transactions = append(transactions, *txn)
	}

	if len(transactions) == 0 {
		return nil, ErrNoTransactionRows
	}
	return transactions, nil
}
