// Package ofx provides OFX/QFX statement reading for cashflow.
// Unlike the grid-shaped sources, OFX is structured: amounts arrive signed
// and dated, so rows map straight onto the canonical shape without the
// column resolver.
package ofx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
)

// Reader implements OFX/QFX reading with a stateless design. The struct has
// no fields because OFX parsing requires no configuration state, making the
// shared instance safe for concurrent use.
type Reader struct{}

var readerInstance = &Reader{}

// NewReader returns the shared OFX reader instance.
func NewReader() *Reader {
	return readerInstance
}

func getFileInfo(meta *parser.Metadata) string {
	if meta != nil && meta.FilePath() != "" {
		return fmt.Sprintf(" from %s", meta.FilePath())
	}
	return ""
}

// Name returns the reader identifier
func (r *Reader) Name() string {
	return "ofx"
}

// CanRead checks if this reader can handle the file based on extension and header
func (r *Reader) CanRead(path string, header []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".ofx" && ext != ".qfx" {
		return false
	}

	// Look for OFX header markers (both v1 SGML and v2 XML formats)
	headerUpper := strings.ToUpper(string(header))
	return strings.Contains(headerUpper, "OFXHEADER") ||
		strings.Contains(headerUpper, "<?OFX") ||
		strings.Contains(headerUpper, "<OFX>")
}

// Read parses an OFX/QFX response into canonical transaction rows.
func (r *Reader) Read(ctx context.Context, src io.Reader, meta *parser.Metadata) ([]domain.Transaction, error) {
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX content%s: %w", getFileInfo(meta), err)
	}

	// ofxgo.ParseResponse does not support context cancellation; this check
	// only catches cancellation between read and parse.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	response, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file%s (%d bytes): %w", getFileInfo(meta), len(content), err)
	}

	var list *ofxgo.TransactionList
	switch {
	case len(response.Bank) > 0:
		stmt, ok := response.Bank[0].(*ofxgo.StatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert bank statement: expected *ofxgo.StatementResponse, got %T", response.Bank[0])
		}
		list = stmt.BankTranList
	case len(response.CreditCard) > 0:
		stmt, ok := response.CreditCard[0].(*ofxgo.CCStatementResponse)
		if !ok {
			return nil, fmt.Errorf("failed to type assert credit card statement: expected *ofxgo.CCStatementResponse, got %T", response.CreditCard[0])
		}
		list = stmt.BankTranList
	default:
		return nil, fmt.Errorf("no supported statement type found in OFX file%s. Expected a bank (BANKMSGSRSV1) or credit card (CREDITCARDMSGSRSV1) statement", getFileInfo(meta))
	}

	if list == nil || len(list.Transactions) == 0 {
		return nil, fmt.Errorf("OFX statement%s has 0 transactions: %w", getFileInfo(meta), parser.ErrEmptySource)
	}

	transactions := make([]domain.Transaction, 0, len(list.Transactions))
	for _, ofxTxn := range list.Transactions {
		txn, ok := extractTransaction(ofxTxn)
		if !ok {
			continue
		}
		transactions = append(transactions, *txn)
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("OFX statement%s: %w", getFileInfo(meta), parser.ErrNoTransactionRows)
	}
	return transactions, nil
}

// extractTransaction converts one OFX transaction into a canonical row.
// OFX amounts arrive signed: negative is money out. Zero-amount entries
// (some banks emit informational lines) are dropped like any other invalid
// row.
func extractTransaction(txn ofxgo.Transaction) (*domain.Transaction, bool) {
	date := txn.DtPosted.Time
	if date.IsZero() {
		return nil, false
	}

	signed, _ := txn.TrnAmt.Float64()
	amount := decimal.NewFromFloat(signed)
	if amount.IsZero() {
		return nil, false
	}

	direction := domain.DirectionCredit
	if amount.IsNegative() {
		direction = domain.DirectionDebit
	}

	description := strings.TrimSpace(txn.Name.String())
	if description == "" {
		description = strings.TrimSpace(txn.Memo.String())
	}

	row, err := domain.NewTransaction(date, description, amount.Abs(), direction)
	if err != nil {
		return nil, false
	}
	return row, true
}
