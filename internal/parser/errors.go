package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/cashflow/internal/columns"
)

// The named failure taxonomy. Readers never swallow these; they propagate to
// the caller with an actionable message. Only row-level data-quality
// exclusions are absorbed internally.
var (
	// ErrEmptySource means the source had zero data rows or pages.
	ErrEmptySource = errors.New("statement source is empty")

	// ErrNoHeaderRow means page-table extraction found no row whose first
	// cell contains "date".
	ErrNoHeaderRow = errors.New("no header row containing \"date\" found")

	// ErrNoTransactionRows means parsing succeeded structurally but every
	// row was excluded by validation. Deliberately distinct from
	// ErrEmptySource so users can tell "nothing there" from "nothing
	// survived".
	ErrNoTransactionRows = errors.New("no rows survived transaction validation")
)

// SchemaError reports that required canonical columns could not be resolved.
// It carries the headers actually found and the alias lists that were
// searched, so a user can fix their export or request an alias addition.
type SchemaError struct {
	Missing  []columns.Field
	Headers  []string
	Searched map[columns.Field][]string
}

func (e *SchemaError) Error() string {
	missing := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		missing[i] = string(f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "could not resolve required column(s) %s; headers found: [%s]",
		strings.Join(missing, ", "), strings.Join(e.Headers, ", "))
	for _, field := range e.Missing {
		if aliases, ok := e.Searched[field]; ok {
			fmt.Fprintf(&b, "; searched %s aliases: [%s]", field, strings.Join(aliases, ", "))
		}
	}
	return b.String()
}

// newSchemaError builds a SchemaError with the alias lists for the missing
// fields attached.
func newSchemaError(table *columns.Table, headers []string, missing ...columns.Field) *SchemaError {
	searched := make(map[columns.Field][]string, len(missing))
	for _, field := range missing {
		searched[field] = table.Aliases(field)
	}
	return &SchemaError{
		Missing:  missing,
		Headers:  append([]string(nil), headers...),
		Searched: searched,
	}
}
