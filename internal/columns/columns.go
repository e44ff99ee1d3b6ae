// Package columns maps arbitrary, bank-specific column headers onto the
// canonical transaction schema.
//
// Matching is an ordered exact-match-after-lowercasing scan over a static
// alias table. There is deliberately no edit-distance matching: in a
// financial pipeline a wrongly picked column is worse than a column reported
// missing, and an alias table is auditable in a way fuzzy scores are not.
package columns

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is a canonical transaction field resolvable from statement headers.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
	FieldBalance     Field = "balance"
	// FieldAmount is the generic signed single-column variant some banks
	// export instead of separate debit/credit columns. It is its own field,
	// not a debit alias, so the signed-amount fallback in the tabular reader
	// stays reachable.
	FieldAmount Field = "amount"
)

// defaultAliases lists case-insensitive header aliases per canonical field,
// most common first. Merged headers like "drawals deposits b" come from
// page-table extraction gluing adjacent header fragments together.
var defaultAliases = map[Field][]string{
	FieldDate:        {"date", "trans date", "transaction date", "posted date", "posting date", "value date"},
	FieldDescription: {"description", "memo", "details", "merchant", "name", "payee", "particulars"},
	FieldDebit:       {"debit", "withdrawal", "withdrawals", "dr", "drawals", "drawals deposits b", "cheque details with"},
	FieldCredit:      {"credit", "deposit", "deposits", "cr", "posits", "drawals deposits b"},
	FieldBalance:     {"balance", "running balance", "available balance", "alance"},
	FieldAmount:      {"amount", "transaction amount", "amt"},
}

// Table is the alias table used to resolve headers. It is read-only at
// pipeline run time; construct it once at startup.
type Table struct {
	aliases map[Field][]string
}

// Default returns a table with the built-in aliases.
func Default() *Table {
	aliases := make(map[Field][]string, len(defaultAliases))
	for field, list := range defaultAliases {
		aliases[field] = append([]string(nil), list...)
	}
	return &Table{aliases: aliases}
}

// overrideFile is the YAML shape for user-supplied alias additions.
type overrideFile struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// LoadOverrides returns the default table extended with extra aliases from a
// YAML file. User aliases are appended after the built-ins, so they never
// outrank a more common name.
func LoadOverrides(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column alias file: %w", err)
	}
	return parseOverrides(data)
}

func parseOverrides(data []byte) (*Table, error) {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse column alias YAML: %w", err)
	}

	t := Default()
	for name, extra := range file.Aliases {
		field := Field(strings.ToLower(strings.TrimSpace(name)))
		if _, known := t.aliases[field]; !known {
			return nil, fmt.Errorf("unknown canonical field %q in alias file (valid: date, description, debit, credit, balance, amount)", name)
		}
		for _, alias := range extra {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias == "" {
				continue
			}
			t.aliases[field] = append(t.aliases[field], alias)
		}
	}
	return t, nil
}

// Resolve maps a canonical field onto one of the actual header names.
// Blank headers are skipped; aliases are tried in priority order and the
// first one present wins. ok=false means the column is missing — for date
// and description callers must treat that as a failure, for a single
// debit/credit side it is tolerated.
func (t *Table) Resolve(headers []string, field Field) (string, bool) {
	lookup := make(map[string]string, len(headers))
	for _, h := range headers {
		trimmed := strings.TrimSpace(h)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		// First occurrence wins for duplicate headers.
		if _, seen := lookup[key]; !seen {
			lookup[key] = h
		}
	}

	for _, alias := range t.aliases[field] {
		if original, ok := lookup[alias]; ok {
			return original, true
		}
	}
	return "", false
}

// Aliases returns a copy of the alias list for a field, for use in
// schema-mismatch diagnostics.
func (t *Table) Aliases(field Field) []string {
	return append([]string(nil), t.aliases[field]...)
}
