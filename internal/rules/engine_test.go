package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rumor-ml/commons.systems/cashflow/internal/domain"
)

const testRules = `
rules:
  - name: coffee-contains
    pattern: starbucks
    match_type: contains
    priority: 500
    category: Dining

  - name: exact-transfer
    pattern: "monthly transfer"
    match_type: exact
    priority: 600
    category: Transfers

  - name: generic-store
    pattern: store
    match_type: contains
    priority: 100
    category: Shopping
`

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine([]byte(testRules))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	if got := len(engine.GetRules()); got != 3 {
		t.Errorf("GetRules() = %d rules; want 3", got)
	}
}

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "invalid match type",
			yaml: "rules:\n  - name: r\n    pattern: p\n    match_type: regex\n    priority: 1\n    category: C\n",
		},
		{
			name: "priority out of range",
			yaml: "rules:\n  - name: r\n    pattern: p\n    match_type: exact\n    priority: 1000\n    category: C\n",
		},
		{
			name: "negative priority",
			yaml: "rules:\n  - name: r\n    pattern: p\n    match_type: exact\n    priority: -1\n    category: C\n",
		},
		{
			name: "empty pattern",
			yaml: "rules:\n  - name: r\n    pattern: \"  \"\n    match_type: exact\n    priority: 1\n    category: C\n",
		},
		{
			name: "empty category",
			yaml: "rules:\n  - name: r\n    pattern: p\n    match_type: exact\n    priority: 1\n    category: \"\"\n",
		},
		{
			name: "malformed yaml",
			yaml: "rules:\n  - name: [unclosed\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine([]byte(tt.yaml)); err == nil {
				t.Error("NewEngine() expected validation error")
			}
		})
	}
}

func TestMatchPriorityOrder(t *testing.T) {
	// "starbucks store" matches both coffee-contains (500) and generic-store
	// (100); the higher priority wins.
	engine, err := NewEngine([]byte(testRules))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	result, ok := engine.Match("STARBUCKS STORE #42")
	if !ok {
		t.Fatal("Match() = false; want a match")
	}
	if result.Category != "Dining" || result.RuleName != "coffee-contains" {
		t.Errorf("Match() = %+v; want the priority-500 rule", result)
	}
}

func TestMatchExact(t *testing.T) {
	engine, err := NewEngine([]byte(testRules))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	if result, ok := engine.Match("  Monthly Transfer  "); !ok || result.Category != "Transfers" {
		t.Errorf("Match() = %+v, %v; exact match must normalize case and whitespace", result, ok)
	}
	if _, ok := engine.Match("monthly transfer to savings"); ok {
		t.Error("Match() matched an exact rule on a superstring")
	}
}

func TestMatchEqualPriorityKeepsFileOrder(t *testing.T) {
	yaml := `
rules:
  - name: first
    pattern: shop
    match_type: contains
    priority: 100
    category: A
  - name: second
    pattern: shop
    match_type: contains
    priority: 100
    category: B
`
	engine, err := NewEngine([]byte(yaml))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	result, ok := engine.Match("corner shop")
	if !ok || result.RuleName != "first" {
		t.Errorf("Match() = %+v, %v; equal priorities must keep file order", result, ok)
	}
}

func TestCategorizeFallback(t *testing.T) {
	engine, err := NewEngine([]byte(testRules))
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}

	if got := engine.Categorize("STARBUCKS #1"); got != "Dining" {
		t.Errorf("Categorize() = %q; want Dining", got)
	}
	if got := engine.Categorize("something unmatched"); got != domain.CategoryUncategorized {
		t.Errorf("Categorize() = %q; want %q", got, domain.CategoryUncategorized)
	}
}

func TestLoadEmbedded(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error: %v", err)
	}
	if len(engine.GetRules()) == 0 {
		t.Error("embedded rule set is empty")
	}
	if got := engine.Categorize("STARBUCKS #1"); got != "Dining" {
		t.Errorf("Categorize() = %q; want Dining from embedded rules", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(testRules), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	engine, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if len(engine.GetRules()) != 3 {
		t.Errorf("GetRules() = %d rules; want 3", len(engine.GetRules()))
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromFile() expected error for missing file")
	}
}
