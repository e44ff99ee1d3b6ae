package transform

import (
	"strings"
	"testing"
	"time"
)

func TestSlugifySource(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "checking", want: "checking"},
		{name: "spaces", input: "First Federal", want: "first-federal"},
		{name: "accents", input: "Crédit Agricole", want: "credit-agricole"},
		{name: "punctuation", input: "My Bank (Joint)", want: "my-bank-joint"},
		{name: "leading and trailing noise", input: "  --Savings--  ", want: "savings"},
		{name: "empty", input: "", wantErr: true},
		{name: "only symbols", input: "***", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SlugifySource(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SlugifySource(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SlugifySource(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("SlugifySource(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateImportID(t *testing.T) {
	started := time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)

	id := GenerateImportID(started)
	if !strings.HasPrefix(id, "imp-20250901-") {
		t.Errorf("GenerateImportID() = %q; want imp-20250901- prefix", id)
	}
	if id == GenerateImportID(started) {
		t.Error("GenerateImportID() must be unique per call")
	}
}
