// Package transform derives stable identifiers and labels from ingestion
// inputs.
package transform

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifySource converts a source label to a URL-safe slug.
// Examples: "First Federal" → "first-federal", "Crédit Agricole" → "credit-agricole"
func SlugifySource(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("source name cannot be empty")
	}

	// Normalize unicode (e.g., accented characters)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	normalized, _, err := transform.String(t, name)
	if err != nil {
		return "", fmt.Errorf("failed to normalize source name %q: %w", name, err)
	}

	if normalized == "" {
		return "", fmt.Errorf("source name %q contains only non-displayable unicode characters", name)
	}

	slug := strings.ToLower(normalized)
	slug = nonAlnum.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return "", fmt.Errorf("source name %q contains no alphanumeric characters", name)
	}

	return slug, nil
}

// GenerateImportID creates a unique identifier for one ingestion run.
// Format: "imp-YYYYMMDD-{uuid}"
func GenerateImportID(startedAt time.Time) string {
	return fmt.Sprintf("imp-%s-%s", startedAt.UTC().Format("20060102"), uuid.NewString())
}
