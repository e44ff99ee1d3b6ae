// Package scanner walks a directory tree and finds statement files.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/cashflow/internal/parser"
	"github.com/rumor-ml/commons.systems/cashflow/internal/transform"
)

// Scanner walks a directory tree and finds statement files
type Scanner struct {
	rootDir string
}

// New creates a new scanner for the given root directory
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// ScanResult represents a found file with metadata
type ScanResult struct {
	Path     string
	Metadata *parser.Metadata
}

// Scan walks the directory tree and finds all statement files.
// Each result carries a source label slugified from the file's parent
// directory. Path structure: {root}/{source}/file.ext; files directly under
// the root get no label (the caller's default applies).
func (s *Scanner) Scan() ([]ScanResult, error) {
	var results []ScanResult

	rootDir := s.expandHome(s.rootDir)

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		if !s.isStatementFile(path) {
			return nil
		}

		meta, err := parser.NewMetadata(path, time.Now())
		if err != nil {
			return fmt.Errorf("failed to build metadata for %s: %w", path, err)
		}
		if label := s.sourceLabel(path, rootDir); label != "" {
			meta.SetSourceLabel(label)
		}

		results = append(results, ScanResult{
			Path:     path,
			Metadata: meta,
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	return results, nil
}

// isStatementFile checks if file is a known statement format
func (s *Scanner) isStatementFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".xlsx", ".pdf", ".ofx", ".qfx":
		return true
	}
	return false
}

// sourceLabel derives a source label from the file's directory relative to
// the scan root. Unsluggable directory names fall through to the empty
// label.
func (s *Scanner) sourceLabel(filePath, rootDir string) string {
	relPath, err := filepath.Rel(rootDir, filePath)
	if err != nil {
		return ""
	}

	dir := filepath.Dir(relPath)
	if dir == "." {
		return ""
	}

	// The first path component names the source; deeper nesting (periods,
	// years) is organizational.
	parts := strings.Split(filepath.ToSlash(dir), "/")
	label, err := transform.SlugifySource(parts[0])
	if err != nil {
		return ""
	}
	return label
}

// expandHome expands ~ to home directory
func (s *Scanner) expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
