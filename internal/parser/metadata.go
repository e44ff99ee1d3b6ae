package parser

import (
	"fmt"
	"time"
)

// Metadata carries context about the file being read: where it came from and
// the human-meaningful source label attached to inserted rows.
//
// Create instances with NewMetadata, which validates the required fields.
// SourceLabel is optional; when empty, callers fall back to the file name.
type Metadata struct {
	filePath    string
	sourceLabel string
	detectedAt  time.Time
}

// NewMetadata creates a Metadata instance with validated required fields.
func NewMetadata(filePath string, detectedAt time.Time) (*Metadata, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}
	if detectedAt.IsZero() {
		return nil, fmt.Errorf("detected time cannot be zero")
	}
	return &Metadata{
		filePath:   filePath,
		detectedAt: detectedAt,
	}, nil
}

// FilePath returns the source file path
func (m *Metadata) FilePath() string {
	return m.filePath
}

// SourceLabel returns the human-meaningful source label, if set
func (m *Metadata) SourceLabel() string {
	return m.sourceLabel
}

// DetectedAt returns the timestamp when the file was detected
func (m *Metadata) DetectedAt() time.Time {
	return m.detectedAt
}

// SetSourceLabel sets the source label attached to inserted rows
func (m *Metadata) SetSourceLabel(label string) {
	m.sourceLabel = label
}
