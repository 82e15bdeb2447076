package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadJSON reads a snapshot file into structured pages. Pages that carry
// words but no lines get lines synthesized by proximity grouping.
func LoadJSON(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR JSON: %w", err)
	}
	return ParseJSON(data)
}

// ParseJSON decodes snapshot bytes into structured pages.
func ParseJSON(data []byte) ([]Page, error) {
	var pages []Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("OCR JSON must be a list of page objects: %w", err)
	}
	for i := range pages {
		if len(pages[i].Lines) == 0 && len(pages[i].Words) > 0 {
			pages[i].Lines = LinesFromWords(pages[i].Words, LineTolerance)
		}
	}
	return pages, nil
}

// SaveJSON serializes pages as snapshot JSON for reuse.
func SaveJSON(pages []Page, path string) error {
	for i := range pages {
		if pages[i].Words == nil {
			pages[i].Words = []Word{}
		}
		if pages[i].Lines == nil {
			pages[i].Lines = []Line{}
		}
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode OCR JSON: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write OCR JSON: %w", err)
	}
	return nil
}

// SnapshotProvider loads pages from a snapshot JSON file.
type SnapshotProvider struct {
	Path string
}

// Recognize implements Provider.
func (p *SnapshotProvider) Recognize(_ context.Context) ([]Page, error) {
	return LoadJSON(p.Path)
}

// HOCRProvider loads pages from an hOCR HTML file.
type HOCRProvider struct {
	Path string
}

// Recognize implements Provider.
func (p *HOCRProvider) Recognize(_ context.Context) ([]Page, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hOCR file: %w", err)
	}
	return FromHOCR(data)
}
