package overlay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gardar/pdfoverlay/pkg/ocr"
)

const debugOpacity = 0.3

// debugPalette cycles across entries so adjacent outlines stay
// distinguishable.
var debugPalette = []RGB{
	{R: 220, G: 50, B: 47},
	{R: 38, G: 139, B: 210},
	{R: 133, G: 153, B: 0},
	{R: 181, G: 137, B: 0},
	{R: 108, G: 113, B: 196},
	{R: 203, G: 75, B: 22},
}

// PlacementRecord is one diagnostic dump entry describing a completed
// insertion.
type PlacementRecord struct {
	Page     int        `json:"page"`
	Text     string     `json:"text"`
	BBoxPx   ocr.BBox   `json:"bbox_px"`
	RectPt   [4]float64 `json:"rect_pt"`
	AnchorPt [2]float64 `json:"anchor_pt"`
	FontSize float64    `json:"font_size"`
}

// WriteDump writes the accumulated placement records as JSON for
// offline QA.
func (r *Result) WriteDump(path string) error {
	records := r.Placements
	if records == nil {
		records = []PlacementRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode placement dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write placement dump: %w", err)
	}
	return nil
}
