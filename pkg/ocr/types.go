package ocr

import (
	"context"
	"encoding/json"
	"fmt"
)

// BBox is a pixel-space bounding box with a top-left origin.
// It marshals as the JSON array [x, y, w, h].
type BBox struct {
	X float64 // Left edge
	Y float64 // Top edge
	W float64 // Width
	H float64 // Height
}

// NewBBox creates a bounding box from x, y, width, height.
func NewBBox(x, y, w, h float64) BBox {
	return BBox{X: x, Y: y, W: w, H: h}
}

// Union returns the smallest box covering both b and other.
func (b BBox) Union(other BBox) BBox {
	x0 := min(b.X, other.X)
	y0 := min(b.Y, other.Y)
	x1 := max(b.X+b.W, other.X+other.W)
	y1 := max(b.Y+b.H, other.Y+other.H)
	return BBox{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// MarshalJSON encodes the box as [x, y, w, h].
func (b BBox) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.W, b.H})
}

// UnmarshalJSON decodes a [x, y, w, h] array.
func (b *BBox) UnmarshalJSON(data []byte) error {
	var arr []float64
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	if len(arr) != 4 {
		return fmt.Errorf("bbox must contain 4 numeric entries, got %d", len(arr))
	}
	b.X, b.Y, b.W, b.H = arr[0], arr[1], arr[2], arr[3]
	return nil
}

// Word is a recognized word with its bounding box.
type Word struct {
	Text string `json:"text"`
	BBox BBox   `json:"bbox"`
}

// Line is a line of recognized text. Words holds the constituent words
// in reading order and may be empty when the provider does not track them.
type Line struct {
	Text  string `json:"text"`
	BBox  BBox   `json:"bbox"`
	Words []Word `json:"words,omitempty"`
}

// Page is the recognized text for a single target page.
// Index is 0-based and matches the page index in the target document.
// WidthPx/HeightPx describe the pixel canvas OCR was run against.
// Rotation is the OCR-observed page rotation; nil means unknown and the
// page-reported rotation applies instead.
//
// Pages are constructed once per OCR run or loaded from a snapshot and
// are immutable thereafter.
type Page struct {
	Index    int     `json:"page"`
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
	Rotation *int    `json:"rotation"`
	Words    []Word  `json:"words"`
	Lines    []Line  `json:"lines"`
}

// Provider is a pluggable OCR source. Implementations include the JSON
// snapshot loader, the hOCR importer, the Tesseract engine, and the
// Document AI client.
type Provider interface {
	// Recognize produces the full set of OCR pages for the run.
	Recognize(ctx context.Context) ([]Page, error)
}
