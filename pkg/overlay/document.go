package overlay

// RenderMode selects how inserted glyphs are painted.
type RenderMode int

const (
	// ModeInvisible inserts fully transparent glyphs: extractable and
	// searchable but never painted.
	ModeInvisible RenderMode = iota
	// ModeOpacity paints glyphs with a near-zero alpha fill.
	ModeOpacity
	// ModeVisible paints faint gray glyphs plus a faint gray rectangle
	// so a human can verify placement. QA only.
	ModeVisible
)

func (m RenderMode) String() string {
	switch m {
	case ModeInvisible:
		return "invisible"
	case ModeOpacity:
		return "opacity"
	case ModeVisible:
		return "visible"
	}
	return "unknown"
}

// ImageRef describes one embedded image on a page: its object reference,
// the rectangle it renders into (point space), and its intrinsic pixel
// dimensions as stored in the document.
type ImageRef struct {
	Ref      string // object reference identifier, e.g. "14"
	Rect     Rect   // rendered page-space rectangle
	WidthPx  float64
	HeightPx float64
}

// TextInsertion is one text run handed to the PDF collaborator.
type TextInsertion struct {
	Text   string
	Anchor Point   // point-space insertion origin
	Rect   Rect    // point-space bounding rect (used by the QA mode)
	Font   string  // font identifier from Document.RegisterFont
	Size   float64 // points
	Rotate float64 // degrees, counterclockwise
	Mode   RenderMode
}

// RGB is an 8-bit color triple for debug drawing.
type RGB struct {
	R, G, B int
}

// Page is the per-page capability surface the engine requires from the
// PDF library layer. Pages are requested strictly in document order; the
// concrete implementation may reject out-of-order access.
type Page interface {
	// Rect returns the page's point-space rectangle.
	Rect() Rect
	// Rotation returns the page's declared rotation in degrees.
	Rotation() int
	// Images enumerates embedded images with rendered rectangles and
	// intrinsic pixel dimensions.
	Images() []ImageRef
	// InsertText places one text run on the page.
	InsertText(ins TextInsertion) error
	// DrawOutline draws a translucent rectangle outline for debugging.
	DrawOutline(rect Rect, color RGB, opacity float64) error
}

// Document is the abstract PDF document handle the engine drives. A
// single mutable handle is shared across all page-insertion calls, so
// pages must be processed sequentially.
type Document interface {
	// PageCount returns the number of pages in the source document.
	PageCount() int
	// Page advances to and returns the page at the given 0-based index.
	Page(index int) (Page, error)
	// RegisterFont resolves a font file into a font identifier, falling
	// back to a built-in default on any failure. An empty path selects
	// the default directly.
	RegisterFont(path string) (string, error)
	// Save persists the document to path using a temporary-file-then-
	// rename pattern.
	Save(path string) error
}
