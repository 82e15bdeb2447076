package overlay

import "math"

// Minimum mapped extent and font size, in points. The width/height floor
// avoids degenerate zero-size text runs; the font floor keeps glyphs from
// silently vanishing in renderers that reject near-zero sizes.
const (
	minExtentPt   = 0.1
	minFontSizePt = 2.0
)

// Point is a point-space coordinate (bottom-left origin, y up).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle (x0,y0)-(x1,y1) with x1 >= x0 and
// y1 >= y0. Degenerate rectangles are representable; downstream mapping
// flags them as errors.
type Rect struct {
	X0 float64
	Y0 float64
	X1 float64
	Y1 float64
}

// NewRect creates a rectangle from its corner coordinates.
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns x1 - x0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns y1 - y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// MappingConfig is the per-page transform context produced by the
// alignment resolver and consumed read-only by MapBBox.
type MappingConfig struct {
	ImageRect Rect    // page-space rectangle the OCR canvas maps onto
	PageRect  Rect    // full page rectangle
	WidthPx   float64 // pixel canvas width
	HeightPx  float64 // pixel canvas height
	OffsetX   float64 // global point-space offset
	OffsetY   float64
	ScaleX    float64 // per-axis scale correction multipliers
	ScaleY    float64
	Rotation  int     // page rotation, multiple of 90
	Deskew    float64 // small angular correction in degrees
}

// Placement is the output of one mapping call: where and how to insert
// one text run. Produced and consumed within a single insertion.
type Placement struct {
	Anchor   Point   // point-space insertion origin (baseline left)
	Rect     Rect    // rotation-adjusted point-space bounding rectangle
	FontSize float64 // points
	Rotate   float64 // insertion rotation = page rotation + deskew
	WidthPt  float64 // canvas-space extent before rotation
	HeightPt float64
}

// MapBBox maps a pixel-space bounding box to a point-space placement.
// baselineRatio in (0,1) controls how far above the box bottom the text
// baseline sits; fontScale multiplies the mapped height into a font size.
// Returns a GeometryError when the pixel canvas is degenerate, an axis
// scale factor is zero, or the mapped extent collapses.
func MapBBox(x, y, w, h, baselineRatio, fontScale float64, cfg MappingConfig) (Placement, error) {
	if cfg.WidthPx <= 0 || cfg.HeightPx <= 0 {
		return Placement{}, &GeometryError{Reason: "mapping requires positive pixel canvas dimensions"}
	}

	scaleX := (cfg.ImageRect.Width() / cfg.WidthPx) * cfg.ScaleX
	scaleY := (cfg.ImageRect.Height() / cfg.HeightPx) * cfg.ScaleY
	if scaleX == 0 || scaleY == 0 {
		return Placement{}, &GeometryError{Reason: "scaling factors must be non-zero"}
	}

	// OCR y grows downward; point space y grows upward. The bottom of
	// the pixel box lands at y_bottom in point space.
	xPt := cfg.ImageRect.X0 + x*scaleX + cfg.OffsetX
	yBottom := cfg.ImageRect.Y1 - (y+h)*scaleY + cfg.OffsetY

	widthPt := math.Max(w*scaleX, minExtentPt)
	heightPt := math.Max(h*scaleY, minExtentPt)
	if widthPt <= 0 || heightPt <= 0 {
		return Placement{}, &GeometryError{Reason: "mapped extent is non-positive"}
	}

	fontSize := math.Max(heightPt*fontScale, minFontSizePt)
	baseline := yBottom + fontSize*baselineRatio

	rect := NewRect(
		xPt,
		baseline-heightPt*(1-baselineRatio),
		xPt+widthPt,
		baseline+heightPt*baselineRatio,
	)

	anchor, err := RotatePoint(Point{X: xPt, Y: baseline}, cfg.PageRect, cfg.Rotation)
	if err != nil {
		return Placement{}, err
	}
	rotatedRect, err := RotateRect(rect, cfg.PageRect, cfg.Rotation)
	if err != nil {
		return Placement{}, err
	}

	return Placement{
		Anchor:   anchor,
		Rect:     rotatedRect,
		FontSize: fontSize,
		Rotate:   float64(cfg.Rotation) + cfg.Deskew,
		WidthPt:  widthPt,
		HeightPt: heightPt,
	}, nil
}

// RotatePoint maps a point through the page's 90-degree-multiple
// rotation. Deskew never passes through here; it is an insertion-time
// angle, not a coordinate remap.
func RotatePoint(p Point, pageRect Rect, rotation int) (Point, error) {
	w, h := pageRect.Width(), pageRect.Height()
	switch normRotation(rotation) {
	case 0:
		return p, nil
	case 90:
		return Point{X: h - p.Y, Y: p.X}, nil
	case 180:
		return Point{X: w - p.X, Y: h - p.Y}, nil
	case 270:
		return Point{X: p.Y, Y: w - p.X}, nil
	}
	return Point{}, &GeometryError{Reason: "rotation must be a multiple of 90 degrees"}
}

// RotateRect applies the point rotation rule to all four corners and
// re-derives an axis-aligned rectangle from the min/max extents.
func RotateRect(r Rect, pageRect Rect, rotation int) (Rect, error) {
	corners := [4]Point{
		{X: r.X0, Y: r.Y0},
		{X: r.X1, Y: r.Y0},
		{X: r.X1, Y: r.Y1},
		{X: r.X0, Y: r.Y1},
	}
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, c := range corners {
		p, err := RotatePoint(c, pageRect, rotation)
		if err != nil {
			return Rect{}, err
		}
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return NewRect(minX, minY, maxX, maxY), nil
}

func normRotation(rotation int) int {
	r := rotation % 360
	if r < 0 {
		r += 360
	}
	return r
}
