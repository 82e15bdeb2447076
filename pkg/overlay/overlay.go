// Package overlay places machine-recognized text onto image-only PDF
// pages so they become searchable and copyable while remaining visually
// unchanged.
//
// The package reconciles four coordinate frames: the OCR pixel canvas
// (top-left origin, y down), the embedded image's placement on the page,
// page point space (bottom-left origin, y up, 1/72 inch units), and the
// rendered/rotated view of the page. Bounding boxes reported in pixel
// space are mapped to scaled, rotated, baseline-aligned text insertions
// in point space.
//
// Main pieces:
//
//   - MapBBox: the pure pixel-to-point coordinate mapper
//   - ResolveAlignment: decides which page-space rectangle the OCR canvas
//     maps onto (whole page, a detected embedded image, or an override)
//   - Apply: the per-page, per-entry overlay engine
//   - Document / Page: the abstract PDF collaborator surface the engine
//     drives; pkg/pdfdoc provides the concrete implementation
//
// Text passes through pkg/textnorm before placement. Render modes keep
// the glyphs extractable without disturbing the page image: invisible
// (never painted), low opacity, or a visible gray QA mode.
package overlay
