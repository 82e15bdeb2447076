// Package ocr defines the OCR data model consumed by the overlay engine
// and the provider abstraction that produces it.
//
// A provider is anything that can deliver recognized text with pixel-space
// bounding boxes: a precomputed JSON snapshot, an hOCR file, a local
// Tesseract engine, or a cloud OCR service. The overlay engine never
// depends on a specific backend being present; it only consumes the
// page-indexed collection of Page values.
//
// Coordinates are in pixel space: origin top-left, y increasing downward,
// boxes stored as (x, y, w, h).
//
// Key Types:
//
// - Page: recognized text for a single target page
// - Line: a line of text owning its constituent words
// - Word: a single recognized word
// - BBox: a pixel-space bounding box
// - Provider: pluggable OCR source
//
// Main Functions:
//
// - LoadJSON / SaveJSON: snapshot round-trip
// - FromHOCR: import pages from hOCR HTML
// - LinesFromWords: synthesize lines when a provider reports only words
package ocr
