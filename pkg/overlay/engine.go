package overlay

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/gardar/pdfoverlay/pkg/ocr"
	"github.com/gardar/pdfoverlay/pkg/textnorm"
)

// entry is one overlay insertion candidate: a text run and its
// pixel-space bounding box.
type entry struct {
	text string
	bbox ocr.BBox
}

// Result carries run statistics and accumulated diagnostics.
type Result struct {
	PagesProcessed  int
	PagesSkipped    int
	EntriesInserted int
	EntriesSkipped  int
	Placements      []PlacementRecord
}

// Apply overlays OCR text onto the document's pages. Pages with no OCR
// entry are skipped with a warning; entries whose mapping fails are
// skipped individually. The document is left unsaved; callers persist it
// through Document.Save.
func Apply(doc Document, pages []ocr.Page, s Settings) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	log := s.logger()

	if s.MaxPages > 0 && len(pages) > s.MaxPages {
		pages = pages[:s.MaxPages]
	}
	if len(pages) == 0 {
		return nil, ErrNoOCRData
	}

	pageMap := make(map[int]*ocr.Page, len(pages))
	for i := range pages {
		pageMap[pages[i].Index] = &pages[i]
	}

	font, err := doc.RegisterFont(s.FontPath)
	if err != nil {
		return nil, fmt.Errorf("font registration failed: %w", err)
	}
	log.Info("overlay font resolved", "font", font)

	mode := s.renderMode()
	result := &Result{}

	for index := 0; index < doc.PageCount(); index++ {
		page, err := doc.Page(index)
		if err != nil {
			return nil, fmt.Errorf("failed to load page %d: %w", index, err)
		}
		ocrPage, ok := pageMap[index]
		if !ok {
			log.Warn("no OCR data for page, skipping", "page", index)
			result.PagesSkipped++
			continue
		}
		if err := overlayPage(page, ocrPage, index, font, mode, &s, result); err != nil {
			return nil, err
		}
		result.PagesProcessed++
	}

	if result.EntriesInserted == 0 && result.PagesProcessed == 0 {
		return result, ErrNoOCRData
	}
	return result, nil
}

func overlayPage(page Page, ocrPage *ocr.Page, index int, font string, mode RenderMode, s *Settings, result *Result) error {
	log := s.logger()

	align, err := ResolveAlignment(page, ocrPage, s)
	if err != nil {
		return fmt.Errorf("alignment failed on page %d: %w", index, err)
	}
	log.Debug("page alignment resolved",
		"page", index, "source", align.Source,
		"width_px", align.WidthPx, "height_px", align.HeightPx)

	rotation := align.Rotation
	if ocrPage.Rotation != nil {
		rotation = *ocrPage.Rotation
	}
	if s.Rotation != nil {
		rotation = *s.Rotation
	}

	cfg := MappingConfig{
		ImageRect: align.Rect,
		PageRect:  page.Rect(),
		WidthPx:   align.WidthPx,
		HeightPx:  align.HeightPx,
		OffsetX:   s.OffsetX,
		OffsetY:   s.OffsetY,
		ScaleX:    s.ScaleX,
		ScaleY:    s.ScaleY,
		Rotation:  rotation,
		Deskew:    s.Deskew,
	}

	entries := selectEntries(ocrPage, s.Granularity)
	if len(entries) == 0 {
		return nil
	}
	sortEntries(entries)
	prepared := prepareEntries(entries, s)

	for i, e := range prepared {
		if e.text == "" {
			continue
		}
		placement, err := MapBBox(e.bbox.X, e.bbox.Y, e.bbox.W, e.bbox.H, s.BaselineRatio, s.FontScale, cfg)
		var geomErr *GeometryError
		if errors.As(err, &geomErr) {
			log.Debug("skipping entry with invalid geometry",
				"page", index, "bbox", e.bbox, "reason", geomErr.Reason)
			result.EntriesSkipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("mapping failed on page %d: %w", index, err)
		}

		ins := TextInsertion{
			Text:   e.text,
			Anchor: placement.Anchor,
			Rect:   placement.Rect,
			Font:   font,
			Size:   placement.FontSize,
			Rotate: placement.Rotate,
			Mode:   mode,
		}
		if err := page.InsertText(ins); err != nil {
			return fmt.Errorf("text insertion failed on page %d: %w", index, err)
		}
		result.EntriesInserted++

		if s.Debug {
			if err := page.DrawOutline(placement.Rect, debugPalette[i%len(debugPalette)], debugOpacity); err != nil {
				log.Warn("debug outline failed", "page", index, "error", err)
			}
		}
		if s.Calibrate > 0 && result.EntriesInserted <= s.Calibrate {
			log.Info("calibration",
				"page", index, "text", e.text,
				"bbox_px", fmt.Sprintf("(%.1f,%.1f,%.1f,%.1f)", e.bbox.X, e.bbox.Y, e.bbox.W, e.bbox.H),
				"anchor_pt", fmt.Sprintf("(%.2f,%.2f)", placement.Anchor.X, placement.Anchor.Y),
				"font_size", placement.FontSize)
		}
		result.Placements = append(result.Placements, PlacementRecord{
			Page:     index,
			Text:     e.text,
			BBoxPx:   e.bbox,
			RectPt:   [4]float64{placement.Rect.X0, placement.Rect.Y0, placement.Rect.X1, placement.Rect.Y1},
			AnchorPt: [2]float64{placement.Anchor.X, placement.Anchor.Y},
			FontSize: placement.FontSize,
		})
	}
	return nil
}

// selectEntries yields every OCR word or every OCR line, never a mix.
func selectEntries(page *ocr.Page, granularity string) []entry {
	var entries []entry
	if granularity == "line" {
		for _, line := range page.Lines {
			entries = append(entries, entry{text: line.Text, bbox: line.BBox})
		}
	} else {
		for _, word := range page.Words {
			entries = append(entries, entry{text: word.Text, bbox: word.BBox})
		}
	}
	return entries
}

// sortEntries orders entries top-to-bottom, left-to-right, rounding to
// two decimals so near-equal baselines sort stably.
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		yi, yj := round2(entries[i].bbox.Y), round2(entries[j].bbox.Y)
		if yi != yj {
			return yi < yj
		}
		return round2(entries[i].bbox.X) < round2(entries[j].bbox.X)
	})
}

// prepareEntries normalizes entry text and, for line granularity with
// dehyphenation enabled, merges hyphenated continuations pair-wise: when
// the previous kept entry ends with "-" and the current normalized text
// starts with a lowercase letter, the texts concatenate without the
// hyphen and the merged entry keeps the FIRST bounding box. Merging on
// pairs directly keeps text and boxes in lockstep without relying on
// positional re-zipping of a separately dehyphenated string sequence.
func prepareEntries(entries []entry, s *Settings) []entry {
	prepared := make([]entry, 0, len(entries))
	merge := s.Dehyphen && s.Granularity == "line"
	for _, e := range entries {
		normalized := textnorm.Normalize(e.text, s.KeepSpaces, s.CJKJoin)
		if merge && len(prepared) > 0 && normalized != "" &&
			strings.HasSuffix(prepared[len(prepared)-1].text, "-") &&
			startsLower(normalized) {
			prev := &prepared[len(prepared)-1]
			prev.text = prev.text[:len(prev.text)-1] + normalized
			continue
		}
		prepared = append(prepared, entry{text: normalized, bbox: e.bbox})
	}
	return prepared
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
