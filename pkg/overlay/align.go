package overlay

import (
	"fmt"

	"github.com/gardar/pdfoverlay/pkg/ocr"
)

// AlignmentInfo is the resolved per-page answer: which page-space
// rectangle the OCR pixel canvas maps onto and the pixel dimensions that
// rectangle corresponds to. Source tags the decision for diagnostics:
// "page", "manual", "image:xref=N", or "page-fallback".
type AlignmentInfo struct {
	Rect     Rect
	WidthPx  float64
	HeightPx float64
	Rotation int
	ImageRef string
	Source   string
}

// ResolveAlignment decides the mapping target for one page.
//
// Mode "page" maps onto the full page rect using the OCR page's reported
// pixel dimensions. "image-rect" uses the manually supplied rectangle.
// "image" selects the embedded image with the requested reference,
// falling back to whole-page alignment with a warning when absent.
// "auto" picks the largest rendered embedded image (ties broken by
// encounter order) and its intrinsic pixel dimensions, with OCR-page and
// page-size fallbacks.
//
// The result never carries zero pixel dimensions; when every fallback is
// exhausted a GeometryError is returned.
func ResolveAlignment(page Page, ocrPage *ocr.Page, s *Settings) (AlignmentInfo, error) {
	spec, err := ParseAlign(s.Align)
	if err != nil {
		return AlignmentInfo{}, err
	}
	log := s.logger()
	pageRect := page.Rect()

	info := AlignmentInfo{Rect: pageRect, Rotation: page.Rotation(), Source: "page"}

	switch spec.Mode {
	case "page":
		info.WidthPx = ocrPage.WidthPx
		info.HeightPx = ocrPage.HeightPx

	case "image-rect":
		info.Rect = spec.Rect
		info.Source = "manual"
		info.WidthPx = ocrPage.WidthPx
		info.HeightPx = ocrPage.HeightPx

	case "image":
		found := false
		for _, img := range page.Images() {
			if img.Ref == spec.Ref {
				info.Rect = img.Rect
				info.ImageRef = img.Ref
				info.Source = fmt.Sprintf("image:xref=%s", img.Ref)
				info.WidthPx = img.WidthPx
				info.HeightPx = img.HeightPx
				found = true
				break
			}
		}
		if !found {
			log.Warn("requested image not found on page, falling back to page alignment",
				"page", ocrPage.Index, "ref", spec.Ref)
			info.Source = "page-fallback"
		}
		if info.WidthPx == 0 || info.HeightPx == 0 {
			info.WidthPx = ocrPage.WidthPx
			info.HeightPx = ocrPage.HeightPx
		}

	default: // auto
		var best *ImageRef
		images := page.Images()
		for i := range images {
			if best == nil || images[i].Rect.Width()*images[i].Rect.Height() > best.Rect.Width()*best.Rect.Height() {
				best = &images[i]
			}
		}
		if best != nil {
			info.Rect = best.Rect
			info.ImageRef = best.Ref
			info.Source = fmt.Sprintf("image:xref=%s", best.Ref)
			info.WidthPx = best.WidthPx
			info.HeightPx = best.HeightPx
			if info.WidthPx == 0 || info.HeightPx == 0 {
				info.WidthPx = ocrPage.WidthPx
				info.HeightPx = ocrPage.HeightPx
			}
		} else {
			info.Source = "page-fallback"
			info.WidthPx = ocrPage.WidthPx
			info.HeightPx = ocrPage.HeightPx
		}
	}

	// Secondary fallbacks before giving up on pixel dimensions.
	if info.WidthPx == 0 || info.HeightPx == 0 {
		if ocrPage.WidthPx > 0 && ocrPage.HeightPx > 0 {
			info.WidthPx = ocrPage.WidthPx
			info.HeightPx = ocrPage.HeightPx
		} else if s.FallbackDPI > 0 {
			info.WidthPx = pageRect.Width() * s.FallbackDPI / 72.0
			info.HeightPx = pageRect.Height() * s.FallbackDPI / 72.0
			log.Warn("pixel dimensions derived from page size via DPI fallback",
				"page", ocrPage.Index, "dpi", s.FallbackDPI)
		}
	}
	if info.WidthPx <= 0 || info.HeightPx <= 0 {
		return AlignmentInfo{}, &GeometryError{
			Reason: fmt.Sprintf("page %d has no usable pixel dimensions after all fallbacks", ocrPage.Index),
		}
	}
	return info, nil
}
