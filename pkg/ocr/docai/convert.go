package docai

import (
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"

	"github.com/gardar/pdfoverlay/pkg/ocr"
)

// pagesFromProto converts a Document AI response into pixel-space OCR
// pages. Bounding boxes come from normalized vertices scaled to the page
// dimension; word-to-line grouping follows text anchor containment.
func pagesFromProto(doc *documentaipb.Document) []ocr.Page {
	pages := make([]ocr.Page, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		index := i
		if page.PageNumber > 0 {
			index = int(page.PageNumber) - 1
		}
		p := ocr.Page{Index: index}
		if page.Dimension != nil {
			p.WidthPx = float64(page.Dimension.Width)
			p.HeightPx = float64(page.Dimension.Height)
		}

		type tokenInfo struct {
			word       ocr.Word
			start, end int64
		}
		tokens := make([]tokenInfo, 0, len(page.Tokens))
		for _, token := range page.Tokens {
			text := tokenText(token, doc.Text)
			if text == "" {
				continue
			}
			bbox, ok := boundingBox(token.Layout, page.Dimension)
			if !ok {
				continue
			}
			start, end, ok := anchorRange(token.Layout)
			if !ok {
				continue
			}
			tokens = append(tokens, tokenInfo{
				word:  ocr.Word{Text: text, BBox: bbox},
				start: start,
				end:   end,
			})
			p.Words = append(p.Words, ocr.Word{Text: text, BBox: bbox})
		}

		for _, line := range page.Lines {
			bbox, ok := boundingBox(line.Layout, page.Dimension)
			if !ok {
				continue
			}
			start, end, ok := anchorRange(line.Layout)
			if !ok {
				continue
			}
			l := ocr.Line{BBox: bbox}
			var parts []string
			for _, t := range tokens {
				if t.start >= start && t.end <= end {
					l.Words = append(l.Words, t.word)
					parts = append(parts, t.word.Text)
				}
			}
			l.Text = strings.Join(parts, " ")
			if l.Text == "" {
				l.Text = strings.TrimSpace(textFromLayout(line.Layout, doc.Text))
			}
			if l.Text == "" {
				continue
			}
			p.Lines = append(p.Lines, l)
		}

		pages = append(pages, p)
	}
	return pages
}

// tokenText extracts a token's text, trimming the trailing whitespace
// that Document AI includes when the token carries a detected break.
func tokenText(token *documentaipb.Document_Page_Token, fullText string) string {
	txt := textFromLayout(token.Layout, fullText)
	if token.DetectedBreak != nil &&
		token.DetectedBreak.Type != documentaipb.Document_Page_Token_DetectedBreak_TYPE_UNSPECIFIED {
		runes := []rune(txt)
		if len(runes) > 0 {
			last := runes[len(runes)-1]
			if last == ' ' || last == '\n' || last == '\r' || last == '\t' {
				txt = string(runes[:len(runes)-1])
			}
		}
	}
	return strings.TrimSpace(txt)
}

// boundingBox scales normalized vertices (0-1) to pixel dimensions.
func boundingBox(layout *documentaipb.Document_Page_Layout, dimension *documentaipb.Document_Page_Dimension) (ocr.BBox, bool) {
	if layout == nil || layout.BoundingPoly == nil || dimension == nil ||
		len(layout.BoundingPoly.NormalizedVertices) < 4 {
		return ocr.BBox{}, false
	}
	vertices := layout.BoundingPoly.NormalizedVertices
	minX := float64(int(vertices[0].X*dimension.Width + 0.5))
	minY := float64(int(vertices[0].Y*dimension.Height + 0.5))
	maxX := float64(int(vertices[2].X*dimension.Width + 0.5))
	maxY := float64(int(vertices[2].Y*dimension.Height + 0.5))
	if maxX <= minX || maxY <= minY {
		return ocr.BBox{}, false
	}
	return ocr.BBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

func anchorRange(layout *documentaipb.Document_Page_Layout) (int64, int64, bool) {
	if layout == nil || layout.TextAnchor == nil || len(layout.TextAnchor.TextSegments) == 0 {
		return 0, 0, false
	}
	seg := layout.TextAnchor.TextSegments[0]
	return seg.StartIndex, seg.EndIndex, true
}

func textFromLayout(layout *documentaipb.Document_Page_Layout, fullText string) string {
	if layout == nil || layout.TextAnchor == nil {
		return ""
	}
	runes := []rune(fullText)
	result := strings.Builder{}
	totalRunes := len(runes)

	for _, seg := range layout.TextAnchor.TextSegments {
		start := int(seg.StartIndex)
		end := int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > totalRunes {
			end = totalRunes
		}
		if start > end {
			start = end
		}
		result.WriteString(string(runes[start:end]))
	}
	return result.String()
}
