package ocr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// FromHOCR imports pages from hOCR HTML. Only the subset of the hOCR
// hierarchy this system consumes is read: ocr_page divs, ocr_line (or
// ocrx_line) elements and ocrx_word spans. Page pixel dimensions come
// from the page's own bbox; the ppageno property, when present, sets the
// page index.
func FromHOCR(data []byte) ([]Page, error) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR HTML: %w", err)
	}

	var pages []Page
	var findPages func(*html.Node)
	findPages = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocr_page") {
			page := parseHOCRPage(n, len(pages))
			pages = append(pages, page)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findPages(c)
		}
	}
	findPages(doc)

	if len(pages) == 0 {
		return nil, fmt.Errorf("no ocr_page elements found in hOCR data")
	}
	return pages, nil
}

func parseHOCRPage(n *html.Node, defaultIndex int) Page {
	page := Page{Index: defaultIndex}
	props := parseTitle(attr(n, "title"))

	if bbox, ok := boxFromProps(props); ok {
		// The page bbox starts at the origin; x1/y1 are the canvas size.
		page.WidthPx = bbox.X + bbox.W
		page.HeightPx = bbox.Y + bbox.H
	}
	if pn, ok := props["ppageno"]; ok && len(pn) > 0 {
		if v, err := strconv.Atoi(pn[0]); err == nil {
			page.Index = v
		}
	}

	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode {
			switch {
			case hasClass(c, "ocr_line") || hasClass(c, "ocrx_line"):
				line := Line{Text: strings.TrimSpace(textContent(c))}
				if bbox, ok := boxFromProps(parseTitle(attr(c, "title"))); ok {
					line.BBox = bbox
				}
				collectWords(c, &line)
				page.Lines = append(page.Lines, line)
				page.Words = append(page.Words, line.Words...)
				return
			case hasClass(c, "ocrx_word"):
				// Word outside any line; keep it for word granularity.
				word := Word{Text: strings.TrimSpace(textContent(c))}
				if bbox, ok := boxFromProps(parseTitle(attr(c, "title"))); ok {
					word.BBox = bbox
				}
				page.Words = append(page.Words, word)
				return
			}
		}
		for s := c.FirstChild; s != nil; s = s.NextSibling {
			walk(s)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}

	if len(page.Lines) == 0 && len(page.Words) > 0 {
		page.Lines = LinesFromWords(page.Words, LineTolerance)
	}
	return page
}

func collectWords(n *html.Node, line *Line) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, "ocrx_word") {
			word := Word{Text: strings.TrimSpace(textContent(c))}
			if bbox, ok := boxFromProps(parseTitle(attr(c, "title"))); ok {
				word.BBox = bbox
			}
			line.Words = append(line.Words, word)
			continue
		}
		collectWords(c, line)
	}
}

// parseTitle breaks an hOCR title attribute into its components.
// Example input: "bbox 100 200 300 400; x_wconf 95"
func parseTitle(title string) map[string][]string {
	result := make(map[string][]string)
	for _, part := range strings.Split(title, ";") {
		items := strings.Fields(strings.TrimSpace(part))
		if len(items) > 0 {
			result[items[0]] = items[1:]
		}
	}
	return result
}

// boxFromProps reads an hOCR "bbox x1 y1 x2 y2" property and converts it
// to the (x, y, w, h) form used throughout this package.
func boxFromProps(props map[string][]string) (BBox, bool) {
	vals, ok := props["bbox"]
	if !ok || len(vals) < 4 {
		return BBox{}, false
	}
	var coords [4]float64
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseFloat(vals[i], 64)
		if err != nil {
			return BBox{}, false
		}
		coords[i] = v
	}
	return NewBBox(coords[0], coords[1], coords[2]-coords[0], coords[3]-coords[1]), true
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" && strings.Contains(a.Val, class) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for s := c.FirstChild; s != nil; s = s.NextSibling {
			walk(s)
		}
	}
	walk(n)
	return sb.String()
}
