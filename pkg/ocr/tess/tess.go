// Package tess recognizes pre-rendered page images with Tesseract via
// the gosseract client. Images are supplied as a directory of page
// renderings, one file per page in lexical order.
package tess

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"

	"github.com/otiai10/gosseract/v2"

	"github.com/gardar/pdfoverlay/pkg/ocr"
	"github.com/gardar/pdfoverlay/pkg/overlay"
)

// Provider runs Tesseract over a directory of page images.
type Provider struct {
	// Dir holds one rendered image per page; files are matched by
	// extension and assigned page indexes in sorted filename order.
	Dir string

	// Languages passed to Tesseract, e.g. ["eng", "deu"]. Empty means
	// the Tesseract default.
	Languages []string

	// DPI of the rendered images. When set it is forwarded to
	// Tesseract as user_defined_dpi.
	DPI int

	clientFactory func() *gosseract.Client
}

// NewProvider constructs a directory-backed Tesseract provider.
func NewProvider(dir string, languages []string, dpi int) *Provider {
	return &Provider{
		Dir:           dir,
		Languages:     languages,
		DPI:           dpi,
		clientFactory: gosseract.NewClient,
	}
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// Recognize implements ocr.Provider. Each image file becomes one OCR
// page, processed sequentially.
func (p *Provider) Recognize(ctx context.Context) ([]ocr.Page, error) {
	files, err := p.listImages()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page images found in %s", p.Dir)
	}

	pages := make([]ocr.Page, 0, len(files))
	for i, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		page, err := p.recognizeImage(path, i)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", filepath.Base(path), err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (p *Provider) listImages() ([]string, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading image directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(p.Dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Provider) recognizeImage(path string, index int) (ocr.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ocr.Page{}, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ocr.Page{}, fmt.Errorf("decode image: %w", err)
	}

	factory := p.clientFactory
	if factory == nil {
		factory = gosseract.NewClient
	}
	c := factory()
	defer c.Close()

	if err := c.SetImageFromBytes(data); err != nil {
		return ocr.Page{}, fmt.Errorf("set image: %w", err)
	}
	if len(p.Languages) > 0 {
		if err := c.SetLanguage(p.Languages...); err != nil {
			return ocr.Page{}, &overlay.CapabilityError{
				Capability: "tesseract language data",
				Remedy:     "install the tesseract language packs for " + strings.Join(p.Languages, ","),
				Err:        err,
			}
		}
	}
	if p.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(p.DPI)); err != nil {
			return ocr.Page{}, fmt.Errorf("set dpi: %w", err)
		}
	}

	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Page{}, &overlay.CapabilityError{
			Capability: "tesseract engine",
			Remedy:     "install tesseract, or supply precomputed OCR input instead",
			Err:        err,
		}
	}

	words := make([]ocr.Word, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		words = append(words, ocr.Word{
			Text: text,
			BBox: ocr.BBox{
				X: float64(b.Box.Min.X),
				Y: float64(b.Box.Min.Y),
				W: float64(b.Box.Dx()),
				H: float64(b.Box.Dy()),
			},
		})
	}

	return ocr.Page{
		Index:    index,
		WidthPx:  float64(cfg.Width),
		HeightPx: float64(cfg.Height),
		Words:    words,
		Lines:    ocr.LinesFromWords(words, ocr.LineTolerance),
	}, nil
}
