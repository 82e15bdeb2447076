package pdfdoc

import (
	"fmt"
	"os"

	"golang.org/x/text/encoding/charmap"

	"github.com/gardar/pdfoverlay/pkg/overlay"
)

// defaultFont is the built-in font used when no font file is supplied or
// registration fails. Helvetica is tried and tested for hidden OCR text.
const defaultFont = "Helvetica"

const (
	opacityAlpha = 0.02
	visibleAlpha = 0.6
)

// RegisterFont implements overlay.Document. A font file is embedded as a
// UTF-8 font family; an empty path or any failure falls back to the
// built-in default.
func (f *File) RegisterFont(path string) (string, error) {
	if path == "" {
		f.family = defaultFont
		return f.family, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		f.logger.Warn("failed to read font file, falling back to built-in font",
			"path", path, "error", err)
		f.family = defaultFont
		return f.family, nil
	}
	if !isTrueTypeFont(data) {
		f.logger.Warn("font file is not a TrueType/OpenType font, falling back to built-in font",
			"path", path)
		f.family = defaultFont
		return f.family, nil
	}
	f.pdf.AddUTF8FontFromBytes("overlayfont", "", data)
	if f.pdf.Err() {
		f.logger.Warn("font registration failed, falling back to built-in font",
			"path", path, "error", f.pdf.Error())
		f.pdf.ClearError()
		f.family = defaultFont
		return f.family, nil
	}
	f.family = "overlayfont"
	return f.family, nil
}

// isTrueTypeFont sniffs the sfnt magic of TTF/OTF/TTC files.
func isTrueTypeFont(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	magic := string(data[:4])
	return magic == "\x00\x01\x00\x00" || magic == "OTTO" || magic == "ttcf" || magic == "true"
}

// filePage is one page of an open File, valid while it is the current
// output page.
type filePage struct {
	file  *File
	index int
	meta  *pageMeta
}

func (p *filePage) Rect() overlay.Rect { return p.meta.rect }
func (p *filePage) Rotation() int      { return p.meta.rotation }

func (p *filePage) Images() []overlay.ImageRef { return p.meta.images }

// InsertText implements overlay.Page. The anchor arrives in point space
// (bottom-left origin); fpdf addresses pages from the top-left, so the
// y axis flips here and nowhere else.
func (p *filePage) InsertText(ins overlay.TextInsertion) error {
	if err := p.current(); err != nil {
		return err
	}
	pdf := p.file.pdf
	pageH := p.meta.rect.Height()
	x := ins.Anchor.X
	y := pageH - ins.Anchor.Y

	pdf.SetFont(p.file.family, "", ins.Size)

	text := ins.Text
	if p.file.family == defaultFont {
		// Core fonts are Latin-1 only; transcode and fall back to the
		// raw text when a rune has no Latin-1 representation.
		if latin1, err := charmap.ISO8859_1.NewEncoder().String(text); err == nil {
			text = latin1
		}
	}

	switch ins.Mode {
	case overlay.ModeVisible:
		pdf.SetTextColor(128, 128, 128)
		pdf.SetAlpha(visibleAlpha, "Normal")
	case overlay.ModeOpacity:
		pdf.SetTextColor(0, 0, 0)
		pdf.SetAlpha(opacityAlpha, "Normal")
	default:
		pdf.SetTextColor(0, 0, 0)
		pdf.SetAlpha(0.0, "Normal")
	}

	if ins.Rotate != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(ins.Rotate, x, y)
	}
	pdf.Text(x, y, text)
	if ins.Rotate != 0 {
		pdf.TransformEnd()
	}

	if ins.Mode == overlay.ModeVisible {
		pdf.SetDrawColor(128, 128, 128)
		pdf.SetLineWidth(0.4)
		pdf.Rect(ins.Rect.X0, pageH-ins.Rect.Y1, ins.Rect.Width(), ins.Rect.Height(), "D")
	}
	pdf.SetAlpha(1.0, "Normal")

	if pdf.Err() {
		return fmt.Errorf("text insertion: %w", pdf.Error())
	}
	return nil
}

// DrawOutline implements overlay.Page.
func (p *filePage) DrawOutline(rect overlay.Rect, color overlay.RGB, opacity float64) error {
	if err := p.current(); err != nil {
		return err
	}
	pdf := p.file.pdf
	pageH := p.meta.rect.Height()

	pdf.SetAlpha(opacity, "Normal")
	pdf.SetDrawColor(color.R, color.G, color.B)
	pdf.SetLineWidth(0.6)
	pdf.Rect(rect.X0, pageH-rect.Y1, rect.Width(), rect.Height(), "D")
	pdf.SetAlpha(1.0, "Normal")

	if pdf.Err() {
		return fmt.Errorf("outline drawing: %w", pdf.Error())
	}
	return nil
}

func (p *filePage) current() error {
	if p.index != p.file.cur-1 {
		return fmt.Errorf("page %d is no longer the current output page", p.index)
	}
	return nil
}
