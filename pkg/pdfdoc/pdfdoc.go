// Package pdfdoc is the concrete PDF collaborator behind the overlay
// engine's Document interface.
//
// Reading and writing are split across two libraries: pdfcpu parses the
// source document for page metadata (point-space rects, rotation,
// embedded images with intrinsic pixel dimensions and rendered
// rectangles), while fpdf with the gofpdi importer rebuilds the document
// page by page with the overlay text applied.
//
// fpdf is page-sequential, so pages must be requested in document order;
// skipped pages are imported untouched. Saving writes to a sibling .tmp
// path and renames into place so a failed run never leaves a partially
// written output.
package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/gardar/pdfoverlay/pkg/overlay"
)

// File is an open PDF document implementing overlay.Document.
type File struct {
	data   []byte
	ctx    *model.Context
	metas  []pageMeta
	pdf    *fpdf.Fpdf
	imp    *gofpdi.Importer
	rs     io.ReadSeeker
	cur    int // number of pages imported into the output so far
	family string
	logger *slog.Logger
}

// Open loads a PDF from disk and prepares it for overlaying.
func Open(path string, logger *slog.Logger) (*File, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input PDF: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	metas, err := readPageMetas(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page metadata: %w", err)
	}

	pdf := fpdf.New("P", "pt", "", "")
	f := &File{
		data:   data,
		ctx:    ctx,
		metas:  metas,
		pdf:    pdf,
		imp:    gofpdi.NewImporter(),
		rs:     bytes.NewReader(data),
		logger: logger,
	}
	return f, nil
}

// PageCount implements overlay.Document.
func (f *File) PageCount() int { return len(f.metas) }

// Page implements overlay.Document. Pages must be requested in document
// order; requesting page i imports any pages before it untouched.
func (f *File) Page(index int) (overlay.Page, error) {
	if index < 0 || index >= len(f.metas) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(f.metas))
	}
	if index < f.cur-1 {
		return nil, fmt.Errorf("page %d already finalized; pages must be accessed in order", index)
	}
	for f.cur <= index {
		f.importPage(f.cur)
		f.cur++
	}
	return &filePage{file: f, index: index, meta: &f.metas[index]}, nil
}

// importPage adds the next output page and stamps the corresponding
// source page onto it.
func (f *File) importPage(index int) {
	meta := &f.metas[index]
	w, h := meta.rect.Width(), meta.rect.Height()
	f.pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
	tpl := f.imp.ImportPageFromStream(f.pdf, &f.rs, index+1, "/MediaBox")
	f.imp.UseImportedTemplate(f.pdf, tpl, 0, 0, w, 0)
}

// Save implements overlay.Document: remaining pages are imported
// untouched, then the document is written through a temporary sibling
// path and renamed into place.
func (f *File) Save(path string) error {
	for f.cur < len(f.metas) {
		f.importPage(f.cur)
		f.cur++
	}

	var buf bytes.Buffer
	if err := f.pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write temporary output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize output: %w", err)
	}
	return nil
}
