package overlay

import (
	"errors"
	"testing"

	"github.com/gardar/pdfoverlay/pkg/ocr"
)

// fakeDocument is an in-memory Document for engine tests.
type fakeDocument struct {
	pages []*fakePage
	font  string
	saved string
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Page(index int) (Page, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, errors.New("page out of range")
	}
	return d.pages[index], nil
}

func (d *fakeDocument) RegisterFont(path string) (string, error) {
	d.font = "Helvetica"
	return d.font, nil
}

func (d *fakeDocument) Save(path string) error {
	d.saved = path
	return nil
}

func newFakeDocument(pageCount int) *fakeDocument {
	d := &fakeDocument{}
	for i := 0; i < pageCount; i++ {
		d.pages = append(d.pages, &fakePage{
			rect: NewRect(0, 0, 595, 842),
			images: []ImageRef{
				{Ref: "10", Rect: NewRect(0, 0, 595, 842), WidthPx: 2100, HeightPx: 3000},
			},
		})
	}
	return d
}

func ocrWordPage(index int, words ...ocr.Word) ocr.Page {
	return ocr.Page{
		Index:    index,
		WidthPx:  2100,
		HeightPx: 3000,
		Words:    words,
		Lines:    ocr.LinesFromWords(words, ocr.LineTolerance),
	}
}

func TestApplyInsertsWords(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "hello", BBox: ocr.NewBBox(100, 300, 200, 50)},
		ocr.Word{Text: "world", BBox: ocr.NewBBox(320, 300, 200, 50)},
	)}

	result, err := Apply(doc, pages, DefaultSettings())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.PagesProcessed != 1 || result.EntriesInserted != 2 {
		t.Fatalf("processed = %d, inserted = %d; want 1, 2", result.PagesProcessed, result.EntriesInserted)
	}

	ins := doc.pages[0].insertions
	if len(ins) != 2 {
		t.Fatalf("insertions = %d, want 2", len(ins))
	}
	if ins[0].Text != "hello" || ins[1].Text != "world" {
		t.Errorf("insertion order = %q, %q; want hello, world", ins[0].Text, ins[1].Text)
	}
	if ins[0].Mode != ModeInvisible {
		t.Errorf("mode = %v, want invisible", ins[0].Mode)
	}
	if len(result.Placements) != 2 {
		t.Errorf("placements = %d, want 2", len(result.Placements))
	}
}

func TestApplyReadingOrder(t *testing.T) {
	doc := newFakeDocument(1)
	// Supplied bottom-up and right-to-left; insertion must be
	// top-to-bottom, left-to-right.
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "fourth", BBox: ocr.NewBBox(300, 600, 80, 40)},
		ocr.Word{Text: "third", BBox: ocr.NewBBox(100, 600, 80, 40)},
		ocr.Word{Text: "second", BBox: ocr.NewBBox(300, 200, 80, 40)},
		ocr.Word{Text: "first", BBox: ocr.NewBBox(100, 200, 80, 40)},
	)}

	_, err := Apply(doc, pages, DefaultSettings())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	var got []string
	for _, ins := range doc.pages[0].insertions {
		got = append(got, ins.Text)
	}
	want := []string{"first", "second", "third", "fourth"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestApplyLineGranularity(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "alpha", BBox: ocr.NewBBox(100, 200, 80, 40)},
		ocr.Word{Text: "beta", BBox: ocr.NewBBox(200, 201, 80, 40)},
	)}
	s := DefaultSettings()
	s.Granularity = "line"

	_, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ins := doc.pages[0].insertions
	if len(ins) != 1 {
		t.Fatalf("insertions = %d, want 1 merged line", len(ins))
	}
	if ins[0].Text != "alpha beta" {
		t.Errorf("line text = %q, want %q", ins[0].Text, "alpha beta")
	}
}

func TestApplyDehyphenation(t *testing.T) {
	doc := newFakeDocument(1)
	first := ocr.NewBBox(100, 200, 300, 40)
	pages := []ocr.Page{{
		Index:    0,
		WidthPx:  2100,
		HeightPx: 3000,
		Lines: []ocr.Line{
			{Text: "over-", BBox: first},
			{Text: "lay", BBox: ocr.NewBBox(100, 260, 120, 40)},
			{Text: "Second line", BBox: ocr.NewBBox(100, 320, 300, 40)},
		},
	}}
	s := DefaultSettings()
	s.Granularity = "line"
	s.Dehyphen = true

	result, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	ins := doc.pages[0].insertions
	if len(ins) != 2 {
		t.Fatalf("insertions = %d, want 2 after merge", len(ins))
	}
	if ins[0].Text != "overlay" {
		t.Errorf("merged text = %q, want overlay", ins[0].Text)
	}
	// Merged entry keeps the first fragment's box.
	if result.Placements[0].BBoxPx != first {
		t.Errorf("merged bbox = %+v, want first fragment's %+v", result.Placements[0].BBoxPx, first)
	}
	if ins[1].Text != "Second line" {
		t.Errorf("second entry = %q, want Second line", ins[1].Text)
	}
}

func TestApplyNoDehyphenBeforeUppercase(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{{
		Index:    0,
		WidthPx:  2100,
		HeightPx: 3000,
		Lines: []ocr.Line{
			{Text: "Smith-", BBox: ocr.NewBBox(100, 200, 300, 40)},
			{Text: "Jones", BBox: ocr.NewBBox(100, 260, 120, 40)},
		},
	}}
	s := DefaultSettings()
	s.Granularity = "line"
	s.Dehyphen = true

	_, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(doc.pages[0].insertions) != 2 {
		t.Fatalf("hyphen before uppercase must not merge, got %d insertions",
			len(doc.pages[0].insertions))
	}
}

func TestApplySkipsPagesWithoutOCR(t *testing.T) {
	doc := newFakeDocument(3)
	pages := []ocr.Page{ocrWordPage(1,
		ocr.Word{Text: "only", BBox: ocr.NewBBox(100, 200, 80, 40)},
	)}

	result, err := Apply(doc, pages, DefaultSettings())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.PagesProcessed != 1 || result.PagesSkipped != 2 {
		t.Errorf("processed = %d, skipped = %d; want 1, 2", result.PagesProcessed, result.PagesSkipped)
	}
	if len(doc.pages[0].insertions) != 0 || len(doc.pages[2].insertions) != 0 {
		t.Error("pages without OCR data must stay untouched")
	}
}

func TestApplySkipsDegenerateEntries(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "good", BBox: ocr.NewBBox(100, 200, 80, 40)},
		ocr.Word{Text: "", BBox: ocr.NewBBox(300, 200, 80, 40)},
	)}

	result, err := Apply(doc, pages, DefaultSettings())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.EntriesInserted != 1 {
		t.Errorf("inserted = %d, want 1", result.EntriesInserted)
	}
}

func TestApplyNoOCRData(t *testing.T) {
	doc := newFakeDocument(1)

	_, err := Apply(doc, nil, DefaultSettings())
	if !errors.Is(err, ErrNoOCRData) {
		t.Fatalf("expected ErrNoOCRData, got %v", err)
	}
}

func TestApplyMaxPages(t *testing.T) {
	doc := newFakeDocument(2)
	pages := []ocr.Page{
		ocrWordPage(0, ocr.Word{Text: "one", BBox: ocr.NewBBox(100, 200, 80, 40)}),
		ocrWordPage(1, ocr.Word{Text: "two", BBox: ocr.NewBBox(100, 200, 80, 40)}),
	}
	s := DefaultSettings()
	s.MaxPages = 1

	result, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if result.PagesProcessed != 1 || result.PagesSkipped != 1 {
		t.Errorf("processed = %d, skipped = %d; want 1, 1", result.PagesProcessed, result.PagesSkipped)
	}
}

func TestApplyQAOverridesMethod(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "check", BBox: ocr.NewBBox(100, 200, 80, 40)},
	)}
	s := DefaultSettings()
	s.QA = true

	_, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if doc.pages[0].insertions[0].Mode != ModeVisible {
		t.Errorf("mode = %v, want visible under QA", doc.pages[0].insertions[0].Mode)
	}
}

func TestApplyDebugOutlines(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "boxed", BBox: ocr.NewBBox(100, 200, 80, 40)},
	)}
	s := DefaultSettings()
	s.Debug = true

	_, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(doc.pages[0].outlines) != 1 {
		t.Errorf("outlines = %d, want 1", len(doc.pages[0].outlines))
	}
}

func TestApplyRotationOverride(t *testing.T) {
	doc := newFakeDocument(1)
	pages := []ocr.Page{ocrWordPage(0,
		ocr.Word{Text: "turned", BBox: ocr.NewBBox(100, 200, 80, 40)},
	)}
	s := DefaultSettings()
	rot := 90
	s.Rotation = &rot

	_, err := Apply(doc, pages, s)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if doc.pages[0].insertions[0].Rotate != 90 {
		t.Errorf("rotate = %v, want 90", doc.pages[0].insertions[0].Rotate)
	}
}

func TestApplyInvalidSettings(t *testing.T) {
	doc := newFakeDocument(1)
	s := DefaultSettings()
	s.Granularity = "paragraph"

	_, err := Apply(doc, nil, s)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
