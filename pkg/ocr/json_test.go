package ocr

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBBoxJSON(t *testing.T) {
	b := NewBBox(10.5, 20, 100, 32)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[10.5,20,100,32]" {
		t.Errorf("marshal = %s, want [10.5,20,100,32]", data)
	}

	var back BBox
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != b {
		t.Errorf("round trip = %+v, want %+v", back, b)
	}
}

func TestBBoxUnmarshalErrors(t *testing.T) {
	for _, bad := range []string{`[1,2,3]`, `[1,2,3,4,5]`, `{"x":1}`, `"box"`} {
		var b BBox
		if err := json.Unmarshal([]byte(bad), &b); err == nil {
			t.Errorf("unmarshal %s: expected error", bad)
		}
	}
}

func TestBBoxUnion(t *testing.T) {
	a := NewBBox(10, 10, 20, 20)
	b := NewBBox(25, 5, 10, 10)
	got := a.Union(b)
	want := NewBBox(10, 5, 25, 25)
	if got != want {
		t.Errorf("union = %+v, want %+v", got, want)
	}
}

func TestParseJSON(t *testing.T) {
	data := []byte(`[
	  {
	    "page": 0,
	    "width_px": 2100,
	    "height_px": 3000,
	    "rotation": null,
	    "words": [
	      {"text": "hello", "bbox": [100, 200, 150, 40]},
	      {"text": "world", "bbox": [260, 202, 150, 40]}
	    ],
	    "lines": [
	      {"text": "hello world", "bbox": [100, 200, 310, 42]}
	    ]
	  }
	]`)

	pages, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	p := pages[0]
	if p.Index != 0 || p.WidthPx != 2100 || p.HeightPx != 3000 {
		t.Errorf("page header = %+v", p)
	}
	if p.Rotation != nil {
		t.Errorf("rotation = %v, want nil", p.Rotation)
	}
	if len(p.Words) != 2 || p.Words[0].Text != "hello" {
		t.Errorf("words = %+v", p.Words)
	}
	if len(p.Lines) != 1 || p.Lines[0].Text != "hello world" {
		t.Errorf("lines = %+v", p.Lines)
	}
}

func TestParseJSONSynthesizesLines(t *testing.T) {
	data := []byte(`[
	  {
	    "page": 0,
	    "width_px": 1000,
	    "height_px": 1000,
	    "words": [
	      {"text": "first", "bbox": [10, 100, 50, 20]},
	      {"text": "line", "bbox": [70, 101, 50, 20]},
	      {"text": "second", "bbox": [10, 200, 50, 20]}
	    ]
	  }
	]`)

	pages, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	lines := pages[0].Lines
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 synthesized", len(lines))
	}
	if lines[0].Text != "first line" || lines[1].Text != "second" {
		t.Errorf("line texts = %q, %q", lines[0].Text, lines[1].Text)
	}
}

func TestParseJSONRejectsNonList(t *testing.T) {
	if _, err := ParseJSON([]byte(`{"page": 0}`)); err == nil {
		t.Fatal("expected error for non-list input")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rot := 90
	pages := []Page{
		{
			Index:    0,
			WidthPx:  2100,
			HeightPx: 3000,
			Rotation: &rot,
			Words: []Word{
				{Text: "alpha", BBox: NewBBox(1, 2, 3, 4)},
			},
			Lines: []Line{
				{Text: "alpha", BBox: NewBBox(1, 2, 3, 4)},
			},
		},
		{Index: 1, WidthPx: 2100, HeightPx: 3000},
	}

	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	if err := SaveJSON(pages, path); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("pages = %d, want 2", len(loaded))
	}
	if loaded[0].Rotation == nil || *loaded[0].Rotation != 90 {
		t.Errorf("rotation = %v, want 90", loaded[0].Rotation)
	}
	if loaded[0].Words[0].Text != "alpha" || loaded[0].Words[0].BBox != NewBBox(1, 2, 3, 4) {
		t.Errorf("word = %+v", loaded[0].Words[0])
	}

	// Empty pages serialize with empty arrays, not null.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"words": null`) {
		t.Error("empty words must serialize as [], not null")
	}
}

func TestSnapshotProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	content := `[{"page": 0, "width_px": 100, "height_px": 100, "words": [], "lines": []}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &SnapshotProvider{Path: path}
	pages, err := p.Recognize(t.Context())
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if len(pages) != 1 || pages[0].WidthPx != 100 {
		t.Errorf("pages = %+v", pages)
	}
}
