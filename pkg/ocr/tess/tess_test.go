package tess

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"page-002.png",
		"page-001.png",
		"page-010.jpg",
		"notes.txt",
		"cover.PNG",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "thumbs.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(dir, nil, 0)
	files, err := p.listImages()
	if err != nil {
		t.Fatalf("listImages: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"cover.PNG", "page-001.png", "page-002.png", "page-010.jpg"}
	if len(names) != len(want) {
		t.Fatalf("files = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("files = %v, want %v", names, want)
		}
	}
}

func TestListImagesMissingDir(t *testing.T) {
	p := NewProvider(filepath.Join(t.TempDir(), "absent"), nil, 0)
	if _, err := p.listImages(); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestRecognizeEmptyDir(t *testing.T) {
	p := NewProvider(t.TempDir(), []string{"eng"}, 300)
	if _, err := p.Recognize(t.Context()); err == nil {
		t.Fatal("expected error for directory without images")
	}
}
