package overlay

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"opacity method", func(s *Settings) { s.Method = "opacity" }, false},
		{"line granularity", func(s *Settings) { s.Granularity = "line" }, false},
		{"unknown method", func(s *Settings) { s.Method = "watermark" }, true},
		{"unknown granularity", func(s *Settings) { s.Granularity = "glyph" }, true},
		{"baseline ratio zero", func(s *Settings) { s.BaselineRatio = 0 }, true},
		{"baseline ratio one", func(s *Settings) { s.BaselineRatio = 1 }, true},
		{"negative font scale", func(s *Settings) { s.FontScale = -1 }, true},
		{"rotation not multiple of 90", func(s *Settings) { r := 45; s.Rotation = &r }, true},
		{"rotation 270", func(s *Settings) { r := 270; s.Rotation = &r }, false},
		{"bad align", func(s *Settings) { s.Align = "center" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAlign(t *testing.T) {
	tests := []struct {
		value   string
		want    AlignSpec
		wantErr bool
	}{
		{"", AlignSpec{Mode: "auto"}, false},
		{"auto", AlignSpec{Mode: "auto"}, false},
		{"page", AlignSpec{Mode: "page"}, false},
		{"image:14", AlignSpec{Mode: "image", Ref: "14"}, false},
		{"image-rect:0,0,595,842", AlignSpec{Mode: "image-rect", Rect: NewRect(0, 0, 595, 842)}, false},
		{"image-rect:10.5, 20, 500.25, 800", AlignSpec{Mode: "image-rect", Rect: NewRect(10.5, 20, 500.25, 800)}, false},
		{"image:", AlignSpec{}, true},
		{"image-rect:1,2,3", AlignSpec{}, true},
		{"image-rect:a,b,c,d", AlignSpec{}, true},
		{"center", AlignSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseAlign(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAlign(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAlign(%q) = %+v, want %+v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `method: opacity
granularity: line
baseline_ratio: 0.2
dehyphen: true
offset_x: 1.5
rotation: 180
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Method != "opacity" || s.Granularity != "line" {
		t.Errorf("method/granularity = %q/%q", s.Method, s.Granularity)
	}
	if s.BaselineRatio != 0.2 || s.OffsetX != 1.5 || !s.Dehyphen {
		t.Errorf("numeric/boolean overrides not applied: %+v", s)
	}
	if s.Rotation == nil || *s.Rotation != 180 {
		t.Errorf("rotation = %v, want 180", s.Rotation)
	}
	// Unmentioned keys keep their defaults.
	if s.FontScale != 1.0 || s.Align != "auto" {
		t.Errorf("defaults lost: font scale %v, align %q", s.FontScale, s.Align)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing settings file")
	}
}

func TestRenderMode(t *testing.T) {
	s := DefaultSettings()
	if s.renderMode() != ModeInvisible {
		t.Errorf("default mode = %v, want invisible", s.renderMode())
	}
	s.Method = "opacity"
	if s.renderMode() != ModeOpacity {
		t.Errorf("opacity method mode = %v, want opacity", s.renderMode())
	}
	s.QA = true
	if s.renderMode() != ModeVisible {
		t.Errorf("qa mode = %v, want visible", s.renderMode())
	}
}
