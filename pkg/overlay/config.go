package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds user options for applying the overlay.
type Settings struct {
	Method        string  `yaml:"method"`         // invisible | opacity
	Granularity   string  `yaml:"granularity"`    // word | line
	Align         string  `yaml:"align"`          // auto | page | image:<ref> | image-rect:x0,y0,x1,y1
	BaselineRatio float64 `yaml:"baseline_ratio"` // fraction of box height above the bottom
	FontScale     float64 `yaml:"font_scale"`     // multiplier from mapped height to font size
	KeepSpaces    bool    `yaml:"keep_spaces"`
	CJKJoin       bool    `yaml:"cjk_join"`
	Dehyphen      bool    `yaml:"dehyphen"`
	OffsetX       float64 `yaml:"offset_x"` // global point-space offset
	OffsetY       float64 `yaml:"offset_y"`
	ScaleX        float64 `yaml:"scale_x"` // per-axis scale correction
	ScaleY        float64 `yaml:"scale_y"`
	Rotation      *int    `yaml:"rotation"`     // rotation override; nil = use OCR/page rotation
	Deskew        float64 `yaml:"deskew"`       // degrees, applied at insertion time
	FallbackDPI   float64 `yaml:"fallback_dpi"` // 0 disables px-from-pt back-computation
	FontPath      string  `yaml:"font"`
	Debug         bool    `yaml:"debug"`     // draw translucent outlines per entry
	QA            bool    `yaml:"qa"`        // visible gray rendering, overrides Method
	Calibrate     int     `yaml:"calibrate"` // log the first N placements
	MaxPages      int     `yaml:"max_pages"` // truncate OCR input before processing
	PDFA          bool    `yaml:"pdfa"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Method:        "invisible",
		Granularity:   "word",
		Align:         "auto",
		BaselineRatio: 0.15,
		FontScale:     1.0,
		ScaleX:        1.0,
		ScaleY:        1.0,
	}
}

// LoadSettings reads a YAML settings profile over DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return s, nil
}

func (s *Settings) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Validate checks settings before any processing starts.
func (s *Settings) Validate() error {
	switch s.Method {
	case "invisible", "opacity":
	default:
		return &ConfigError{Option: "method", Reason: fmt.Sprintf("%q is not one of invisible, opacity", s.Method)}
	}
	switch s.Granularity {
	case "word", "line":
	default:
		return &ConfigError{Option: "granularity", Reason: fmt.Sprintf("%q is not one of word, line", s.Granularity)}
	}
	if s.BaselineRatio <= 0 || s.BaselineRatio >= 1 {
		return &ConfigError{Option: "baseline ratio", Reason: "must be strictly between 0 and 1"}
	}
	if s.FontScale <= 0 {
		return &ConfigError{Option: "font scale", Reason: "must be positive"}
	}
	if s.Rotation != nil && *s.Rotation%90 != 0 {
		return &ConfigError{Option: "rotation", Reason: "must be a multiple of 90 degrees"}
	}
	_, err := ParseAlign(s.Align)
	return err
}

// renderMode derives the effective render mode: QA overrides Method.
func (s *Settings) renderMode() RenderMode {
	if s.QA {
		return ModeVisible
	}
	if s.Method == "opacity" {
		return ModeOpacity
	}
	return ModeInvisible
}

// AlignSpec is a parsed alignment mode string.
type AlignSpec struct {
	Mode string // auto | page | image | image-rect
	Ref  string // image reference for Mode == "image"
	Rect Rect   // manual rectangle for Mode == "image-rect"
}

// ParseAlign parses an alignment mode string. Supported forms:
// "auto", "page", "image:<ref>", and "image-rect:x0,y0,x1,y1".
func ParseAlign(value string) (AlignSpec, error) {
	switch {
	case value == "" || value == "auto":
		return AlignSpec{Mode: "auto"}, nil
	case value == "page":
		return AlignSpec{Mode: "page"}, nil
	case strings.HasPrefix(value, "image-rect:"):
		parts := strings.Split(strings.TrimPrefix(value, "image-rect:"), ",")
		if len(parts) != 4 {
			return AlignSpec{}, &ConfigError{Option: "align", Reason: "image-rect requires exactly 4 comma-separated numbers"}
		}
		var coords [4]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return AlignSpec{}, &ConfigError{Option: "align", Reason: fmt.Sprintf("bad coordinate %q", part)}
			}
			coords[i] = v
		}
		return AlignSpec{
			Mode: "image-rect",
			Rect: NewRect(coords[0], coords[1], coords[2], coords[3]),
		}, nil
	case strings.HasPrefix(value, "image:"):
		ref := strings.TrimPrefix(value, "image:")
		if ref == "" {
			return AlignSpec{}, &ConfigError{Option: "align", Reason: "image mode requires a reference, e.g. image:14"}
		}
		return AlignSpec{Mode: "image", Ref: ref}, nil
	}
	return AlignSpec{}, &ConfigError{Option: "align", Reason: fmt.Sprintf("unrecognized mode %q", value)}
}
