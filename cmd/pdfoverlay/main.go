// pdfoverlay adds an invisible, searchable text layer to image-only PDFs.
//
// OCR input comes from one of four sources: a JSON snapshot of a previous
// run, an hOCR file, a directory of page images recognized with Tesseract,
// or Google Document AI. Recognized text is positioned over the scanned
// page content so the result is selectable and extractable without
// changing the page's appearance.
//
// Usage:
//
//	pdfoverlay -pdf scan.pdf -ocr-json scan.json -out searchable.pdf
//
// Required flags:
//
//	-pdf string   Input PDF path
//	-out string   Output PDF path
//
// OCR input (exactly one required):
//
//	-ocr-json string      OCR snapshot JSON file
//	-hocr string          hOCR file
//	-image-dir string     Directory of rendered page images for Tesseract
//	-docai-config string  Document AI processor config (YAML)
//
// Run pdfoverlay -h for the full option list.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gardar/pdfoverlay/pkg/ocr"
	"github.com/gardar/pdfoverlay/pkg/ocr/docai"
	"github.com/gardar/pdfoverlay/pkg/ocr/tess"
	"github.com/gardar/pdfoverlay/pkg/overlay"
	"github.com/gardar/pdfoverlay/pkg/pdfdoc"
)

const (
	exitUsage     = 1
	exitFailure   = 2
	exitNoOCRData = 3
)

func main() {
	pdfPath := flag.String("pdf", "", "Input PDF path")
	outPath := flag.String("out", "", "Output PDF path")

	ocrJSONPath := flag.String("ocr-json", "", "Path to an OCR snapshot JSON file")
	hocrPath := flag.String("hocr", "", "Path to an hOCR file")
	imageDir := flag.String("image-dir", "", "Directory of rendered page images to recognize with Tesseract")
	docaiConfig := flag.String("docai-config", "", "Document AI processor config (YAML)")

	langs := flag.String("lang", "", "Tesseract languages, comma-separated (e.g. eng,deu)")
	dpi := flag.Int("dpi", 0, "DPI of the rendered page images")

	configPath := flag.String("config", "", "YAML settings profile")
	method := flag.String("method", "invisible", "Render method: invisible or opacity")
	granularity := flag.String("granularity", "word", "Overlay granularity: word or line")
	align := flag.String("align", "auto", "Alignment: auto, page, image:<ref>, or image-rect:x0,y0,x1,y1")
	fontPath := flag.String("font", "", "TrueType font file to embed (default: built-in Helvetica)")
	baselineRatio := flag.Float64("baseline-ratio", 0.15, "Baseline position as a fraction of box height")
	fontScale := flag.Float64("font-scale", 1.0, "Font size multiplier")
	offsetX := flag.Float64("offset-x", 0, "Global X offset in points")
	offsetY := flag.Float64("offset-y", 0, "Global Y offset in points")
	scaleX := flag.Float64("scale-x", 1.0, "X scale correction factor")
	scaleY := flag.Float64("scale-y", 1.0, "Y scale correction factor")
	rotation := flag.Int("rotation", 0, "Rotation override in degrees (multiple of 90)")
	deskew := flag.Float64("deskew", 0, "Deskew angle in degrees, applied per insertion")
	fallbackDPI := flag.Float64("fallback-dpi", 0, "Assume this DPI when OCR pixel dimensions are missing (0 disables)")
	keepSpaces := flag.Bool("keep-spaces", false, "Keep original spacing instead of collapsing whitespace")
	cjkJoin := flag.Bool("cjk-join", false, "Remove spaces between adjacent CJK characters")
	dehyphen := flag.Bool("dehyphen", false, "Merge hyphenated line-break word pairs")
	debug := flag.Bool("debug", false, "Draw translucent outlines around each placement")
	qa := flag.Bool("qa", false, "Render text faintly visible for placement review")
	calibrate := flag.Int("calibrate", 0, "Log the first N placements")
	maxPages := flag.Int("max-pages", 0, "Process at most this many OCR pages (0 = all)")
	pdfa := flag.Bool("pdfa", false, "Validate and optimize the output after saving")

	dumpPlacements := flag.String("dump-placements", "", "Write placement records to this JSON file")
	dumpOCRJSON := flag.String("dump-ocr-json", "", "Write recognized OCR pages to this JSON file")
	overwrite := flag.Bool("overwrite", false, "Overwrite the output PDF if it already exists")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *pdfPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -pdf and -out are required")
		flag.Usage()
		os.Exit(exitUsage)
	}

	sources := 0
	for _, v := range []string{*ocrJSONPath, *hocrPath, *imageDir, *docaiConfig} {
		if v != "" {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(os.Stderr, "Error: provide exactly one of -ocr-json, -hocr, -image-dir, -docai-config")
		os.Exit(exitUsage)
	}

	if _, err := os.Stat(*outPath); err == nil {
		if !*overwrite {
			fmt.Fprintf(os.Stderr, "Output file %s already exists. Use -overwrite to overwrite.\n", *outPath)
			os.Exit(exitUsage)
		}
		os.Remove(*outPath)
	}

	settings := overlay.DefaultSettings()
	if *configPath != "" {
		loaded, err := overlay.LoadSettings(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitUsage)
		}
		settings = loaded
	}

	// Flags given on the command line win over the settings profile.
	flagSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagSet[f.Name] = true })
	applyFlag := func(name string, apply func()) {
		if *configPath == "" || flagSet[name] {
			apply()
		}
	}
	applyFlag("method", func() { settings.Method = *method })
	applyFlag("granularity", func() { settings.Granularity = *granularity })
	applyFlag("align", func() { settings.Align = *align })
	applyFlag("font", func() { settings.FontPath = *fontPath })
	applyFlag("baseline-ratio", func() { settings.BaselineRatio = *baselineRatio })
	applyFlag("font-scale", func() { settings.FontScale = *fontScale })
	applyFlag("offset-x", func() { settings.OffsetX = *offsetX })
	applyFlag("offset-y", func() { settings.OffsetY = *offsetY })
	applyFlag("scale-x", func() { settings.ScaleX = *scaleX })
	applyFlag("scale-y", func() { settings.ScaleY = *scaleY })
	applyFlag("deskew", func() { settings.Deskew = *deskew })
	applyFlag("fallback-dpi", func() { settings.FallbackDPI = *fallbackDPI })
	applyFlag("keep-spaces", func() { settings.KeepSpaces = *keepSpaces })
	applyFlag("cjk-join", func() { settings.CJKJoin = *cjkJoin })
	applyFlag("dehyphen", func() { settings.Dehyphen = *dehyphen })
	applyFlag("debug", func() { settings.Debug = *debug })
	applyFlag("qa", func() { settings.QA = *qa })
	applyFlag("calibrate", func() { settings.Calibrate = *calibrate })
	applyFlag("max-pages", func() { settings.MaxPages = *maxPages })
	applyFlag("pdfa", func() { settings.PDFA = *pdfa })
	if flagSet["rotation"] {
		settings.Rotation = rotation
	}
	settings.Logger = logger

	ctx := context.Background()
	provider, err := buildProvider(*ocrJSONPath, *hocrPath, *imageDir, *docaiConfig, *pdfPath, *langs, *dpi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}

	pages, err := provider.Recognize(ctx)
	if err != nil {
		var capErr *overlay.CapabilityError
		if errors.As(err, &capErr) {
			fmt.Fprintf(os.Stderr, "OCR failed: %v\n", capErr)
			os.Exit(exitFailure)
		}
		fmt.Fprintf(os.Stderr, "OCR failed: %v\n", err)
		os.Exit(exitFailure)
	}
	logger.Info("OCR input loaded", "pages", len(pages))

	if *dumpOCRJSON != "" {
		if err := ocr.SaveJSON(pages, *dumpOCRJSON); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write OCR snapshot: %v\n", err)
			os.Exit(exitFailure)
		}
		logger.Info("OCR snapshot written", "path", *dumpOCRJSON)
	}

	doc, err := pdfdoc.Open(*pdfPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open PDF: %v\n", err)
		os.Exit(exitFailure)
	}

	result, err := overlay.Apply(doc, pages, settings)
	if err != nil {
		if errors.Is(err, overlay.ErrNoOCRData) {
			fmt.Fprintln(os.Stderr, "No OCR data available to overlay")
			os.Exit(exitNoOCRData)
		}
		fmt.Fprintf(os.Stderr, "Overlay failed: %v\n", err)
		os.Exit(exitFailure)
	}

	if err := doc.Save(*outPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save output PDF: %v\n", err)
		os.Exit(exitFailure)
	}

	if settings.PDFA {
		if err := pdfdoc.BestEffortCompliance(*outPath, logger); err != nil {
			logger.Warn("output compliance pass failed, keeping plain PDF", "error", err)
		}
	}

	if *dumpPlacements != "" {
		if err := result.WriteDump(*dumpPlacements); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write placement dump: %v\n", err)
			os.Exit(exitFailure)
		}
		logger.Info("placement dump written", "path", *dumpPlacements)
	}

	logger.Info("overlay complete",
		"output", *outPath,
		"pages_processed", result.PagesProcessed,
		"pages_skipped", result.PagesSkipped,
		"entries_inserted", result.EntriesInserted,
		"entries_skipped", result.EntriesSkipped,
	)
}

// buildProvider selects the OCR source from the mutually exclusive input
// flags.
func buildProvider(jsonPath, hocrPath, imageDir, docaiConfig, pdfPath, langs string, dpi int) (ocr.Provider, error) {
	switch {
	case jsonPath != "":
		return &ocr.SnapshotProvider{Path: jsonPath}, nil
	case hocrPath != "":
		return &ocr.HOCRProvider{Path: hocrPath}, nil
	case imageDir != "":
		var languages []string
		if langs != "" {
			for _, l := range strings.Split(langs, ",") {
				if l = strings.TrimSpace(l); l != "" {
					languages = append(languages, l)
				}
			}
		}
		return tess.NewProvider(imageDir, languages, dpi), nil
	case docaiConfig != "":
		cfg, err := docai.LoadConfig(docaiConfig)
		if err != nil {
			return nil, err
		}
		return &docai.Provider{Config: cfg, PDFPath: pdfPath}, nil
	}
	return nil, fmt.Errorf("no OCR input selected")
}
