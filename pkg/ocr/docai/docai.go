// Package docai recognizes PDF documents with Google Document AI and
// converts the response into pixel-space OCR pages.
package docai

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/gardar/pdfoverlay/pkg/ocr"
)

// Config identifies the Document AI processor to use.
type Config struct {
	ProjectID   string `yaml:"project_id"`
	Location    string `yaml:"location"`
	ProcessorID string `yaml:"processor_id"`
}

// LoadConfig reads a processor config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading processor config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing processor config: %w", err)
	}
	if cfg.ProjectID == "" || cfg.Location == "" || cfg.ProcessorID == "" {
		return nil, fmt.Errorf("processor config requires project_id, location and processor_id")
	}
	return &cfg, nil
}

// Provider sends a PDF to Document AI and yields one OCR page per
// document page.
type Provider struct {
	Config  *Config
	PDFPath string
}

// Recognize implements ocr.Provider.
func (p *Provider) Recognize(ctx context.Context) ([]ocr.Page, error) {
	pdfBytes, err := os.ReadFile(p.PDFPath)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	doc, err := processDocument(ctx, pdfBytes, p.Config)
	if err != nil {
		return nil, err
	}
	return pagesFromProto(doc), nil
}

// processDocument sends PDF bytes to Document AI and returns the raw
// Document proto. Credentials come from GOOGLE_APPLICATION_CREDENTIALS.
func processDocument(ctx context.Context, pdfBytes []byte, cfg *Config) (*documentaipb.Document, error) {
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)

	client, err := documentai.NewDocumentProcessorClient(
		ctx,
		option.WithEndpoint(endpoint),
		option.WithCredentialsFile(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}
	defer client.Close()

	name := fmt.Sprintf(
		"projects/%s/locations/%s/processors/%s",
		cfg.ProjectID, cfg.Location, cfg.ProcessorID,
	)

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  pdfBytes,
				MimeType: "application/pdf",
			},
		},
		SkipHumanReview: true,
	}

	resp, err := client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}

	return resp.Document, nil
}
