package pdfdoc

import (
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ComplianceError reports that the saved PDF could not be validated or
// optimized. The overlaid file is still usable.
type ComplianceError struct {
	Stage string
	Err   error
}

func (e *ComplianceError) Error() string {
	return fmt.Sprintf("compliance %s: %v", e.Stage, e.Err)
}

func (e *ComplianceError) Unwrap() error { return e.Err }

// BestEffortCompliance validates the written file and rewrites it in
// optimized form. Failures are reported but never undo the save.
func BestEffortCompliance(path string, logger *slog.Logger) error {
	conf := model.NewDefaultConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return &ComplianceError{Stage: "validation", Err: err}
	}
	if err := api.OptimizeFile(path, "", conf); err != nil {
		return &ComplianceError{Stage: "optimization", Err: err}
	}
	logger.Debug("output validated and optimized", "path", path)
	return nil
}
