package overlay

import (
	"errors"
	"fmt"
)

// ErrNoOCRData is returned when no usable OCR data exists for the run.
var ErrNoOCRData = errors.New("no OCR data available to overlay")

// GeometryError reports zero/negative dimensions or zero scale factors.
// Entry-local occurrences are skipped; a page-level occurrence with no
// remaining fallback is fatal.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "invalid geometry: " + e.Reason
}

// ConfigError reports malformed configuration input (alignment strings,
// setting values). Always fatal, raised before any processing.
type ConfigError struct {
	Option string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Option, e.Reason)
}

// CapabilityError reports a required external engine or library being
// unavailable, with an actionable remedy.
type CapabilityError struct {
	Capability string
	Remedy     string
	Err        error
}

func (e *CapabilityError) Error() string {
	msg := e.Capability + " is unavailable"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Remedy != "" {
		msg += " (" + e.Remedy + ")"
	}
	return msg
}

func (e *CapabilityError) Unwrap() error { return e.Err }
