// Package output provides formatters for rendering quill review results
// in different output formats (JSON, SARIF, Markdown, pretty terminal).
package output

import (
	"fmt"

	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/sarif"
	"github.com/chris-regnier/quill/internal/store"
)

// Formatter renders an AnalysisOutput into a byte slice in a specific format.
type Formatter interface {
	Format(result *AnalysisOutput) ([]byte, error)
}

// FileReport is the report of one reviewed input. Source is kept for
// formatters that quote the offending line.
type FileReport struct {
	Path   string         `json:"path"`
	Source string         `json:"-"`
	Report *report.Report `json:"report"`
}

// AnalysisOutput holds the complete results of a quill review run.
type AnalysisOutput struct {
	Files   []FileReport
	Verdict *store.Verdict // optional, nil unless the gate ran

	// SARIFLog is optional; the SARIF formatter builds one from Files when nil.
	SARIFLog *sarif.Log
	Rules    []sarif.ReportingDescriptor
}

// Summary adds up the summaries of every file.
func (o *AnalysisOutput) Summary() report.Summary {
	var s report.Summary
	for _, f := range o.Files {
		if f.Report == nil {
			continue
		}
		s.Errors += f.Report.Summary.Errors
		s.Warnings += f.Report.Summary.Warnings
		s.Infos += f.Report.Summary.Infos
		s.Hints += f.Report.Summary.Hints
		s.Total += f.Report.Summary.Total
	}
	return s
}

// ResolveFormat determines the output format to use. If flagValue is non-empty,
// it is returned directly. Otherwise, "pretty" is returned for TTY output and
// "json" for non-TTY (piped) output.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "pretty"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "json", "sarif", "markdown", "pretty".
// Returns an error for unknown format names.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "pretty":
		return &PrettyFormatter{Color: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, sarif, markdown, pretty)", format)
	}
}
