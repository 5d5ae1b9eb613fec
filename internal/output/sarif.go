package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"

	"github.com/chris-regnier/quill/internal/sarif"
)

// SARIFFormatter renders analysis output as a SARIF 2.1.0 JSON document
// enriched with GitHub Code Scanning properties (security-severity, precision,
// partial fingerprints, and invocation metadata).
type SARIFFormatter struct {
	// Version is written as the driver version.
	Version string
}

// Format enriches the SARIF log in-place and serializes it as indented JSON
// with a trailing newline.
func (f *SARIFFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("sarif formatter: result is required")
	}

	log := result.SARIFLog
	if log == nil {
		log = buildLog(result, f.Version)
	}

	for i := range log.Runs {
		enrichRun(&log.Runs[i])
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sarif formatter: %w", err)
	}
	return append(data, '\n'), nil
}

func buildLog(result *AnalysisOutput, version string) *sarif.Log {
	a := sarif.NewAssembler().WithTool(sarif.ToolName, version).AddRules(result.Rules)
	for _, f := range result.Files {
		a.AddReport(f.Path, f.Report)
	}
	return a.Build()
}

// enrichRun applies GitHub Code Scanning enrichments to a single run.
func enrichRun(run *sarif.Run) {
	if len(run.Invocations) == 0 {
		wd, _ := os.Getwd()
		run.Invocations = []sarif.Invocation{{
			WorkingDirectory:    sarif.ArtifactLocation{URI: wd},
			ExecutionSuccessful: true,
		}}
	}
	for j := range run.Results {
		enrichResult(&run.Results[j])
	}
}

// enrichResult adds the line hash fingerprint, security-severity and
// precision to a single SARIF result.
func enrichResult(r *sarif.Result) {
	if r.PartialFingerprints == nil {
		r.PartialFingerprints = make(map[string]string)
	}
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}

	uri := ""
	startLine := 0
	if len(r.Locations) > 0 {
		loc := r.Locations[0]
		uri = loc.PhysicalLocation.ArtifactLocation.URI
		startLine = loc.PhysicalLocation.Region.StartLine
	}

	fingerprintInput := fmt.Sprintf("%s|%s|%d|%s", r.RuleID, uri, startLine, r.Message.Text)
	hash := sha256.Sum256([]byte(fingerprintInput))
	r.PartialFingerprints["primaryLocationLineHash"] = fmt.Sprintf("%x", hash[:16])

	r.Properties["security-severity"] = securitySeverity(r.Level)

	category, _ := r.Properties["quill/category"].(string)
	r.Properties["precision"] = categoryPrecision(category)
}

// securitySeverity maps SARIF levels to GitHub Code Scanning security-severity scores.
func securitySeverity(level string) string {
	switch level {
	case "error":
		return "8.0"
	case "warning":
		return "5.0"
	default:
		return "2.0"
	}
}

// categoryPrecision maps issue categories to GitHub Code Scanning precision
// values. Naming and syntax checks match exact text; the rest are heuristics.
func categoryPrecision(category string) string {
	switch category {
	case "naming", "syntax":
		return "very-high"
	case "security", "logic":
		return "medium"
	default:
		return "high"
	}
}
