package output

import (
	"encoding/json"
	"fmt"

	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/store"
)

// JSONFormatter renders analysis output as indented JSON.
type JSONFormatter struct{}

type jsonOutput struct {
	Files   []FileReport   `json:"files"`
	Summary report.Summary `json:"summary"`
	Verdict *store.Verdict `json:"verdict,omitempty"`
}

// Format serializes the file reports, their combined summary and the
// verdict (if any) as pretty-printed JSON.
func (f *JSONFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("json formatter: result is required")
	}
	out := jsonOutput{
		Files:   result.Files,
		Summary: result.Summary(),
		Verdict: result.Verdict,
	}
	if out.Files == nil {
		out.Files = []FileReport{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json formatter: %w", err)
	}
	return append(data, '\n'), nil
}
