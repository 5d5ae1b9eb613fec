package sarif

import (
	"github.com/chris-regnier/quill/internal/report"
)

// Assembler builds a single-run SARIF log from one or more reports.
type Assembler struct {
	toolName    string
	toolVersion string
	results     []Result
	rules       []ReportingDescriptor
	workDir     string
	languages   map[string]string
}

// NewAssembler creates a new Assembler with default values
func NewAssembler() *Assembler {
	return &Assembler{
		toolName:  ToolName,
		results:   []Result{},
		rules:     []ReportingDescriptor{},
		languages: make(map[string]string),
	}
}

// WithTool sets the driver name and version.
func (a *Assembler) WithTool(name, version string) *Assembler {
	a.toolName = name
	a.toolVersion = version
	return a
}

// AddReport converts the issues of rep, analyzed from the artifact at uri.
func (a *Assembler) AddReport(uri string, rep *report.Report) *Assembler {
	if rep == nil {
		return a
	}
	for _, issue := range rep.Issues {
		a.results = append(a.results, ResultFromIssue(issue, uri))
	}
	a.languages[uri] = string(rep.Language)
	return a
}

// AddResults adds SARIF results to the assembler
func (a *Assembler) AddResults(results []Result) *Assembler {
	a.results = append(a.results, results...)
	return a
}

// AddRules adds reporting descriptors (rules) to the assembler
func (a *Assembler) AddRules(rules []ReportingDescriptor) *Assembler {
	for _, r := range rules {
		if !a.hasRule(r.ID) {
			a.rules = append(a.rules, r)
		}
	}
	return a
}

func (a *Assembler) hasRule(id string) bool {
	for _, r := range a.rules {
		if r.ID == id {
			return true
		}
	}
	return false
}

// WithInvocation records the working directory of a successful run.
func (a *Assembler) WithInvocation(workDir string) *Assembler {
	a.workDir = workDir
	return a
}

// Build constructs the final SARIF log.
func (a *Assembler) Build() *Log {
	log := NewLog(a.toolName, a.toolVersion)
	run := &log.Runs[0]
	run.Tool.Driver.InformationURI = "https://github.com/chris-regnier/quill"
	run.Tool.Driver.Rules = a.rules
	run.Results = dedup(a.results)

	if a.workDir != "" {
		run.Invocations = []Invocation{{
			WorkingDirectory:    ArtifactLocation{URI: a.workDir},
			ExecutionSuccessful: true,
		}}
	}
	if len(a.languages) > 0 {
		languages := make(map[string]any, len(a.languages))
		for uri, l := range a.languages {
			languages[uri] = l
		}
		run.Properties = map[string]any{"quill/languages": languages}
	}
	return log
}

// Descriptor builds a reporting descriptor for a rule.
func Descriptor(id string, sev report.Severity, category report.Category, suggestion string) ReportingDescriptor {
	d := ReportingDescriptor{
		ID:               id,
		ShortDescription: Message{Text: id},
		DefaultConfig:    &ReportingConfiguration{Level: Level(sev)},
		Properties:       map[string]any{"tags": []string{string(category)}},
	}
	if suggestion != "" {
		d.Help = &Message{Text: suggestion}
	}
	return d
}
