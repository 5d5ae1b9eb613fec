// Package review is the interactive terminal browser over review reports.
package review

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/output"
	"github.com/chris-regnier/quill/internal/report"
)

// Pane represents which pane is currently active
type Pane int

const (
	PaneFiles Pane = iota
	PaneCode
	PaneDetails
)

// Filter represents the severity filter
type Filter int

const (
	FilterAll Filter = iota
	FilterErrors
	FilterWarnings
)

func (f Filter) String() string {
	switch f {
	case FilterErrors:
		return "errors"
	case FilterWarnings:
		return "warnings+"
	default:
		return "all"
	}
}

// Finding is one issue together with the file it was found in.
type Finding struct {
	Path     string
	Language lang.Language
	Source   string
	Issue    report.Issue
}

// ID identifies a finding across sessions.
func (f Finding) ID() string {
	return fmt.Sprintf("%s:%s:%d:%d", f.Issue.Rule, f.Path, f.Issue.Line, f.Issue.Column)
}

// ReviewModel is the bubbletea model for the review TUI
type ReviewModel struct {
	paths    []string
	findings []Finding

	currentFinding int
	activePane     Pane
	filter         Filter
	category       report.Category // "" shows every category

	accepted map[string]bool
	rejected map[string]bool
	comments map[string]string

	keys      keyMap
	help      help.Model
	comment   textinput.Model
	editing   bool
	statePath string
	reportID  string

	width  int
	height int
}

// NewReviewModel creates a new ReviewModel over the given file reports.
// Findings keep the order of files and of issues within each report.
func NewReviewModel(files []output.FileReport) *ReviewModel {
	ti := textinput.New()
	ti.Placeholder = "Comment on this finding..."
	ti.CharLimit = 280

	m := &ReviewModel{
		activePane: PaneFiles,
		filter:     FilterAll,
		accepted:   make(map[string]bool),
		rejected:   make(map[string]bool),
		comments:   make(map[string]string),
		keys:       defaultKeyMap(),
		help:       help.New(),
		comment:    ti,
	}

	for _, f := range files {
		if f.Report == nil {
			continue
		}
		m.paths = append(m.paths, f.Path)
		for _, issue := range f.Report.Issues {
			m.findings = append(m.findings, Finding{
				Path:     f.Path,
				Language: f.Report.Language,
				Source:   f.Source,
				Issue:    issue,
			})
		}
	}
	return m
}

// WithState persists accept/reject/comment decisions to path on quit,
// tagged with reportID.
func (m *ReviewModel) WithState(path, reportID string) *ReviewModel {
	m.statePath = path
	m.reportID = reportID
	return m
}

// current returns the selected finding of the filtered list.
func (m *ReviewModel) current() (Finding, bool) {
	filtered := m.getFilteredFindings()
	if m.currentFinding < 0 || m.currentFinding >= len(filtered) {
		return Finding{}, false
	}
	return filtered[m.currentFinding], true
}
