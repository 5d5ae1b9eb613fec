package lsp

import (
	"strings"
	"unicode/utf16"

	"github.com/chris-regnier/quill/internal/report"
)

// DiagnosticSeverity maps to LSP severity levels
type DiagnosticSeverity int

const (
	DiagnosticSeverityError       DiagnosticSeverity = 1
	DiagnosticSeverityWarning     DiagnosticSeverity = 2
	DiagnosticSeverityInformation DiagnosticSeverity = 3
	DiagnosticSeverityHint        DiagnosticSeverity = 4
)

const diagnosticSource = "quill"

// Position is 0-based; Character counts UTF-16 code units.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// DiagnosticData carries the issue fields code actions need.
type DiagnosticData struct {
	IssueID    string `json:"issueId,omitempty"`
	Category   string `json:"category,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	FixedCode  string `json:"fixedCode,omitempty"`
	// FixRange is the text FixedCode replaces when it differs from the
	// diagnostic range.
	FixRange   *Range `json:"fixRange,omitempty"`
}

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
	Data     *DiagnosticData    `json:"data,omitempty"`
}

func severityOf(sev report.Severity) DiagnosticSeverity {
	switch sev {
	case report.SeverityError:
		return DiagnosticSeverityError
	case report.SeverityWarning:
		return DiagnosticSeverityWarning
	case report.SeverityHint:
		return DiagnosticSeverityHint
	default:
		return DiagnosticSeverityInformation
	}
}

// IssueToDiagnostic converts an issue found in source into a diagnostic.
// Issue columns count runes; the range is re-expressed in UTF-16 units.
func IssueToDiagnostic(issue report.Issue, lines []string) Diagnostic {
	start := toPosition(lines, issue.Line, issue.Column)
	end := start
	if issue.EndLine > 0 {
		end = toPosition(lines, issue.EndLine, issue.EndColumn)
	}

	diag := Diagnostic{
		Range:    Range{Start: start, End: end},
		Severity: severityOf(issue.Severity),
		Code:     issue.Rule,
		Source:   diagnosticSource,
		Message:  issue.Message,
		Data: &DiagnosticData{
			IssueID:    issue.ID,
			Category:   string(issue.Category),
			Suggestion: issue.Suggestion,
			FixedCode:  issue.FixedCode,
		},
	}
	if fix := issue.Fix; fix != nil {
		diag.Data.FixRange = &Range{
			Start: toPosition(lines, fix.Line, fix.Column),
			End:   toPosition(lines, fix.EndLine, fix.EndColumn),
		}
	}
	return diag
}

// ReportToDiagnostics converts every issue of rep. A nil report yields an
// empty, non-nil slice so clients clear stale diagnostics.
func ReportToDiagnostics(rep *report.Report, source string) []Diagnostic {
	if rep == nil {
		return []Diagnostic{}
	}
	lines := strings.Split(source, "\n")
	diagnostics := make([]Diagnostic, 0, len(rep.Issues))
	for _, issue := range rep.Issues {
		diagnostics = append(diagnostics, IssueToDiagnostic(issue, lines))
	}
	return diagnostics
}

// toPosition converts a 1-based line and rune column to an LSP position.
// Columns past the end of the line clamp to its length.
func toPosition(lines []string, line, column int) Position {
	l := max(line-1, 0)
	runes := max(column-1, 0)
	if l >= len(lines) {
		return Position{Line: l, Character: runes}
	}

	text := []rune(strings.TrimSuffix(lines[l], "\r"))
	runes = min(runes, len(text))
	return Position{Line: l, Character: len(utf16.Encode(text[:runes]))}
}
