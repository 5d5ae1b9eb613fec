package lsp

import (
	"strings"
	"testing"

	"github.com/chris-regnier/quill/internal/report"
)

func TestIssueToDiagnostic(t *testing.T) {
	source := "let my_var = 1;\nconsole.log(my_var);\n"
	lines := strings.Split(source, "\n")

	issue := report.Issue{
		ID: "abc-1", Line: 1, Column: 1, EndLine: 1, EndColumn: 11,
		Message: "Variable 'my_var' should use camelCase", Severity: report.SeverityWarning,
		Category: report.CategoryNaming, Rule: "naming/variable",
		Suggestion: "myVar", FixedCode: "myVar",
		Fix: &report.Span{Line: 1, Column: 5, EndLine: 1, EndColumn: 11},
	}

	diag := IssueToDiagnostic(issue, lines)

	want := Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 10}}
	if diag.Range != want {
		t.Errorf("range = %+v, want %+v", diag.Range, want)
	}
	wantFix := Range{Start: Position{Line: 0, Character: 4}, End: Position{Line: 0, Character: 10}}
	if diag.Data == nil || diag.Data.FixRange == nil || *diag.Data.FixRange != wantFix {
		t.Errorf("fix range = %+v, want %+v", diag.Data, wantFix)
	}
	if diag.Severity != DiagnosticSeverityWarning {
		t.Errorf("severity = %d, want warning", diag.Severity)
	}
	if diag.Code != "naming/variable" || diag.Source != "quill" {
		t.Errorf("unexpected code/source %q/%q", diag.Code, diag.Source)
	}
	if diag.Data == nil || diag.Data.FixedCode != "myVar" || diag.Data.IssueID != "abc-1" || diag.Data.Category != "naming" {
		t.Errorf("unexpected data %+v", diag.Data)
	}
}

func TestIssueToDiagnostic_Severities(t *testing.T) {
	tests := []struct {
		sev  report.Severity
		want DiagnosticSeverity
	}{
		{report.SeverityError, DiagnosticSeverityError},
		{report.SeverityWarning, DiagnosticSeverityWarning},
		{report.SeverityInfo, DiagnosticSeverityInformation},
		{report.SeverityHint, DiagnosticSeverityHint},
	}
	for _, tt := range tests {
		t.Run(string(tt.sev), func(t *testing.T) {
			diag := IssueToDiagnostic(report.Issue{Line: 1, Column: 1, Severity: tt.sev}, []string{"x"})
			if diag.Severity != tt.want {
				t.Errorf("got %d, want %d", diag.Severity, tt.want)
			}
		})
	}
}

func TestToPosition(t *testing.T) {
	lines := strings.Split("héllo wörld\n😀 = x\r\nend", "\n")

	tests := []struct {
		name         string
		line, column int
		want         Position
	}{
		{"ascii start", 1, 1, Position{0, 0}},
		{"after accented rune", 1, 3, Position{0, 2}},
		{"astral rune counts as two units", 2, 3, Position{1, 3}},
		{"column past end clamps", 3, 40, Position{2, 3}},
		{"carriage return ignored", 2, 8, Position{1, 6}},
		{"line past end", 9, 2, Position{8, 1}},
		{"zero values", 0, 0, Position{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toPosition(lines, tt.line, tt.column); got != tt.want {
				t.Errorf("toPosition(%d, %d) = %+v, want %+v", tt.line, tt.column, got, tt.want)
			}
		})
	}
}

func TestIssueWithoutEnd(t *testing.T) {
	diag := IssueToDiagnostic(report.Issue{Line: 2, Column: 3}, []string{"a", "bcd"})
	if diag.Range.Start != diag.Range.End {
		t.Errorf("expected an empty range, got %+v", diag.Range)
	}
	if diag.Data.FixRange != nil {
		t.Errorf("expected no fix range, got %+v", diag.Data.FixRange)
	}
}

func TestReportToDiagnostics(t *testing.T) {
	if got := ReportToDiagnostics(nil, ""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice for nil report, got %#v", got)
	}

	rep := &report.Report{Issues: []report.Issue{
		{Line: 1, Column: 1, EndLine: 1, EndColumn: 4, Rule: "no-var", Severity: report.SeverityWarning},
		{Line: 2, Column: 1, EndLine: 2, EndColumn: 9, Rule: "no-debugger", Severity: report.SeverityError},
	}}
	diags := ReportToDiagnostics(rep, "var a;\ndebugger;\n")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[1].Range.Start.Line != 1 || diags[1].Range.End.Character != 8 {
		t.Errorf("unexpected range %+v", diags[1].Range)
	}
}
