// Package report holds the issue and report model produced by an analysis,
// and the aggregation step that turns raw findings into a Report.
package report

import "fmt"

// Severity classifies how serious an issue is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityHint    Severity = "hint"
)

// Severities returns all severities from most to least serious.
func Severities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo, SeverityHint}
}

// ParseSeverity validates a severity name.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo, SeverityHint:
		return Severity(s), nil
	default:
		return "", fmt.Errorf("invalid severity %q (expected error, warning, info or hint)", s)
	}
}

// Rank orders severities: error (0) < warning (1) < info (2) < hint (3).
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// Category is the kind of problem an issue describes.
type Category string

const (
	CategoryNaming      Category = "naming"
	CategorySyntax      Category = "syntax"
	CategoryStyle       Category = "style"
	CategoryLogic       Category = "logic"
	CategoryPerformance Category = "performance"
	CategorySecurity    Category = "security"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryNaming,
		CategorySyntax,
		CategoryStyle,
		CategoryLogic,
		CategoryPerformance,
		CategorySecurity,
	}
}

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// Span is a 1-based rune range of the analyzed text. EndColumn is
// exclusive.
type Span struct {
	Line      int `json:"line"`
	Column    int `json:"column"`
	EndLine   int `json:"end_line"`
	EndColumn int `json:"end_column"`
}

// Issue is one located finding. Line and Column are 1-based and point at
// the start of the match in the analyzed text. Fix, when set, is the
// range FixedCode replaces.
type Issue struct {
	ID         string   `json:"id"`
	Line       int      `json:"line"`
	Column     int      `json:"column"`
	EndLine    int      `json:"end_line,omitempty"`
	EndColumn  int      `json:"end_column,omitempty"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Category   Category `json:"category"`
	Rule       string   `json:"rule"`
	Suggestion string   `json:"suggestion,omitempty"`
	FixedCode  string   `json:"fixed_code,omitempty"`
	Fix        *Span    `json:"fix,omitempty"`
}
