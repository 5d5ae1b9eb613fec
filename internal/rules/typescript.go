package rules

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

// TypeScript is checked with every JavaScript rule plus its own.
var typescriptTable = mustTable(Table{
	Language:       lang.TypeScript,
	Rules:          append(javascriptRules(), typescriptRules()...),
	CommentMarkers: cStyleComments,
})

func typescriptRules() []Rule {
	return []Rule{
		{
			ID:         "no-explicit-any",
			Pattern:    pattern(`:\s*any\b`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("explicit any type"),
			Suggestion: "Use a concrete type or unknown",
		},
		{
			ID:         "no-non-null-assertion",
			Pattern:    pattern(`!\.`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("non-null assertion"),
			Suggestion: "Use optional chaining (?.) or an explicit check",
		},
		{
			ID:         "no-ts-ignore",
			Pattern:    pattern(`@ts-ignore`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("@ts-ignore suppresses type checking"),
			Suggestion: "Fix the type error or use @ts-expect-error with a reason",
		},
		{
			ID:         "no-as-any",
			Pattern:    pattern(`as\s+any\b`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("type assertion to any"),
			Suggestion: "Assert to a concrete type instead",
		},
	}
}
