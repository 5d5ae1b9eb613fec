package rules

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

var (
	jsDeclName = regexp2.MustCompile(`(?:const|let|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)`, regexp2.None)

	javascriptTable = mustTable(Table{
		Language:       lang.JavaScript,
		Rules:          javascriptRules(),
		CommentMarkers: cStyleComments,
	})
)

var cStyleComments = []string{"//", "/*", "*"}

func javascriptRules() []Rule {
	return []Rule{
		{
			ID:         "no-console",
			Pattern:    pattern(`console\.(log|warn|error|info|debug)\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    callee("%s call left in code"),
			Suggestion: "Remove console output from production code or use a logging library",
		},
		{
			ID:         "no-debugger",
			Pattern:    pattern(`\bdebugger\b`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategoryStyle,
			Message:    fixed("debugger statement found"),
			Suggestion: "Remove the debugger statement",
		},
		{
			ID:         "no-var",
			Pattern:    pattern(`\bvar\s+[a-zA-Z_$]`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("variable declared with var"),
			Suggestion: "Use let or const instead of var",
		},
		{
			ID:         "eqeqeq",
			Pattern:    pattern(`[^=!<>]==[^=]|[^=!]!=[^=]`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("loose equality comparison (== or !=)"),
			Suggestion: "Use === or !== for strict comparison",
		},
		{
			ID:         "no-magic-numbers",
			Pattern:    pattern(`(?<![a-zA-Z_$0-9])(?:return|[=<>+\-*/%&|^])\s*([2-9]\d{2,}|\d{4,})(?![a-zA-Z_$0-9])`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    number("magic number %s"),
			Suggestion: "Extract the number into a named constant",
		},
		{
			ID:         "no-alert",
			Pattern:    pattern(`\balert\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("alert() call found"),
			Suggestion: "Use a proper UI notification instead of alert",
		},
		{
			ID:         "no-eval",
			Pattern:    pattern(`\beval\s*\(`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("eval() call found"),
			Suggestion: "eval executes arbitrary code; remove it",
		},
		{
			ID:         "no-with",
			Pattern:    pattern(`\bwith\s*\(`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategorySyntax,
			Message:    fixed("with statement found"),
			Suggestion: "with is forbidden in strict mode; reference the object explicitly",
		},
		{
			ID:         "no-empty-function",
			Pattern:    pattern(`(?:function[^{]*|=>)\s*\{\s*\}`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("empty function body"),
			Suggestion: "Implement the function or add a comment explaining why it is empty",
		},
		{
			ID:         "no-duplicate-branch",
			Pattern:    pattern(`if\s*\([^)]+\)\s*\{([^{}]*)\}\s*else\s*\{\s*\1\s*\}`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("if and else branches are identical"),
			Suggestion: "Remove the condition or make the branches differ",
		},
		{
			ID:         "no-unused-vars",
			Pattern:    pattern(`(?:const|let|var)\s+([a-zA-Z_$][a-zA-Z0-9_$]*)\s*=\s*[^;]+;\s*$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    group(jsDeclName, 1, "variable %q may be unused"),
			Suggestion: "Remove the variable if it is not needed",
			Predicate:  RequiresSingleUsage,
		},
		{
			ID:         "arrow-body-style",
			Pattern:    pattern(`=>\s*\{\s*return\s+([^;{}]+);\s*\}`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("arrow function body can be an expression"),
			Suggestion: "Drop the braces and return: () => value",
		},
		{
			ID:         "no-extra-semi",
			Pattern:    pattern(`;{2,}`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("unnecessary semicolon"),
			Suggestion: "Remove the extra semicolons",
		},
		{
			ID:         "quotes",
			Pattern:    pattern(`"[^"\\]*(?:\\.[^"\\]*)*"`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("string uses double quotes"),
			Suggestion: "Use single quotes consistently",
		},
	}
}
