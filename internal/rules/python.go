package rules

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

var (
	pyBoolLiteral = regexp2.MustCompile(`(True|False)`, regexp2.None)
	pyTodoTag     = regexp2.MustCompile(`(TODO|FIXME|XXX|HACK)`, regexp2.IgnoreCase)

	pythonTable = mustTable(Table{
		Language:       lang.Python,
		Rules:          pythonRules(),
		CommentMarkers: []string{"#"},
	})
)

func pythonRules() []Rule {
	return []Rule{
		{
			ID:         "no-print",
			Pattern:    pattern(`\bprint\s*\(`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("print() call found"),
			Suggestion: "Use the logging module in production code",
		},
		{
			ID:         "simplify-boolean",
			Pattern:    pattern(`==\s*(True|False)\b`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    group(pyBoolLiteral, 1, "comparison to %s"),
			Suggestion: "Use the value directly or negate it with not",
		},
		{
			ID:         "use-is-none",
			Pattern:    pattern(`==\s*None\b`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("comparison to None with =="),
			Suggestion: "Use is None",
		},
		{
			ID:         "use-is-not-none",
			Pattern:    pattern(`!=\s*None\b`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("comparison to None with !="),
			Suggestion: "Use is not None",
		},
		{
			ID:         "bare-except",
			Pattern:    pattern(`except\s*:`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("bare except clause"),
			Suggestion: "Catch a specific exception type such as except ValueError:",
		},
		{
			ID:         "no-eval",
			Pattern:    pattern(`\beval\s*\(`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("eval() call found"),
			Suggestion: "eval executes arbitrary code; use ast.literal_eval for literals",
		},
		{
			ID:         "no-exec",
			Pattern:    pattern(`\bexec\s*\(`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("exec() call found"),
			Suggestion: "exec executes arbitrary code; remove it",
		},
		{
			ID:         "line-too-long",
			Pattern:    pattern(`^.{80,}$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("line is longer than 79 characters"),
			Suggestion: "Keep lines under 80 characters",
		},
		{
			ID:         "no-wildcard-import",
			Pattern:    pattern(`from\s+\S+\s+import\s+\*`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("wildcard import"),
			Suggestion: "Import the names you use explicitly",
		},
		{
			ID:         "mutable-default-argument",
			Pattern:    pattern(`def\s+\w+\s*\([^)]*=\s*(\[\]|\{\})`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategoryLogic,
			Message:    fixed("mutable default argument"),
			Suggestion: "Default to None and create the value inside the function",
		},
		{
			ID:         "missing-self",
			Pattern:    pattern(`def\s+\w+\s*\(\s*\)\s*:`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategorySyntax,
			Message:    fixed("function takes no parameters; methods need self"),
			Suggestion: "Add self for instance methods or mark it @staticmethod",
		},
		{
			ID:         "no-todo",
			Pattern:    pattern(`#\s*(TODO|FIXME|XXX|HACK):`, regexp2.IgnoreCase),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    upperGroup(pyTodoTag, 1, "%s comment found"),
			Suggestion: "Resolve the comment or track it in an issue",
		},
		{
			ID:         "no-pass",
			Pattern:    pattern(`^[ \t]*pass[ \t]*$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("pass statement"),
			Suggestion: "Implement the block or explain why it is empty",
		},
		{
			ID:         "hardcoded-secret",
			Pattern:    pattern(`(?:password|passwd|pwd|secret|api_key|apikey)\s*=\s*['"]\w+['"]`, regexp2.IgnoreCase),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("possible hardcoded secret"),
			Suggestion: "Load secrets from the environment or a secret manager",
		},
		{
			ID:         "empty-block",
			Pattern:    pattern(`(?:if|for|while)\s+[^:]+:\s*\n\s*(?:pass|\.\.\.)\s*$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("empty block"),
			Suggestion: "Implement the block or remove it",
		},
		{
			// Leading whitespace of one line mixes tabs and spaces.
			ID:         "mixed-indentation",
			Pattern:    pattern(`^(?=[ ]*\t)(?=\t*[ ])[\t ]+`, regexp2.Multiline),
			Severity:   report.SeverityError,
			Category:   report.CategoryStyle,
			Message:    fixed("line mixes tabs and spaces in its indentation"),
			Suggestion: "Indent with spaces only (4 per level)",
		},
		{
			// Some line indents with a tab and some line with a space.
			// Reported once, at the start of the text.
			ID:         "inconsistent-indentation",
			Pattern:    pattern(`\A(?=[\s\S]*?^[ ]*\t)(?=[\s\S]*?^\t*[ ])`, regexp2.Multiline),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("file indents with both tabs and spaces"),
			Suggestion: "Indent with spaces only (4 per level)",
		},
	}
}
