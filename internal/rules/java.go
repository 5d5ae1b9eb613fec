package rules

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

var (
	javaTodoTag   = regexp2.MustCompile(`(TODO|FIXME|XXX|HACK)`, regexp2.IgnoreCase)
	javaWrapper   = regexp2.MustCompile(`new\s+(\w+)`, regexp2.None)
	javaImportArg = regexp2.MustCompile(`import\s+([\w.]+)`, regexp2.None)

	javaTable = mustTable(Table{
		Language:       lang.Java,
		Rules:          javaRules(),
		CommentMarkers: cStyleComments,
	})
)

func javaRules() []Rule {
	return []Rule{
		{
			ID:         "no-sysout",
			Pattern:    pattern(`System\.(out|err)\.(println|print|printf)\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    callee("%s call found"),
			Suggestion: "Use a logging framework such as SLF4J",
		},
		{
			ID:         "no-printstacktrace",
			Pattern:    pattern(`\.printStackTrace\s*\(\s*\)`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("printStackTrace() call found"),
			Suggestion: "Log the exception with a logging framework",
		},
		{
			ID:         "no-empty-catch",
			Pattern:    pattern(`catch\s*\([^)]+\)\s*\{\s*\}`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategoryLogic,
			Message:    fixed("empty catch block"),
			Suggestion: "Handle or log the exception",
		},
		{
			ID:         "string-comparison",
			Pattern:    pattern(`String\s+\w+[^;]*==\s*"[^"]*"`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategoryLogic,
			Message:    fixed("string compared with =="),
			Suggestion: "Compare strings with equals()",
		},
		{
			ID:         "no-magic-numbers",
			Pattern:    pattern(`(?:return|[=<>+\-*/%])\s*([2-9]\d{2,}|\d{4,})(?![a-zA-Z_0-9LlFfDd])`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    number("magic number %s"),
			Suggestion: "Extract the number into a named constant",
		},
		{
			ID:         "missing-override",
			Pattern:    pattern(`(?<!@Override\s*\n\s*)public\s+\w+\s+(equals|hashCode|toString|clone|compareTo)\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("overriding method is missing @Override"),
			Suggestion: "Annotate the method with @Override",
		},
		{
			ID:         "avoid-new-string",
			Pattern:    pattern(`new\s+String\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryPerformance,
			Message:    fixed("new String() allocates a redundant object"),
			Suggestion: "Use the string literal directly",
		},
		{
			ID:         "avoid-new-wrapper",
			Pattern:    pattern(`new\s+(Boolean|Integer|Long|Double|Float|Short|Byte|Character)\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryPerformance,
			Message:    group(javaWrapper, 1, "new %s() allocates a wrapper object"),
			Suggestion: "Use valueOf() or autoboxing",
		},
		{
			ID:         "no-todo",
			Pattern:    pattern(`//\s*(TODO|FIXME|XXX|HACK):`, regexp2.IgnoreCase),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    upperGroup(javaTodoTag, 1, "%s comment found"),
			Suggestion: "Resolve the comment or track it in an issue",
		},
		{
			ID:         "hardcoded-secret",
			Pattern:    pattern(`(?:password|passwd|pwd|secret|apiKey)\s*=\s*"[^"]+"`, regexp2.IgnoreCase),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("possible hardcoded secret"),
			Suggestion: "Load secrets from configuration or a secret manager",
		},
		{
			ID:         "unused-import",
			Pattern:    pattern(`^import\s+([\w.]+);?\s*$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    group(javaImportArg, 1, "import %s may be unused"),
			Suggestion: "Remove the unused import",
			Predicate:  RequiresSingleUsage,
		},
		{
			ID:         "no-public-field",
			Pattern:    pattern(`public\s+(?!static\s+final|class|interface|enum|abstract)[A-Za-z<>\[\]]+\s+[a-z][a-zA-Z0-9]*\s*[;=]`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("public mutable field"),
			Suggestion: "Make the field private and add accessors",
		},
		{
			ID:         "too-many-parameters",
			Pattern:    pattern(`\((?:[^),]*,){5}[^)]+\)`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryStyle,
			Message:    fixed("more than five parameters"),
			Suggestion: "Group the parameters into an object or use a builder",
		},
		{
			ID:         "catch-generic-exception",
			Pattern:    pattern(`catch\s*\(\s*Exception\s+\w+\s*\)`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("catching generic Exception"),
			Suggestion: "Catch the specific exception types you expect",
		},
	}
}
