package rules

import (
	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

var (
	goTodoTag   = regexp2.MustCompile(`(TODO|FIXME|XXX|HACK)`, regexp2.IgnoreCase)
	goFuncName  = regexp2.MustCompile(`func\s+([A-Za-z_][A-Za-z0-9_]*)`, regexp2.None)
	goImportArg = regexp2.MustCompile(`"([^"]+)"`, regexp2.None)

	goTable = mustTable(Table{
		Language:       lang.Go,
		Rules:          goRules(),
		CommentMarkers: cStyleComments,
		ImportBlock:    pattern(`import\s*\(\s*([\s\S]*?)\s*\)`, regexp2.None),
	})
)

func goRules() []Rule {
	return []Rule{
		{
			ID:         "no-fmt-print",
			Pattern:    pattern(`fmt\.(Println|Printf|Print|Sprintf)\s*\(`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    callee("%s call found"),
			Suggestion: "Use a structured logger such as log/slog in production code",
		},
		{
			ID:         "no-panic",
			Pattern:    pattern(`\bpanic\s*\(`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("panic() call found"),
			Suggestion: "Return an error instead of panicking",
		},
		{
			ID:         "no-ignored-error",
			Pattern:    pattern(`,\s*_\s*:?=\s*\w+\s*\([^)]*\)`, regexp2.None),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("returned error is discarded"),
			Suggestion: "Handle the error instead of assigning it to _",
		},
		{
			ID:         "no-empty-error-handling",
			Pattern:    pattern(`if\s+err\s*!=\s*nil\s*\{\s*\}`, regexp2.None),
			Severity:   report.SeverityError,
			Category:   report.CategoryLogic,
			Message:    fixed("empty error handling block"),
			Suggestion: "Return, wrap or log the error",
		},
		{
			ID:         "prefer-literal",
			Pattern:    pattern(`new\s*\(\s*[A-Z][a-zA-Z0-9]*\s*\)`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("new() used for a struct type"),
			Suggestion: "Use a composite literal such as &T{}",
		},
		{
			ID:         "no-todo",
			Pattern:    pattern(`//\s*(TODO|FIXME|XXX|HACK):`, regexp2.IgnoreCase),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    upperGroup(goTodoTag, 1, "%s comment found"),
			Suggestion: "Resolve the comment or track it in an issue",
		},
		{
			ID:         "hardcoded-secret",
			Pattern:    pattern(`(?:password|passwd|secret|apiKey|token)\s*:?=\s*"[^"]+"`, regexp2.IgnoreCase),
			Severity:   report.SeverityError,
			Category:   report.CategorySecurity,
			Message:    fixed("possible hardcoded secret"),
			Suggestion: "Load secrets from the environment or a secret manager",
		},
		{
			ID:         "exported-function-comment",
			Pattern:    pattern(`^func\s+([A-Z][a-zA-Z0-9]*)\s*\(`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    group(goFuncName, 1, "exported function %s has no doc comment"),
			Suggestion: "Add a comment starting with the function name",
			Predicate:  RequiresPrecedingComment,
		},
		{
			ID:         "uninitialized-map",
			Pattern:    pattern(`var\s+\w+\s+map\[[^\]]+\][^=\n]*$`, regexp2.Multiline),
			Severity:   report.SeverityWarning,
			Category:   report.CategoryLogic,
			Message:    fixed("map declared without initialization"),
			Suggestion: "Initialize with make(map[K]V) or a literal before writing to it",
		},
		{
			ID:         "line-too-long",
			Pattern:    pattern(`^.{120,}$`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("line is longer than 120 characters"),
			Suggestion: "Break the line up",
		},
		{
			ID:         "empty-struct",
			Pattern:    pattern(`type\s+\w+\s+struct\s*\{\s*\}`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("empty struct type"),
			Suggestion: "Use struct{} directly unless the named type carries methods",
		},
		{
			ID:         "no-magic-numbers",
			Pattern:    pattern(`(?:return|[=<>+\-*/%])\s*([2-9]\d{2,}|\d{4,})(?![a-zA-Z_0-9])`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    number("magic number %s"),
			Suggestion: "Extract the number into a named constant",
		},
		{
			ID:         "init-function",
			Pattern:    pattern(`^func\s+init\s*\(\s*\)`, regexp2.Multiline),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    fixed("init function found"),
			Suggestion: "Prefer explicit initialization over init()",
		},
		{
			ID:         "unused-import",
			Pattern:    pattern(`"([a-zA-Z0-9_/.-]+)"`, regexp2.None),
			Severity:   report.SeverityInfo,
			Category:   report.CategoryStyle,
			Message:    group(goImportArg, 1, "package %q may be unused"),
			Suggestion: "Remove the unused import",
			Predicate:  RequiresImportBlockMembership,
		},
	}
}
