package rules

import (
	"strings"
	"testing"

	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

func TestFor_AllLanguages(t *testing.T) {
	for _, l := range lang.All() {
		table, err := For(l)
		if err != nil {
			t.Fatalf("For(%s) error: %v", l, err)
		}
		if table.Language != l {
			t.Errorf("For(%s) returned table for %s", l, table.Language)
		}
		if len(table.Rules) < 10 {
			t.Errorf("%s: expected at least 10 rules, got %d", l, len(table.Rules))
		}
		if err := validateTable(table); err != nil {
			t.Errorf("%s: %v", l, err)
		}
	}
}

func TestFor_UnsupportedLanguage(t *testing.T) {
	if _, err := For(lang.Language("cobol")); err == nil {
		t.Fatal("expected error for unsupported language")
	}
}

func TestTypeScriptIncludesJavaScript(t *testing.T) {
	js, _ := For(lang.JavaScript)
	ts, _ := For(lang.TypeScript)

	for _, id := range js.IDs() {
		if _, ok := ts.Lookup(id); !ok {
			t.Errorf("typescript table is missing javascript rule %s", id)
		}
	}
	for _, id := range []string{"no-explicit-any", "no-non-null-assertion", "no-ts-ignore", "no-as-any"} {
		if _, ok := ts.Lookup(id); !ok {
			t.Errorf("typescript table is missing %s", id)
		}
		if _, ok := js.Lookup(id); ok {
			t.Errorf("javascript table should not contain %s", id)
		}
	}
}

func TestOnlyGoHasImportBlock(t *testing.T) {
	for _, l := range lang.All() {
		table, _ := For(l)
		if (table.ImportBlock != nil) != (l == lang.Go) {
			t.Errorf("%s: unexpected import block pattern presence", l)
		}
	}
}

func TestPatternMatching(t *testing.T) {
	tests := []struct {
		language lang.Language
		ruleID   string
		input    string
		want     bool
	}{
		{lang.JavaScript, "no-var", "var x = 1", true},
		{lang.JavaScript, "no-var", "let x = 1", false},
		{lang.JavaScript, "no-eval", "eval(code)", true},
		{lang.JavaScript, "no-eval", "evaluate(code)", false},
		{lang.JavaScript, "eqeqeq", "if (a == b) {}", true},
		{lang.JavaScript, "eqeqeq", "if (a === b) {}", false},
		{lang.JavaScript, "no-magic-numbers", "const timeout = 5000;", true},
		{lang.JavaScript, "no-magic-numbers", "const n = 10;", false},
		{lang.JavaScript, "no-duplicate-branch", "if (a) { f(); } else { f(); }", true},
		{lang.JavaScript, "no-duplicate-branch", "if (a) { f(); } else { g(); }", false},
		{lang.JavaScript, "no-extra-semi", "f();;", true},
		{lang.TypeScript, "no-explicit-any", "let a: any = 1;", true},
		{lang.TypeScript, "no-as-any", "(x as any).y", true},
		{lang.Go, "no-panic", "panic(err)", true},
		{lang.Go, "no-empty-error-handling", "if err != nil {\n}", true},
		{lang.Go, "no-todo", "// todo: later", true},
		{lang.Go, "uninitialized-map", "var m map[string]int", true},
		{lang.Go, "uninitialized-map", "var m map[string]int = make(map[string]int)", false},
		{lang.Go, "line-too-long", strings.Repeat("x", 120), true},
		{lang.Go, "line-too-long", strings.Repeat("x", 119), false},
		{lang.Python, "bare-except", "except:", true},
		{lang.Python, "bare-except", "except ValueError:", false},
		{lang.Python, "mutable-default-argument", "def f(a, b=[]):", true},
		{lang.Python, "mixed-indentation", "\t  x = 1", true},
		{lang.Python, "mixed-indentation", "    x = 1", false},
		{lang.Python, "inconsistent-indentation", "if a:\n\tb\nif c:\n    d", true},
		{lang.Python, "inconsistent-indentation", "if a:\n    b", false},
		{lang.Java, "missing-override", "public boolean equals(Object o) {", true},
		{lang.Java, "missing-override", "@Override\n    public boolean equals(Object o) {", false},
		{lang.Java, "too-many-parameters", "void f(int a, int b, int c, int d, int e, int g)", true},
		{lang.Java, "too-many-parameters", "void f(int a, int b, int c, int d, int e)", false},
		{lang.Java, "no-magic-numbers", "int x = 5000;", true},
		{lang.Java, "no-magic-numbers", "long x = 5000L;", false},
		{lang.Java, "no-public-field", "public static final int MAX = 1;", false},
		{lang.Java, "no-public-field", "public int count;", true},
	}

	for _, tc := range tests {
		t.Run(string(tc.language)+"/"+tc.ruleID, func(t *testing.T) {
			table, err := For(tc.language)
			if err != nil {
				t.Fatal(err)
			}
			r, ok := table.Lookup(tc.ruleID)
			if !ok {
				t.Fatalf("rule %s not found", tc.ruleID)
			}
			got, err := r.Pattern.MatchString(tc.input)
			if err != nil {
				t.Fatalf("match error: %v", err)
			}
			if got != tc.want {
				t.Errorf("rule %s on %q: got %v, want %v", tc.ruleID, tc.input, got, tc.want)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		language lang.Language
		ruleID   string
		match    string
		want     string
	}{
		{lang.JavaScript, "no-console", "console.log(", "console.log call left in code"},
		{lang.JavaScript, "no-magic-numbers", "= 5000", "magic number 5000"},
		{lang.JavaScript, "no-unused-vars", "const total = 1;", `variable "total" may be unused`},
		{lang.Go, "no-todo", "// fixme:", "FIXME comment found"},
		{lang.Go, "exported-function-comment", "func Handle(", "exported function Handle has no doc comment"},
		{lang.Go, "unused-import", `"net/http"`, `package "net/http" may be unused`},
		{lang.Java, "avoid-new-wrapper", "new Integer(", "new Integer() allocates a wrapper object"},
		{lang.Python, "simplify-boolean", "== True", "comparison to True"},
	}

	for _, tc := range tests {
		table, _ := For(tc.language)
		r, ok := table.Lookup(tc.ruleID)
		if !ok {
			t.Fatalf("rule %s not found", tc.ruleID)
		}
		if got := r.Message(tc.match); got != tc.want {
			t.Errorf("%s message: got %q, want %q", tc.ruleID, got, tc.want)
		}
	}
}

func TestTableWithoutAndWith(t *testing.T) {
	table, _ := For(lang.Go)
	n := len(table.Rules)

	trimmed := table.Without(map[string]bool{"no-panic": true})
	if _, ok := trimmed.Lookup("no-panic"); ok {
		t.Error("no-panic should be removed")
	}
	if len(table.Rules) != n {
		t.Error("Without must not modify the original table")
	}

	replacement := Rule{
		ID:       "no-panic",
		Pattern:  regexp2.MustCompile(`panic`, regexp2.None),
		Severity: report.SeverityError,
		Category: report.CategoryLogic,
		Message:  fixed("replaced"),
	}
	extra := Rule{
		ID:       "custom",
		Pattern:  regexp2.MustCompile(`x`, regexp2.None),
		Severity: report.SeverityHint,
		Category: report.CategoryStyle,
		Message:  fixed("custom"),
	}
	merged := table.With([]Rule{replacement, extra})
	if len(merged.Rules) != n+1 {
		t.Fatalf("expected %d rules, got %d", n+1, len(merged.Rules))
	}
	got, _ := merged.Lookup("no-panic")
	if got.Severity != report.SeverityError {
		t.Errorf("expected replaced no-panic, got severity %s", got.Severity)
	}
	orig, _ := table.Lookup("no-panic")
	if orig.Severity != report.SeverityWarning {
		t.Error("With must not modify the original table")
	}
}

func TestValidate(t *testing.T) {
	good := Rule{
		ID:       "ok",
		Pattern:  regexp2.MustCompile(`a`, regexp2.None),
		Severity: report.SeverityInfo,
		Category: report.CategoryStyle,
		Message:  fixed("m"),
	}
	if err := Validate(good); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := []func(*Rule){
		func(r *Rule) { r.ID = "" },
		func(r *Rule) { r.Pattern = nil },
		func(r *Rule) { r.Message = nil },
		func(r *Rule) { r.Severity = "fatal" },
		func(r *Rule) { r.Category = "misc" },
		func(r *Rule) { r.Predicate = Predicate(42) },
	}
	for i, mutate := range bad {
		r := good
		mutate(&r)
		if err := Validate(r); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestParsePredicate(t *testing.T) {
	for _, p := range []Predicate{PredicateNone, RequiresPrecedingComment, RequiresImportBlockMembership, RequiresSingleUsage} {
		got, err := ParsePredicate(p.String())
		if err != nil {
			t.Fatalf("ParsePredicate(%q) error: %v", p, err)
		}
		if got != p {
			t.Errorf("ParsePredicate(%q) = %v", p, got)
		}
	}
	if _, err := ParsePredicate("bogus"); err == nil {
		t.Error("expected error for unknown predicate")
	}
}
