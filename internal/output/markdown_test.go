package output

import (
	"strings"
	"testing"
)

func formatMarkdown(t *testing.T, result *AnalysisOutput) string {
	t.Helper()
	out, err := (&MarkdownFormatter{}).Format(result)
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	return string(out)
}

func TestMarkdownFormatter_NilResult(t *testing.T) {
	if _, err := (&MarkdownFormatter{}).Format(nil); err == nil {
		t.Fatal("expected error for nil result")
	}
}

func TestMarkdownFormatter_HasSummaryHeader(t *testing.T) {
	out := formatMarkdown(t, testOutput())
	if !strings.HasPrefix(out, "## Quill Review Summary\n") {
		t.Errorf("expected summary header, got:\n%s", out)
	}
	if !strings.Contains(out, "**Findings:** 4 | **Files:** 2") {
		t.Errorf("expected findings and file counts, got:\n%s", out)
	}
}

func TestMarkdownFormatter_DecisionBanner(t *testing.T) {
	tests := []struct {
		decision string
		want     string
	}{
		{"pass", ":white_check_mark: Pass"},
		{"review", ":warning: Review Required"},
		{"fail", ":x: Fail"},
		{"custom", "custom"},
	}
	for _, tc := range tests {
		t.Run(tc.decision, func(t *testing.T) {
			result := testOutput()
			result.Verdict.Decision = tc.decision
			out := formatMarkdown(t, result)
			if !strings.Contains(out, "**Decision:** "+tc.want) {
				t.Errorf("expected banner %q, got:\n%s", tc.want, out)
			}
		})
	}
}

func TestMarkdownFormatter_NoDecisionWithoutVerdict(t *testing.T) {
	result := testOutput()
	result.Verdict = nil
	out := formatMarkdown(t, result)
	if strings.Contains(out, "**Decision:**") {
		t.Errorf("expected no decision banner, got:\n%s", out)
	}
}

func TestMarkdownFormatter_HasSeverityTable(t *testing.T) {
	out := formatMarkdown(t, testOutput())
	for _, row := range []string{"| error | 1 |", "| warning | 1 |", "| info | 1 |", "| hint | 1 |"} {
		if !strings.Contains(out, row) {
			t.Errorf("expected severity row %q, got:\n%s", row, out)
		}
	}
}

func TestMarkdownFormatter_HasCollapsibleFindings(t *testing.T) {
	out := formatMarkdown(t, testOutput())
	if n := strings.Count(out, "<details>"); n != 4 {
		t.Errorf("expected 4 <details> blocks, got %d", n)
	}
	if !strings.Contains(out, "<code>web/app.js:2:16</code>") {
		t.Errorf("expected finding location, got:\n%s", out)
	}
	if !strings.Contains(out, "**Suggestion:** Replace var with let or const") {
		t.Errorf("expected suggestion, got:\n%s", out)
	}
	if !strings.Contains(out, "**Fix:** rename to `myValue`") {
		t.Errorf("expected rename fix, got:\n%s", out)
	}
}

func TestMarkdownFormatter_SortsBySeverity(t *testing.T) {
	out := formatMarkdown(t, testOutput())
	order := []string{":red_circle:", ":warning: <strong>", ":information_source:", ":bulb:"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		if idx < 0 {
			t.Fatalf("missing %q in output", marker)
		}
		if idx < last {
			t.Errorf("%q appears out of severity order", marker)
		}
		last = idx
	}
}

func TestMarkdownFormatter_NoFindings(t *testing.T) {
	out := formatMarkdown(t, cleanOutput())
	if !strings.Contains(out, "No findings detected.") {
		t.Errorf("expected no-findings message, got:\n%s", out)
	}
	if strings.Contains(out, "| Severity |") {
		t.Error("expected no severity table without findings")
	}
	if !strings.Contains(out, ":white_check_mark: Pass") {
		t.Errorf("expected pass banner, got:\n%s", out)
	}
}

func TestMarkdownFormatter_HasFooter(t *testing.T) {
	out := formatMarkdown(t, cleanOutput())
	if !strings.HasSuffix(out, "*Generated by [Quill](https://github.com/chris-regnier/quill)*\n") {
		t.Errorf("expected footer, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate kept = %q", got)
	}
	if got := truncate("ééééééééééé", 8); got != "ééééé..." {
		t.Errorf("truncate by runes = %q", got)
	}
}
