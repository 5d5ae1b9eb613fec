package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/chris-regnier/quill/internal/report"
)

// MarkdownFormatter renders analysis output as GitHub-Flavored Markdown
// suitable for PR comments. Uses collapsible <details> sections for findings
// and severity emojis for quick visual scanning.
type MarkdownFormatter struct{}

// severityEmoji returns the GitHub emoji shortcode for a severity.
func severityEmoji(sev report.Severity) string {
	switch sev {
	case report.SeverityError:
		return ":red_circle:"
	case report.SeverityWarning:
		return ":warning:"
	case report.SeverityInfo:
		return ":information_source:"
	default:
		return ":bulb:"
	}
}

// decisionBanner returns the emoji + text for a verdict decision.
func decisionBanner(decision string) string {
	switch decision {
	case "pass":
		return ":white_check_mark: Pass"
	case "fail":
		return ":x: Fail"
	case "review":
		return ":warning: Review Required"
	default:
		return decision
	}
}

type located struct {
	path  string
	issue report.Issue
}

// Format produces GFM Markdown output from the analysis results.
func (f *MarkdownFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("markdown formatter: result is required")
	}

	var b strings.Builder

	var findings []located
	for _, file := range result.Files {
		if file.Report == nil {
			continue
		}
		for _, issue := range file.Report.Issues {
			findings = append(findings, located{path: file.Path, issue: issue})
		}
	}
	summary := result.Summary()

	b.WriteString("## Quill Review Summary\n\n")

	if result.Verdict != nil {
		fmt.Fprintf(&b, "**Decision:** %s | ", decisionBanner(result.Verdict.Decision))
	}
	fmt.Fprintf(&b, "**Findings:** %d | **Files:** %d\n", len(findings), len(result.Files))

	if len(findings) == 0 {
		b.WriteString("\nNo findings detected.\n")
	} else {
		b.WriteString("\n### Findings by Severity\n")
		b.WriteString("| Severity | Count |\n")
		b.WriteString("|----------|-------|\n")
		for _, sev := range report.Severities() {
			if n := summary.Count(sev); n > 0 {
				fmt.Fprintf(&b, "| %s | %d |\n", sev, n)
			}
		}

		// Severity first, then file, then position.
		slices.SortStableFunc(findings, func(x, y located) int {
			return cmp.Or(
				cmp.Compare(x.issue.Severity.Rank(), y.issue.Severity.Rank()),
				cmp.Compare(x.path, y.path),
				cmp.Compare(x.issue.Line, y.issue.Line),
				cmp.Compare(x.issue.Column, y.issue.Column),
			)
		})

		b.WriteString("\n### Findings\n\n")
		for _, l := range findings {
			writeFinding(&b, l)
		}
	}

	b.WriteString("---\n")
	b.WriteString("*Generated by [Quill](https://github.com/chris-regnier/quill)*\n")

	return []byte(b.String()), nil
}

func writeFinding(b *strings.Builder, l located) {
	issue := l.issue
	location := fmt.Sprintf("%d:%d", issue.Line, issue.Column)
	if l.path != "" {
		location = l.path + ":" + location
	}

	b.WriteString("<details>\n")
	fmt.Fprintf(b, "<summary>%s <strong>%s</strong> %s: %s in <code>%s</code></summary>\n\n",
		severityEmoji(issue.Severity), issue.Severity, issue.Rule, truncate(issue.Message, 80), location)

	fmt.Fprintf(b, "**Rule:** %s\n", issue.Rule)
	fmt.Fprintf(b, "**Category:** %s\n", issue.Category)
	fmt.Fprintf(b, "**Location:** `%s`\n", location)
	fmt.Fprintf(b, "\n> %s\n", issue.Message)

	if issue.Suggestion != "" {
		fmt.Fprintf(b, "\n**Suggestion:** %s\n", issue.Suggestion)
	}
	if issue.FixedCode != "" {
		fmt.Fprintf(b, "\n**Fix:** rename to `%s`\n", issue.FixedCode)
	}
	b.WriteString("\n</details>\n\n")
}

// truncate shortens a string to maxLen runes, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
