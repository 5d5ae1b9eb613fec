package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

var (
	fileStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	positionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(8)
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Italic(true)
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	severityStyles = map[report.Severity]lipgloss.Style{
		report.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		report.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		report.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		report.SeverityHint:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}

	decisionStyles = map[string]lipgloss.Style{
		"pass":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		"review": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		"fail":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// PrettyFormatter renders analysis output as colored, human-readable
// terminal output grouped by file. With Color set, the offending source
// line is syntax highlighted.
type PrettyFormatter struct {
	Color bool
}

// Format produces pretty terminal output.
func (f *PrettyFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("pretty formatter: result is required")
	}

	var b strings.Builder
	for _, file := range result.Files {
		if file.Report == nil {
			continue
		}
		f.writeFile(&b, file)
	}

	s := result.Summary()
	if s.Total == 0 {
		b.WriteString(cleanStyle.Render("No issues found."))
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "%s, %s, %s, %s\n",
			severityStyles[report.SeverityError].Render(plural(s.Errors, "error")),
			severityStyles[report.SeverityWarning].Render(plural(s.Warnings, "warning")),
			severityStyles[report.SeverityInfo].Render(plural(s.Infos, "info")),
			severityStyles[report.SeverityHint].Render(plural(s.Hints, "hint")),
		)
	}

	if v := result.Verdict; v != nil {
		style, ok := decisionStyles[v.Decision]
		if !ok {
			style = lipgloss.NewStyle().Bold(true)
		}
		fmt.Fprintf(&b, "Decision: %s (%s)\n", style.Render(strings.ToUpper(v.Decision)), v.Reason)
	}

	return []byte(b.String()), nil
}

func (f *PrettyFormatter) writeFile(b *strings.Builder, file FileReport) {
	rep := file.Report
	name := file.Path
	if name == "" {
		name = "<stdin>"
	}
	fmt.Fprintf(b, "%s %s\n", fileStyle.Render(name),
		ruleStyle.Render(fmt.Sprintf("(%s, %d lines)", rep.Language.Label(), rep.CodeLines)))

	if len(rep.Issues) == 0 {
		b.WriteString("  " + cleanStyle.Render("clean") + "\n\n")
		return
	}

	for _, issue := range rep.Issues {
		sev := severityStyles[issue.Severity].Width(8).Render(string(issue.Severity))
		fmt.Fprintf(b, "  %s %s %s %s\n",
			positionStyle.Render(fmt.Sprintf("%d:%d", issue.Line, issue.Column)),
			sev, issue.Message, ruleStyle.Render(issue.Rule))

		if line := SourceLine(file.Source, issue.Line); strings.TrimSpace(line) != "" {
			fmt.Fprintf(b, "  %s %s\n", gutterStyle.Render(fmt.Sprintf("%8s", "│")), f.code(line, rep.Language))
		}
		if issue.Suggestion != "" {
			fmt.Fprintf(b, "  %8s %s\n", "", hintStyle.Render("suggestion: "+issue.Suggestion))
		}
	}
	b.WriteString("\n")
}

func (f *PrettyFormatter) code(line string, language lang.Language) string {
	line = strings.TrimLeft(line, " \t")
	if !f.Color {
		return line
	}
	highlighted, err := HighlightLine(line, language)
	if err != nil {
		return line
	}
	return highlighted
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
