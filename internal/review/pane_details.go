package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/quill/internal/report"
)

var (
	// Details pane styles
	detailsPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Padding(0, 1)

	severityStyles = map[report.Severity]lipgloss.Style{
		report.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		report.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		report.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		report.SeverityHint:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}

	reviewStatusAcceptedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("46")).
					Bold(true)

	reviewStatusRejectedStyle = lipgloss.NewStyle().
					Foreground(lipgloss.Color("196")).
					Bold(true)
)

// renderDetailsPane renders the finding details with markdown formatting
func (m ReviewModel) renderDetailsPane(width, height int) string {
	var b strings.Builder

	f, ok := m.current()
	if !ok {
		b.WriteString("No findings to display")
	} else {
		b.WriteString(detailsMarkdown(f, m.comments[f.ID()]))
	}

	rendered, err := renderMarkdown(b.String(), max(width-4, 20))
	if err != nil {
		rendered = b.String()
	}

	var header strings.Builder
	header.WriteString(paneHeaderStyle.Render("Details"))
	if ok {
		header.WriteString("  ")
		header.WriteString(severityStyles[f.Issue.Severity].Render(strings.ToUpper(string(f.Issue.Severity))))
		if m.accepted[f.ID()] {
			header.WriteString("  " + reviewStatusAcceptedStyle.Render("✓ Accepted"))
		} else if m.rejected[f.ID()] {
			header.WriteString("  " + reviewStatusRejectedStyle.Render("✗ Rejected"))
		}
	}

	paneStyle := detailsPaneStyle
	if m.activePane == PaneDetails {
		paneStyle = paneStyle.BorderForeground(activeBorderColor)
	}
	return paneStyle.
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Render(header.String() + "\n\n" + rendered)
}

// detailsMarkdown describes a finding as markdown.
func detailsMarkdown(f Finding, comment string) string {
	issue := f.Issue
	var b strings.Builder

	fmt.Fprintf(&b, "**Rule:** `%s` (%s)\n\n", issue.Rule, issue.Category)
	fmt.Fprintf(&b, "%s\n\n", issue.Message)
	if issue.Suggestion != "" {
		fmt.Fprintf(&b, "**Suggestion:** %s\n\n", issue.Suggestion)
	}
	if issue.FixedCode != "" {
		fmt.Fprintf(&b, "**Rename to:** `%s`\n\n", issue.FixedCode)
	}
	if comment != "" {
		fmt.Fprintf(&b, "**Comment:** %s\n\n", comment)
	}
	fmt.Fprintf(&b, "*Issue %s*", issue.ID)
	return b.String()
}

// renderMarkdown renders markdown text using glamour
func renderMarkdown(text string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(text)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}
