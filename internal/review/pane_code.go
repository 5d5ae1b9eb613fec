package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chris-regnier/quill/internal/output"
)

var (
	// Code pane styles
	codePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	lineNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(4).
			Align(lipgloss.Right)

	highlightedLineStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236"))

	caretStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const (
	contextLines = 5 // Lines to show before and after the finding
)

// renderCodePane renders the source around the selected finding with
// syntax highlighting and a caret under the reported column.
func (m ReviewModel) renderCodePane(width, height int) string {
	var b strings.Builder

	b.WriteString(paneHeaderStyle.Render("Code"))
	b.WriteString("\n\n")

	if f, ok := m.current(); !ok {
		b.WriteString("No findings to display")
	} else {
		name := f.Path
		if name == "" {
			name = "<stdin>"
		}
		b.WriteString(locationStyle.Render(fmt.Sprintf("%s:%d:%d", name, f.Issue.Line, f.Issue.Column)))
		b.WriteString("\n\n")
		b.WriteString(codeWithContext(f))
	}

	paneStyle := codePaneStyle
	if m.activePane == PaneCode {
		paneStyle = paneStyle.BorderForeground(activeBorderColor)
	}
	return paneStyle.
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Render(b.String())
}

// codeWithContext returns the lines around the finding, highlighted.
func codeWithContext(f Finding) string {
	if f.Source == "" {
		return "Source not available"
	}
	lines := strings.Split(f.Source, "\n")
	target := f.Issue.Line

	start := max(target-contextLines, 1)
	end := min(target+contextLines, len(lines))

	var b strings.Builder
	for i := start; i <= end; i++ {
		text := strings.TrimSuffix(lines[i-1], "\r")
		content, err := output.HighlightLine(text, f.Language)
		if err != nil {
			content = text
		}
		num := lineNumberStyle.Render(fmt.Sprintf("%d", i))

		if i == target {
			num = highlightedLineStyle.Render(num)
			content = highlightedLineStyle.Render(content)
		}
		fmt.Fprintf(&b, "%s │ %s\n", num, content)

		if i == target && f.Issue.Column > 0 {
			pad := strings.Repeat(" ", 4) + " │ " + caretPadding(text, f.Issue.Column)
			b.WriteString(pad + caretStyle.Render("^") + "\n")
		}
	}
	return b.String()
}

// caretPadding keeps tabs so the caret lines up with the column above.
func caretPadding(line string, column int) string {
	var b strings.Builder
	for i, r := range []rune(line) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			b.WriteRune('\t')
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
