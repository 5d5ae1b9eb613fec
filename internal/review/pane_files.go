package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// File pane styles
	filePaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	paneHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	fileItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	selectedFileStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	fileCountStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeBorderColor = lipgloss.Color("170")
)

// renderFilesPane lists the reviewed files with their filtered finding count.
func (m ReviewModel) renderFilesPane(width, height int) string {
	var b strings.Builder

	b.WriteString(paneHeaderStyle.Render("Files"))
	b.WriteString("\n\n")

	counts := m.getFilteredCounts()
	selected := ""
	if f, ok := m.current(); ok {
		selected = f.Path
	}

	for _, path := range m.paths {
		name := path
		if name == "" {
			name = "<stdin>"
		}
		line := fmt.Sprintf("%s %s", name, fileCountStyle.Render(fmt.Sprintf("(%d)", counts[path])))
		if path == selected {
			b.WriteString(selectedFileStyle.Render("▸ " + line))
		} else {
			b.WriteString(fileItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	paneStyle := filePaneStyle
	if m.activePane == PaneFiles {
		paneStyle = paneStyle.BorderForeground(activeBorderColor)
	}
	return paneStyle.
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		Render(b.String())
}
