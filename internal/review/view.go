package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// View implements tea.Model
func (m ReviewModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Quill Review"))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n")

	if m.width == 0 || m.height == 0 {
		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	footer := m.help.View(m.keys)
	if m.editing {
		footer = m.comment.View()
	}

	body := m.height - 2 - lipgloss.Height(footer)
	top := body * 3 / 5
	filesWidth := m.width / 4

	row := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderFilesPane(filesWidth, top),
		m.renderCodePane(m.width-filesWidth, top),
	)
	b.WriteString(row)
	b.WriteString("\n")
	b.WriteString(m.renderDetailsPane(m.width, body-top))
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

// status summarizes the position, filters and review progress.
func (m ReviewModel) status() string {
	filtered := m.getFilteredFindings()
	pos := 0
	if len(filtered) > 0 {
		pos = m.currentFinding + 1
	}
	category := "all categories"
	if m.category != "" {
		category = string(m.category)
	}
	return fmt.Sprintf("%d/%d %s | %s | %s | %d accepted, %d rejected",
		pos, len(filtered), plural(len(filtered), "finding"),
		m.filter, category, len(m.accepted), len(m.rejected))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
