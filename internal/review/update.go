package review

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Init implements tea.Model
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateComment(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			if err := m.saveState(); err != nil {
				slog.Warn("failed to save review state", "err", err)
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Next):
			if n := len(m.getFilteredFindings()); n > 0 {
				m.currentFinding = (m.currentFinding + 1) % n
			}

		case key.Matches(msg, m.keys.Prev):
			if n := len(m.getFilteredFindings()); n > 0 {
				m.currentFinding--
				if m.currentFinding < 0 {
					m.currentFinding = n - 1
				}
			}

		case key.Matches(msg, m.keys.Accept):
			if f, ok := m.current(); ok {
				m.accepted[f.ID()] = true
				delete(m.rejected, f.ID())
			}

		case key.Matches(msg, m.keys.Reject):
			if f, ok := m.current(); ok {
				m.rejected[f.ID()] = true
				delete(m.accepted, f.ID())
			}

		case key.Matches(msg, m.keys.Comment):
			if f, ok := m.current(); ok {
				m.editing = true
				m.comment.SetValue(m.comments[f.ID()])
				cmd := m.comment.Focus()
				return m, cmd
			}

		case key.Matches(msg, m.keys.Pane):
			m.activePane = (m.activePane + 1) % 3

		case key.Matches(msg, m.keys.Errors):
			m.filter = FilterErrors
			m.currentFinding = 0

		case key.Matches(msg, m.keys.Warnings):
			m.filter = FilterWarnings
			m.currentFinding = 0

		case key.Matches(msg, m.keys.All):
			m.filter = FilterAll
			m.currentFinding = 0

		case key.Matches(msg, m.keys.Category):
			m.category = m.nextCategory()
			m.currentFinding = 0

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	return m, nil
}

// updateComment routes keys to the comment input while it is open.
func (m ReviewModel) updateComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if f, ok := m.current(); ok {
			text := strings.TrimSpace(m.comment.Value())
			if text == "" {
				delete(m.comments, f.ID())
			} else {
				m.comments[f.ID()] = text
			}
		}
		m.editing = false
		m.comment.Blur()
		return m, nil
	case tea.KeyEsc:
		m.editing = false
		m.comment.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.comment, cmd = m.comment.Update(msg)
	return m, cmd
}

// saveState writes the review decisions when a state path is configured.
func (m *ReviewModel) saveState() error {
	if m.statePath == "" {
		return nil
	}
	return SaveReviewState(m, m.reportID, m.statePath)
}
