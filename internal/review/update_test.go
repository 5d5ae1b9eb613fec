package review

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m ReviewModel, msgs ...tea.Msg) ReviewModel {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(ReviewModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestUpdate_NextAndPreviousWrap(t *testing.T) {
	m := *NewReviewModel(testFiles())

	m = press(t, m, runes("n"))
	if m.currentFinding != 1 {
		t.Errorf("expected currentFinding=1, got %d", m.currentFinding)
	}

	m = press(t, m, runes("p"), runes("p"))
	if m.currentFinding != 3 {
		t.Errorf("expected wrap to last finding (3), got %d", m.currentFinding)
	}

	m = press(t, m, runes("j"))
	if m.currentFinding != 0 {
		t.Errorf("expected wrap to first finding, got %d", m.currentFinding)
	}
}

func TestUpdate_NavigationUsesFilteredList(t *testing.T) {
	m := *NewReviewModel(testFiles())
	m = press(t, m, runes("e"))

	m = press(t, m, runes("n"))
	if m.currentFinding != 0 {
		t.Errorf("single error finding should wrap to 0, got %d", m.currentFinding)
	}
	f, ok := m.current()
	if !ok || f.Issue.Rule != "no-eval" {
		t.Errorf("expected no-eval selected, got %+v", f)
	}
}

func TestUpdate_AcceptThenReject(t *testing.T) {
	m := *NewReviewModel(testFiles())
	id := m.findings[0].ID()

	m = press(t, m, runes("a"))
	if !m.accepted[id] {
		t.Fatalf("expected %s accepted", id)
	}

	m = press(t, m, runes("r"))
	if m.accepted[id] || !m.rejected[id] {
		t.Errorf("expected %s moved to rejected", id)
	}
}

func TestUpdate_Filters(t *testing.T) {
	m := *NewReviewModel(testFiles())
	m.currentFinding = 2

	m = press(t, m, runes("w"))
	if m.filter != FilterWarnings || m.currentFinding != 0 {
		t.Errorf("expected warnings filter and reset position, got %v/%d", m.filter, m.currentFinding)
	}
	m = press(t, m, runes("f"))
	if m.filter != FilterAll {
		t.Errorf("expected all filter, got %v", m.filter)
	}
	m = press(t, m, runes("c"))
	if m.category == "" {
		t.Error("expected a category after cycling")
	}
}

func TestUpdate_SwitchPane(t *testing.T) {
	m := *NewReviewModel(testFiles())
	tab := tea.KeyMsg{Type: tea.KeyTab}

	m = press(t, m, tab)
	if m.activePane != PaneCode {
		t.Errorf("expected code pane, got %v", m.activePane)
	}
	m = press(t, m, tab, tab)
	if m.activePane != PaneFiles {
		t.Errorf("expected wrap to files pane, got %v", m.activePane)
	}
}

func TestUpdate_Comment(t *testing.T) {
	m := *NewReviewModel(testFiles())
	id := m.findings[0].ID()

	m = press(t, m, runes("m"))
	if !m.editing {
		t.Fatal("expected comment input to open")
	}

	// Keys go to the input while editing.
	m = press(t, m, runes("quit? no"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing {
		t.Error("expected comment input to close on enter")
	}
	if m.comments[id] != "quit? no" {
		t.Errorf("expected comment saved, got %q", m.comments[id])
	}

	m = press(t, m, runes("m"), runes("discarded"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.comments[id] != "quit? no" {
		t.Errorf("esc should keep the previous comment, got %q", m.comments[id])
	}
}

func TestUpdate_WindowSize(t *testing.T) {
	m := *NewReviewModel(testFiles())
	m = press(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("expected 120x40, got %dx%d", m.width, m.height)
	}
}

func TestUpdate_QuitSavesState(t *testing.T) {
	path := t.TempDir() + "/state.json"
	m := *NewReviewModel(testFiles()).WithState(path, "r-1")
	m = press(t, m, runes("a"))

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}

	state, err := LoadReviewState(path)
	if err != nil {
		t.Fatalf("expected state saved on quit: %v", err)
	}
	if state.ReportID != "r-1" || state.Findings[m.findings[0].ID()].Status != "accepted" {
		t.Errorf("unexpected state: %+v", state)
	}
}
