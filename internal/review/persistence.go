package review

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chris-regnier/quill/internal/output"
)

// ReviewState represents persisted review state
type ReviewState struct {
	ReportID   string                   `json:"report_id"`
	ReviewedAt string                   `json:"reviewed_at"`
	Reviewer   string                   `json:"reviewer"`
	Findings   map[string]FindingReview `json:"findings"`
}

// FindingReview represents review status for a single finding
type FindingReview struct {
	Status  string `json:"status"` // "accepted", "rejected", or ""
	Comment string `json:"comment,omitempty"`
}

// SaveReviewState saves the review model state to a JSON file
func SaveReviewState(model *ReviewModel, reportID string, filePath string) error {
	state := ReviewState{
		ReportID:   reportID,
		ReviewedAt: time.Now().UTC().Format(time.RFC3339),
		Reviewer:   reviewer(),
		Findings:   make(map[string]FindingReview),
	}

	for id, comment := range model.comments {
		state.Findings[id] = FindingReview{Comment: comment}
	}
	for id := range model.accepted {
		state.Findings[id] = FindingReview{Status: "accepted", Comment: model.comments[id]}
	}
	for id := range model.rejected {
		state.Findings[id] = FindingReview{Status: "rejected", Comment: model.comments[id]}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	// Comments may be sensitive.
	return os.WriteFile(filePath, data, 0600)
}

// LoadReviewState loads review state from a JSON file
func LoadReviewState(filePath string) (*ReviewState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var state ReviewState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// Restore applies a previously saved state to the model.
func (m *ReviewModel) Restore(state *ReviewState) {
	for id, r := range state.Findings {
		switch r.Status {
		case "accepted":
			m.accepted[id] = true
		case "rejected":
			m.rejected[id] = true
		}
		if r.Comment != "" {
			m.comments[id] = r.Comment
		}
	}
}

func reviewer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown"
}

// Run opens the browser over files. Decisions are saved to statePath on
// quit and restored from it on start when it exists.
func Run(files []output.FileReport, statePath, reportID string) error {
	m := NewReviewModel(files).WithState(statePath, reportID)
	if statePath != "" {
		if state, err := LoadReviewState(statePath); err == nil {
			m.Restore(state)
		}
	}
	_, err := tea.NewProgram(*m, tea.WithAltScreen()).Run()
	return err
}
