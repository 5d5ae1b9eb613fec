package review

import (
	"github.com/chris-regnier/quill/internal/report"
)

// getFilteredFindings returns findings passing the severity filter and
// the category selection.
func (m *ReviewModel) getFilteredFindings() []Finding {
	if m.filter == FilterAll && m.category == "" {
		return m.findings
	}
	var filtered []Finding
	for _, f := range m.findings {
		if m.matches(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func (m *ReviewModel) matches(f Finding) bool {
	if m.category != "" && f.Issue.Category != m.category {
		return false
	}
	switch m.filter {
	case FilterErrors:
		return f.Issue.Severity == report.SeverityError
	case FilterWarnings:
		return f.Issue.Severity == report.SeverityError || f.Issue.Severity == report.SeverityWarning
	default:
		return true
	}
}

// nextCategory cycles through the categories that occur in the findings,
// then back to showing every category.
func (m *ReviewModel) nextCategory() report.Category {
	var present []report.Category
	for _, c := range report.Categories() {
		for _, f := range m.findings {
			if f.Issue.Category == c {
				present = append(present, c)
				break
			}
		}
	}
	if m.category == "" {
		if len(present) == 0 {
			return ""
		}
		return present[0]
	}
	for i, c := range present {
		if c == m.category && i+1 < len(present) {
			return present[i+1]
		}
	}
	return ""
}

// getFilteredCounts returns the number of filtered findings per file path.
func (m *ReviewModel) getFilteredCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range m.getFilteredFindings() {
		counts[f.Path]++
	}
	return counts
}
