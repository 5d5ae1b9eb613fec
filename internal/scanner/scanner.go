// Package scanner runs a language's rule table over a text and turns the
// accepted matches into located issues.
package scanner

import (
	"fmt"

	"github.com/chris-regnier/quill/internal/match"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/rules"
)

// Scan applies every rule in table to text, in table order. Issues carry no
// ID; ids are assigned when the report is built. A pattern evaluation error
// fails the whole scan and no partial result is returned.
func Scan(text string, table rules.Table) ([]report.Issue, error) {
	src := newSource(text, table)

	var issues []report.Issue
	for _, rule := range table.Rules {
		for m, err := range match.All(rule.Pattern, src.runes) {
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
			}
			ok, err := src.accept(rule.Predicate, m)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", rule.ID, err)
			}
			if !ok {
				continue
			}
			issues = append(issues, src.issue(rule, m))
		}
	}
	return issues, nil
}

func (s *source) issue(rule rules.Rule, m match.Match) report.Issue {
	pos := s.lines.Locate(m.Start)
	return report.Issue{
		Line:       pos.Line,
		Column:     pos.Column,
		EndLine:    pos.Line,
		EndColumn:  pos.Column + m.Length,
		Message:    rule.Message(m.Text),
		Severity:   rule.Severity,
		Category:   rule.Category,
		Rule:       rule.ID,
		Suggestion: rule.Suggestion,
	}
}
