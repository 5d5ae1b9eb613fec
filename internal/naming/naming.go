// Package naming checks declared identifiers against per-language case
// conventions and suggests restyled names.
package naming

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/match"
	"github.com/chris-regnier/quill/internal/report"
)

const matchTimeout = 2 * time.Second

// Check extracts the declared identifiers of text for every kind and
// reports those that break the language's convention. Variables and
// constants are only reported when they also fail the other's convention,
// so an all-caps constant declared with a variable keyword is accepted.
func Check(text string, l lang.Language) ([]report.Issue, error) {
	conv, err := For(l)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	lines := match.NewLineIndex(runes)

	var issues []report.Issue
	for _, c := range conv.Kinds() {
		for m, err := range match.All(c.Extract, runes) {
			if err != nil {
				return nil, fmt.Errorf("naming %s: %w", c.Kind, err)
			}
			id, ok := identifier(m)
			if !ok || c.Accepts(id.Text) {
				continue
			}
			if c.Kind == KindVariable && conv.Constant.Accepts(id.Text) {
				continue
			}
			if c.Kind == KindConstant && conv.Variable.Accepts(id.Text) {
				continue
			}
			v := violation(c, m, id, lines)
			if v.FixedCode == id.Text {
				// nothing to restyle, e.g. the blank identifier
				continue
			}
			issues = append(issues, v)
		}
	}
	return issues, nil
}

// violation locates the issue at the start of the extraction match, past
// any leading whitespace the pattern consumed. Fix covers only the
// identifier.
func violation(c Convention, m match.Match, id match.Capture, lines *match.LineIndex) report.Issue {
	trimmed := strings.TrimLeftFunc(m.Text, unicode.IsSpace)
	skip := utf8.RuneCountInString(m.Text) - utf8.RuneCountInString(trimmed)
	pos := lines.Locate(m.Start + skip)
	idPos := lines.Locate(id.Start)
	fixed, style := c.Suggest(id.Text)
	return report.Issue{
		Line:      pos.Line,
		Column:    pos.Column,
		EndLine:   pos.Line,
		EndColumn: pos.Column + m.Length - skip,
		Fix: &report.Span{
			Line:      idPos.Line,
			Column:    idPos.Column,
			EndLine:   idPos.Line,
			EndColumn: idPos.Column + utf8.RuneCountInString(id.Text),
		},
		Message:    fmt.Sprintf("%s %q does not follow %s", c.Kind, id.Text, style),
		Severity:   c.Kind.Severity(),
		Category:   report.CategoryNaming,
		Rule:       c.Kind.Rule(),
		Suggestion: fixed,
		FixedCode:  fixed,
	}
}

// identifier returns the first participating capture group of m.
func identifier(m match.Match) (match.Capture, bool) {
	for i := 1; i < len(m.Captures); i++ {
		if g := m.Captures[i]; g.Matched && g.Text != "" {
			return g, true
		}
	}
	return match.Capture{}, false
}

func firstLetter(s string) rune {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return r
		}
	}
	return 0
}

func isUpper(r rune) bool { return unicode.IsUpper(r) }
