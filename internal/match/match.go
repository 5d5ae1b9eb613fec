// Package match finds every non-overlapping occurrence of a pattern in a
// text and maps rune offsets back to line/column positions.
package match

import (
	"iter"

	"github.com/dlclark/regexp2"
)

// Capture is one capture group of a match. Start is a rune offset into the
// searched text and is only meaningful when Matched is true.
type Capture struct {
	Text    string
	Start   int
	Matched bool
}

// Match is one occurrence of a pattern. Start and Length are measured in
// runes. Captures[0] is the whole match.
type Match struct {
	Text     string
	Start    int
	Length   int
	Captures []Capture
}

// Group returns capture group n, or an unmatched Capture if n is out of range.
func (m Match) Group(n int) Capture {
	if n < 0 || n >= len(m.Captures) {
		return Capture{}
	}
	return m.Captures[n]
}

// End returns the rune offset just past the match.
func (m Match) End() int {
	return m.Start + m.Length
}

// All returns the non-overlapping matches of re in text, left to right.
// The sequence is lazy and can be ranged over any number of times. An
// empty match advances the search by one rune, so iteration always
// terminates. A non-nil error (a regexp2 match timeout) ends the sequence.
func All(re *regexp2.Regexp, text []rune) iter.Seq2[Match, error] {
	return func(yield func(Match, error) bool) {
		m, err := re.FindRunesMatch(text)
		for m != nil && err == nil {
			if !yield(convert(m), nil) {
				return
			}
			m, err = re.FindNextMatch(m)
		}
		if err != nil {
			yield(Match{}, err)
		}
	}
}

// Collect gathers every match of re in text, stopping at the first error.
func Collect(re *regexp2.Regexp, text []rune) ([]Match, error) {
	var out []Match
	for m, err := range All(re, text) {
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Count returns the number of non-overlapping matches of re in text.
func Count(re *regexp2.Regexp, text []rune) (int, error) {
	n := 0
	for _, err := range All(re, text) {
		if err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}

func convert(m *regexp2.Match) Match {
	groups := m.Groups()
	captures := make([]Capture, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			continue
		}
		captures[i] = Capture{Text: g.String(), Start: g.Index, Matched: true}
	}
	return Match{
		Text:     m.String(),
		Start:    m.Index,
		Length:   m.Length,
		Captures: captures,
	}
}
