package scanner

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/match"
	"github.com/chris-regnier/quill/internal/rules"
)

// source is the per-scan view of the text shared by the contextual
// predicates. It is built once per Scan call and never shared.
type source struct {
	runes []rune
	lines *match.LineIndex
	table rules.Table

	importsLocated bool
	importBlock    *match.Match
	outsideImports string

	usage map[string]*regexp2.Regexp
}

func newSource(text string, table rules.Table) *source {
	runes := []rune(text)
	return &source{
		runes: runes,
		lines: match.NewLineIndex(runes),
		table: table,
		usage: make(map[string]*regexp2.Regexp),
	}
}

// accept evaluates a rule's contextual predicate against a raw match.
func (s *source) accept(p rules.Predicate, m match.Match) (bool, error) {
	switch p {
	case rules.RequiresPrecedingComment:
		return !s.hasPrecedingComment(m.Start), nil
	case rules.RequiresImportBlockMembership:
		return s.unusedImport(m)
	case rules.RequiresSingleUsage:
		return s.singleUsage(m)
	default:
		return true, nil
	}
}

// hasPrecedingComment reports whether the text before offset on its own
// line, or either of the two lines above, is a comment.
func (s *source) hasPrecedingComment(offset int) bool {
	line := s.lines.Locate(offset).Line
	candidates := []string{string(s.runes[s.lines.LineStart(line):offset])}
	for l := line - 1; l >= line-2 && l >= 1; l-- {
		candidates = append(candidates, s.lineText(l))
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if strings.HasSuffix(c, "*/") {
			return true
		}
		for _, marker := range s.table.CommentMarkers {
			if strings.HasPrefix(c, marker) {
				return true
			}
		}
	}
	return false
}

func (s *source) lineText(line int) string {
	start := s.lines.LineStart(line)
	end := len(s.runes)
	if next := s.lines.LineStart(line + 1); next >= 0 {
		end = next - 1
	}
	return string(s.runes[start:end])
}

// unusedImport accepts a match inside the import block whose trailing path
// segment is never referenced as a qualifier outside the block.
func (s *source) unusedImport(m match.Match) (bool, error) {
	if err := s.locateImports(); err != nil {
		return false, err
	}
	block := s.importBlock
	if block == nil || m.Start < block.Start || m.Start > block.End() {
		return false, nil
	}
	pkg := trailingSegment(boundText(m), "/")
	if pkg == "" {
		return false, nil
	}
	return !strings.Contains(s.outsideImports, pkg+"."), nil
}

func (s *source) locateImports() error {
	if s.importsLocated {
		return nil
	}
	s.importsLocated = true
	if s.table.ImportBlock == nil {
		return nil
	}
	for m, err := range match.All(s.table.ImportBlock, s.runes) {
		if err != nil {
			return err
		}
		s.importBlock = &m
		s.outsideImports = string(s.runes[:m.Start]) + string(s.runes[m.End():])
		break
	}
	return nil
}

// singleUsage accepts a match when the identifier it binds occurs exactly
// once from the start of the match to the end of the text.
func (s *source) singleUsage(m match.Match) (bool, error) {
	name := trailingSegment(boundText(m), "./")
	if name == "" {
		return true, nil
	}
	re, ok := s.usage[name]
	if !ok {
		var err error
		re, err = regexp2.Compile(`(?<![\w$])`+regexp2.Escape(name)+`(?![\w$])`, regexp2.None)
		if err != nil {
			return false, err
		}
		s.usage[name] = re
	}
	n, err := match.Count(re, s.runes[m.Start:])
	if err != nil {
		return false, err
	}
	return n <= 1, nil
}

// boundText is capture group 1 when the pattern has one, else the match.
func boundText(m match.Match) string {
	if g := m.Group(1); g.Matched {
		return g.Text
	}
	return m.Text
}

func trailingSegment(path, separators string) string {
	if i := strings.LastIndexAny(path, separators); i >= 0 {
		return path[i+1:]
	}
	return path
}
