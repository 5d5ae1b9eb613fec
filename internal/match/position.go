package match

import "sort"

// Position is a 1-based line/column location. Columns count runes.
type Position struct {
	Line   int
	Column int
}

// LineIndex maps rune offsets in a text to positions.
type LineIndex struct {
	starts []int // rune offset of the first rune of each line
}

// NewLineIndex indexes the line starts of text. Only '\n' separates lines.
func NewLineIndex(text []rune) *LineIndex {
	starts := []int{0}
	for i, r := range text {
		if r == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts}
}

// Locate returns the position of the rune at offset: the line is one plus
// the number of line breaks before offset.
func (li *LineIndex) Locate(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset })
	return Position{Line: line, Column: offset - li.starts[line-1] + 1}
}

// LineStart returns the rune offset where the given 1-based line begins.
func (li *LineIndex) LineStart(line int) int {
	if line < 1 || line > len(li.starts) {
		return -1
	}
	return li.starts[line-1]
}

// Lines returns the number of lines in the indexed text.
func (li *LineIndex) Lines() int {
	return len(li.starts)
}
