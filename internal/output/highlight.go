package output

import (
	"strings"

	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/chris-regnier/quill/internal/lang"
)

// HighlightLine applies terminal syntax highlighting to a single line of
// code. Unknown languages fall back to plain text tokens.
func HighlightLine(line string, language lang.Language) (string, error) {
	lexer := lexers.Get(string(language))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return "", err
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	if err := formatters.TTY16m.Format(&b, style, iterator); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// SourceLine returns the 1-based line n of source, or "" when out of range.
func SourceLine(source string, n int) string {
	if n < 1 {
		return ""
	}
	for i, line := range strings.Split(source, "\n") {
		if i == n-1 {
			return strings.TrimSuffix(line, "\r")
		}
	}
	return ""
}
