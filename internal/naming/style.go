package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Style is an identifier case convention.
type Style string

const (
	CamelCase          Style = "camelCase"
	PascalCase         Style = "PascalCase"
	SnakeCase          Style = "snake_case"
	ScreamingSnakeCase Style = "SCREAMING_SNAKE_CASE"
	KebabCase          Style = "kebab-case"
)

var stylePatterns = map[Style]*regexp2.Regexp{
	CamelCase:          regexp2.MustCompile(`^[a-z][a-zA-Z0-9]*$`, regexp2.None),
	PascalCase:         regexp2.MustCompile(`^[A-Z][a-zA-Z0-9]*$`, regexp2.None),
	SnakeCase:          regexp2.MustCompile(`^[a-z][a-z0-9_]*$`, regexp2.None),
	ScreamingSnakeCase: regexp2.MustCompile(`^[A-Z][A-Z0-9_]*$`, regexp2.None),
	KebabCase:          regexp2.MustCompile(`^[a-z][a-z0-9-]*$`, regexp2.None),
}

// Matches reports whether name is written in style s.
func (s Style) Matches(name string) bool {
	re, ok := stylePatterns[s]
	if !ok {
		return false
	}
	matched, err := re.MatchString(name)
	return err == nil && matched
}

// Restyle rewrites name in the target style. Words are split where a
// lowercase letter is followed by an uppercase one and at '-' or '_'.
// Restyling an already converted name returns it unchanged.
func Restyle(name string, s Style) string {
	if s.Matches(name) {
		return name
	}
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}

	switch s {
	case CamelCase:
		for i := 1; i < len(words); i++ {
			words[i] = capitalize(words[i])
		}
		return strings.Join(words, "")
	case PascalCase:
		for i := range words {
			words[i] = capitalize(words[i])
		}
		return strings.Join(words, "")
	case SnakeCase:
		return strings.Join(words, "_")
	case ScreamingSnakeCase:
		return strings.ToUpper(strings.Join(words, "_"))
	case KebabCase:
		return strings.Join(words, "-")
	default:
		return name
	}
}

func splitWords(name string) []string {
	var (
		words []string
		cur   strings.Builder
		prev  rune
	)
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range name {
		switch {
		case r == '-' || r == '_':
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
		prev = r
	}
	flush()
	return words
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}
