package rules

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
)

// fixed returns a message function that ignores the matched text.
func fixed(msg string) func(string) string {
	return func(string) string { return msg }
}

// callee strips the trailing call parenthesis from a match such as
// "console.log (" and formats it into msg.
func callee(format string) func(string) string {
	return func(m string) string {
		return fmt.Sprintf(format, strings.TrimRight(m, "( \t\r\n"))
	}
}

// number formats the first run of digits in the match into msg.
func number(format string) func(string) string {
	return func(m string) string {
		start := strings.IndexFunc(m, unicode.IsDigit)
		if start < 0 {
			return fmt.Sprintf(format, m)
		}
		end := strings.IndexFunc(m[start:], func(r rune) bool { return !unicode.IsDigit(r) })
		if end < 0 {
			return fmt.Sprintf(format, m[start:])
		}
		return fmt.Sprintf(format, m[start:start+end])
	}
}

// group re-matches the already matched text against re and formats the
// given capture group into msg. Message functions only receive the matched
// text, so rules that name a sub-part extract it this way.
func group(re *regexp2.Regexp, n int, format string) func(string) string {
	return func(m string) string {
		arg := m
		if sub, err := re.FindStringMatch(m); err == nil && sub != nil {
			if g := sub.GroupByNumber(n); g != nil && len(g.Captures) > 0 {
				arg = g.String()
			}
		}
		return fmt.Sprintf(format, arg)
	}
}

// upperGroup is group with the extracted text upper-cased.
func upperGroup(re *regexp2.Regexp, n int, format string) func(string) string {
	inner := group(re, n, "%s")
	return func(m string) string {
		return fmt.Sprintf(format, strings.ToUpper(inner(m)))
	}
}
