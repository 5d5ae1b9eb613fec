// Package rules declares the per-language pattern rule tables. Tables are
// built once at process initialization and are read-only afterwards; a
// malformed built-in rule panics during init rather than surfacing as a
// scan-time error.
package rules

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

// matchTimeout bounds a single pattern evaluation. Exceeding it fails the
// whole analysis.
const matchTimeout = 2 * time.Second

// Predicate is a contextual check applied to a raw match before it is
// accepted as an issue.
type Predicate int

const (
	// PredicateNone accepts every match.
	PredicateNone Predicate = iota
	// RequiresPrecedingComment rejects a match when one of the two lines
	// above it starts with a comment marker.
	RequiresPrecedingComment
	// RequiresImportBlockMembership rejects matches outside the import
	// block, and imports whose trailing path segment is referenced outside it.
	RequiresImportBlockMembership
	// RequiresSingleUsage rejects a match when the identifier it binds
	// (the trailing segment of capture group 1) occurs more than once from
	// the match onward.
	RequiresSingleUsage
)

func (p Predicate) String() string {
	switch p {
	case PredicateNone:
		return "none"
	case RequiresPrecedingComment:
		return "preceding-comment"
	case RequiresImportBlockMembership:
		return "import-block"
	case RequiresSingleUsage:
		return "single-usage"
	default:
		return "unknown"
	}
}

// ParsePredicate converts a predicate name as used in rule files.
func ParsePredicate(s string) (Predicate, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PredicateNone, nil
	case "preceding-comment":
		return RequiresPrecedingComment, nil
	case "import-block":
		return RequiresImportBlockMembership, nil
	case "single-usage":
		return RequiresSingleUsage, nil
	default:
		return PredicateNone, fmt.Errorf("unknown predicate %q", s)
	}
}

// Rule is one pattern-driven detector.
type Rule struct {
	ID         string
	Pattern    *regexp2.Regexp
	Severity   report.Severity
	Category   report.Category
	Message    func(match string) string
	Suggestion string
	Predicate  Predicate
}

// Table is the complete rule set for one language together with the
// language facts the contextual predicates need.
type Table struct {
	Language lang.Language
	Rules    []Rule
	// CommentMarkers are the line prefixes that start a comment.
	CommentMarkers []string
	// ImportBlock locates the import block; nil if the language has none.
	ImportBlock *regexp2.Regexp
}

// Lookup returns the rule with the given id.
func (t Table) Lookup(id string) (Rule, bool) {
	for _, r := range t.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// IDs returns the rule ids of the table in declaration order.
func (t Table) IDs() []string {
	ids := make([]string, len(t.Rules))
	for i, r := range t.Rules {
		ids[i] = r.ID
	}
	return ids
}

// Without returns a copy of the table with the given rule ids removed.
func (t Table) Without(disabled map[string]bool) Table {
	if len(disabled) == 0 {
		return t
	}
	out := t
	out.Rules = slices.DeleteFunc(slices.Clone(t.Rules), func(r Rule) bool {
		return disabled[r.ID]
	})
	return out
}

// With returns a copy of the table with extra rules merged in. An extra
// rule replaces a built-in rule with the same id in place; new ids are
// appended in order.
func (t Table) With(extra []Rule) Table {
	if len(extra) == 0 {
		return t
	}
	out := t
	out.Rules = slices.Clone(t.Rules)
	for _, r := range extra {
		if i := slices.IndexFunc(out.Rules, func(existing Rule) bool { return existing.ID == r.ID }); i >= 0 {
			out.Rules[i] = r
			continue
		}
		out.Rules = append(out.Rules, r)
	}
	return out
}

// For returns the built-in table for a language.
func For(l lang.Language) (Table, error) {
	switch l {
	case lang.JavaScript:
		return javascriptTable, nil
	case lang.TypeScript:
		return typescriptTable, nil
	case lang.Python:
		return pythonTable, nil
	case lang.Java:
		return javaTable, nil
	case lang.Go:
		return goTable, nil
	default:
		return Table{}, l.Validate()
	}
}

// Validate checks a single rule definition.
func Validate(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("missing required field: id")
	}
	if r.Pattern == nil {
		return fmt.Errorf("rule %q: missing pattern", r.ID)
	}
	if r.Message == nil {
		return fmt.Errorf("rule %q: missing message", r.ID)
	}
	if _, err := report.ParseSeverity(string(r.Severity)); err != nil {
		return fmt.Errorf("rule %q: %w", r.ID, err)
	}
	if _, err := report.ParseCategory(string(r.Category)); err != nil {
		return fmt.Errorf("rule %q: %w", r.ID, err)
	}
	if r.Predicate < PredicateNone || r.Predicate > RequiresSingleUsage {
		return fmt.Errorf("rule %q: invalid predicate %d", r.ID, r.Predicate)
	}
	return nil
}

// validateTable checks every rule of a table and that rule ids are unique.
func validateTable(t Table) error {
	seen := make(map[string]bool, len(t.Rules))
	for i, r := range t.Rules {
		if err := Validate(r); err != nil {
			return fmt.Errorf("%s rule %d: %w", t.Language, i, err)
		}
		if seen[r.ID] {
			return fmt.Errorf("%s: duplicate rule ID %q", t.Language, r.ID)
		}
		seen[r.ID] = true
		if r.Predicate == RequiresImportBlockMembership && t.ImportBlock == nil {
			return fmt.Errorf("%s rule %q: import-block predicate without an import block pattern", t.Language, r.ID)
		}
	}
	return nil
}

func mustTable(t Table) Table {
	if err := validateTable(t); err != nil {
		panic(err)
	}
	return t
}

// pattern compiles a built-in rule pattern. Only called during package
// initialization.
func pattern(expr string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(expr, opts)
	re.MatchTimeout = matchTimeout
	return re
}
