package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/report"
)

// matchPlaceholder is replaced by the matched text in custom rule messages.
const matchPlaceholder = "{match}"

// RuleSpec is the YAML form of a custom rule.
type RuleSpec struct {
	ID         string   `yaml:"id"`
	Languages  []string `yaml:"languages,omitempty"`
	Pattern    string   `yaml:"pattern"`
	Flags      []string `yaml:"flags,omitempty"`
	Severity   string   `yaml:"severity"`
	Category   string   `yaml:"category"`
	Message    string   `yaml:"message"`
	Suggestion string   `yaml:"suggestion,omitempty"`
	Predicate  string   `yaml:"predicate,omitempty"`
}

// RuleFile is the top-level document of a custom rule file.
type RuleFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// CustomRule is a compiled custom rule. An empty Languages list applies the
// rule to every language.
type CustomRule struct {
	Rule
	Languages []lang.Language
	Spec      RuleSpec
}

// AppliesTo reports whether the rule runs for l.
func (c CustomRule) AppliesTo(l lang.Language) bool {
	return len(c.Languages) == 0 || slices.Contains(c.Languages, l)
}

// CustomRules is an ordered set of compiled custom rules.
type CustomRules []CustomRule

// For returns the rules that apply to l, in order.
func (cs CustomRules) For(l lang.Language) []Rule {
	var out []Rule
	for _, c := range cs {
		if c.AppliesTo(l) {
			out = append(out, c.Rule)
		}
	}
	return out
}

// ParseRuleFile decodes and compiles a custom rule file.
func ParseRuleFile(data []byte) (CustomRules, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	seen := make(map[string]bool)
	out := make(CustomRules, 0, len(rf.Rules))
	for i, spec := range rf.Rules {
		c, err := Compile(spec)
		if err != nil {
			return nil, fmt.Errorf("rule %q (index %d): %w", spec.ID, i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate rule ID %q", c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

// Compile validates a rule spec and compiles its pattern.
func Compile(spec RuleSpec) (CustomRule, error) {
	if err := validateSpec(spec); err != nil {
		return CustomRule{}, err
	}

	var opts regexp2.RegexOptions
	for _, f := range spec.Flags {
		switch strings.ToLower(f) {
		case "multiline", "m":
			opts |= regexp2.Multiline
		case "ignorecase", "i":
			opts |= regexp2.IgnoreCase
		case "singleline", "s":
			opts |= regexp2.Singleline
		default:
			return CustomRule{}, fmt.Errorf("unknown flag %q", f)
		}
	}
	re, err := regexp2.Compile(spec.Pattern, opts)
	if err != nil {
		return CustomRule{}, fmt.Errorf("invalid regex pattern: %w", err)
	}
	re.MatchTimeout = matchTimeout

	severity, err := report.ParseSeverity(spec.Severity)
	if err != nil {
		return CustomRule{}, err
	}
	category, err := report.ParseCategory(spec.Category)
	if err != nil {
		return CustomRule{}, err
	}
	predicate, err := ParsePredicate(spec.Predicate)
	if err != nil {
		return CustomRule{}, err
	}

	var languages []lang.Language
	for _, tag := range spec.Languages {
		l, err := lang.Parse(tag)
		if err != nil {
			return CustomRule{}, err
		}
		languages = append(languages, l)
	}
	if predicate == RequiresImportBlockMembership && !onlyGo(languages) {
		return CustomRule{}, fmt.Errorf("predicate %s is only supported for go rules", predicate)
	}

	template := spec.Message
	return CustomRule{
		Rule: Rule{
			ID:       spec.ID,
			Pattern:  re,
			Severity: severity,
			Category: category,
			Message: func(m string) string {
				return strings.ReplaceAll(template, matchPlaceholder, m)
			},
			Suggestion: spec.Suggestion,
			Predicate:  predicate,
		},
		Languages: languages,
		Spec:      spec,
	}, nil
}

func validateSpec(spec RuleSpec) error {
	if spec.ID == "" {
		return fmt.Errorf("missing required field: id")
	}
	if spec.Pattern == "" {
		return fmt.Errorf("missing required field: pattern")
	}
	if spec.Severity == "" {
		return fmt.Errorf("missing required field: severity")
	}
	if spec.Category == "" {
		return fmt.Errorf("missing required field: category")
	}
	if spec.Message == "" {
		return fmt.Errorf("missing required field: message")
	}
	return nil
}

func onlyGo(languages []lang.Language) bool {
	return len(languages) > 0 && !slices.ContainsFunc(languages, func(l lang.Language) bool { return l != lang.Go })
}
