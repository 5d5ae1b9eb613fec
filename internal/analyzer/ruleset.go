package analyzer

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/chris-regnier/quill/internal/cache"
	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/naming"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/rules"
)

// Rule origins reported by Rules.
const (
	OriginBuiltin = "builtin"
	OriginCustom  = "custom"
	OriginNaming  = "naming"
)

// RuleInfo describes one effective rule for listings.
type RuleInfo struct {
	ID         string          `json:"id"`
	Severity   report.Severity `json:"severity"`
	Category   report.Category `json:"category"`
	Suggestion string          `json:"suggestion,omitempty"`
	Predicate  string          `json:"predicate,omitempty"`
	Origin     string          `json:"origin"`
}

// Rules lists the effective rules for language in evaluation order,
// followed by its naming rules. Severity overrides are applied.
func (a *Analyzer) Rules(language lang.Language) ([]RuleInfo, error) {
	table, err := a.Table(language)
	if err != nil {
		return nil, err
	}

	custom := make(map[string]bool)
	for _, r := range a.custom.For(language) {
		custom[r.ID] = true
	}

	infos := make([]RuleInfo, 0, len(table.Rules)+4)
	for _, r := range table.Rules {
		info := RuleInfo{
			ID:         r.ID,
			Severity:   a.severityOf(r.ID, r.Severity),
			Category:   r.Category,
			Suggestion: r.Suggestion,
			Origin:     OriginBuiltin,
		}
		if r.Predicate != rules.PredicateNone {
			info.Predicate = r.Predicate.String()
		}
		if custom[r.ID] {
			info.Origin = OriginCustom
		}
		infos = append(infos, info)
	}

	conv, err := naming.For(language)
	if err != nil {
		return nil, err
	}
	for _, c := range conv.Kinds() {
		id := c.Kind.Rule()
		if a.disabled[id] {
			continue
		}
		infos = append(infos, RuleInfo{
			ID:         id,
			Severity:   a.severityOf(id, c.Kind.Severity()),
			Category:   report.CategoryNaming,
			Suggestion: fmt.Sprintf("use %s", c.Styles[0]),
			Origin:     OriginNaming,
		})
	}
	return infos, nil
}

func (a *Analyzer) severityOf(id string, def report.Severity) report.Severity {
	if sev, ok := a.severities[id]; ok {
		return sev
	}
	return def
}

// rulesetFingerprint identifies the analyzer configuration in cache keys.
func (a *Analyzer) rulesetFingerprint() string {
	var parts []string
	for _, c := range a.custom {
		parts = append(parts, fmt.Sprintf("custom=%+v", c.Spec))
	}
	for _, id := range slices.Sorted(maps.Keys(a.disabled)) {
		parts = append(parts, "disabled="+id)
	}
	for _, id := range slices.Sorted(maps.Keys(a.severities)) {
		parts = append(parts, "severity="+id+":"+string(a.severities[id]))
	}
	return cache.GenerateKey(strings.Join(parts, "\n"))
}
