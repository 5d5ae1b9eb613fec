package sarif

import (
	"cmp"
	"slices"

	"github.com/chris-regnier/quill/internal/report"
)

// Level maps an issue severity to a SARIF result level.
func Level(sev report.Severity) string {
	switch sev {
	case report.SeverityError:
		return "error"
	case report.SeverityWarning:
		return "warning"
	case report.SeverityInfo:
		return "note"
	default:
		return "none"
	}
}

// Assemble creates a SARIF log for one report of the artifact at uri.
func Assemble(rep *report.Report, uri string, rules []ReportingDescriptor, toolVersion string) *Log {
	return NewAssembler().
		WithTool(ToolName, toolVersion).
		AddRules(rules).
		AddReport(uri, rep).
		Build()
}

// ResultFromIssue converts one located issue.
func ResultFromIssue(issue report.Issue, uri string) Result {
	region := Region{
		StartLine:   issue.Line,
		StartColumn: issue.Column,
		EndLine:     issue.EndLine,
		EndColumn:   issue.EndColumn,
	}
	r := Result{
		RuleID:  issue.Rule,
		Level:   Level(issue.Severity),
		Message: Message{Text: issue.Message},
		Locations: []Location{{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: uri},
				Region:           region,
			},
		}},
		PartialFingerprints: map[string]string{
			"quill/issueId": issue.ID,
		},
		Properties: map[string]any{
			"quill/category": string(issue.Category),
			"quill/severity": string(issue.Severity),
		},
	}
	if issue.Suggestion != "" {
		r.Properties["quill/suggestion"] = issue.Suggestion
	}
	if issue.FixedCode != "" {
		deleted := region
		if issue.Fix != nil {
			deleted = Region{
				StartLine:   issue.Fix.Line,
				StartColumn: issue.Fix.Column,
				EndLine:     issue.Fix.EndLine,
				EndColumn:   issue.Fix.EndColumn,
			}
		}
		r.Fixes = []Fix{{
			Description: Message{Text: "Rename to " + issue.FixedCode},
			ArtifactChanges: []ArtifactChange{{
				ArtifactLocation: ArtifactLocation{URI: uri},
				Replacements: []Replacement{{
					DeletedRegion:   deleted,
					InsertedContent: &ArtifactContent{Text: issue.FixedCode},
				}},
			}},
		}}
	}
	return r
}

// dedup drops results that repeat the rule and start position of an
// earlier result for the same artifact, then orders them by artifact and
// position.
func dedup(results []Result) []Result {
	type key struct {
		ruleID       string
		uri          string
		line, column int
	}

	seen := make(map[key]bool, len(results))
	out := make([]Result, 0, len(results))
	for _, r := range results {
		k := key{ruleID: r.RuleID}
		if len(r.Locations) > 0 {
			loc := r.Locations[0].PhysicalLocation
			k.uri = loc.ArtifactLocation.URI
			k.line, k.column = loc.Region.StartLine, loc.Region.StartColumn
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Result) int {
		la, lb := firstRegion(a), firstRegion(b)
		return cmp.Or(
			cmp.Compare(artifactURI(a), artifactURI(b)),
			cmp.Compare(la.StartLine, lb.StartLine),
			cmp.Compare(la.StartColumn, lb.StartColumn),
		)
	})
	return out
}

func artifactURI(r Result) string {
	if len(r.Locations) == 0 {
		return ""
	}
	return r.Locations[0].PhysicalLocation.ArtifactLocation.URI
}

func firstRegion(r Result) Region {
	if len(r.Locations) == 0 {
		return Region{}
	}
	return r.Locations[0].PhysicalLocation.Region
}
