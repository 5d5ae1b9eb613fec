package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chris-regnier/quill/internal/lang"
)

// Summary counts the issues of a report by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
	Total    int `json:"total"`
}

// Count returns the number of issues with the given severity.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SeverityError:
		return s.Errors
	case SeverityWarning:
		return s.Warnings
	case SeverityInfo:
		return s.Infos
	case SeverityHint:
		return s.Hints
	default:
		return 0
	}
}

// Report is the complete output of one analysis call.
type Report struct {
	Issues     []Issue       `json:"issues"`
	Summary    Summary       `json:"summary"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Language   lang.Language `json:"language"`
	CodeLines  int           `json:"code_lines"`
}

// now is swapped out in tests.
var now = time.Now

// Build merges scanner and naming findings into a Report. Issues are
// stable-sorted by (line, column), deduplicated on (line, column, message)
// keeping the first occurrence, counted by severity, and assigned ids.
func Build(scannerIssues, namingIssues []Issue, language lang.Language, source string) *Report {
	all := make([]Issue, 0, len(scannerIssues)+len(namingIssues))
	all = append(all, scannerIssues...)
	all = append(all, namingIssues...)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Line != all[j].Line {
			return all[i].Line < all[j].Line
		}
		return all[i].Column < all[j].Column
	})

	type dedupKey struct {
		line, column int
		message      string
	}
	seen := make(map[dedupKey]struct{}, len(all))
	unique := make([]Issue, 0, len(all))
	for _, issue := range all {
		k := dedupKey{issue.Line, issue.Column, issue.Message}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, issue)
	}

	var summary Summary
	for i := range unique {
		unique[i].ID = IssueID(unique[i].Rule, unique[i].Line, unique[i].Column, i+1)
		switch unique[i].Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		case SeverityInfo:
			summary.Infos++
		case SeverityHint:
			summary.Hints++
		}
	}
	summary.Total = len(unique)

	return &Report{
		Issues:     unique,
		Summary:    summary,
		AnalyzedAt: now(),
		Language:   language,
		CodeLines:  CountLines(source),
	}
}

// IssueID derives a deterministic identifier from the rule and position,
// suffixed with the issue's 1-based sequence number within its report.
func IssueID(rule string, line, column, seq int) string {
	h := sha256.Sum256([]byte(rule + "|" + strconv.Itoa(line) + "|" + strconv.Itoa(column)))
	return fmt.Sprintf("%s-%d", hex.EncodeToString(h[:6]), seq)
}

// CountLines returns the number of newline-delimited segments in text.
// Empty text has one line.
func CountLines(text string) int {
	return strings.Count(text, "\n") + 1
}

// HasIssues reports whether the report contains any issue.
func (r *Report) HasIssues() bool {
	return r != nil && r.Summary.Total > 0
}

// HasCriticalIssues reports whether the report contains any error.
func (r *Report) HasCriticalIssues() bool {
	return r != nil && r.Summary.Errors > 0
}

// GroupByCategory groups the report's issues by category, preserving order.
func (r *Report) GroupByCategory() map[Category][]Issue {
	grouped := make(map[Category][]Issue)
	for _, issue := range r.Issues {
		grouped[issue.Category] = append(grouped[issue.Category], issue)
	}
	return grouped
}

// GroupBySeverity groups the report's issues by severity, preserving order.
func (r *Report) GroupBySeverity() map[Severity][]Issue {
	grouped := make(map[Severity][]Issue)
	for _, issue := range r.Issues {
		grouped[issue.Severity] = append(grouped[issue.Severity], issue)
	}
	return grouped
}
