package lsp

import (
	"fmt"
	"unicode/utf8"
)

// GetCodeActions returns code actions for the given diagnostics. An issue
// with fixed code gets a quick fix replacing its fix range, or its own
// range when it has none; one with only a suggestion gets a command
// showing it.
func GetCodeActions(uri string, diagnostics []Diagnostic) []CodeAction {
	var actions []CodeAction

	for _, diag := range diagnostics {
		if diag.Data == nil {
			continue
		}

		target := diag.Range
		if diag.Data.FixRange != nil {
			target = *diag.Data.FixRange
		}

		switch {
		case diag.Data.FixedCode != "" && target.Start != target.End:
			actions = append(actions, CodeAction{
				Title:       fmt.Sprintf("Quill: rename to %s", diag.Data.FixedCode),
				Kind:        CodeActionKindQuickFix,
				Diagnostics: []Diagnostic{diag},
				IsPreferred: true,
				Edit: &WorkspaceEdit{
					Changes: map[string][]TextEdit{
						uri: {{Range: target, NewText: diag.Data.FixedCode}},
					},
				},
			})
		case diag.Data.Suggestion != "":
			actions = append(actions, CodeAction{
				Title:       "Quill: " + truncateTitle(diag.Data.Suggestion, 60),
				Kind:        CodeActionKindQuickFix,
				Diagnostics: []Diagnostic{diag},
				Command: &Command{
					Title:     "Show suggestion",
					Command:   CommandShowSuggestion,
					Arguments: []any{uri, diag.Code, diag.Data.Suggestion},
				},
			})
		}
	}

	return actions
}

// truncateTitle shortens s to maxLen runes, ending with an ellipsis when cut.
func truncateTitle(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FilterDiagnosticsForRange returns diagnostics that overlap with the given range
func FilterDiagnosticsForRange(diagnostics []Diagnostic, r Range) []Diagnostic {
	var filtered []Diagnostic
	for _, d := range diagnostics {
		if rangesOverlap(d.Range, r) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func before(a, b Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}

func rangesOverlap(a, b Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}
