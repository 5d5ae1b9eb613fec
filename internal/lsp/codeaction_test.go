package lsp

import (
	"testing"
)

func TestGetCodeActions(t *testing.T) {
	rename := Diagnostic{
		Range: Range{Start: Position{Line: 0, Character: 4}, End: Position{Line: 0, Character: 10}},
		Code:  "naming/variable",
		Data:  &DiagnosticData{Suggestion: "myVar", FixedCode: "myVar"},
	}
	suggest := Diagnostic{
		Range: Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 2, Character: 3}},
		Code:  "no-var",
		Data:  &DiagnosticData{Suggestion: "Use let or const instead of var"},
	}
	bare := Diagnostic{Code: "quotes"}

	actions := GetCodeActions("file:///a.js", []Diagnostic{rename, suggest, bare})
	if len(actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(actions))
	}

	fix := actions[0]
	if fix.Kind != CodeActionKindQuickFix || !fix.IsPreferred || fix.Edit == nil {
		t.Fatalf("expected a preferred quick fix with an edit, got %+v", fix)
	}
	edits := fix.Edit.Changes["file:///a.js"]
	if len(edits) != 1 || edits[0].NewText != "myVar" || edits[0].Range != rename.Range {
		t.Errorf("unexpected edits %+v", edits)
	}
	if fix.Title != "Quill: rename to myVar" {
		t.Errorf("unexpected title %q", fix.Title)
	}

	show := actions[1]
	if show.Edit != nil || show.Command == nil || show.Command.Command != CommandShowSuggestion {
		t.Errorf("expected a show-suggestion command, got %+v", show)
	}
}

func TestGetCodeActions_EditsFixRange(t *testing.T) {
	fixRange := Range{Start: Position{Line: 0, Character: 4}, End: Position{Line: 0, Character: 15}}
	d := Diagnostic{
		Range: Range{Start: Position{Line: 0, Character: 0}, End: Position{Line: 0, Character: 15}},
		Code:  "naming/variable",
		Data:  &DiagnosticData{FixedCode: "myVariable", FixRange: &fixRange},
	}
	actions := GetCodeActions("file:///a.ts", []Diagnostic{d})
	if len(actions) != 1 || actions[0].Edit == nil {
		t.Fatalf("expected one rename, got %+v", actions)
	}
	edits := actions[0].Edit.Changes["file:///a.ts"]
	if len(edits) != 1 || edits[0].Range != fixRange {
		t.Errorf("expected the edit to cover only the identifier, got %+v", edits)
	}
}

func TestGetCodeActions_EmptyRangeHasNoEdit(t *testing.T) {
	d := Diagnostic{
		Range: Range{Start: Position{Line: 1}, End: Position{Line: 1}},
		Data:  &DiagnosticData{FixedCode: "x"},
	}
	if actions := GetCodeActions("file:///a.go", []Diagnostic{d}); len(actions) != 0 {
		t.Errorf("expected no actions, got %+v", actions)
	}
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long title", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"ünïcödé title", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncateTitle(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncateTitle(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFilterDiagnosticsForRange(t *testing.T) {
	diags := []Diagnostic{
		{Code: "a", Range: Range{Start: Position{0, 0}, End: Position{0, 5}}},
		{Code: "b", Range: Range{Start: Position{2, 0}, End: Position{2, 5}}},
		{Code: "c", Range: Range{Start: Position{4, 2}, End: Position{6, 1}}},
	}

	tests := []struct {
		name string
		r    Range
		want []string
	}{
		{"cursor inside first", Range{Start: Position{0, 3}, End: Position{0, 3}}, []string{"a"}},
		{"line between", Range{Start: Position{1, 0}, End: Position{1, 9}}, nil},
		{"spanning multi-line", Range{Start: Position{5, 0}, End: Position{5, 0}}, []string{"c"}},
		{"whole document", Range{Start: Position{0, 0}, End: Position{9, 0}}, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDiagnosticsForRange(diags, tt.r)
			var codes []string
			for _, d := range got {
				codes = append(codes, d.Code)
			}
			if len(codes) != len(tt.want) {
				t.Fatalf("got %v, want %v", codes, tt.want)
			}
			for i := range codes {
				if codes[i] != tt.want[i] {
					t.Errorf("got %v, want %v", codes, tt.want)
				}
			}
		})
	}
}
