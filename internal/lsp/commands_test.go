package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/chris-regnier/quill/internal/report"
)

func newCommandServer(t *testing.T, out *bytes.Buffer, analyze AnalyzeFunc, cleared *bool) *Server {
	t.Helper()
	cfg := testConfig()
	cfg.ClearCache = func() { *cleared = true }
	return NewServerWithConfig(bufio.NewReader(strings.NewReader("")), bufio.NewWriter(out), analyze, cfg)
}

func TestCommandHandler_Execute(t *testing.T) {
	tests := []struct {
		name        string
		command     string
		args        []any
		wantErr     bool
		wantSuccess bool
	}{
		{"unknown command", "unknown.command", nil, true, false},
		{"analyzeFile without args", CommandAnalyzeFile, nil, false, false},
		{"analyzeFile with non-string arg", CommandAnalyzeFile, []any{42}, false, false},
		{"analyzeFile for closed document", CommandAnalyzeFile, []any{"file:///closed.go"}, false, false},
		{"analyzeWorkspace with nothing open", CommandAnalyzeWorkspace, nil, false, true},
		{"clearCache", CommandClearCache, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var cleared bool
			s := newCommandServer(t, &out, func(context.Context, string, string) (*report.Report, error) {
				return &report.Report{}, nil
			}, &cleared)

			result, err := s.commands.Execute(context.Background(), ExecuteCommandParams{Command: tt.command, Arguments: tt.args})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if result.Success != tt.wantSuccess {
				t.Errorf("Success = %v, want %v (%s)", result.Success, tt.wantSuccess, result.Message)
			}
			if result.Message == "" {
				t.Error("expected a message")
			}
		})
	}
}

func TestCommandAnalyzeWorkspace(t *testing.T) {
	var out bytes.Buffer
	var cleared bool
	var analyzed []string
	s := newCommandServer(t, &out, func(_ context.Context, path, _ string) (*report.Report, error) {
		analyzed = append(analyzed, path)
		return &report.Report{Issues: []report.Issue{{Line: 1, Column: 1, Rule: "r", Severity: report.SeverityInfo}}}, nil
	}, &cleared)

	s.setDocument("file:///w/a.go", document{text: "package a"})
	s.setDocument("file:///w/b.py", document{text: "x = 1"})

	result, err := s.commands.Execute(context.Background(), ExecuteCommandParams{Command: CommandAnalyzeWorkspace})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || len(analyzed) != 2 {
		t.Fatalf("expected 2 files analyzed, got %v (%+v)", analyzed, result)
	}
	if data, ok := result.Data.(map[string]int); !ok || data["filesAnalyzed"] != 2 {
		t.Errorf("unexpected data %+v", result.Data)
	}

	var kinds []string
	r := bufio.NewReader(&out)
	for {
		msg, err := readMessage(r)
		if err != nil {
			break
		}
		if msg.Method != MethodProgress {
			continue
		}
		var p struct {
			Token string          `json:"token"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(msg.Params, &p); err != nil {
			t.Fatal(err)
		}
		var v struct {
			Kind       string `json:"kind"`
			Percentage int    `json:"percentage"`
		}
		json.Unmarshal(p.Value, &v)
		kinds = append(kinds, v.Kind)
		if p.Token != workspaceProgressToken {
			t.Errorf("unexpected token %q", p.Token)
		}
	}
	if strings.Join(kinds, ",") != "begin,report,report,end" {
		t.Errorf("unexpected progress sequence %v", kinds)
	}
}

func TestCommandAnalyzeFile(t *testing.T) {
	var out bytes.Buffer
	var cleared bool
	var content string
	s := newCommandServer(t, &out, func(_ context.Context, _ string, c string) (*report.Report, error) {
		content = c
		return &report.Report{}, nil
	}, &cleared)
	s.setDocument("file:///w/a.go", document{text: "package a"})

	result, err := s.commands.Execute(context.Background(), ExecuteCommandParams{
		Command:   CommandAnalyzeFile,
		Arguments: []any{"file:///w/a.go"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || content != "package a" {
		t.Errorf("expected file to be analyzed, got %+v", result)
	}
	if !strings.Contains(out.String(), MethodTextDocumentPublishDiagnostics) {
		t.Error("expected diagnostics to be published")
	}
}

func TestCommandClearCache(t *testing.T) {
	var out bytes.Buffer
	var cleared bool
	s := newCommandServer(t, &out, nil, &cleared)
	s.results["file:///w/a.go"] = resultsEntry{diagnostics: []Diagnostic{{Code: "x"}}}

	if _, err := s.commands.Execute(context.Background(), ExecuteCommandParams{Command: CommandClearCache}); err != nil {
		t.Fatal(err)
	}
	if len(s.results) != 0 {
		t.Error("expected document results to be dropped")
	}
	if !cleared {
		t.Error("expected analyzer cache to be cleared")
	}
}
