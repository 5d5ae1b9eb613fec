package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/report"
)

const tsURI = "file:///workspace/app.ts"

func frame(method string, id any, params any) string {
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != nil {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	data, _ := json.Marshal(msg)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(data), data)
}

func testConfig() ServerConfig {
	cfg := DefaultServerConfig()
	cfg.DebounceDuration = 0
	cfg.Version = "test"
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return cfg
}

// runServer feeds input to a synchronous server and returns every
// message it wrote.
func runServer(t *testing.T, analyze AnalyzeFunc, cfg ServerConfig, input ...string) []*jsonRPCMessage {
	t.Helper()
	var out bytes.Buffer
	s := NewServerWithConfig(
		bufio.NewReader(strings.NewReader(strings.Join(input, ""))),
		bufio.NewWriter(&out),
		analyze, cfg)
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var msgs []*jsonRPCMessage
	r := bufio.NewReader(&out)
	for {
		msg, err := readMessage(r)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		if err != nil {
			t.Fatalf("reading server output: %v", err)
		}
		msgs = append(msgs, msg)
	}
}

func decodeInto(t *testing.T, v any, target any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
}

func find(msgs []*jsonRPCMessage, match func(*jsonRPCMessage) bool) []*jsonRPCMessage {
	var out []*jsonRPCMessage
	for _, m := range msgs {
		if match(m) {
			out = append(out, m)
		}
	}
	return out
}

func responseTo(msgs []*jsonRPCMessage, id float64) *jsonRPCMessage {
	for _, m := range msgs {
		if m.Method == "" && m.ID == id {
			return m
		}
	}
	return nil
}

func published(t *testing.T, msgs []*jsonRPCMessage) []PublishDiagnosticsParams {
	t.Helper()
	var out []PublishDiagnosticsParams
	for _, m := range find(msgs, func(m *jsonRPCMessage) bool { return m.Method == MethodTextDocumentPublishDiagnostics }) {
		var p PublishDiagnosticsParams
		if err := json.Unmarshal(m.Params, &p); err != nil {
			t.Fatal(err)
		}
		out = append(out, p)
	}
	return out
}

func openDoc(uri, languageID, text string) string {
	return frame(MethodTextDocumentDidOpen, nil, DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: uri, LanguageID: languageID, Version: 1, Text: text},
	})
}

func TestServerInitialize(t *testing.T) {
	msgs := runServer(t, AnalyzerFunc(analyzer.New()), testConfig(),
		frame(MethodInitialize, 1, InitializeParams{RootURI: "file:///workspace"}),
		frame(MethodInitialized, nil, map[string]any{}),
	)

	resp := responseTo(msgs, 1)
	if resp == nil {
		t.Fatalf("no initialize response in %d messages", len(msgs))
	}
	if resp.Error != nil {
		t.Fatalf("unexpected error %+v", resp.Error)
	}

	var result InitializeResult
	decodeInto(t, resp.Result, &result)
	if result.Capabilities.TextDocumentSync == nil || result.Capabilities.TextDocumentSync.Change != SyncFull {
		t.Errorf("expected full text sync, got %+v", result.Capabilities.TextDocumentSync)
	}
	if !result.Capabilities.CodeActionProvider {
		t.Error("expected code action provider")
	}
	if result.ServerInfo == nil || result.ServerInfo.Name != "quill-lsp" || result.ServerInfo.Version != "test" {
		t.Errorf("unexpected server info %+v", result.ServerInfo)
	}
	if cmds := result.Capabilities.ExecuteCommandProvider; cmds == nil || len(cmds.Commands) != 3 {
		t.Errorf("expected 3 commands, got %+v", cmds)
	}
}

func TestServerPublishesDiagnosticsOnOpen(t *testing.T) {
	msgs := runServer(t, AnalyzerFunc(analyzer.New()), testConfig(),
		openDoc(tsURI, "typescript", "let my_variable = 1;\n"),
	)

	pubs := published(t, msgs)
	if len(pubs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(pubs))
	}
	if pubs[0].URI != tsURI {
		t.Errorf("unexpected uri %q", pubs[0].URI)
	}

	var naming *Diagnostic
	for i, d := range pubs[0].Diagnostics {
		if d.Code == "naming/variable" {
			naming = &pubs[0].Diagnostics[i]
		}
	}
	if naming == nil {
		t.Fatalf("expected a naming/variable diagnostic, got %+v", pubs[0].Diagnostics)
	}
	want := Range{Start: Position{0, 0}, End: Position{0, 15}}
	if naming.Range != want {
		t.Errorf("range = %+v, want %+v", naming.Range, want)
	}
	if naming.Data == nil || naming.Data.FixedCode != "myVariable" {
		t.Fatalf("unexpected data %+v", naming.Data)
	}
	wantFix := Range{Start: Position{0, 4}, End: Position{0, 15}}
	if naming.Data.FixRange == nil || *naming.Data.FixRange != wantFix {
		t.Errorf("fix range = %+v, want %+v", naming.Data.FixRange, wantFix)
	}
}

func TestServerChangeSaveAndClose(t *testing.T) {
	var calls atomic.Int32
	var lastContent atomic.Value
	analyze := func(_ context.Context, _ string, content string) (*report.Report, error) {
		calls.Add(1)
		lastContent.Store(content)
		return &report.Report{}, nil
	}
	saved := "let b = 2;\n"

	msgs := runServer(t, analyze, testConfig(),
		openDoc(tsURI, "typescript", "let a = 1;\n"),
		frame(MethodTextDocumentDidChange, nil, DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{URI: tsURI, Version: 2},
			ContentChanges: []TextDocumentContentChangeEvent{{Text: "let x = 0;\n"}, {Text: "let a = 3;\n"}},
		}),
		frame(MethodTextDocumentDidSave, nil, DidSaveTextDocumentParams{
			TextDocument: TextDocumentIdentifier{URI: tsURI},
			Text:         &saved,
		}),
		frame(MethodTextDocumentDidClose, nil, DidCloseTextDocumentParams{
			TextDocument: TextDocumentIdentifier{URI: tsURI},
		}),
	)

	if calls.Load() != 3 {
		t.Errorf("expected 3 analyses, got %d", calls.Load())
	}
	if got := lastContent.Load(); got != saved {
		t.Errorf("expected saved text to be analyzed last, got %q", got)
	}

	pubs := published(t, msgs)
	if len(pubs) != 4 {
		t.Fatalf("expected 4 publishes (3 analyses + close), got %d", len(pubs))
	}
	if last := pubs[3]; last.Diagnostics == nil || len(last.Diagnostics) != 0 {
		t.Errorf("expected close to clear diagnostics, got %+v", last.Diagnostics)
	}
}

func TestServerIgnoresUnwatchedDocuments(t *testing.T) {
	var calls atomic.Int32
	analyze := func(context.Context, string, string) (*report.Report, error) {
		calls.Add(1)
		return &report.Report{}, nil
	}

	msgs := runServer(t, analyze, testConfig(),
		openDoc("file:///workspace/README.md", "markdown", "# hi"),
		openDoc("file:///workspace/node_modules/x/index.js", "javascript", "var a;"),
	)
	if calls.Load() != 0 || len(published(t, msgs)) != 0 {
		t.Errorf("expected no analysis, got %d calls", calls.Load())
	}
}

func TestServerCodeAction(t *testing.T) {
	msgs := runServer(t, AnalyzerFunc(analyzer.New()), testConfig(),
		openDoc(tsURI, "typescript", "let my_variable = 1;\n"),
		frame(MethodTextDocumentCodeAction, 7, CodeActionParams{
			TextDocument: TextDocumentIdentifier{URI: tsURI},
			Range:        Range{Start: Position{0, 6}, End: Position{0, 6}},
		}),
		frame(MethodTextDocumentCodeAction, 8, CodeActionParams{
			TextDocument: TextDocumentIdentifier{URI: "file:///workspace/other.ts"},
		}),
	)

	var actions []CodeAction
	decodeInto(t, responseTo(msgs, 7).Result, &actions)

	var rename *CodeAction
	for i, a := range actions {
		if a.Edit != nil {
			rename = &actions[i]
		}
	}
	if rename == nil {
		t.Fatalf("expected a rename quick fix, got %+v", actions)
	}
	edits := rename.Edit.Changes[tsURI]
	want := Range{Start: Position{0, 4}, End: Position{0, 15}}
	if len(edits) != 1 || edits[0].NewText != "myVariable" || edits[0].Range != want {
		t.Errorf("unexpected edits %+v", edits)
	}

	var none []CodeAction
	decodeInto(t, responseTo(msgs, 8).Result, &none)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty action list for unknown document, got %+v", none)
	}
}

func TestServerLanguageIDFallback(t *testing.T) {
	cfg := testConfig()
	cfg.WatchPatterns = nil

	msgs := runServer(t, AnalyzerFunc(analyzer.New()), cfg,
		openDoc("untitled:Untitled-1", "python", "def myFunc():\n    pass\n"),
		openDoc("untitled:Untitled-2", "plaintext", "def myFunc():\n    pass\n"),
	)

	pubs := published(t, msgs)
	if len(pubs) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(pubs))
	}
	if len(pubs[0].Diagnostics) == 0 {
		t.Error("expected python diagnostics from the language id")
	}
	if len(pubs[1].Diagnostics) != 0 {
		t.Errorf("expected no diagnostics for plaintext, got %+v", pubs[1].Diagnostics)
	}
}

func TestServerAnalysisError(t *testing.T) {
	analyze := func(context.Context, string, string) (*report.Report, error) {
		return nil, errors.New("boom")
	}
	msgs := runServer(t, analyze, testConfig(), openDoc(tsURI, "typescript", "x"))
	if len(published(t, msgs)) != 0 {
		t.Error("expected nothing published when analysis fails")
	}
}

func TestServerShutdownAndUnknownRequest(t *testing.T) {
	msgs := runServer(t, AnalyzerFunc(analyzer.New()), testConfig(),
		frame("textDocument/hover", 3, map[string]any{}),
		frame("$/cancelRequest", nil, map[string]any{"id": 1}),
		frame(MethodShutdown, 4, nil),
		frame(MethodExit, nil, nil),
		openDoc(tsURI, "typescript", "let my_variable = 1;"),
	)

	unknown := responseTo(msgs, 3)
	if unknown == nil || unknown.Error == nil || unknown.Error.Code != codeMethodNotFound {
		t.Errorf("expected method-not-found for hover, got %+v", unknown)
	}
	shutdown := responseTo(msgs, 4)
	if shutdown == nil || shutdown.Error != nil {
		t.Errorf("expected successful shutdown response, got %+v", shutdown)
	}
	if len(published(t, msgs)) != 0 {
		t.Error("expected messages after exit to be ignored")
	}
}

func TestReadMessage(t *testing.T) {
	body := `{"jsonrpc":"2.0","method":"initialized"}`
	input := fmt.Sprintf("Content-Type: application/vscode-jsonrpc; charset=utf-8\r\nContent-Length: %d\r\n\r\n%s", len(body), body)

	msg, err := readMessage(bufio.NewReader(strings.NewReader(input)))
	if err != nil {
		t.Fatal(err)
	}
	if msg.Method != MethodInitialized {
		t.Errorf("unexpected method %q", msg.Method)
	}

	var perr *protocolError
	if _, err := readMessage(bufio.NewReader(strings.NewReader("garbage\r\n\r\n"))); !errors.As(err, &perr) {
		t.Errorf("expected protocol error, got %v", err)
	}
	if _, err := readMessage(bufio.NewReader(strings.NewReader(""))); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestServerSkipsMalformedMessages(t *testing.T) {
	msgs := runServer(t, AnalyzerFunc(analyzer.New()), testConfig(),
		"Content-Length: 5\r\n\r\n{nope",
		frame(MethodInitialize, 1, InitializeParams{}),
	)
	if responseTo(msgs, 1) == nil {
		t.Error("expected server to keep reading after a malformed body")
	}
}

func TestURIToPath(t *testing.T) {
	tests := map[string]string{
		"file:///home/user/main.go":  "/home/user/main.go",
		"file:///home/my%20dir/a.py": "/home/my dir/a.py",
		"/already/a/path.ts":         "/already/a/path.ts",
		"untitled:Untitled-1":        "untitled:Untitled-1",
	}
	for uri, want := range tests {
		if got := uriToPath(uri); got != want {
			t.Errorf("uriToPath(%q) = %q, want %q", uri, got, want)
		}
	}
}
