// Package lsp implements a Language Server Protocol server that publishes
// quill issues as diagnostics while documents are edited.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ServerConfig holds configuration for the LSP server
type ServerConfig struct {
	// DebounceDuration delays analysis after a change. Zero analyzes
	// synchronously on every open, change and save.
	DebounceDuration time.Duration
	ParallelFiles    int
	WatchPatterns    []string
	IgnorePatterns   []string
	Version          string
	Logger           *slog.Logger
	// ClearCache is run by the quill.clearCache command.
	ClearCache func()
}

func DefaultServerConfig() ServerConfig {
	w := DefaultWatcherConfig()
	return ServerConfig{
		DebounceDuration: w.DebounceDuration,
		ParallelFiles:    w.ParallelFiles,
		WatchPatterns:    w.WatchPatterns,
		IgnorePatterns:   w.IgnorePatterns,
	}
}

type document struct {
	text       string
	languageID string
}

type resultsEntry struct {
	diagnostics []Diagnostic
}

// Server implements an LSP server over a Content-Length framed stream.
type Server struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	writeMu sync.Mutex
	analyze AnalyzeFunc
	logger  *slog.Logger

	documents map[string]document
	docMu     sync.RWMutex

	// Diagnostics of the last analysis, for code actions.
	results   map[string]resultsEntry
	resultsMu sync.RWMutex

	watcher    *DebouncedWatcher
	progress   *ProgressReporter
	commands   *CommandHandler
	config     ServerConfig
	clearCache func()

	rootURI     string
	initialized bool
}

// NewServer creates a server with the default configuration.
func NewServer(reader *bufio.Reader, writer *bufio.Writer, analyze AnalyzeFunc) *Server {
	return NewServerWithConfig(reader, writer, analyze, DefaultServerConfig())
}

func NewServerWithConfig(reader *bufio.Reader, writer *bufio.Writer, analyze AnalyzeFunc, cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		reader:     reader,
		writer:     writer,
		analyze:    analyze,
		logger:     logger,
		documents:  make(map[string]document),
		results:    make(map[string]resultsEntry),
		config:     cfg,
		clearCache: cfg.ClearCache,
	}
	s.progress = NewProgressReporter(s.sendMessage)
	s.commands = NewCommandHandler(s)

	if cfg.DebounceDuration > 0 {
		s.watcher = NewDebouncedWatcherWithConfig(WatcherConfig{
			DebounceDuration: cfg.DebounceDuration,
			ParallelFiles:    cfg.ParallelFiles,
			WatchPatterns:    cfg.WatchPatterns,
			IgnorePatterns:   cfg.IgnorePatterns,
		}, func(uris []string) {
			for _, uri := range uris {
				if doc, ok := s.document(uri); ok {
					s.analyzeAndPublish(context.Background(), uri, doc)
				}
			}
		})
	}
	return s
}

// jsonRPCMessage represents a JSON-RPC 2.0 message
type jsonRPCMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *responseError  `json:"error,omitempty"`
}

// Run reads messages until exit, end of input, or ctx is cancelled.
// Malformed messages are logged and skipped.
func (s *Server) Run(ctx context.Context) error {
	defer s.stopWatcher()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := readMessage(s.reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			var perr *protocolError
			if errors.As(err, &perr) {
				s.logger.Error("error reading message", "err", err)
				continue
			}
			return err
		}
		if err := s.dispatch(ctx, msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Error("error handling message", "method", msg.Method, "err", err)
		}
	}
}

type protocolError struct{ msg string }

func (e *protocolError) Error() string { return e.msg }

// readMessage reads one framed message. Headers other than
// Content-Length are ignored.
func readMessage(r *bufio.Reader) (*jsonRPCMessage, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if length >= 0 {
				break
			}
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &protocolError{fmt.Sprintf("invalid header: %s", line)}
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return nil, &protocolError{fmt.Sprintf("invalid content length: %s", value)}
			}
			length = n
		}
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	var msg jsonRPCMessage
	if err := json.Unmarshal(buf, &msg); err != nil {
		return nil, &protocolError{fmt.Sprintf("failed to parse JSON-RPC message: %v", err)}
	}
	return &msg, nil
}

func (s *Server) dispatch(ctx context.Context, msg *jsonRPCMessage) error {
	switch msg.Method {
	case MethodInitialize:
		return s.handleInitialize(msg.ID, msg.Params)
	case MethodInitialized:
		s.initialized = true
		return nil
	case MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, msg.Params)
	case MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, msg.Params)
	case MethodTextDocumentDidSave:
		return s.handleDidSave(ctx, msg.Params)
	case MethodTextDocumentDidClose:
		return s.handleDidClose(msg.Params)
	case MethodTextDocumentCodeAction:
		return s.handleCodeAction(msg.ID, msg.Params)
	case MethodWorkspaceExecuteCommand:
		return s.handleExecuteCommand(ctx, msg.ID, msg.Params)
	case MethodWorkspaceDidChangeConfig:
		return s.handleDidChangeConfiguration(msg.Params)
	case MethodShutdown:
		s.stopWatcher()
		return s.sendResponse(msg.ID, nil, nil)
	case MethodExit:
		return io.EOF
	case "":
		// response to a server request such as workDoneProgress/create
		return nil
	default:
		if msg.ID != nil {
			return s.sendResponse(msg.ID, nil, &responseError{Code: codeMethodNotFound, Message: "method not found: " + msg.Method})
		}
		s.logger.Debug("unhandled LSP notification", "method", msg.Method)
		return nil
	}
}

func (s *Server) handleInitialize(id any, params json.RawMessage) error {
	var initParams InitializeParams
	if err := json.Unmarshal(params, &initParams); err != nil {
		return s.sendResponse(id, nil, &responseError{Code: codeInvalidParams, Message: err.Error()})
	}
	s.rootURI = initParams.RootURI

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: &TextDocumentSyncOptions{
				OpenClose: true,
				Change:    SyncFull,
				Save:      true,
			},
			CodeActionProvider: true,
			ExecuteCommandProvider: &ExecuteCommandOptions{
				Commands: []string{
					CommandAnalyzeFile,
					CommandAnalyzeWorkspace,
					CommandClearCache,
				},
			},
		},
		ServerInfo: &ServerInfo{
			Name:    "quill-lsp",
			Version: s.config.Version,
		},
	}
	return s.sendResponse(id, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, params json.RawMessage) error {
	var p DidOpenTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return err
	}
	uri := p.TextDocument.URI
	if !s.shouldAnalyze(uri) {
		return nil
	}
	s.setDocument(uri, document{text: p.TextDocument.Text, languageID: p.TextDocument.LanguageID})
	s.scheduleAnalysis(ctx, uri)
	return nil
}

// handleDidChange applies full-text changes; the last change wins.
func (s *Server) handleDidChange(ctx context.Context, params json.RawMessage) error {
	var p DidChangeTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return err
	}
	uri := p.TextDocument.URI
	doc, ok := s.document(uri)
	if !ok || len(p.ContentChanges) == 0 {
		return nil
	}
	doc.text = p.ContentChanges[len(p.ContentChanges)-1].Text
	s.setDocument(uri, doc)
	s.scheduleAnalysis(ctx, uri)
	return nil
}

func (s *Server) handleDidSave(ctx context.Context, params json.RawMessage) error {
	var p DidSaveTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return err
	}
	uri := p.TextDocument.URI
	doc, ok := s.document(uri)
	if !ok {
		return nil
	}
	if p.Text != nil {
		doc.text = *p.Text
		s.setDocument(uri, doc)
	}
	s.scheduleAnalysis(ctx, uri)
	return nil
}

// handleDidClose forgets the document and clears its diagnostics.
func (s *Server) handleDidClose(params json.RawMessage) error {
	var p DidCloseTextDocumentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return err
	}
	uri := p.TextDocument.URI

	s.docMu.Lock()
	_, open := s.documents[uri]
	delete(s.documents, uri)
	s.docMu.Unlock()

	s.resultsMu.Lock()
	delete(s.results, uri)
	s.resultsMu.Unlock()

	if !open {
		return nil
	}
	return s.publishDiagnostics(uri, []Diagnostic{})
}

func (s *Server) handleCodeAction(id any, params json.RawMessage) error {
	var p CodeActionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.sendResponse(id, nil, &responseError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)})
	}

	s.resultsMu.RLock()
	entry, ok := s.results[p.TextDocument.URI]
	s.resultsMu.RUnlock()
	if !ok {
		return s.sendResponse(id, []CodeAction{}, nil)
	}

	actions := GetCodeActions(p.TextDocument.URI, FilterDiagnosticsForRange(entry.diagnostics, p.Range))
	if actions == nil {
		actions = []CodeAction{}
	}
	return s.sendResponse(id, actions, nil)
}

func (s *Server) handleExecuteCommand(ctx context.Context, id any, params json.RawMessage) error {
	var p ExecuteCommandParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.sendResponse(id, nil, &responseError{Code: codeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)})
	}
	result, err := s.commands.Execute(ctx, p)
	if err != nil {
		return s.sendResponse(id, nil, &responseError{Code: codeInternalError, Message: err.Error()})
	}
	return s.sendResponse(id, result, nil)
}

// handleDidChangeConfiguration reads settings either at the top level or
// under a "quill" key. Invalid settings are ignored.
func (s *Server) handleDidChangeConfiguration(params json.RawMessage) error {
	var p DidChangeConfigurationParams
	if err := json.Unmarshal(params, &p); err != nil {
		return err
	}
	raw, err := json.Marshal(p.Settings)
	if err != nil {
		return nil
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err == nil {
		if quill, ok := sections["quill"]; ok {
			raw = quill
		}
	}
	var settings Settings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil
	}

	update := WatcherConfig{
		ParallelFiles:  settings.ParallelFiles,
		WatchPatterns:  settings.WatchPatterns,
		IgnorePatterns: settings.IgnorePatterns,
	}
	if settings.DebounceDuration != "" {
		if d, err := ParseDuration(settings.DebounceDuration); err == nil {
			update.DebounceDuration = d
		}
	}
	if len(update.WatchPatterns) > 0 {
		s.config.WatchPatterns = update.WatchPatterns
	}
	if len(update.IgnorePatterns) > 0 {
		s.config.IgnorePatterns = update.IgnorePatterns
	}
	if s.watcher != nil {
		s.watcher.UpdateConfig(update)
	}
	s.logger.Debug("settings updated", "settings", settings)
	return nil
}

func (s *Server) scheduleAnalysis(ctx context.Context, uri string) {
	if s.watcher != nil {
		s.watcher.FileChanged(uri)
		return
	}
	if doc, ok := s.document(uri); ok {
		s.analyzeAndPublish(ctx, uri, doc)
	}
}

// analyzeAndPublish analyzes one document and publishes its diagnostics.
func (s *Server) analyzeAndPublish(ctx context.Context, uri string, doc document) {
	rep, err := s.analyze(withLanguageID(ctx, doc.languageID), uriToPath(uri), doc.text)
	if err != nil {
		s.logger.Error("analysis failed", "uri", uri, "err", err)
		return
	}
	diagnostics := ReportToDiagnostics(rep, doc.text)

	s.resultsMu.Lock()
	s.results[uri] = resultsEntry{diagnostics: diagnostics}
	s.resultsMu.Unlock()

	if err := s.publishDiagnostics(uri, diagnostics); err != nil {
		s.logger.Error("failed to publish diagnostics", "uri", uri, "err", err)
	}
}

func (s *Server) shouldAnalyze(uri string) bool {
	return ShouldWatchPath(uri, s.config.WatchPatterns, s.config.IgnorePatterns)
}

func (s *Server) document(uri string) (document, bool) {
	s.docMu.RLock()
	defer s.docMu.RUnlock()
	doc, ok := s.documents[uri]
	return doc, ok
}

func (s *Server) setDocument(uri string, doc document) {
	s.docMu.Lock()
	s.documents[uri] = doc
	s.docMu.Unlock()
}

func (s *Server) snapshot() map[string]document {
	s.docMu.RLock()
	defer s.docMu.RUnlock()
	out := make(map[string]document, len(s.documents))
	for uri, doc := range s.documents {
		out[uri] = doc
	}
	return out
}

func (s *Server) stopWatcher() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
}

func (s *Server) publishDiagnostics(uri string, diagnostics []Diagnostic) error {
	return s.sendMessage(jsonRPCMessage{
		JSONRPC: "2.0",
		Method:  MethodTextDocumentPublishDiagnostics,
		Params:  mustMarshal(PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics}),
	})
}

// sendResponse always carries a result member unless err is set.
func (s *Server) sendResponse(id any, result any, err *responseError) error {
	if err == nil && result == nil {
		result = json.RawMessage("null")
	}
	return s.sendMessage(jsonRPCMessage{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
		Error:   err,
	})
}

func (s *Server) sendMessage(msg jsonRPCMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}

// uriToPath converts a file:// URI to a filesystem path. Other strings
// are returned unchanged.
func uriToPath(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimPrefix(uri, "file://")
	}
	return u.Path
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal: %v", err))
	}
	return data
}
