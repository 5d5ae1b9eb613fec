package lsp

import (
	"context"
	"fmt"
)

const workspaceProgressToken = "quill-workspace-analysis"

// CommandResult is returned by every workspace command.
type CommandResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// CommandHandler handles workspace/executeCommand requests
type CommandHandler struct {
	server *Server
}

func NewCommandHandler(server *Server) *CommandHandler {
	return &CommandHandler{server: server}
}

// Execute runs a command. Unknown commands are an error; bad arguments
// produce an unsuccessful result.
func (h *CommandHandler) Execute(ctx context.Context, params ExecuteCommandParams) (*CommandResult, error) {
	switch params.Command {
	case CommandAnalyzeFile:
		return h.analyzeFile(ctx, params.Arguments), nil
	case CommandAnalyzeWorkspace:
		return h.analyzeWorkspace(ctx), nil
	case CommandClearCache:
		return h.clearCache(), nil
	default:
		return nil, fmt.Errorf("unknown command: %s", params.Command)
	}
}

func (h *CommandHandler) analyzeFile(ctx context.Context, args []any) *CommandResult {
	if len(args) < 1 {
		return &CommandResult{Message: "file URI argument required"}
	}
	uri, ok := args[0].(string)
	if !ok {
		return &CommandResult{Message: "file URI must be a string"}
	}

	content, ok := h.server.document(uri)
	if !ok {
		return &CommandResult{Message: fmt.Sprintf("document not open: %s", uri)}
	}

	h.server.analyzeAndPublish(ctx, uri, content)
	return &CommandResult{
		Success: true,
		Message: fmt.Sprintf("Analyzed %s", uri),
	}
}

// analyzeWorkspace re-analyzes every open document that matches the
// watch patterns, reporting progress to the client.
func (h *CommandHandler) analyzeWorkspace(ctx context.Context) *CommandResult {
	docs := h.server.snapshot()
	var uris []string
	for uri := range docs {
		if h.server.shouldAnalyze(uri) {
			uris = append(uris, uri)
		}
	}
	if len(uris) == 0 {
		return &CommandResult{Success: true, Message: "No documents open to analyze"}
	}

	progress := h.server.progress
	if err := progress.Begin(workspaceProgressToken, "Analyzing workspace"); err != nil {
		h.server.logger.Debug("progress begin failed", "err", err)
	}
	for i, uri := range uris {
		h.server.analyzeAndPublish(ctx, uri, docs[uri])
		_ = progress.Report(workspaceProgressToken,
			fmt.Sprintf("Analyzed %d/%d files", i+1, len(uris)),
			(i+1)*100/len(uris))
	}
	_ = progress.End(workspaceProgressToken, fmt.Sprintf("Analyzed %d files", len(uris)))

	return &CommandResult{
		Success: true,
		Message: fmt.Sprintf("Analyzed %d files", len(uris)),
		Data:    map[string]int{"filesAnalyzed": len(uris)},
	}
}

// clearCache drops the per-document results and, when configured, the
// analyzer's report cache.
func (h *CommandHandler) clearCache() *CommandResult {
	h.server.resultsMu.Lock()
	h.server.results = make(map[string]resultsEntry)
	h.server.resultsMu.Unlock()

	if h.server.clearCache != nil {
		h.server.clearCache()
	}
	return &CommandResult{Success: true, Message: "Cache cleared"}
}
