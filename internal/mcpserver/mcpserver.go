// Package mcpserver exposes the review engine as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/lang"
)

const serverName = "quill"

// Tool names.
const (
	ToolReviewCode    = "review_code"
	ToolListRules     = "list_rules"
	ToolListLanguages = "list_languages"
)

// Server wraps an MCP server whose tools run against one Analyzer.
type Server struct {
	analyzer *analyzer.Analyzer
	logger   *slog.Logger
	mcp      *server.MCPServer
}

// New creates a Server and registers its tools.
func New(a *analyzer.Analyzer, version string, logger *slog.Logger) *Server {
	if a == nil {
		a = analyzer.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		analyzer: a,
		logger:   logger,
		mcp:      server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool(ToolReviewCode,
		mcp.WithDescription("Review a source snippet with quill's lint and naming rules. Returns the report as JSON."),
		mcp.WithString("code", mcp.Required(), mcp.Description("Source text to review")),
		mcp.WithString("language", mcp.Required(), mcp.Description("Language of the source"), mcp.Enum(languageTags()...)),
	), s.reviewCode)

	s.mcp.AddTool(mcp.NewTool(ToolListRules,
		mcp.WithDescription("List the effective rules for a language."),
		mcp.WithString("language", mcp.Required(), mcp.Description("Language to list rules for"), mcp.Enum(languageTags()...)),
	), s.listRules)

	s.mcp.AddTool(mcp.NewTool(ToolListLanguages,
		mcp.WithDescription("List the languages quill can review."),
	), s.listLanguages)

	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("starting MCP server", "tools", []string{ToolReviewCode, ToolListRules, ToolListLanguages})
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) reviewCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := req.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag, err := req.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	language, err := lang.Parse(tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep, err := s.analyzer.Review(ctx, code, language)
	if err != nil {
		s.logger.Warn("review tool failed", "language", language, "err", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) listRules(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("language")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	language, err := lang.Parse(tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	infos, err := s.analyzer.Rules(language)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(infos)
}

type languageEntry struct {
	ID        lang.Language `json:"id"`
	Label     string        `json:"label"`
	Extension string        `json:"extension"`
}

func (s *Server) listLanguages(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []languageEntry
	for _, l := range lang.All() {
		out = append(out, languageEntry{ID: l, Label: l.Label(), Extension: l.Extension()})
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func languageTags() []string {
	all := lang.All()
	tags := make([]string, len(all))
	for i, l := range all {
		tags[i] = string(l)
	}
	return tags
}
