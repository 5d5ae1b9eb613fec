package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/quill/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Model Context Protocol server",
	Long: `Start quill as an MCP server on stdin/stdout so that assistants can call
the review_code, list_rules and list_languages tools.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.close(context.Background())

	if err := mcpserver.New(e.analyzer, version, e.logger).Serve(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
