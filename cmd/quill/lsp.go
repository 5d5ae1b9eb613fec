package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/quill/internal/lsp"
)

var (
	lspDebounce string
	lspParallel int
)

func init() {
	cmd := newLSPCmd()
	rootCmd.AddCommand(cmd)
}

func newLSPCmd() *cobra.Command {
	defaults := lsp.DefaultServerConfig()

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start quill in LSP mode to publish review issues as diagnostics while you edit.

The LSP server listens on stdin/stdout. Configuration is loaded from tiered
sources (system, machine, project).`,
		RunE: runLSP,
	}

	cmd.Flags().StringVar(&lspDebounce, "debounce", defaults.DebounceDuration.String(), "Delay before re-reviewing a saved file (0 reviews immediately)")
	cmd.Flags().IntVar(&lspParallel, "parallel", defaults.ParallelFiles, "Maximum files reviewed at once")

	return cmd
}

func runLSP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	debounce, err := lsp.ParseDuration(lspDebounce)
	if err != nil {
		return fmt.Errorf("invalid --debounce: %w", err)
	}

	e, err := newEnv(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	cfg := lsp.DefaultServerConfig()
	cfg.DebounceDuration = debounce
	cfg.ParallelFiles = lspParallel
	cfg.Version = version
	cfg.Logger = e.logger
	cfg.ClearCache = func() {
		if e.cache != nil {
			e.cache.Clear()
		}
	}

	reader := bufio.NewReader(os.Stdin)
	writer := bufio.NewWriter(os.Stdout)

	server := lsp.NewServerWithConfig(reader, writer, lsp.AnalyzerFunc(e.analyzer), cfg)
	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("LSP server error: %w", err)
	}
	return nil
}
