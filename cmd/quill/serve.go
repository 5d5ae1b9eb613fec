package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/quill/internal/output"
	"github.com/chris-regnier/quill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review API over HTTP",
	RunE:  runServe,
}

var (
	serveAddr     string
	serveJSONLogs bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Write logs as JSON")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.close(context.Background())
	if serveJSONLogs {
		e.logger = output.SetupJSONLogger(flagQuiet, flagVerbose, flagDebug, os.Stderr)
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	addr := serveAddr
	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	srv := server.New(server.Config{
		Analyzer:  e.analyzer,
		Collector: e.collector,
		Store:     st,
		Logger:    e.logger,
		Version:   version,
	})
	if err := srv.Serve(ctx, addr); err != nil {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}
