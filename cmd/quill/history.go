package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/quill/internal/output"
	"github.com/chris-regnier/quill/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved reviews, newest first",
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved review",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	historyLimit int
	historyJSON  bool
	showFormat   string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum reviews to list (0 lists all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print reviews as JSON")
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "", "Output format: json, sarif, markdown, pretty")

	rootCmd.AddCommand(historyCmd, showCmd)
}

type historyEntry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Language  string    `json:"language"`
	Issues    int       `json:"issues"`
	Decision  string    `json:"decision,omitempty"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("invalid --limit %d", historyLimit)
	}
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	ids, err := st.List(ctx)
	if err != nil {
		return err
	}
	if historyLimit > 0 {
		ids = ids[:min(historyLimit, len(ids))]
	}

	entries := make([]historyEntry, 0, len(ids))
	for _, id := range ids {
		rec, err := st.ReadReport(ctx, id)
		if err != nil {
			return fmt.Errorf("reading review %s: %w", id, err)
		}
		entry := historyEntry{ID: rec.ID, Path: rec.Path, CreatedAt: rec.CreatedAt}
		if rec.Report != nil {
			entry.Language = string(rec.Report.Language)
			entry.Issues = rec.Report.Summary.Total
		}
		verdict, err := st.ReadVerdict(ctx, id)
		switch {
		case err == nil:
			entry.Decision = verdict.Decision
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		entries = append(entries, entry)
	}

	if historyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No saved reviews.")
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "CREATED", "PATH", "LANGUAGE", "ISSUES", "DECISION")
	for _, e := range entries {
		t.Row(e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Path, e.Language, fmt.Sprint(e.Issues), e.Decision)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return err
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	rec, err := st.ReadReport(ctx, args[0])
	if err != nil {
		return err
	}
	result := &output.AnalysisOutput{
		Files: []output.FileReport{{Path: rec.Path, Report: rec.Report}},
	}
	verdict, err := st.ReadVerdict(ctx, rec.ID)
	switch {
	case err == nil:
		result.Verdict = verdict
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	return writeOutput(cmd.OutOrStdout(), showFormat, cfg.Output.Format, result)
}
