package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chris-regnier/quill/internal/evaluator"
	"github.com/chris-regnier/quill/internal/input"
	"github.com/chris-regnier/quill/internal/lang"
	"github.com/chris-regnier/quill/internal/metrics"
	"github.com/chris-regnier/quill/internal/output"
	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/review"
	"github.com/chris-regnier/quill/internal/sarif"
	"github.com/chris-regnier/quill/internal/store"
)

// errGateFailed is returned when the gate decides the run fails.
var errGateFailed = errors.New("gate decision: fail")

var reviewCmd = &cobra.Command{
	Use:   "review [paths...]",
	Short: "Review source files, directories or stdin",
	Long: `Review source code with quill's lint and naming rules.

Paths may be files or directories. Directories are walked and every file with
a supported extension is reviewed. Use --stdin to review standard input.`,
	RunE: runReview,
}

var (
	reviewLang        string
	reviewStdin       bool
	reviewStdinName   string
	reviewFormat      string
	reviewSave        bool
	reviewGate        bool
	reviewRegoDir     string
	reviewInteractive bool
	reviewStats       bool
)

func init() {
	reviewCmd.Flags().StringVarP(&reviewLang, "lang", "l", "", "Language of every input, overriding extension detection")
	reviewCmd.Flags().BoolVar(&reviewStdin, "stdin", false, "Review standard input")
	reviewCmd.Flags().StringVar(&reviewStdinName, "stdin-name", input.StdinName, "Name reported for standard input; its extension selects the language")
	reviewCmd.Flags().StringVarP(&reviewFormat, "format", "f", "", "Output format: json, sarif, markdown, pretty (default: pretty on a terminal, json otherwise)")
	reviewCmd.Flags().BoolVar(&reviewSave, "save", false, "Save each report to the review store")
	reviewCmd.Flags().BoolVar(&reviewGate, "gate", false, "Evaluate the gate policy and exit non-zero on fail")
	reviewCmd.Flags().StringVar(&reviewRegoDir, "rego", "", "Directory of Rego policies for the gate (default: gate.rego_dir from config)")
	reviewCmd.Flags().BoolVarP(&reviewInteractive, "interactive", "i", false, "Browse the findings in a terminal UI")
	reviewCmd.Flags().BoolVar(&reviewStats, "stats", false, "Print analysis metrics to stderr when done")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	e, err := newEnv(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer e.close(ctx)

	var forced lang.Language
	if reviewLang != "" {
		if forced, err = lang.Parse(reviewLang); err != nil {
			return err
		}
	}

	sources, err := readSources(input.NewHandler(forced, e.logger), args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		e.logger.Warn("no reviewable files found", "paths", args)
	}

	files, err := reviewSources(ctx, e, sources)
	if err != nil {
		return err
	}

	result := &output.AnalysisOutput{Files: files}
	if result.Rules, err = ruleDescriptors(e, sources); err != nil {
		return err
	}

	if reviewGate || reviewSave {
		regoDir := reviewRegoDir
		if regoDir == "" {
			regoDir = e.cfg.Gate.RegoDir
		}
		eval, err := evaluator.NewEvaluator(regoDir)
		if err != nil {
			return fmt.Errorf("creating evaluator: %w", err)
		}
		if result.Verdict, err = eval.Evaluate(ctx, reports(files)...); err != nil {
			return fmt.Errorf("evaluating gate: %w", err)
		}
		e.logger.Info("gate evaluated", "decision", result.Verdict.Decision, "reason", result.Verdict.Reason)
	}

	var ids []string
	if reviewSave {
		if ids, err = saveReviews(ctx, e, files, result.Verdict); err != nil {
			return err
		}
		for i, id := range ids {
			e.logger.Info("saved review", "id", id, "path", files[i].Path)
		}
	}

	if reviewStats {
		if err := metrics.WriteReport(cmd.ErrOrStderr(), e.collector); err != nil {
			return err
		}
	}

	if reviewInteractive {
		var reportID string
		if len(ids) > 0 {
			reportID = ids[0]
		}
		if err := review.Run(files, filepath.Join(flagConfigDir, "review-state.json"), reportID); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
	} else if err := writeOutput(cmd.OutOrStdout(), reviewFormat, e.cfg.Output.Format, result); err != nil {
		return err
	}

	if reviewGate && result.Verdict != nil && result.Verdict.Decision == evaluator.DecisionFail {
		return errGateFailed
	}
	return nil
}

func readSources(h *input.Handler, paths []string, stdin io.Reader) ([]input.Source, error) {
	switch {
	case reviewStdin && len(paths) > 0:
		return nil, errors.New("--stdin cannot be combined with paths")
	case reviewStdin:
		src, err := h.ReadStdin(stdin, reviewStdinName)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		return []input.Source{src}, nil
	case len(paths) == 0:
		return nil, errors.New("specify paths to review or --stdin")
	}
	sources, err := h.ReadPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return sources, nil
}

// reviewSources reviews every source in parallel. The result keeps the
// order of sources.
func reviewSources(ctx context.Context, e *env, sources []input.Source) ([]output.FileReport, error) {
	files := make([]output.FileReport, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range sources {
		g.Go(func() error {
			rep, err := e.analyzer.Review(gctx, src.Content, src.Language)
			if err != nil {
				return fmt.Errorf("reviewing %s: %w", src.Path, err)
			}
			files[i] = output.FileReport{Path: src.Path, Source: src.Content, Report: rep}
			e.logger.Debug("reviewed", "path", src.Path, "language", src.Language, "issues", rep.Summary.Total)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// ruleDescriptors lists the effective rules of every language reviewed.
func ruleDescriptors(e *env, sources []input.Source) ([]sarif.ReportingDescriptor, error) {
	seen := make(map[lang.Language]bool)
	ids := make(map[string]bool)
	var out []sarif.ReportingDescriptor
	for _, src := range sources {
		if seen[src.Language] {
			continue
		}
		seen[src.Language] = true
		infos, err := e.analyzer.Rules(src.Language)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			// languages share naming and many lint rule ids
			if ids[info.ID] {
				continue
			}
			ids[info.ID] = true
			out = append(out, sarif.Descriptor(info.ID, info.Severity, info.Category, info.Suggestion))
		}
	}
	return out, nil
}

func saveReviews(ctx context.Context, e *env, files []output.FileReport, verdict *store.Verdict) ([]string, error) {
	s, err := e.openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	ids := make([]string, 0, len(files))
	for _, f := range files {
		id, err := s.WriteReport(ctx, &store.Record{Path: f.Path, Report: f.Report})
		if err != nil {
			return nil, fmt.Errorf("saving review of %s: %w", f.Path, err)
		}
		if verdict != nil {
			if err := s.WriteVerdict(ctx, id, verdict); err != nil {
				return nil, fmt.Errorf("saving verdict: %w", err)
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// writeOutput formats result to w. The format flag wins, then the
// configured format on a terminal, then json.
func writeOutput(w io.Writer, flagFormat, configured string, result *output.AnalysisOutput) error {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	format := flagFormat
	if format == "" && tty {
		format = configured
	}
	formatter, err := newFormatter(output.ResolveFormat(format, tty), tty)
	if err != nil {
		return err
	}
	data, err := formatter.Format(result)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func newFormatter(format string, color bool) (output.Formatter, error) {
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return nil, err
	}
	switch f := formatter.(type) {
	case *output.SARIFFormatter:
		f.Version = version
	case *output.PrettyFormatter:
		f.Color = color
	}
	return formatter, nil
}

func reports(files []output.FileReport) []*report.Report {
	out := make([]*report.Report, len(files))
	for i, f := range files {
		out[i] = f.Report
	}
	return out
}
