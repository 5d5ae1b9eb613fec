package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/quill/internal/analyzer"
	"github.com/chris-regnier/quill/internal/lang"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the effective rules for a language",
	Long: `List the rules quill applies to a language after custom rules, disabled
rules and severity overrides from the configuration are applied.`,
	RunE: runRules,
}

var (
	rulesLang string
	rulesJSON bool
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func init() {
	rulesCmd.Flags().StringVarP(&rulesLang, "lang", "l", "", "Language to list rules for (required)")
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Print rules as JSON")
	_ = rulesCmd.MarkFlagRequired("lang")

	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	language, err := lang.Parse(rulesLang)
	if err != nil {
		return err
	}

	e, err := newEnv(cmd.Context(), os.Stderr)
	if err != nil {
		return err
	}
	defer e.close(cmd.Context())

	infos, err := e.analyzer.Rules(language)
	if err != nil {
		return err
	}

	if rulesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rulesTable(infos))
	return err
}

func rulesTable(infos []analyzer.RuleInfo) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RULE", "SEVERITY", "CATEGORY", "ORIGIN", "SUGGESTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, info := range infos {
		t.Row(info.ID, string(info.Severity), string(info.Category), info.Origin, info.Suggestion)
	}
	return t.String()
}
