package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagQuiet     bool
	flagVerbose   bool
	flagDebug     bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:           "quill",
	Short:         "Rule-based code review for JavaScript, TypeScript, Python, Java and Go",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("quill %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built at: %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress information")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log debug information")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", ".quill", "Project directory holding config.yaml and rules/")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
