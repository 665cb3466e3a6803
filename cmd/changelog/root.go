package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Keep a Changelog checks for the release pipeline",
	Long: `Parses CHANGELOG.md, validates it against the Keep a Changelog format and
checks that a release tag matches the version of record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
}

// load reads and parses the changelog named by the --file flag.
func load(cmd *cobra.Command) (*Document, error) {
	path, _ := cmd.Flags().GetString("file")
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
		os.Exit(1)
	}
}
