package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "docs <dir>",
	Short:  "Generate markdown reference pages for every command",
	Args:   cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(args[0], 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", args[0], err)
			os.Exit(1)
		}
		rootCmd.DisableAutoGenTag = true
		if err := doc.GenMarkdownTree(rootCmd, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate docs: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote command reference to %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
}
