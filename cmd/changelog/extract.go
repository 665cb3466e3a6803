package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// writeRelease prints a release as a standalone markdown fragment, suitable
// for release notes.
func writeRelease(w io.Writer, doc *Document, r *Release) {
	if r.Date != "" {
		fmt.Fprintf(w, "## [%s] - %s\n\n", r.Version, r.Date)
	} else {
		fmt.Fprintf(w, "## [%s]\n\n", r.Version)
	}
	fmt.Fprintln(w, r.Body)
	if url, ok := doc.Links[r.Version]; ok {
		fmt.Fprintf(w, "\n[%s]: %s\n", r.Version, url)
	}
}

var extractCmd = &cobra.Command{
	Use:   "extract <version>",
	Short: "Print the notes of one release",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := load(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		release := doc.Find(args[0])
		if release == nil {
			fmt.Fprintf(os.Stderr, "changelog: no entry for %s\n", args[0])
			os.Exit(1)
		}
		writeRelease(cmd.OutOrStdout(), doc, release)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the releases in the changelog",
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := load(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		for _, r := range doc.Releases {
			if r.Date == "" {
				fmt.Fprintln(cmd.OutOrStdout(), r.Version)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Version, r.Date)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd, listCmd)
}
