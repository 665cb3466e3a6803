package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the snowforge version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		printVersion(cmd.OutOrStdout(), short)
	},
}

// printVersion writes the version of record, with the build commit unless
// short is set.
func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version.Version)
		return
	}
	fmt.Fprintln(w, version.String())
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version, without the commit")
	rootCmd.AddCommand(versionCmd)
}
