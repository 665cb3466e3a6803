package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/snowforge/snowforge/pkg/version"
	"github.com/spf13/cobra"
)

// CheckRelease verifies that tag names the canonical version and that the
// changelog has a dated entry for it.
func CheckRelease(doc *Document, tag, canonical string) error {
	tagged := strings.TrimPrefix(strings.TrimSpace(tag), "v")
	want := strings.TrimPrefix(canonical, "v")
	if tagged == "" {
		return fmt.Errorf("empty release tag")
	}
	if tagged != want {
		return fmt.Errorf("tag %s does not match version %s", tag, canonical)
	}
	release := doc.Find(want)
	if release == nil {
		return fmt.Errorf("changelog has no entry for %s", want)
	}
	if release.Date == "" {
		return fmt.Errorf("changelog entry for %s has no release date", want)
	}
	return nil
}

var checkVersionCmd = &cobra.Command{
	Use:   "check-version",
	Short: "Verify a release tag against the version of record",
	Example: `  changelog check-version --tag v0.4.0
  changelog check-version --tag "$GITHUB_REF_NAME" -f CHANGELOG.md`,
	Run: func(cmd *cobra.Command, args []string) {
		tag, _ := cmd.Flags().GetString("tag")
		doc, err := load(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		if err := CheckRelease(doc, tag, version.Version); err != nil {
			fmt.Fprintf(os.Stderr, "changelog: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s matches %s\n", tag, version.Version)
	},
}

func init() {
	checkVersionCmd.Flags().String("tag", "", "Release tag, for example v1.2.3")
	_ = checkVersionCmd.MarkFlagRequired("tag")
	rootCmd.AddCommand(checkVersionCmd)
}
