package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snowforge/snowforge/pkg/workflow"
)

var workflowValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate workflow files",
	Long: `Validate workflow files without connecting to Snowflake.

Each file is parsed, every statement is checked for required fields and the
dependency plan is built, which rejects cycles and objects defined twice.
Files are validated concurrently and every failure is reported.

Example:
  snowforge workflow validate workflows/*.yml`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		results := validateFiles(cmd.Context(), args)

		failed := 0
		for _, result := range results {
			if result.Err != nil {
				failed++
				fmt.Fprintf(os.Stderr, "%s: %v\n", result.Path, result.Err)
				continue
			}
			fmt.Printf("%s: ok (%d statements)\n", result.Path, result.Statements)
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d of %d workflow files are invalid\n", failed, len(results))
			os.Exit(1)
		}
	},
}

func init() {
	workflowCmd.AddCommand(workflowValidateCmd)
}

// validation is the outcome for one file.
type validation struct {
	Path       string
	Statements int
	Err        error
}

// validateFiles validates paths concurrently. Results keep the order of
// paths.
func validateFiles(ctx context.Context, paths []string) []validation {
	results := make([]validation, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = validation{Path: path}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			file, err := workflow.Load(path)
			if err != nil {
				results[i].Err = err
				return nil
			}
			if _, err := file.Plan(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Statements = len(file.Statements)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
