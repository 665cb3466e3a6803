package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/workflow"
)

var workflowApplyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Execute a workflow against Snowflake",
	Long: `Execute a workflow against Snowflake.

All statements run in one transaction, in dependency order. The first
failing statement rolls back the whole workflow. Transient connection errors
are retried (max_retries in snowforge.yml).

With --dry-run the statements are validated and printed but nothing is sent.

Example:
  snowforge workflow apply workflows/orders.yml
  snowforge workflow apply workflows/orders.yml --dry-run
  snowforge workflow apply workflows/orders.yml --env-file prod.env`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		envFile, _ := cmd.Flags().GetString("env-file")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply workflow: %v\n", err)
			os.Exit(1)
		}
		defer a.Close()

		sf, err := a.snowflake(envFile, !dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply workflow: %v\n", err)
			os.Exit(1)
		}

		if _, err := applyFile(ctx, os.Stdout, a, sf, args[0], dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply workflow: %v\n", err)
			a.Close()
			os.Exit(1)
		}
	},
}

func init() {
	workflowCmd.AddCommand(workflowApplyCmd)
	workflowApplyCmd.Flags().Bool("dry-run", false, "validate and print the statements without executing them")
	workflowApplyCmd.Flags().String("env-file", "", "env file to load (default .env when present)")
}

// applyFile loads and executes one workflow file on a fresh engine and
// prints a summary of the run.
func applyFile(ctx context.Context, w io.Writer, a *app, sf *config.SnowflakeConfig, path string, dryRun bool) (*forge.Result, error) {
	file, err := workflow.Load(path)
	if err != nil {
		return nil, err
	}

	engine := a.engine(sf)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = engine.Close(closeCtx)
	}()

	wf, err := file.Workflow(engine)
	if err != nil {
		return nil, err
	}
	result, err := wf.WithDryRun(dryRun).Execute(ctx)
	printResult(w, result)
	return result, err
}

func printResult(w io.Writer, result *forge.Result) {
	if result == nil {
		return
	}
	for _, step := range result.Steps {
		if result.DryRun {
			fmt.Fprintf(w, "-- %d. %s %s\n%s;\n\n", step.Position, step.Action, step.Object, step.SQL)
			continue
		}
		fmt.Fprintf(w, "%3d  %-20s %-30s %6d rows  %s\n",
			step.Position, step.Action, step.Object, step.Rows, step.Duration.Round(time.Millisecond))
	}
	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)
	fmt.Fprintf(w, "run %s: %s %s (%d steps, %s)\n", result.RunID, result.Workflow, result.Status, len(result.Steps), elapsed)
}
