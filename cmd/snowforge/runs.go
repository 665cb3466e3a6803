package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/db"
	"github.com/snowforge/snowforge/pkg/ledger"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect workflow runs recorded in the ledger",
	Long:  `Inspect workflow runs recorded in the ledger database (SNOWFORGE_LEDGER_URL).`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'runs' requires a subcommand (list, show)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := withLedger(func(store ledger.Store) error {
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if output == "json" {
				return writeJSON(os.Stdout, runs)
			}
			printRuns(os.Stdout, runs)
			return nil
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list runs: %v\n", err)
			os.Exit(1)
		}
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run and its steps",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		id, err := uuid.Parse(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid run id %q: %v\n", args[0], err)
			os.Exit(1)
		}

		if err := withLedger(func(store ledger.Store) error {
			return showRun(cmd.Context(), os.Stdout, store, id, output)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show run: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntP("limit", "n", 20, "number of runs to list")
	runsListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	runsShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func withLedger(fn func(ledger.Store) error) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return fn(ledger.NewGormStore(database))
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printRuns(w io.Writer, runs []ledger.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWORKFLOW\tSTATUS\tSTEPS\tSTARTED\tDURATION")
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID, run.Workflow, run.Status, run.Steps, run.StartedAt.Format(time.RFC3339), duration)
	}
	_ = tw.Flush()
}

func showRun(ctx context.Context, w io.Writer, store ledger.Store, id uuid.UUID, output string) error {
	run, err := store.GetRun(ctx, id)
	if err != nil {
		return err
	}
	steps, err := store.ListSteps(ctx, id)
	if err != nil {
		return err
	}

	if output == "json" {
		return writeJSON(w, map[string]interface{}{"run": run, "steps": steps})
	}

	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Workflow: %s\n", run.Workflow)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	if run.DryRun {
		fmt.Fprintln(w, "Dry run:  yes")
	}
	if run.Account != "" {
		fmt.Fprintf(w, "Account:  %s (%s)\n", run.Account, run.User)
	}
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "Finished: %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	if run.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.Error)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tACTION\tOBJECT\tROWS\tDURATION")
	for _, step := range steps {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%dms\n", step.Position, step.Action, step.Object, step.Rows, step.DurationMS)
	}
	return tw.Flush()
}
