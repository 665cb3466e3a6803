package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/workflow"
	"github.com/snowforge/snowforge/pkg/workflow/plan"
)

var workflowPlanCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Show the SQL of a workflow in execution order",
	Long: `Show the SQL of a workflow in execution order.

Statements are ordered so every object is created before the statements that
use it. Nothing is sent to Snowflake.

Example:
  snowforge workflow plan workflows/orders.yml
  snowforge workflow plan workflows/orders.yml -o json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := planWorkflow(os.Stdout, args[0], output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to plan workflow: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workflowCmd.AddCommand(workflowPlanCmd)
	workflowPlanCmd.Flags().StringP("output", "o", "sql", "Output format (sql or json)")
}

type plannedStep struct {
	Position  int          `json:"position"`
	Key       string       `json:"key"`
	Action    forge.Action `json:"action"`
	SQL       string       `json:"sql"`
	DependsOn []string     `json:"depends_on,omitempty"`
}

func planWorkflow(w io.Writer, path, output string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	file, err := workflow.Load(path)
	if err != nil {
		return err
	}

	var steps []plan.Step
	p, err := file.Plan()
	if err == nil {
		steps, err = p.Steps()
	}
	if a.auditor != nil {
		a.auditor.Plan(file.Name, file.SHA256(), len(steps), err)
	}
	if err != nil {
		return err
	}

	if output == "json" {
		planned := make([]plannedStep, len(steps))
		for i, step := range steps {
			planned[i] = plannedStep{
				Position:  i + 1,
				Key:       step.Key,
				Action:    forge.ActionFor(step.Statement),
				SQL:       step.Statement.SQL(),
				DependsOn: step.DependsOn,
			}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(planned)
	}

	for i, step := range steps {
		fmt.Fprintf(w, "-- %d. %s", i+1, step.Key)
		if len(step.DependsOn) > 0 {
			fmt.Fprintf(w, " (after %s)", strings.Join(step.DependsOn, ", "))
		}
		fmt.Fprintf(w, "\n%s;\n\n", strings.TrimSuffix(step.Statement.SQL(), ";"))
	}
	return nil
}
