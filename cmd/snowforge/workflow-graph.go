package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/workflow"
)

var workflowGraphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print the dependency graph of a workflow in DOT format",
	Long: `Print the dependency graph of a workflow in Graphviz DOT format.

Example:
  snowforge workflow graph workflows/orders.yml | dot -Tsvg > orders.svg`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := graphWorkflow(os.Stdout, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to draw workflow: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workflowCmd.AddCommand(workflowGraphCmd)
}

func graphWorkflow(w io.Writer, path string) error {
	file, err := workflow.Load(path)
	if err != nil {
		return err
	}
	p, err := file.Plan()
	if err != nil {
		return err
	}
	return p.WriteDOT(w)
}
