package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// workflowCmd represents the workflow command
var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Validate, plan and apply workflow files",
	Long:  `Validate, plan and apply workflow files.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'workflow' requires a subcommand (validate, plan, apply, graph, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(workflowCmd)
}
